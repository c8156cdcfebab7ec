//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"barkroom/domain"
	"barkroom/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives domain events. Connection sinks, storage sinks and
// projections all implement it.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the process-wide presence state: room name to the group of
// live connections. Join and Leave return the post-mutation group size and a
// sink snapshot taken in the same critical section, so a presence broadcast
// can never carry a count that predates its own mutation.
type IRegistry interface {
	Join(roomName domain.RoomName, connID string, sink EventSink) (int, []EventSink)
	Leave(roomName domain.RoomName, connID string) (int, []EventSink, bool)
	Members(roomName domain.RoomName) []EventSink
	Count(roomName domain.RoomName) int
}

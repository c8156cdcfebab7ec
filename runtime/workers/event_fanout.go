package workers

import (
	"context"
	"log/slog"
	"time"

	"barkroom/contract"
	"barkroom/domain/event"
)

// EventFanout delivers sanitized domain events to the room's connection
// sinks and to the permanent sinks (storage, search index, projections).
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// A slow or dead sink is bounded by the per-sink timeout and can never
// stall delivery to the other members of the room.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	sinks       []contract.EventSink
	events      chan event.DomainEvent
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	events chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:         log,
		registry:    registry,
		events:      events,
		sinkTimeout: sinkTimeout,
	}
}

// Add appends permanent sinks that receive every event regardless of room.
func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return ctx.Err()
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to the permanent sinks and to every connection
// currently joined to the event's room.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	targets := append(w.registry.Members(evt.Room()), w.sinks...)
	for _, sink := range targets {
		w.consume(ctx, sink, evt)
	}
}

func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Debug("Sink dropped event", "room", evt.Room(), "error", err)
	}
}

package sink

import (
	"context"
	"log/slog"

	"barkroom/domain/event"
	"barkroom/repositories"
)

// DiskSink persists every sanitized message to BadgerDB. It only reacts to
// SanitizedMessage events, everything else flows past it.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.SanitizedMessage:
		return d.repository.StoreMessage(toDiskMessage(evt))
	default:
		return nil
	}
}

func toDiskMessage(evt event.SanitizedMessage) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:      evt.ID,
		Room:    evt.RoomName,
		Author:  evt.Author,
		Content: evt.Content,
		Lang:    evt.Lang,
		At:      evt.At,
	}
}

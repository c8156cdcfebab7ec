package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"barkroom/contract"
	"barkroom/domain"
	"barkroom/domain/event"
)

// Ensure *PoolUnitWorker implements the contract.Worker interface at compile time.
// This prevents "type mismatch" errors from appearing late in other packages
// and acts as a static assertion of our architectural rules.
var _ contract.Worker = (*PoolUnitWorker)(nil)

// PoolUnitWorker turns accepted commands into raw domain events. Several
// units drain the same command channel; ordering within a room is preserved
// by the per-message server timestamp, not by worker scheduling.
type PoolUnitWorker struct {
	commands chan domain.Command
	events   chan event.DomainEvent
	log      *slog.Logger
}

func NewPoolUnitWorker(
	commands chan domain.Command,
	events chan event.DomainEvent,
	log *slog.Logger) *PoolUnitWorker {
	return &PoolUnitWorker{
		commands: commands,
		events:   events,
		log:      log,
	}
}

func (w *PoolUnitWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			if postCmd, ok := cmd.(domain.PostMessageCommand); ok {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case w.events <- toEvent(postCmd):
				}
			}
		}
	}
}

func toEvent(c domain.PostMessageCommand) event.MessagePosted {
	at := c.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return event.MessagePosted{
		ID:       uuid.New(),
		RoomName: c.RoomName,
		Author:   c.Author,
		Content:  c.Content,
		At:       at,
	}
}

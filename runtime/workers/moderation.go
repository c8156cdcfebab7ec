package workers

import (
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"

	"barkroom/contract"
	"barkroom/domain/event"
	"barkroom/moderation"
)

var _ contract.Worker = (*ModerationWorker)(nil)

// ModerationWorker sits between raw and sanitized events. Every message body
// passes through the censor exactly once before it can reach a connection
// sink or storage.
type ModerationWorker struct {
	moderator moderation.Moderator
	rawEvents chan event.DomainEvent
	events    chan event.DomainEvent
	log       *slog.Logger
}

func NewModerationWorker(moderator moderation.Moderator,
	rawEvents, events chan event.DomainEvent, log *slog.Logger) *ModerationWorker {
	return &ModerationWorker{
		moderator: moderator,
		rawEvents: rawEvents,
		events:    events,
		log:       log,
	}
}

func (w *ModerationWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case e, ok := <-w.rawEvents:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			out := e
			if posted, isMessage := e.(event.MessagePosted); isMessage {
				out = w.toSanitizedEvent(posted)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.events <- out:
			}
		}
	}
}

func (w *ModerationWorker) toSanitizedEvent(evt event.MessagePosted) event.SanitizedMessage {
	info := whatlanggo.Detect(evt.Content)
	langCode := info.Lang.Iso6391()

	sanitized, foundWords := w.moderator.Censor(evt.Content)
	if len(foundWords) > 0 {
		w.log.Warn("Censored words in message",
			"room", evt.RoomName,
			"author", evt.Author,
			"count", len(foundWords))
	}

	return event.SanitizedMessage{
		ID:            evt.ID,
		RoomName:      evt.RoomName,
		Author:        evt.Author,
		Content:       sanitized,
		Lang:          langCode,
		CensoredWords: foundWords,
		At:            evt.At,
	}
}

package sink

import (
	"context"
	"sync"

	"barkroom/domain"
	"barkroom/domain/event"
)

// Timeline keeps an in-memory projection of the latest sanitized messages per
// room. It backs the recent-activity endpoint and never touches disk.
type Timeline struct {
	mu       sync.RWMutex
	capacity int
	messages map[domain.RoomName][]domain.Message
}

func NewTimeline(capacity int) *Timeline {
	if capacity <= 0 {
		capacity = 50
	}
	return &Timeline{
		capacity: capacity,
		messages: make(map[domain.RoomName][]domain.Message),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.SanitizedMessage)
	if !ok {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	timeline := append(t.messages[evt.RoomName], fromEvent(evt))
	if len(timeline) > t.capacity {
		timeline = timeline[len(timeline)-t.capacity:]
	}
	t.messages[evt.RoomName] = timeline
	return nil
}

// Latest returns a copy of the room's in-memory timeline, oldest first.
func (t *Timeline) Latest(room domain.RoomName) []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	timeline := t.messages[room]
	out := make([]domain.Message, len(timeline))
	copy(out, timeline)
	return out
}

func fromEvent(evt event.SanitizedMessage) domain.Message {
	return domain.Message{
		ID:        evt.ID,
		Room:      evt.RoomName,
		Author:    evt.Author,
		Content:   evt.Content,
		Lang:      evt.Lang,
		CreatedAt: evt.At,
	}
}

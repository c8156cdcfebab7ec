// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	Room      RoomName
	Author    string
	Content   string
	Lang      string // ISO 639-1 code detected at moderation time, may be empty
	CreatedAt time.Time
}

package event

import (
	"time"

	"github.com/google/uuid"

	"barkroom/domain"
)

// DomainEvent is the tagged-variant base for everything flowing through the
// pipeline and out to connection sinks. Dispatch happens by type switch at a
// single point per consumer.
type DomainEvent interface {
	Room() domain.RoomName
}

// UserJoined is broadcast to every group member after a join, the joiner
// included. Count is the group size observed atomically with the join.
type UserJoined struct {
	RoomName domain.RoomName
	User     string // empty for anonymous connections
	Count    int
}

func (e UserJoined) Room() domain.RoomName { return e.RoomName }

// UserLeft mirrors UserJoined for disconnects; delivered to the remaining
// members only.
type UserLeft struct {
	RoomName domain.RoomName
	User     string
	Count    int
}

func (e UserLeft) Room() domain.RoomName { return e.RoomName }

// MessagePosted is the raw, unmoderated message emitted by a pool worker.
type MessagePosted struct {
	ID       uuid.UUID
	RoomName domain.RoomName
	Author   string
	Content  string
	At       time.Time
}

func (e MessagePosted) Room() domain.RoomName { return e.RoomName }

// SanitizedMessage is a MessagePosted after censoring. Only sanitized
// messages reach connection sinks and storage.
type SanitizedMessage struct {
	ID            uuid.UUID
	RoomName      domain.RoomName
	Author        string
	Content       string
	Lang          string
	CensoredWords []string
	At            time.Time
}

func (e SanitizedMessage) Room() domain.RoomName { return e.RoomName }

// HistoryLoaded carries the initial history page to one newly joined
// connection. It is never broadcast.
type HistoryLoaded struct {
	RoomName domain.RoomName
	Messages []domain.Message // newest-first
	PageNum  int
}

func (e HistoryLoaded) Room() domain.RoomName { return e.RoomName }

// ErrorRaised is a user-visible error delivered to a single sink, e.g. an
// anonymous connection trying to author a message.
type ErrorRaised struct {
	RoomName domain.RoomName
	Reason   string
}

func (e ErrorRaised) Room() domain.RoomName { return e.RoomName }

package domain

import "time"

// Command is a mutation intent addressed to one room.
type Command interface {
	Room() RoomName
}

// PostMessageCommand carries an authenticated user's message into the
// processing pipeline. CreatedAt is server-assigned.
type PostMessageCommand struct {
	RoomName  RoomName
	Author    string
	Content   string
	CreatedAt time.Time
}

func (c PostMessageCommand) Room() RoomName {
	return c.RoomName
}

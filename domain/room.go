package domain

import "time"

// RoomName is the unique identifier of a chat room, taken verbatim from the
// connection path segment.
type RoomName string

// Room is the durable room record. The live member set is not stored here;
// it belongs to the runtime registry.
type Room struct {
	Name      RoomName
	CreatedAt time.Time
}

func NewRoom(name RoomName) Room {
	return Room{Name: name, CreatedAt: time.Now().UTC()}
}

package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"barkroom/domain"
	"barkroom/domain/event"
	"barkroom/errors"
)

const (
	writeWait             = 10 * time.Second
	pongWait              = 60 * time.Second
	pingPeriod            = 54 * time.Second
	maxMessageSize        = 4096
	defaultSendBufferSize = 256
)

// Connection binds one websocket to one room and one resolved identity. It
// implements contract.EventSink: the fanout and the coordinator write events
// here and the write pump ships them to the peer.
type Connection struct {
	id       string
	room     domain.RoomName
	username string
	socket   *websocket.Conn
	send     chan []byte
	done     chan struct{}
	log      *slog.Logger
	once     sync.Once
}

func NewConnection(id string, room domain.RoomName, username string,
	socket *websocket.Conn, sendBuffer int, log *slog.Logger) *Connection {
	socket.SetReadLimit(maxMessageSize)
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBufferSize
	}
	return &Connection{
		id:       id,
		room:     room,
		username: username,
		socket:   socket,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		log:      log,
	}
}

// Consume encodes a domain event and queues it for the write pump. The queue
// push never blocks: a connection that stopped draining its buffer loses
// events instead of stalling the broadcaster.
func (c *Connection) Consume(_ context.Context, e event.DomainEvent) error {
	data, ok := EncodeEvent(e)
	if !ok {
		return nil
	}
	c.enqueue(data)
	return nil
}

// raiseError delivers an error envelope to this connection only. It rides
// the same sink path as broadcast events.
func (c *Connection) raiseError(reason string) {
	_ = c.Consume(context.Background(), event.ErrorRaised{RoomName: c.room, Reason: reason})
}

// enqueue never blocks and never panics. A broadcaster may hold this sink in
// a snapshot taken before the connection left, so events arriving after Close
// are dropped, as are events for a connection that stopped draining.
func (c *Connection) enqueue(data []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("Send buffer full, dropping event",
			"room", c.room, "conn", c.id)
	}
}

// ReadPump consumes inbound frames until the peer goes away. Each frame is
// the {"message": ...} payload; anything else degrades to an error envelope
// on this connection only. Blocks until the connection dies.
func (c *Connection) ReadPump(post func(room domain.RoomName, author, content string) error) {
	defer func() {
		if err := c.socket.Close(); err != nil {
			c.log.Debug("Closing socket after read pump", "conn", c.id, "error", err)
		}
	}()

	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		return c.socket.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("Websocket read failed", "conn", c.id, "error", err)
			}
			return
		}

		var inbound inboundMessage
		if err := json.Unmarshal(raw, &inbound); err != nil {
			c.raiseError("Malformed message")
			continue
		}

		if err := post(c.room, c.username, inbound.Message); err != nil {
			c.raiseError(userFacingReason(err))
		}
	}
}

// WritePump ships queued envelopes to the peer and keeps the connection
// alive with periodic pings. Runs in its own goroutine per connection.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.socket.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case data := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("Websocket write failed", "conn", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close signals the write pump to send the close frame and marks the
// connection so late deliveries are dropped. The send channel itself is never
// closed: broadcasters holding an older sink snapshot may still write to it.
// Safe to call more than once.
func (c *Connection) Close() {
	c.once.Do(func() { close(c.done) })
}

func userFacingReason(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrNotAuthenticated):
		return "You are not logged in"
	case stderrors.Is(err, errors.ErrEmptyMessage):
		return "Message is empty"
	default:
		return "Message could not be delivered"
	}
}

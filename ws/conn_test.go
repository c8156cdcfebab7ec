package ws

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"barkroom/domain/event"
)

// newTestSocket dials a throwaway websocket server that drains inbound frames.
func newTestSocket(t *testing.T) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for {
			if _, _, err := socket.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	socket, _, err := websocket.DefaultDialer.Dial(
		"ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = socket.Close() })
	return socket
}

func Test_Connection_Consume_After_Close_Is_Dropped(t *testing.T) {
	req := require.New(t)
	conn := NewConnection("conn-1", "lobby", "alice", newTestSocket(t), 8, slog.Default())

	// Given the connection has been closed
	conn.Close()
	conn.Close() // closing twice stays a no-op

	// When a broadcaster holding an older sink snapshot still delivers
	req.NotPanics(func() {
		req.NoError(conn.Consume(context.Background(),
			event.UserJoined{RoomName: "lobby", User: "bob", Count: 2}))
	})

	// Then the event is dropped, not queued
	req.Empty(conn.send)
}

func Test_Connection_Respects_Configured_Send_Buffer(t *testing.T) {
	req := require.New(t)

	conn := NewConnection("conn-1", "lobby", "alice", newTestSocket(t), 3, slog.Default())
	req.Equal(3, cap(conn.send))

	// A non-positive size falls back to the default
	fallback := NewConnection("conn-2", "lobby", "alice", newTestSocket(t), 0, slog.Default())
	req.Equal(defaultSendBufferSize, cap(fallback.send))
}

func Test_Connection_Full_Buffer_Drops_Without_Blocking(t *testing.T) {
	req := require.New(t)
	// No write pump: nothing drains the single-slot buffer.
	conn := NewConnection("conn-1", "lobby", "alice", newTestSocket(t), 1, slog.Default())
	evt := event.UserJoined{RoomName: "lobby", User: "bob", Count: 2}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.Consume(context.Background(), evt)
		_ = conn.Consume(context.Background(), evt)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("delivery to a saturated connection blocked")
	}
	req.Len(conn.send, 1)
}

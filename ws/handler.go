package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"barkroom/auth"
	"barkroom/domain"
	"barkroom/services"
)

// Handler accepts websocket connections on /ws/chat/{room}/, resolves the
// caller's identity and drives the connection lifecycle: join, pumps, leave.
type Handler struct {
	service    services.IChatService
	tokens     *auth.TokenManager
	upgrader   websocket.Upgrader
	sendBuffer int
	log        *slog.Logger
}

func NewHandler(service services.IChatService, tokens *auth.TokenManager,
	sendBuffer int, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		tokens:  tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sendBuffer: sendBuffer,
		log:        log,
	}
}

// Register mounts the chat endpoint. The room name is a restricted
// identifier used verbatim as the group key.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/ws/chat/{room:[a-zA-Z0-9_-]+}/", h.serve)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomName(mux.Vars(r)["room"])

	// A missing or invalid token degrades to an anonymous connection. The
	// coordinator decides what anonymous users may do.
	username := ""
	if claims, err := h.tokens.Identify(r); err != nil {
		h.log.Debug("Invalid token on handshake, treating as anonymous", "error", err)
	} else if claims != nil {
		username = claims.Username
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "room", room, "error", err)
		return
	}

	conn := NewConnection(uuid.NewString(), room, username, socket, h.sendBuffer, h.log)
	h.log.Info("Connection opened", "room", room, "user", username, "conn", conn.id)

	go conn.WritePump()
	h.service.JoinRoom(r.Context(), room, conn.id, username, conn)

	conn.ReadPump(h.service.PostMessage)

	// The read pump returned: the peer is gone. The leave broadcast must
	// not depend on the dying request context.
	h.service.LeaveRoom(context.Background(), room, conn.id, username)
	conn.Close()
	h.log.Info("Connection closed", "room", room, "user", username, "conn", conn.id)
}

package httpapi

import (
	stderrors "errors"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"barkroom/auth"
	"barkroom/domain"
	"barkroom/errors"
	"barkroom/repositories"
	"barkroom/services"
)

// Handlers carries the dependencies shared by every REST endpoint.
type Handlers struct {
	chat        services.IChatService
	auth        services.IAuthService
	log         *slog.Logger
	searchPager int
}

func NewHandlers(chat services.IChatService, auth services.IAuthService,
	log *slog.Logger, searchPager int) *Handlers {
	if searchPager <= 0 {
		searchPager = 10
	}
	return &Handlers{chat: chat, auth: auth, log: log, searchPager: searchPager}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	User      string `json:"user"`
	Timestamp string `json:"timestamp"`
	Pic       string `json:"pic"`
}

type historyResponse struct {
	Room     string            `json:"room"`
	Page     int               `json:"page"`
	Messages []messageResponse `json:"messages"`
}

type latestResponse struct {
	Room     string            `json:"room"`
	Messages []messageResponse `json:"messages"`
}

type searchHitResponse struct {
	ID      string    `json:"id"`
	Room    string    `json:"room"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

type searchResponse struct {
	Room  string              `json:"room"`
	Query string              `json:"query"`
	Total uint64              `json:"total"`
	Hits  []searchHitResponse `json:"hits"`
}

type membersResponse struct {
	Room   string   `json:"room"`
	Users  []string `json:"users"`
	Online int      `json:"online"`
}

// Register creates an account and returns the initial session token.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Register(req.Email, req.Username, req.Password)
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "user already exists")
	case stderrors.Is(err, errors.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, "invalid registration input")
	case err != nil:
		h.log.Error("Registration failed", "error", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
	default:
		writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
	}
}

// Login exchanges credentials for a session token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(req.Email, req.Password)
	switch {
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		h.log.Error("Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
	default:
		writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
	}
}

// History serves one page of a room's message history, newest first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomName(mux.Vars(r)["room"])
	page := queryInt(r, "page", 1)

	history, err := h.chat.History(room, page)
	if err != nil {
		h.log.Error("History read failed", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Room: string(room),
		Page: history.PageNum,
		Messages: lo.Map(history.Messages, func(m domain.Message, _ int) messageResponse {
			return messageResponse{
				ID:        m.ID.String(),
				Message:   m.Content,
				User:      m.Author,
				Timestamp: humanize.Time(m.CreatedAt),
			}
		}),
	})
}

// Latest serves the in-memory recent-activity projection, oldest first.
func (h *Handlers) Latest(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomName(mux.Vars(r)["room"])

	writeJSON(w, http.StatusOK, latestResponse{
		Room: string(room),
		Messages: lo.Map(h.chat.Latest(room), func(m domain.Message, _ int) messageResponse {
			return messageResponse{
				ID:        m.ID.String(),
				Message:   m.Content,
				User:      m.Author,
				Timestamp: humanize.Time(m.CreatedAt),
			}
		}),
	})
}

// Search runs a room-scoped full-text query over the message index.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomName(mux.Vars(r)["room"])
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}
	page := queryInt(r, "page", 1)
	offset := (page - 1) * h.searchPager
	h.log.Debug("Search request",
		"room", room, "q", query, "user", auth.UsernameFromContext(r.Context()))

	hits, total, err := h.chat.Search(r.Context(), query, room, offset)
	if err != nil {
		h.log.Error("Search failed", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "search unavailable")
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Room:  string(room),
		Query: query,
		Total: total,
		Hits: lo.Map(hits, func(hit repositories.MessageHit, _ int) searchHitResponse {
			return searchHitResponse{
				ID:      hit.ID,
				Room:    string(hit.Room),
				Author:  hit.Author,
				Content: hit.Content,
				At:      hit.At,
			}
		}),
	})
}

// Members lists the room's durable membership and its live connection count.
func (h *Handlers) Members(w http.ResponseWriter, r *http.Request) {
	room := domain.RoomName(mux.Vars(r)["room"])
	h.log.Debug("Members request",
		"room", room, "user", auth.UsernameFromContext(r.Context()))

	users, online, err := h.chat.Members(room)
	if err != nil {
		h.log.Error("Members read failed", "room", room, "error", err)
		writeError(w, http.StatusInternalServerError, "members unavailable")
		return
	}
	if users == nil {
		users = []string{}
	}

	writeJSON(w, http.StatusOK, membersResponse{
		Room:   string(room),
		Users:  users,
		Online: online,
	})
}

// Health is the liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

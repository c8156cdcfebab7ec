// Package httpapi provides HTTP routing and handlers for the REST API.
package httpapi

import (
	"github.com/gorilla/mux"

	"barkroom/auth"
)

// NewRouter wires the REST endpoints. Auth endpoints and read-only room
// history are public; search and membership require a valid token.
func NewRouter(handlers *Handlers, tokens *auth.TokenManager) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", handlers.Health).Methods("GET")

	api.HandleFunc("/auth/register", handlers.Register).Methods("POST")
	api.HandleFunc("/auth/login", handlers.Login).Methods("POST")

	rooms := api.PathPrefix("/rooms/{room:[a-zA-Z0-9_-]+}").Subrouter()
	rooms.HandleFunc("/messages", handlers.History).Methods("GET")
	rooms.HandleFunc("/latest", handlers.Latest).Methods("GET")

	protected := api.PathPrefix("/rooms/{room:[a-zA-Z0-9_-]+}").Subrouter()
	protected.Use(tokens.RequireAuth)
	protected.HandleFunc("/search", handlers.Search).Methods("GET")
	protected.HandleFunc("/members", handlers.Members).Methods("GET")

	return r
}

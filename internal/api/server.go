// Package api is the HTTP front end: the SSE chat stream, chat CRUD,
// and the health probe.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/agent"
	"github.com/siftlabs/sift/internal/chatstore"
)

// TurnRunner runs one streaming agent turn. Satisfied by *agent.Loop.
type TurnRunner interface {
	Stream(ctx context.Context, threadID, input string, emit agent.EmitFunc) (string, error)
}

// ChatStore is the persistence surface the chat handlers need.
// Satisfied by *chatstore.Store.
type ChatStore interface {
	Create(ctx context.Context, params chatstore.CreateParams) (chatstore.Chat, error)
	Get(ctx context.Context, id uuid.UUID, userID string) (chatstore.Chat, error)
	List(ctx context.Context, userID string) ([]chatstore.Chat, error)
	Update(ctx context.Context, id uuid.UUID, userID string, params chatstore.UpdateParams) error
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Runner      TurnRunner // Required
	Chats       ChatStore  // Optional: nil disables the /chats routes
	BotActive   bool       // Reported by /health
	CORSOrigins []string   // Allowed origins; "*" allows any
}

// Server is the JSON API HTTP server.
type Server struct {
	mux http.Handler
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Runner == nil {
		return nil, errors.New("turn runner is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	sh := &streamHandler{runner: cfg.Runner, logger: logger}
	mux.HandleFunc("GET /chat_stream/{message}", sh.stream)

	// Chat persistence is optional; without a database the rest of the
	// server still works.
	if cfg.Chats != nil {
		ch := &chatHandler{store: cfg.Chats, logger: logger}
		mux.HandleFunc("POST /chats", ch.create)
		mux.HandleFunc("GET /chats", ch.list)
		mux.HandleFunc("GET /chats/{id}", ch.get)
		mux.HandleFunc("PUT /chats/{id}", ch.update)
		mux.HandleFunc("DELETE /chats/{id}", ch.delete)
	} else {
		logger.Warn("chat persistence not configured, /chats routes disabled")
	}

	mux.HandleFunc("GET /health", healthHandler(cfg.BotActive, logger))

	// Middleware stack, outermost first: Recovery → Logging → CORS.
	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{mux: handler}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

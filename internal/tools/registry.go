// Package tools provides the tool layer of the agent: a closed registry
// of named handlers plus the web-search tool it holds.
//
// The registry is the single dispatch point for model-emitted tool
// calls. Unrecognized names route to one explicit policy owned by the
// caller: Invoke returns ErrUnknownTool and the agent loop logs and
// skips the call.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrUnknownTool indicates a tool name with no registered handler.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call. Implementations must be safe for
// concurrent use; the argument map comes straight from the model's
// tool-call payload.
type Handler interface {
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Registry maps tool names to handlers.
// Registration happens at startup; lookups are concurrent-safe.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register adds a handler under name. Duplicate names are rejected.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return errors.New("tool name is required")
	}
	if h == nil {
		return fmt.Errorf("tool %q: handler is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.handlers[name] = h
	r.logger.Debug("registered tool", "tool", name)
	return nil
}

// Invoke dispatches a tool call to its handler.
// Returns ErrUnknownTool (wrapped with the name) when no handler exists.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return h.Invoke(ctx, args)
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

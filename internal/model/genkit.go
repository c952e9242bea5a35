// Package model adapts Genkit generation to the agent loop's
// ModelClient contract.
package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Config carries the client's dependencies. Name is the fully
// qualified Genkit model name, e.g. "openai/qwen/qwen3-32b".
type Config struct {
	Genkit *genkit.Genkit
	Name   string
	Tools  []ai.ToolRef
	Logger *slog.Logger
}

// Client calls one fixed model through Genkit. Tool requests are
// returned to the caller rather than dispatched by Genkit, so the
// agent loop keeps ownership of tool execution.
type Client struct {
	g      *genkit.Genkit
	name   string
	tools  []ai.ToolRef
	logger *slog.Logger
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Genkit == nil {
		return nil, errors.New("model: genkit instance is required")
	}
	if cfg.Name == "" {
		return nil, errors.New("model: model name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		g:      cfg.Genkit,
		name:   cfg.Name,
		tools:  cfg.Tools,
		logger: logger,
	}, nil
}

// Complete generates one assistant message for msgs.
func (c *Client) Complete(ctx context.Context, msgs []*ai.Message) (*ai.Message, error) {
	return c.generate(ctx, msgs, nil)
}

// Stream generates one assistant message, delivering text deltas
// through cb as they arrive.
func (c *Client) Stream(ctx context.Context, msgs []*ai.Message, cb func(ctx context.Context, text string) error) (*ai.Message, error) {
	return c.generate(ctx, msgs, cb)
}

func (c *Client) generate(ctx context.Context, msgs []*ai.Message, cb func(ctx context.Context, text string) error) (*ai.Message, error) {
	opts := []ai.GenerateOption{
		ai.WithModelName(c.name),
		ai.WithMessages(msgs...),
	}
	if len(c.tools) > 0 {
		opts = append(opts,
			ai.WithTools(c.tools...),
			// The loop feeds tool results back itself; Genkit must not
			// run its own tool round trips.
			ai.WithReturnToolRequests(true),
		)
	}
	if cb != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			return cb(ctx, chunk.Text())
		}))
	}

	resp, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate with %s: %w", c.name, err)
	}
	if resp.Message == nil {
		return nil, fmt.Errorf("generate with %s: empty response", c.name)
	}

	c.logger.Debug("model reply",
		"model", c.name,
		"tool_requests", len(resp.ToolRequests()),
	)
	return resp.Message, nil
}

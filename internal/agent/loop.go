// Package agent drives a single conversational turn as an explicit
// state machine: prime the thread, call the model, execute any tool
// requests, feed the results back, and repeat until the model answers
// in plain text.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"

	"github.com/siftlabs/sift/internal/checkpoint"
	"github.com/siftlabs/sift/internal/tools"
)

// ModelClient abstracts the completion backend. Stream behaves exactly
// like Complete but additionally delivers text deltas through cb as
// they arrive; the returned message is the complete assistant reply.
type ModelClient interface {
	Complete(ctx context.Context, msgs []*ai.Message) (*ai.Message, error)
	Stream(ctx context.Context, msgs []*ai.Message, cb func(ctx context.Context, text string) error) (*ai.Message, error)
}

// Config carries the loop's dependencies.
type Config struct {
	Model       ModelClient
	Tools       *tools.Registry
	Checkpoints *checkpoint.Store
	Logger      *slog.Logger

	// Identity is the persona preamble for the system message. Now
	// supplies the timestamp embedded next to it; it defaults to
	// time.Now and exists so tests can pin the clock.
	Identity string
	Now      func() time.Time
}

func (c Config) validate() error {
	if c.Model == nil {
		return errors.New("agent: config requires a model client")
	}
	if c.Tools == nil {
		return errors.New("agent: config requires a tool registry")
	}
	if c.Checkpoints == nil {
		return errors.New("agent: config requires a checkpoint store")
	}
	return nil
}

// Loop runs agent turns against a checkpointed thread.
type Loop struct {
	model       ModelClient
	tools       *tools.Registry
	checkpoints *checkpoint.Store
	logger      *slog.Logger
	identity    string
	now         func() time.Time
}

// New builds a Loop from cfg.
func New(cfg Config) (*Loop, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{
		model:       cfg.Model,
		tools:       cfg.Tools,
		checkpoints: cfg.Checkpoints,
		logger:      logger,
		identity:    cfg.Identity,
		now:         now,
	}, nil
}

// Run executes one turn for threadID with the given user input and
// returns the final assistant text. Events other than content deltas
// are still delivered through emit when it is non-nil.
func (l *Loop) Run(ctx context.Context, threadID, input string, emit EmitFunc) (string, error) {
	return l.run(ctx, threadID, input, emit, false)
}

// Stream is Run with assistant text delivered incrementally as
// ContentEvents instead of only in the return value.
func (l *Loop) Stream(ctx context.Context, threadID, input string, emit EmitFunc) (string, error) {
	return l.run(ctx, threadID, input, emit, true)
}

func (l *Loop) run(ctx context.Context, threadID, input string, emit EmitFunc, stream bool) (string, error) {
	if emit == nil {
		emit = func(context.Context, Event) error { return nil }
	}

	// One turn per thread at a time. The gate covers resolve through
	// final append so concurrent turns on the same thread serialize
	// instead of interleaving their messages.
	unlock := l.checkpoints.Lock(threadID)
	defer unlock()

	history := l.checkpoints.Resolve(threadID)
	user := ai.NewUserMessage(ai.NewTextPart(input))
	l.checkpoints.Append(threadID, user)

	// The system message is rebuilt each turn and never persisted, so
	// the embedded timestamp stays current across a thread's lifetime.
	working := make([]*ai.Message, 0, len(history)+2)
	working = append(working, l.systemSeed())
	working = append(working, history...)
	working = append(working, user)

	var (
		state = StatePrime
		reply *ai.Message
		final string
	)
	for state != StateDone {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch state {
		case StatePrime:
			// Thread resolved and user message appended above.

		case StateModel:
			var err error
			reply, err = l.callModel(ctx, working, emit, stream)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrModelFailure, err)
			}
			l.checkpoints.Append(threadID, reply)
			working = append(working, reply)
			final = reply.Text()

			if query, ok := firstSearchQuery(reply); ok {
				if err := emit(ctx, SearchStartEvent{Query: query}); err != nil {
					return "", err
				}
			}

		case StateTools:
			results, err := l.runTools(ctx, reply, emit)
			if err != nil {
				return "", err
			}
			for _, msg := range results {
				l.checkpoints.Append(threadID, msg)
				working = append(working, msg)
			}
		}

		state = nextState(state, reply)
	}

	return final, nil
}

// callModel invokes the backend, streaming deltas as ContentEvents when
// requested.
func (l *Loop) callModel(ctx context.Context, msgs []*ai.Message, emit EmitFunc, stream bool) (*ai.Message, error) {
	if !stream {
		return l.model.Complete(ctx, msgs)
	}
	return l.model.Stream(ctx, msgs, func(ctx context.Context, text string) error {
		if text == "" {
			return nil
		}
		return emit(ctx, ContentEvent{Text: text})
	})
}

// runTools executes every tool request in reply, in order, and returns
// one tool message per request. Handler failures become error payloads
// so the model can see what went wrong and continue the turn; requests
// for tools the registry does not know are logged and skipped.
func (l *Loop) runTools(ctx context.Context, reply *ai.Message, emit EmitFunc) ([]*ai.Message, error) {
	var results []*ai.Message
	for _, part := range reply.Content {
		if part == nil || part.ToolRequest == nil {
			continue
		}
		req := part.ToolRequest

		args, _ := req.Input.(map[string]any)
		output, err := l.tools.Invoke(ctx, req.Name, args)
		if err != nil {
			if errors.Is(err, tools.ErrUnknownTool) {
				l.logger.Warn("skipping unrecognized tool call", "tool", req.Name)
				continue
			}
			l.logger.Warn("tool call failed", "tool", req.Name, "error", err)
			output = map[string]any{"error": err.Error()}
		}

		if req.Name == tools.SearchToolName && err == nil {
			if e := emit(ctx, SearchResultsEvent{URLs: tools.ResultURLs(output)}); e != nil {
				return nil, e
			}
		}

		results = append(results, &ai.Message{
			Role: ai.RoleTool,
			Content: []*ai.Part{
				ai.NewToolResponsePart(&ai.ToolResponse{
					Name:   req.Name,
					Ref:    req.Ref,
					Output: output,
				}),
			},
		})
	}
	return results, nil
}

func (l *Loop) systemSeed() *ai.Message {
	text := l.identity
	if text == "" {
		text = "You are Sift, a helpful assistant."
	}
	text += "\nCurrent date and time: " + l.now().Format(time.RFC1123)
	return &ai.Message{
		Role:    ai.RoleSystem,
		Content: []*ai.Part{ai.NewTextPart(text)},
	}
}

// firstSearchQuery extracts the query of the first web search request
// in msg, if any.
func firstSearchQuery(msg *ai.Message) (string, bool) {
	if msg == nil {
		return "", false
	}
	for _, part := range msg.Content {
		if part == nil || part.ToolRequest == nil || part.ToolRequest.Name != tools.SearchToolName {
			continue
		}
		if args, ok := part.ToolRequest.Input.(map[string]any); ok {
			if q, ok := args["query"].(string); ok {
				return q, true
			}
		}
		return "", true
	}
	return "", false
}

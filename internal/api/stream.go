package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/agent"
)

// streamHandler serves GET /chat_stream/{message} as Server-Sent
// Events. Payloads are data-only JSON objects discriminated by "type":
//
//	{"type":"checkpoint","checkpoint_id":...}  first, iff no ID supplied
//	{"type":"content","content":...}           per text fragment
//	{"type":"search_start","query":...}        once per tool turn
//	{"type":"search_results","urls":[...]}     per completed search
//	{"type":"end"}                             exactly once, always last
type streamHandler struct {
	runner TurnRunner
	logger *slog.Logger
}

func (h *streamHandler) stream(w http.ResponseWriter, r *http.Request) {
	message := r.PathValue("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()

	// A missing checkpoint ID means a new conversation: mint one and
	// echo it so the client can resume.
	checkpointID := r.URL.Query().Get("checkpoint_id")
	if checkpointID == "" {
		checkpointID = uuid.NewString()
		if err := writeEvent(w, flusher, agent.CheckpointEvent{CheckpointID: checkpointID}); err != nil {
			return
		}
	}

	h.logger.Debug("SSE stream started", "checkpoint_id", checkpointID)

	emit := func(_ context.Context, ev agent.Event) error {
		return writeEvent(w, flusher, ev)
	}

	_, err := h.runner.Stream(ctx, checkpointID, message, emit)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		h.logger.Info("client disconnected", "checkpoint_id", checkpointID)
		return
	default:
		// The stream still terminates cleanly: drop the rest of the
		// answer and close with end.
		h.logger.Error("agent turn failed", "checkpoint_id", checkpointID, "error", err)
	}

	_ = writeEvent(w, flusher, agent.EndEvent{})
	h.logger.Debug("SSE stream completed", "checkpoint_id", checkpointID)
}

// writeEvent writes a single SSE event with a JSON-encoded payload.
// Format: "data: <json>\n\n", flushed immediately.
func writeEvent(w io.Writer, flusher http.Flusher, ev agent.Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	flusher.Flush()
	return nil
}

// encodeEvent maps a typed event to its wire payload. This is the only
// place stream events are serialized.
func encodeEvent(ev agent.Event) ([]byte, error) {
	var payload any
	switch e := ev.(type) {
	case agent.CheckpointEvent:
		payload = struct {
			Type         string `json:"type"`
			CheckpointID string `json:"checkpoint_id"`
		}{"checkpoint", e.CheckpointID}
	case agent.ContentEvent:
		payload = struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}{"content", e.Text}
	case agent.SearchStartEvent:
		payload = struct {
			Type  string `json:"type"`
			Query string `json:"query"`
		}{"search_start", e.Query}
	case agent.SearchResultsEvent:
		urls := e.URLs
		if urls == nil {
			urls = []string{}
		}
		payload = struct {
			Type string   `json:"type"`
			URLs []string `json:"urls"`
		}{"search_results", urls}
	case agent.EndEvent:
		payload = struct {
			Type string `json:"type"`
		}{"end"}
	default:
		return nil, fmt.Errorf("unknown event type %T", ev)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

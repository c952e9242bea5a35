// Package testutil holds shared test helpers.
package testutil

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"
)

// StreamEvent is one decoded chat-stream SSE payload. Type is always
// set; the remaining fields are populated per type.
type StreamEvent struct {
	Type         string   `json:"type"`
	CheckpointID string   `json:"checkpoint_id"`
	Content      string   `json:"content"`
	Query        string   `json:"query"`
	URLs         []string `json:"urls"`
}

// ParseStream parses a data-only SSE body into decoded stream events.
//
// The chat stream uses bare "data:" lines with JSON payloads; an empty
// line terminates each event and ":" comment lines are ignored.
func ParseStream(t *testing.T, body string) []StreamEvent {
	t.Helper()

	var events []StreamEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "data: "):
			var ev StreamEvent
			payload := strings.TrimPrefix(line, "data: ")
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				t.Fatalf("SSE parse error at line %d: invalid JSON payload %q: %v", lineNum, payload, err)
			}
			if ev.Type == "" {
				t.Fatalf("SSE parse error at line %d: payload without type: %q", lineNum, payload)
			}
			events = append(events, ev)

		case line == "" || strings.HasPrefix(line, ":"):
			// Event separator or comment.

		default:
			t.Fatalf("SSE parse error at line %d: unexpected SSE line: %q", lineNum, line)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("SSE scan error: %v", err)
	}
	return events
}

// ContentText concatenates the content fragments of events, in order.
func ContentText(events []StreamEvent) string {
	var b strings.Builder
	for _, ev := range events {
		if ev.Type == "content" {
			b.WriteString(ev.Content)
		}
	}
	return b.String()
}

package agent

import "context"

// Event is a member of the closed union of stream events a turn can
// produce. Events are plain values; JSON serialization happens only at
// the transport boundary.
type Event interface {
	event()
}

// CheckpointEvent carries a freshly generated thread ID. Emitted by the
// transport, once and first, only when the caller supplied no ID.
type CheckpointEvent struct {
	CheckpointID string
}

// ContentEvent carries one incremental text fragment of the model's
// answer.
type ContentEvent struct {
	Text string
}

// SearchStartEvent signals that the model requested at least one web
// search this turn; Query is the first search call's query.
type SearchStartEvent struct {
	Query string
}

// SearchResultsEvent carries the result URLs of one completed search,
// in rank order.
type SearchResultsEvent struct {
	URLs []string
}

// EndEvent terminates a stream. Emitted by the transport, exactly once
// and always last, regardless of how the turn ended.
type EndEvent struct{}

func (CheckpointEvent) event()    {}
func (ContentEvent) event()       {}
func (SearchStartEvent) event()   {}
func (SearchResultsEvent) event() {}
func (EndEvent) event()           {}

// EmitFunc receives stream events in emission order. Returning an error
// aborts the turn (typically: the client went away).
type EmitFunc func(ctx context.Context, ev Event) error

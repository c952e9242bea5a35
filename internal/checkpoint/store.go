// Package checkpoint holds in-process conversation state.
//
// A thread is an append-only message history keyed by an opaque thread
// ID (the "checkpoint" handed back to callers). Threads are created
// implicitly on first use and live until process teardown; there is no
// expiry, capacity bound, or cross-restart persistence.
package checkpoint

import (
	"sync"

	"github.com/firebase/genkit/go/ai"
)

// Store is a keyed in-memory table of conversation threads.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	mu      sync.Mutex
	threads map[string]*thread
}

// thread owns one conversation history. The gate serializes whole turns
// against it: two concurrent requests for the same thread would otherwise
// read the same prior history and append divergent continuations.
type thread struct {
	gate sync.Mutex

	mu       sync.RWMutex
	messages []*ai.Message
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{threads: make(map[string]*thread)}
}

// get returns the thread for id, creating it if unseen.
func (s *Store) get(id string) *thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		t = &thread{}
		s.threads[id] = t
	}
	return t
}

// Resolve returns the message history for id, creating an empty history
// for unseen IDs. The returned slice is a copy; messages themselves are
// treated as immutable once appended.
func (s *Store) Resolve(id string) []*ai.Message {
	t := s.get(id)
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*ai.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Append adds messages to the end of the thread's history.
func (s *Store) Append(id string, msgs ...*ai.Message) {
	if len(msgs) == 0 {
		return
	}
	t := s.get(id)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msgs...)
}

// Lock acquires the per-thread turn gate and returns its release
// function. Callers hold the gate across the whole
// resolve → run → append sequence of a turn.
func (s *Store) Lock(id string) func() {
	t := s.get(id)
	t.gate.Lock()
	return t.gate.Unlock
}

// Len returns the number of messages stored for id without creating the
// thread.
func (s *Store) Len(id string) int {
	s.mu.Lock()
	t, ok := s.threads[id]
	s.mu.Unlock()
	if !ok {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

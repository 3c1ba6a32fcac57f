package sinks

import (
	"context"
	"sync"

	"github.com/haianibrahim/tiktok-scraper/internal/events"
)

// MemorySink records consumed events for inspection in tests.
type MemorySink struct {
	mu     sync.RWMutex
	events []events.Event
	closed bool
}

// NewMemorySink returns an empty recorder.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Consume appends the batch to the recorded history.
func (s *MemorySink) Consume(_ context.Context, batch []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

// Close marks the sink closed.
func (s *MemorySink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Events returns a copy of everything consumed so far.
func (s *MemorySink) Events() []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Closed reports whether Close has been called.
func (s *MemorySink) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

package scrobble

import (
	"context"
	"sync"
)

// MockSink is a test double that records every play it receives.
type MockSink struct {
	mu    sync.Mutex
	plays []Play
	err   error
}

// NewMockSink creates a sink that accepts every play.
func NewMockSink() *MockSink {
	return &MockSink{}
}

func (m *MockSink) RecordPlay(_ context.Context, p Play) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays = append(m.plays, p)
	return m.err
}

// SetError makes subsequent RecordPlay calls fail with err.
func (m *MockSink) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Plays returns the recorded plays.
func (m *MockSink) Plays() []Play {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Play(nil), m.plays...)
}

// Verify MockSink implements Sink at compile time.
var _ Sink = (*MockSink)(nil)

package mediasession

import (
	"errors"
	"sync"
)

// ErrInvalidPosition is what Recorder returns for a position beyond the
// duration, mirroring platforms that validate position state.
var ErrInvalidPosition = errors.New("position exceeds duration")

// Recorder is an in-memory Session for tests. It records every call and
// lets tests fire commands as the system would.
type Recorder struct {
	mu        sync.Mutex
	handlers  map[Action]Handler
	cleared   map[Action]bool
	metadata  []Metadata
	states    []PlaybackState
	positions []PositionState
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		handlers: make(map[Action]Handler),
		cleared:  make(map[Action]bool),
	}
}

func (r *Recorder) SetMetadata(m Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metadata = append(r.metadata, m)
}

func (r *Recorder) SetPlaybackState(s PlaybackState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *Recorder) SetPositionState(p PositionState) error {
	if p.Position > p.Duration {
		return ErrInvalidPosition
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, p)
	return nil
}

func (r *Recorder) SetActionHandler(a Action, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, a)
		r.cleared[a] = true
		return
	}
	r.handlers[a] = h
	delete(r.cleared, a)
}

// Fire invokes the handler for a, reporting whether one was registered.
func (r *Recorder) Fire(a Action, d ActionDetails) bool {
	r.mu.Lock()
	h := r.handlers[a]
	r.mu.Unlock()
	if h == nil {
		return false
	}
	d.Action = a
	h(d)
	return true
}

// HasHandler reports whether a handler is registered for a.
func (r *Recorder) HasHandler(a Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[a] != nil
}

// Cleared reports whether a was explicitly cleared with a nil handler.
func (r *Recorder) Cleared(a Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleared[a]
}

// Metadata returns every metadata update.
func (r *Recorder) Metadata() []Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Metadata(nil), r.metadata...)
}

// States returns every playback state update.
func (r *Recorder) States() []PlaybackState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PlaybackState(nil), r.states...)
}

// Positions returns every accepted position update.
func (r *Recorder) Positions() []PositionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]PositionState(nil), r.positions...)
}

// Verify implementations satisfy Session at compile time.
var (
	_ Session = (*Recorder)(nil)
	_ Session = Nop{}
)

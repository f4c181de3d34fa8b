package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/queue"
)

// Phase is the state of a crossfade session.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhasePriming waits for the incoming deck to buffer.
	PhasePriming
	// PhaseRamping sweeps both volumes.
	PhaseRamping
	// PhaseCompleted means the decks were swapped; it lasts until the
	// track-change loader observes the resulting queue advance.
	PhaseCompleted
	PhaseAborted
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePriming:
		return "priming"
	case PhaseRamping:
		return "ramping"
	case PhaseCompleted:
		return "completed"
	case PhaseAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// PrimeState tracks the one-time user activation of a deck.
type PrimeState int

const (
	Unprimed PrimeState = iota
	Priming
	Primed
)

// Abort reasons, also used as metric labels.
const (
	reasonPaused     = "paused"
	reasonStalled    = "stalled"
	reasonBuffering  = "buffering"
	reasonRejected   = "rejected"
	reasonSafety     = "safety"
	reasonError      = "error"
	reasonNavigation = "navigation"
)

// session is one crossfade. At most one is live at a time.
type session struct {
	id     uuid.UUID
	phase  Phase
	from   deck.ID
	to     deck.ID
	next   queue.Track
	target float64

	// nextIndex is the queue index of next when the session started.
	nextIndex int

	startedAt     time.Time
	rampStartedAt time.Time
	duration      time.Duration

	// readyFired suppresses duplicate buffered signals.
	readyFired bool
	// outgoingEnded records an ended event on the outgoing deck.
	outgoingEnded bool

	fallback *time.Timer
	timeout  *time.Timer
	safety   *time.Timer
	tick     *time.Timer

	logger zerolog.Logger
}

// live reports whether s owns the decks.
func (s *session) live() bool {
	return s != nil && (s.phase == PhasePriming || s.phase == PhaseRamping)
}

func (s *session) stopBuffering() {
	stopTimer(s.fallback)
	stopTimer(s.timeout)
	s.fallback, s.timeout = nil, nil
}

func (s *session) stopAll() {
	s.stopBuffering()
	stopTimer(s.safety)
	stopTimer(s.tick)
	s.safety, s.tick = nil, nil
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}

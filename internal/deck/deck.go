// Package deck defines the two audio channels the playback engine alternates
// between and the pointer that selects which of them is authoritative.
package deck

import (
	"errors"
	"time"
)

// ID identifies one of the two decks.
type ID int

const (
	A ID = iota
	B
)

// String returns the deck name.
func (id ID) String() string {
	switch id {
	case A:
		return "A"
	case B:
		return "B"
	default:
		return "Unknown"
	}
}

// Other returns the opposite deck.
func (id ID) Other() ID {
	if id == A {
		return B
	}
	return A
}

// NeutralSource is a source that can be assigned to a deck without
// triggering audible playback or error events. Assigning it detaches the
// previous source.
const NeutralSource = "neutral:silence"

// IsRealSource reports whether src is an actual track source, as opposed to
// an empty or neutral one.
func IsRealSource(src string) bool {
	return src != "" && src != NeutralSource
}

var (
	// ErrNoSource is returned by Play when nothing is loaded.
	ErrNoSource = errors.New("deck has no source")

	// ErrRejected is returned by Play when the platform refuses to start
	// playback (autoplay policy, device unavailable).
	ErrRejected = errors.New("playback rejected")
)

// EventKind enumerates deck lifecycle events.
type EventKind int

const (
	// EventLoaded fires once the duration is known.
	EventLoaded EventKind = iota
	// EventReady fires when enough is buffered to start playback.
	EventReady
	// EventPlaying fires when samples actually start flowing.
	EventPlaying
	// EventPause fires when playback stops without reaching the end.
	EventPause
	// EventTimeUpdate fires periodically while playing and after seeks.
	EventTimeUpdate
	// EventStalled fires when data stops arriving mid-playback.
	EventStalled
	// EventEnded fires when the source is exhausted.
	EventEnded
	// EventError fires when the source cannot be loaded or decoded.
	EventError
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventReady:
		return "ready"
	case EventPlaying:
		return "playing"
	case EventPause:
		return "pause"
	case EventTimeUpdate:
		return "timeupdate"
	case EventStalled:
		return "stalled"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is emitted by a deck. Source is the source the event relates to, so
// listeners can discard events from a source that has since been replaced.
type Event struct {
	Deck   ID
	Kind   EventKind
	Source string
	Err    error
}

// Deck is one playable audio channel. Decks live for the lifetime of the
// player; tracks are switched by loading a new source.
//
// Implementations must be safe for concurrent use and must deliver events
// through the listener without blocking.
type Deck interface {
	ID() ID

	// Load assigns a new source and starts buffering it. Loading
	// NeutralSource detaches the current source synchronously.
	Load(src string)
	Source() string

	// Play starts playback, or schedules it if the source is still
	// buffering. It returns an error if the platform refuses.
	Play() error
	Pause()
	Seek(pos time.Duration)

	SetVolume(v float64)
	Volume() float64

	Position() time.Duration
	// Duration is zero until the source's metadata is known.
	Duration() time.Duration
	// Playing reports observed hardware state, not intent.
	Playing() bool
	// Ready reports whether enough is buffered to play.
	Ready() bool

	// SetListener installs the single event listener.
	SetListener(fn func(Event))
}

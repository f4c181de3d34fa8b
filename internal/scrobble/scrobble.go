// Package scrobble tracks listening progress of the loaded track and sends
// completed plays to the configured sinks exactly once.
package scrobble

import (
	"context"
	"time"
)

// Play describes one listened track.
type Play struct {
	SongID       string
	Artist       string
	Title        string
	Album        string
	Genre        string
	Duration     time.Duration
	PlayDuration time.Duration
	StartedAt    time.Time
}

// Sink receives completed plays. Implementations should honour ctx.
type Sink interface {
	RecordPlay(ctx context.Context, p Play) error
}

// Default tracker settings.
const (
	DefaultThreshold = 0.5
	DefaultMaxStep   = 3 * time.Second
)

// Tracker follows the playback clock of one track and decides when its play
// counts. Progress is cumulative: only forward steps no longer than maxStep
// are added, so seeking ahead does not arm a play.
type Tracker struct {
	threshold float64
	maxStep   time.Duration

	active  bool
	play    Play
	lastPos time.Duration
	havePos bool
	played  time.Duration
	armed   bool
	fired   bool
}

// NewTracker creates a tracker that arms at threshold (fraction of the
// duration, 0..1].
func NewTracker(threshold float64, maxStep time.Duration) *Tracker {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if maxStep <= 0 {
		maxStep = DefaultMaxStep
	}
	return &Tracker{threshold: threshold, maxStep: maxStep}
}

// Begin starts tracking a new track, discarding any previous state.
func (t *Tracker) Begin(p Play) {
	*t = Tracker{threshold: t.threshold, maxStep: t.maxStep, active: true, play: p}
}

// TrackID returns the tracked song id, or "" when idle.
func (t *Tracker) TrackID() string {
	if !t.active {
		return ""
	}
	return t.play.SongID
}

// Observe feeds a position update. It returns true when this update armed
// the play.
func (t *Tracker) Observe(pos, duration time.Duration) bool {
	if !t.active {
		return false
	}
	if duration > 0 {
		t.play.Duration = duration
	}
	if t.havePos {
		if step := pos - t.lastPos; step > 0 && step <= t.maxStep {
			t.played += step
		}
	}
	t.lastPos = pos
	t.havePos = true

	if t.armed || t.play.Duration <= 0 {
		return false
	}
	if float64(t.played) >= t.threshold*float64(t.play.Duration) {
		t.armed = true
		return true
	}
	return false
}

// Armed reports whether the play has crossed the threshold.
func (t *Tracker) Armed() bool { return t.armed }

// Fired reports whether the play has been taken for dispatch.
func (t *Tracker) Fired() bool { return t.fired }

// Take returns the play for dispatch if it is armed and was not taken
// before. Subsequent calls return false until Begin.
func (t *Tracker) Take() (Play, bool) {
	if !t.active || !t.armed || t.fired {
		return Play{}, false
	}
	t.fired = true
	p := t.play
	p.PlayDuration = t.played
	return p, true
}

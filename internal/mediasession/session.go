// Package mediasession is the operating-system media control surface: the
// metadata shown in system widgets and the transport commands (hardware
// keys, headset buttons, lock screen) sent back to the player.
package mediasession

import "time"

// Action is a transport command.
type Action string

const (
	ActionPlay          Action = "play"
	ActionPause         Action = "pause"
	ActionPreviousTrack Action = "previoustrack"
	ActionNextTrack     Action = "nexttrack"
	ActionSeekTo        Action = "seekto"
	ActionSeekBackward  Action = "seekbackward"
	ActionSeekForward   Action = "seekforward"
)

// ActionDetails accompanies a command. SeekTime is set for seekto and
// SeekOffset for the relative seeks.
type ActionDetails struct {
	Action     Action
	SeekTime   time.Duration
	SeekOffset time.Duration
}

// Handler handles one command.
type Handler func(ActionDetails)

// PlaybackState is the state advertised to the system.
type PlaybackState int

const (
	StateNone PlaybackState = iota
	StatePaused
	StatePlaying
)

func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "none"
	}
}

// Artwork is one cover image.
type Artwork struct {
	URL  string
	Size int
}

// Metadata describes the current track.
type Metadata struct {
	TrackID string
	Title   string
	Artist  string
	Album   string
	Length  time.Duration
	Artwork []Artwork
}

// PositionState is the playback clock shown by system widgets.
type PositionState struct {
	Duration time.Duration
	Position time.Duration
	Rate     float64
}

// Session is a platform media session.
type Session interface {
	SetMetadata(m Metadata)
	SetPlaybackState(s PlaybackState)
	// SetPositionState may fail when the platform rejects inconsistent
	// values; callers ignore the error.
	SetPositionState(p PositionState) error
	// SetActionHandler registers h for a; a nil h clears it.
	SetActionHandler(a Action, h Handler)
}

// Nop is a session that drops everything.
type Nop struct{}

func (Nop) SetMetadata(Metadata)                 {}
func (Nop) SetPlaybackState(PlaybackState)       {}
func (Nop) SetPositionState(PositionState) error { return nil }
func (Nop) SetActionHandler(Action, Handler)     {}

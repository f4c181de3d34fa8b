package queue

import "time"

// Track is a queued track. URL is the playable source resolved by the
// streaming server when the track was queued.
type Track struct {
	ID       string
	URL      string
	Title    string
	Artist   string
	Album    string
	AlbumID  string
	Genre    string
	Duration time.Duration
}

// RepeatMode defines what happens at the ends of the queue.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseRepeatMode parses "off" or "all"; anything else is RepeatOff.
func ParseRepeatMode(s string) RepeatMode {
	if s == "all" {
		return RepeatAll
	}
	return RepeatOff
}

// Snapshot is a copy of the store's state at one instant.
type Snapshot struct {
	Tracks           []Track
	Index            int // -1 if nothing selected
	Playing          bool
	Volume           float64
	CrossfadeSeconds float64
	Shuffle          bool
	Repeat           RepeatMode
}

// Current returns the selected track.
func (s Snapshot) Current() (Track, bool) {
	if s.Index < 0 || s.Index >= len(s.Tracks) {
		return Track{}, false
	}
	return s.Tracks[s.Index], true
}

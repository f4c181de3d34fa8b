package lastfm

import (
	"time"

	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/scrobble"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Album     string
	Duration  time.Duration
	Timestamp time.Time // When playback started
}

// FromPlay converts a completed play.
func FromPlay(p scrobble.Play) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    p.Artist,
		Track:     p.Title,
		Album:     p.Album,
		Duration:  p.Duration,
		Timestamp: p.StartedAt,
	}
}

// FromTrack converts a queue track that just started.
func FromTrack(t queue.Track, startedAt time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    t.Artist,
		Track:     t.Title,
		Album:     t.Album,
		Duration:  t.Duration,
		Timestamp: startedAt,
	}
}

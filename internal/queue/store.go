// Package queue is the playback queue store: the ordered track list, the
// selected index, playback intent and the playback settings the engine reads
// at every decision point.
package queue

import (
	"math/rand/v2"
	"sync"
)

// Store holds the queue. It is safe for concurrent use. Listeners registered
// with OnChange run after every mutation, outside the lock.
type Store struct {
	mu sync.RWMutex

	tracks    []Track
	index     int
	playing   bool
	volume    float64
	crossfade float64
	shuffle   bool
	repeat    RepeatMode

	// upcoming caches the shuffled next index so Upcoming and NextSong
	// agree; -1 means not drawn yet.
	upcoming int
	rng      *rand.Rand

	listeners []func(Snapshot)
}

// New creates an empty store at full volume.
func New() *Store {
	return &Store{
		index:    -1,
		volume:   1,
		upcoming: -1,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // shuffle order
	}
}

// OnChange registers fn to be called with a snapshot after each mutation.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	tracks := make([]Track, len(s.tracks))
	copy(tracks, s.tracks)
	return Snapshot{
		Tracks:           tracks,
		Index:            s.index,
		Playing:          s.playing,
		Volume:           s.volume,
		CrossfadeSeconds: s.crossfade,
		Shuffle:          s.shuffle,
		Repeat:           s.repeat,
	}
}

// Current returns the selected track.
func (s *Store) Current() (Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.tracks) {
		return Track{}, false
	}
	return s.tracks[s.index], true
}

// Upcoming returns the track NextSong would select and its index.
func (s *Store) Upcoming() (Track, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.upcomingLocked()
	if i < 0 {
		return Track{}, -1, false
	}
	return s.tracks[i], i, true
}

func (s *Store) upcomingLocked() int {
	n := len(s.tracks)
	if n == 0 {
		return -1
	}
	if s.index < 0 {
		return 0
	}
	if s.shuffle {
		if n < 2 {
			return -1
		}
		if s.upcoming < 0 || s.upcoming >= n || s.upcoming == s.index {
			next := s.rng.IntN(n - 1)
			if next >= s.index {
				next++
			}
			s.upcoming = next
		}
		return s.upcoming
	}
	if s.index+1 < n {
		return s.index + 1
	}
	if s.repeat == RepeatAll && n > 1 {
		return 0
	}
	return -1
}

// NextSong selects the upcoming track. It is a no-op at the end of the queue.
func (s *Store) NextSong() {
	s.mutate(func() bool {
		i := s.upcomingLocked()
		if i < 0 {
			return false
		}
		s.index = i
		s.upcoming = -1
		return true
	})
}

// PreviousSong selects the previous track in list order.
func (s *Store) PreviousSong() {
	s.mutate(func() bool {
		switch {
		case s.index > 0:
			s.index--
		case s.repeat == RepeatAll && len(s.tracks) > 1:
			s.index = len(s.tracks) - 1
		default:
			return false
		}
		s.upcoming = -1
		return true
	})
}

// JumpTo selects the track at index. Out-of-range indexes are ignored.
func (s *Store) JumpTo(index int) {
	s.mutate(func() bool {
		if index < 0 || index >= len(s.tracks) || index == s.index {
			return false
		}
		s.index = index
		s.upcoming = -1
		return true
	})
}

// Add appends tracks without changing the selection, except that the first
// track is selected when the queue was empty.
func (s *Store) Add(tracks ...Track) {
	s.mutate(func() bool {
		if len(tracks) == 0 {
			return false
		}
		s.tracks = append(s.tracks, tracks...)
		if s.index < 0 {
			s.index = 0
		}
		s.upcoming = -1
		return true
	})
}

// Replace swaps the queue contents and selects index (clamped).
func (s *Store) Replace(tracks []Track, index int) {
	s.mutate(func() bool {
		s.tracks = append([]Track(nil), tracks...)
		switch {
		case len(s.tracks) == 0:
			s.index = -1
		case index < 0 || index >= len(s.tracks):
			s.index = 0
		default:
			s.index = index
		}
		s.upcoming = -1
		return true
	})
}

// Clear empties the queue and drops playback intent.
func (s *Store) Clear() {
	s.mutate(func() bool {
		s.tracks = nil
		s.index = -1
		s.playing = false
		s.upcoming = -1
		return true
	})
}

// SetPlaying records playback intent.
func (s *Store) SetPlaying(playing bool) {
	s.mutate(func() bool {
		if s.playing == playing {
			return false
		}
		s.playing = playing
		return true
	})
}

// SetVolume sets the volume level, clamped to 0..1.
func (s *Store) SetVolume(v float64) {
	v = min(max(v, 0), 1)
	s.mutate(func() bool {
		if s.volume == v {
			return false
		}
		s.volume = v
		return true
	})
}

// SetCrossfade sets the crossfade length in seconds; 0 disables crossfading.
func (s *Store) SetCrossfade(seconds float64) {
	seconds = max(seconds, 0)
	s.mutate(func() bool {
		if s.crossfade == seconds {
			return false
		}
		s.crossfade = seconds
		return true
	})
}

// SetShuffle enables or disables shuffle.
func (s *Store) SetShuffle(enabled bool) {
	s.mutate(func() bool {
		if s.shuffle == enabled {
			return false
		}
		s.shuffle = enabled
		s.upcoming = -1
		return true
	})
}

// SetRepeat sets the repeat mode.
func (s *Store) SetRepeat(mode RepeatMode) {
	s.mutate(func() bool {
		if s.repeat == mode {
			return false
		}
		s.repeat = mode
		return true
	})
}

// mutate runs fn under the lock and notifies listeners if it reports a change.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var snap Snapshot
	var listeners []func(Snapshot)
	if changed {
		snap = s.snapshotLocked()
		listeners = append(listeners, s.listeners...)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

//go:build linux

package mediasession

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"
)

// MPRIS exposes the session over D-Bus.
type MPRIS struct {
	server *server.Server
	logger zerolog.Logger

	mu       sync.Mutex
	handlers map[Action]Handler
	meta     Metadata
	state    PlaybackState
	pos      PositionState
}

// NewMPRIS registers the player on the session bus and starts serving.
func NewMPRIS(logger zerolog.Logger) (*MPRIS, error) {
	m := &MPRIS{
		handlers: make(map[Action]Handler),
		logger:   logger.With().Str("component", "mpris").Logger(),
	}
	m.server = server.NewServer("wavedj", &rootAdapter{}, &playerAdapter{m: m})

	go func() {
		if err := m.server.Listen(); err != nil {
			m.logger.Warn().Err(err).Msg("mpris server stopped")
		}
	}()
	return m, nil
}

// Close releases D-Bus resources.
func (m *MPRIS) Close() error {
	return m.server.Stop()
}

func (m *MPRIS) SetMetadata(md Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = md
}

func (m *MPRIS) SetPlaybackState(s PlaybackState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *MPRIS) SetPositionState(p PositionState) error {
	if p.Position > p.Duration {
		return fmt.Errorf("position %s beyond duration %s", p.Position, p.Duration)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = p
	return nil
}

func (m *MPRIS) SetActionHandler(a Action, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h == nil {
		delete(m.handlers, a)
		return
	}
	m.handlers[a] = h
}

func (m *MPRIS) fire(a Action, d ActionDetails) {
	m.mu.Lock()
	h := m.handlers[a]
	m.mu.Unlock()
	if h == nil {
		return
	}
	d.Action = a
	h(d)
}

func (m *MPRIS) has(a Action) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlers[a] != nil
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error           { return nil }
func (r *rootAdapter) Quit() error            { return nil }
func (r *rootAdapter) CanQuit() (bool, error) { return false, nil }
func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}
func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }
func (r *rootAdapter) Identity() (string, error)   { return "WaveDJ", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter by forwarding
// commands to the registered handlers.
type playerAdapter struct {
	m *MPRIS
}

func (p *playerAdapter) Next() error {
	p.m.fire(ActionNextTrack, ActionDetails{})
	return nil
}

func (p *playerAdapter) Previous() error {
	p.m.fire(ActionPreviousTrack, ActionDetails{})
	return nil
}

func (p *playerAdapter) Pause() error {
	p.m.fire(ActionPause, ActionDetails{})
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.m.mu.Lock()
	playing := p.m.state == StatePlaying
	p.m.mu.Unlock()
	if playing {
		return p.Pause()
	}
	return p.Play()
}

func (p *playerAdapter) Stop() error {
	return p.Pause()
}

func (p *playerAdapter) Play() error {
	p.m.fire(ActionPlay, ActionDetails{})
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	d := time.Duration(offset) * time.Microsecond
	if d < 0 {
		p.m.fire(ActionSeekBackward, ActionDetails{SeekOffset: -d})
		return nil
	}
	p.m.fire(ActionSeekForward, ActionDetails{SeekOffset: d})
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.m.fire(ActionSeekTo, ActionDetails{SeekTime: time.Duration(position) * time.Microsecond})
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	switch p.m.state {
	case StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case StatePaused:
		return types.PlaybackStatusPaused, nil
	case StateNone:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error)  { return 1.0, nil }
func (p *playerAdapter) SetRate(_ float64) error { return nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	p.m.mu.Lock()
	md := p.m.meta
	p.m.mu.Unlock()
	if md.TrackID == "" {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(md.TrackID)),
		Length:  types.Microseconds(md.Length.Microseconds()),
		Title:   md.Title,
		Artist:  []string{md.Artist},
		Album:   md.Album,
	}
	// Largest artwork wins.
	for _, art := range md.Artwork {
		meta.ArtUrl = art.URL
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error)  { return 1.0, nil }
func (p *playerAdapter) SetVolume(_ float64) error { return nil }

func (p *playerAdapter) Position() (int64, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	return p.m.pos.Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }
func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error)     { return p.m.has(ActionNextTrack), nil }
func (p *playerAdapter) CanGoPrevious() (bool, error) { return p.m.has(ActionPreviousTrack), nil }
func (p *playerAdapter) CanPlay() (bool, error)       { return p.m.has(ActionPlay), nil }
func (p *playerAdapter) CanPause() (bool, error)      { return p.m.has(ActionPause), nil }
func (p *playerAdapter) CanSeek() (bool, error)       { return p.m.has(ActionSeekTo), nil }
func (p *playerAdapter) CanControl() (bool, error)    { return true, nil }

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}

// Verify MPRIS implements Session at compile time.
var _ Session = (*MPRIS)(nil)

// internal/app/app.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavedj/internal/engine"
	"github.com/llehouerou/wavedj/internal/keymap"
	"github.com/llehouerou/wavedj/internal/queue"
)

// Player is the slice of the engine the shell drives.
type Player interface {
	TogglePlayback()
	Next()
	Previous()
	Seek(pos time.Duration)
	SetVisible(visible bool)
	Status() engine.Status
}

// Queue is the slice of the queue store the shell drives.
type Queue interface {
	Snapshot() queue.Snapshot
	SetVolume(v float64)
	SetCrossfade(seconds float64)
	SetShuffle(enabled bool)
	SetRepeat(mode queue.RepeatMode)
}

// LastfmInfo describes the linked Last.fm account.
type LastfmInfo struct {
	Username string
	LinkedAt time.Time
}

// Model is the root shell model.
type Model struct {
	Player  Player
	Queue   Queue
	Keys    *keymap.Resolver
	Lastfm  *LastfmInfo
	Status  engine.Status
	Snap    queue.Snapshot
	Notice  string // cleared by the next key
	Help    bool
	Focused bool
	Width   int
	Height  int
}

// New creates the shell model.
func New(p Player, q Queue) Model {
	return Model{
		Player:  p,
		Queue:   q,
		Keys:    keymap.NewResolver(keymap.All),
		Focused: true,
		Status:  p.Status(),
		Snap:    q.Snapshot(),
	}
}

// WithLastfm returns m showing the linked account.
func (m Model) WithLastfm(info *LastfmInfo) Model {
	m.Lastfm = info
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return TickCmd()
}

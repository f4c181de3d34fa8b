// internal/app/update.go
package app

import (
	"fmt"
	"math"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/wavedj/internal/keymap"
	"github.com/llehouerou/wavedj/internal/queue"
)

const (
	seekStep   = 10 * time.Second
	volumeStep = 0.05
)

// crossfadeSteps are the lengths the crossfade key cycles through.
var crossfadeSteps = []float64{0, 3, 5, 8}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case tea.FocusMsg:
		m.Focused = true
		m.Player.SetVisible(true)
		return m, nil

	case tea.BlurMsg:
		m.Focused = false
		m.Player.SetVisible(false)
		return m, nil

	case TickMsg:
		m.refresh()
		return m, TickCmd()

	case NoticeMsg:
		m.Notice = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) refresh() {
	m.Status = m.Player.Status()
	m.Snap = m.Queue.Snapshot()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.Keys.Resolve(msg.String())
	if action == "" {
		return m, nil
	}
	m.Notice = ""
	snap := m.Queue.Snapshot()

	switch action {
	case keymap.ActionQuit:
		return m, tea.Quit
	case keymap.ActionHelp:
		m.Help = !m.Help
	case keymap.ActionPlayPause:
		m.Player.TogglePlayback()
	case keymap.ActionNextTrack:
		m.Player.Next()
	case keymap.ActionPrevTrack:
		m.Player.Previous()
	case keymap.ActionSeekForward:
		m.Player.Seek(m.Player.Status().Position + seekStep)
	case keymap.ActionSeekBack:
		m.Player.Seek(max(m.Player.Status().Position-seekStep, 0))
	case keymap.ActionVolumeUp:
		m.Queue.SetVolume(stepVolume(snap.Volume, volumeStep))
	case keymap.ActionVolumeDown:
		m.Queue.SetVolume(stepVolume(snap.Volume, -volumeStep))
	case keymap.ActionCycleCrossfade:
		next := nextCrossfade(snap.CrossfadeSeconds)
		m.Queue.SetCrossfade(next)
		if next == 0 {
			m.Notice = "Crossfade off"
		} else {
			m.Notice = fmt.Sprintf("Crossfade %gs", next)
		}
	case keymap.ActionToggleShuffle:
		m.Queue.SetShuffle(!snap.Shuffle)
	case keymap.ActionCycleRepeat:
		mode := queue.RepeatAll
		if snap.Repeat == queue.RepeatAll {
			mode = queue.RepeatOff
		}
		m.Queue.SetRepeat(mode)
		m.Notice = "Repeat " + mode.String()
	}
	m.refresh()
	return m, nil
}

// stepVolume moves v by d on a 5% grid within [0, 1].
func stepVolume(v, d float64) float64 {
	steps := math.Round((v + d) / volumeStep)
	return min(max(steps*volumeStep, 0), 1)
}

// nextCrossfade returns the first step above current, wrapping to off.
func nextCrossfade(current float64) float64 {
	i := slices.IndexFunc(crossfadeSteps, func(s float64) bool { return s > current })
	if i < 0 {
		return crossfadeSteps[0]
	}
	return crossfadeSteps[i]
}

package app

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedj/internal/engine"
	"github.com/llehouerou/wavedj/internal/icons"
	"github.com/llehouerou/wavedj/internal/queue"
)

type fakePlayer struct {
	status  engine.Status
	toggles int
	next    int
	prev    int
	seeks   []time.Duration
	visible []bool
}

func (f *fakePlayer) TogglePlayback()         { f.toggles++ }
func (f *fakePlayer) Next()                   { f.next++ }
func (f *fakePlayer) Previous()               { f.prev++ }
func (f *fakePlayer) Seek(pos time.Duration)  { f.seeks = append(f.seeks, pos) }
func (f *fakePlayer) SetVisible(visible bool) { f.visible = append(f.visible, visible) }
func (f *fakePlayer) Status() engine.Status   { return f.status }

func newModel(t *testing.T) (Model, *fakePlayer, *queue.Store) {
	t.Helper()
	p := &fakePlayer{}
	q := queue.New()
	q.Replace([]queue.Track{
		{ID: "s1", Title: "Blue", Artist: "Band", Duration: 4 * time.Minute},
		{ID: "s2", Title: "Red", Artist: "Band", Duration: 3 * time.Minute},
	}, 0)
	return New(p, q), p, q
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestUpdate_TransportKeys(t *testing.T) {
	m, p, _ := newModel(t)
	p.status.Position = 5 * time.Second

	press(t, m,
		tea.KeyMsg{Type: tea.KeySpace},
		runes("n"),
		runes("p"),
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyLeft},
	)

	assert.Equal(t, 1, p.toggles)
	assert.Equal(t, 1, p.next)
	assert.Equal(t, 1, p.prev)
	assert.Equal(t, []time.Duration{15 * time.Second, 0}, p.seeks, "seek back clamps at zero")
}

func TestUpdate_Quit(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestUpdate_FocusDrivesVisibility(t *testing.T) {
	m, p, _ := newModel(t)

	m = press(t, m, tea.BlurMsg{})
	assert.False(t, m.Focused)
	m = press(t, m, tea.FocusMsg{})
	assert.True(t, m.Focused)
	assert.Equal(t, []bool{false, true}, p.visible)
}

func TestUpdate_Volume(t *testing.T) {
	m, _, q := newModel(t)
	q.SetVolume(0.97)

	press(t, m, runes("+"))
	assert.InDelta(t, 1.0, q.Snapshot().Volume, 1e-9, "clamped")

	press(t, m, runes("-"), runes("-"))
	assert.InDelta(t, 0.9, q.Snapshot().Volume, 1e-9)
}

func TestUpdate_CycleCrossfade(t *testing.T) {
	m, _, q := newModel(t)
	q.SetCrossfade(5)

	m = press(t, m, runes("x"))
	assert.InDelta(t, 8.0, q.Snapshot().CrossfadeSeconds, 1e-9)
	assert.Equal(t, "Crossfade 8s", m.Notice)

	m = press(t, m, runes("x"))
	assert.Zero(t, q.Snapshot().CrossfadeSeconds)
	assert.Equal(t, "Crossfade off", m.Notice)

	press(t, m, runes("x"))
	assert.InDelta(t, 3.0, q.Snapshot().CrossfadeSeconds, 1e-9)
}

func TestNextCrossfade_OffGrid(t *testing.T) {
	assert.InDelta(t, 5.0, nextCrossfade(4), 1e-9)
	assert.Zero(t, nextCrossfade(12))
}

func TestUpdate_ShuffleAndRepeat(t *testing.T) {
	m, _, q := newModel(t)

	m = press(t, m, runes("s"), runes("r"))
	assert.True(t, q.Snapshot().Shuffle)
	assert.Equal(t, queue.RepeatAll, q.Snapshot().Repeat)
	assert.Equal(t, "Repeat all", m.Notice)

	m = press(t, m, runes("r"))
	assert.Equal(t, queue.RepeatOff, q.Snapshot().Repeat)

	m = press(t, m, runes("z"))
	assert.Equal(t, "Repeat off", m.Notice, "unbound keys keep the notice")
}

func TestUpdate_TickRefreshes(t *testing.T) {
	m, p, _ := newModel(t)
	p.status = engine.Status{Position: 42 * time.Second, Playing: true}

	next, cmd := m.Update(TickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 42*time.Second, next.(Model).Status.Position)
}

func TestView(t *testing.T) {
	icons.Init("none")
	m, p, _ := newModel(t)
	p.status = engine.Status{Position: 83 * time.Second, Playing: true}
	m = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 10}, TickMsg(time.Now()))
	m = m.WithLastfm(&LastfmInfo{Username: "alice", LinkedAt: time.Now().Add(-3 * time.Hour)})

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "wavedj")
	assert.Contains(t, out, "last.fm: alice · linked 3 hours ago")
	assert.Contains(t, out, "Blue")
	assert.Contains(t, out, "? help")

	p.status.LastError = errors.New("connection reset")
	m = press(t, m, TickMsg(time.Now()), runes("?"))
	out = ansi.Strip(m.View())
	assert.Contains(t, out, "Failed to load track: connection reset")
	assert.Contains(t, out, "space play/pause")
}

func TestView_EmptyQueue(t *testing.T) {
	m := New(&fakePlayer{}, queue.New())
	assert.Contains(t, ansi.Strip(m.View()), "Queue is empty")
}

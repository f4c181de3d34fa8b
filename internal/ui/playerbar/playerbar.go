// Package playerbar renders the two-deck player bar.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavedj/internal/deck"
	"github.com/llehouerou/wavedj/internal/engine"
	"github.com/llehouerou/wavedj/internal/icons"
	"github.com/llehouerou/wavedj/internal/queue"
	"github.com/llehouerou/wavedj/internal/ui/render"
	"github.com/llehouerou/wavedj/internal/ui/styles"
)

// Height is the rendered height: border, track line, deck line, border.
const Height = 4

// State holds everything needed to render the player bar.
type State struct {
	Title    string
	Artist   string
	Album    string
	Index    int // 0-based; -1 when nothing is queued
	Total    int
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Loading  bool

	ActiveDeck deck.ID
	Phase      engine.Phase
	Progress   float64
	Next       string // incoming title while crossfading

	Volume           float64
	CrossfadeSeconds float64
	Shuffle          bool
	Repeat           queue.RepeatMode
}

// NewState combines an engine status with the queue it plays.
func NewState(st engine.Status, snap queue.Snapshot) State {
	s := State{
		Index:            snap.Index,
		Total:            len(snap.Tracks),
		Position:         st.Position,
		Duration:         st.Duration,
		Playing:          st.Playing,
		Loading:          st.Loading,
		ActiveDeck:       st.ActiveDeck,
		Phase:            st.Phase,
		Progress:         st.Progress,
		Volume:           snap.Volume,
		CrossfadeSeconds: snap.CrossfadeSeconds,
		Shuffle:          snap.Shuffle,
		Repeat:           snap.Repeat,
	}
	if t, ok := snap.Current(); ok {
		s.Title, s.Artist, s.Album = t.Title, t.Artist, t.Album
		if s.Duration == 0 {
			s.Duration = t.Duration
		}
	}
	if s.Crossfading() {
		if t, ok := upcoming(snap); ok {
			s.Next = t.Title
		}
	}
	return s
}

// Crossfading reports whether a crossfade owns the decks.
func (s State) Crossfading() bool {
	return s.Phase == engine.PhasePriming || s.Phase == engine.PhaseRamping
}

// Render returns the player bar for the given width, or an empty string
// when nothing is queued.
func Render(s State, width int) string {
	if s.Total == 0 || s.Index < 0 {
		return ""
	}
	inner := max(width-6, 10)

	lines := []string{
		trackLine(s, inner),
		deckLine(s, inner),
	}
	return styles.T().S().Bar.Padding(0, 2).Width(width - 2).Render(strings.Join(lines, "\n"))
}

func trackLine(s State, width int) string {
	st := styles.T().S()
	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	var info []string
	if s.Artist != "" {
		info = append(info, s.Artist)
	}
	if s.Album != "" {
		info = append(info, s.Album)
	}

	pos := metaStyle().Render(fmt.Sprintf("%d/%d", s.Index+1, s.Total))
	left := st.Title.Render(render.Truncate(title, width/2))
	if len(info) > 0 {
		left += "   " + st.Muted.Render(render.Truncate(strings.Join(info, " · "), width/2-lipgloss.Width(pos)-6))
	}
	return render.Row(left, pos, width)
}

func deckLine(s State, width int) string {
	t := styles.T()
	status := icons.Status(s.Playing, s.Loading)
	label := lipgloss.NewStyle().Foreground(t.Deck(s.ActiveDeck == deck.A)).Bold(true).Render("Deck " + s.ActiveDeck.String())
	right := settings(s)
	fixed := lipgloss.Width(status) + lipgloss.Width(label) + lipgloss.Width(right) + 6
	barWidth := max(width-fixed, 5)

	var middle string
	if s.Crossfading() {
		middle = crossfadeSegment(s, barWidth)
	} else {
		middle = RenderProgressBar(s.Position, s.Duration, barWidth)
	}
	return render.Row(status+"  "+label+"  "+middle, right, width)
}

func crossfadeSegment(s State, width int) string {
	t := styles.T()
	from := s.ActiveDeck == deck.A
	to := t.Deck(!from)
	prefix := icons.Current().Crossfade + " "
	next := render.Truncate(s.Next, max(width/3, 1))
	meterWidth := max(width-lipgloss.Width(prefix)-lipgloss.Width(next)-1, 3)
	meter := styles.CrossfadeMeter(s.Progress, meterWidth, t.Deck(from), to)
	return prefix + meter + " " + lipgloss.NewStyle().Foreground(to).Render(next)
}

func settings(s State) string {
	ic := icons.Current()
	parts := []string{fmt.Sprintf("%s %3d%%", ic.Volume, int(s.Volume*100+0.5))}
	if s.CrossfadeSeconds > 0 {
		parts = append(parts, fmt.Sprintf("%s %gs", ic.Crossfade, s.CrossfadeSeconds))
	}
	if s.Shuffle {
		parts = append(parts, ic.Shuffle)
	}
	if s.Repeat == queue.RepeatAll {
		parts = append(parts, ic.RepeatAll)
	}
	return metaStyle().Render(strings.Join(parts, "  "))
}

func upcoming(snap queue.Snapshot) (queue.Track, bool) {
	next := snap.Index + 1
	if next >= len(snap.Tracks) {
		if snap.Repeat != queue.RepeatAll || len(snap.Tracks) == 0 {
			return queue.Track{}, false
		}
		next = 0
	}
	return snap.Tracks[next], true
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// internal/app/view.go
package app

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/wavedj/internal/errmsg"
	"github.com/llehouerou/wavedj/internal/ui/playerbar"
	"github.com/llehouerou/wavedj/internal/ui/render"
	"github.com/llehouerou/wavedj/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	width := m.Width
	if width <= 0 {
		width = 80
	}
	st := styles.T().S()

	lines := []string{m.header(width)}

	if bar := playerbar.Render(playerbar.NewState(m.Status, m.Snap), width); bar != "" {
		lines = append(lines, bar)
	} else {
		lines = append(lines, st.Muted.Render("  Queue is empty"))
	}

	switch {
	case m.Status.LastError != nil:
		lines = append(lines, st.Error.Render("  "+render.Truncate(errmsg.Format(errmsg.OpTrackLoad, m.Status.LastError), width-2)))
	case m.Notice != "":
		lines = append(lines, st.Warning.Render("  "+render.Truncate(m.Notice, width-2)))
	}

	if m.Help {
		for _, ctx := range []string{"playback", "settings", "global"} {
			lines = append(lines, st.Subtle.Render("  "+render.Truncate(m.Keys.HelpLine(ctx), width-2)))
		}
	} else {
		lines = append(lines, st.Subtle.Render("  ? help · q quit"))
	}

	return strings.Join(lines, "\n")
}

func (m Model) header(width int) string {
	t := styles.T()
	title := styles.ApplyGradient(" wavedj", t.DeckA, t.DeckB)

	var right []string
	if m.Lastfm != nil {
		right = append(right, "last.fm: "+m.Lastfm.Username+" · linked "+humanize.Time(m.Lastfm.LinkedAt))
	}
	if !m.Focused {
		right = append(right, "(background)")
	}
	return render.Row(title, t.S().Subtle.Render(strings.Join(right, "  ")), width)
}

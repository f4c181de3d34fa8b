package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderProgressBar renders position and duration around a bar.
// Format: 1:23 ━━━━━───── 4:56
// width is the width of the whole line, times and separating spaces
// included. Below a 3-cell bar it falls back to "1:23 / 4:56".
func RenderProgressBar(position, duration time.Duration, width int) string {
	posStr := formatDuration(position)
	durStr := formatDuration(duration)

	barWidth := width - lipgloss.Width(posStr) - lipgloss.Width(durStr) - 2
	if barWidth < 3 {
		return posStr + " / " + durStr
	}

	var ratio float64
	if duration > 0 {
		ratio = float64(position) / float64(duration)
	}
	filled := min(max(int(float64(barWidth)*ratio), 0), barWidth)

	bar := progressBarFilled().Render(strings.Repeat("━", filled)) +
		progressBarEmpty().Render(strings.Repeat("─", barWidth-filled))
	return progressTimeStyle().Render(posStr) + " " + bar + " " + progressTimeStyle().Render(durStr)
}

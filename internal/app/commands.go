// internal/app/commands.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickInterval is how often the bar refreshes position and crossfade progress.
const tickInterval = 200 * time.Millisecond

// TickMsg is sent periodically to refresh the player bar.
type TickMsg time.Time

// NoticeMsg shows a one-line message under the player bar.
type NoticeMsg string

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

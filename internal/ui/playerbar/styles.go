package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/wavedj/internal/ui/styles"
)

func metaStyle() lipgloss.Style {
	return styles.T().S().Subtle
}

func progressBarFilled() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(styles.T().Success)
}

func progressBarEmpty() lipgloss.Style {
	return styles.T().S().Subtle
}

func progressTimeStyle() lipgloss.Style {
	return styles.T().S().Muted
}

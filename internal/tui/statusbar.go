package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(termCount int, filter string, updated time.Time, width int, filtering bool, loading bool) string {
	accent := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := fmt.Sprintf(" %d terms", termCount)
	if filter != "" {
		left += " · " + accent.Render("/"+filter)
	}
	if !updated.IsZero() {
		left += " · updated " + relativeTime(updated)
	}

	right := " ←/→ bucket  ↑/↓ term  tab table  / filter  ? help  q quit "

	if filtering {
		right = " esc clear  enter apply "
	}
	if loading {
		left += " (recomputing...)"
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

package tui

import (
	"fmt"
	"strings"
	"time"
)

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

type listRow struct {
	term  string
	value string
}

func renderListItem(r listRow, selected bool, width int) string {
	if width < 10 {
		width = 30
	}
	value := itemValueStyle.Render(r.value)
	nameWidth := width - len(r.value) - 3

	var name string
	if selected {
		name = itemSelectedStyle.Render("> " + padRight(truncateStr(r.term, nameWidth), nameWidth))
	} else {
		name = itemTitleStyle.Render("  " + padRight(truncateStr(r.term, nameWidth), nameWidth))
	}
	return name + " " + value
}

func padRight(s string, n int) string {
	if gap := n - len([]rune(s)); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func renderList(rows []listRow, cursor int, height int, width int) string {
	if len(rows) == 0 {
		return lipglossCenter("No matching terms", width, height)
	}

	visible := height
	if visible < 1 {
		visible = 1
	}

	// Calculate scroll offset
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(rows) {
		end = len(rows)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(rows[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}

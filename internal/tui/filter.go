package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/techpulse/internal/bucket"
)

// filterTerms keeps the terms containing query, case-insensitively. An empty
// query keeps everything.
func filterTerms(terms []string, query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return terms
	}
	var out []string
	for _, t := range terms {
		if strings.Contains(strings.ToLower(t), query) {
			out = append(out, t)
		}
	}
	return out
}

// renderBucketBar draws the bucket tabs, keeping the active one visible when
// they do not all fit.
func renderBucketBar(scheme bucket.Scheme, keys []bucket.Key, active int, width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	parts := make([]string, len(keys))
	for i, k := range keys {
		style := tabInactiveStyle
		if i == active {
			style = tabActiveStyle
		}
		parts[i] = style.Render(scheme.Label(k))
	}

	// Drop tabs from the left until the active one fits.
	start := 0
	for {
		row := joinUntil(parts[start:], sep, width)
		if active < start+row.count || start >= active {
			barStyle := lipgloss.NewStyle().
				Background(colorSurface).
				Width(width).
				PaddingLeft(1)
			return barStyle.Render(row.text)
		}
		start++
	}
}

type joined struct {
	text  string
	count int
}

func joinUntil(parts []string, sep string, width int) joined {
	var j joined
	for i, part := range parts {
		candidate := j.text
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && j.text != "" {
			break
		}
		j.text = candidate
		j.count++
	}
	return j
}

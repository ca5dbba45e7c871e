package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/forecast"
	"github.com/matheuskafuri/techpulse/internal/report"
)

const historyWidth = 20

func renderDetail(t *forecast.Tables, key bucket.Key, term string, width, height int) string {
	if t == nil || term == "" {
		return lipglossCenter("Select a term", width, height)
	}
	p, ok := t.Next(key, term)
	if !ok {
		return lipglossCenter("No data for this bucket", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	line := func(label, value string, style lipgloss.Style) string {
		return detailLabelStyle.Render(label) + style.Render(value)
	}

	title := detailTitleStyle.Width(contentWidth).Render(p.Term + " in " + t.Scheme.Label(p.Observed))
	stats := lipgloss.JoinVertical(lipgloss.Left,
		line("titles", strconv.Itoa(p.ArticleCount), detailValueStyle),
		line("titles mentioning", strconv.Itoa(p.TermCount), detailValueStyle),
		line("share", report.Percent(p.Share), detailValueStyle),
		line("P(mention in "+t.Scheme.Label(p.Target)+")", report.Percent(p.Probability), detailHighlightStyle),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, stats, "", helpDimStyle.Render("share by bucket"), renderHistory(t, p.Term, key))

	lines := strings.Split(content, "\n")
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// renderHistory draws one bar per bucket, scaled to the largest share.
func renderHistory(t *forecast.Tables, term string, current bucket.Key) string {
	var top float64
	for _, k := range t.Buckets {
		if s := t.Shares[forecast.Cell{Bucket: k, Term: term}]; s > top {
			top = s
		}
	}

	var b strings.Builder
	for i, k := range t.Buckets {
		share := t.Shares[forecast.Cell{Bucket: k, Term: term}]
		n := 0
		if top > 0 {
			n = int(share / top * historyWidth)
		}
		label := padRight(t.Scheme.Label(k), 9)
		if k == current {
			label = itemSelectedStyle.Render(label)
		} else {
			label = helpDimStyle.Render(label)
		}
		b.WriteString(label + historyBarStyle.Render(strings.Repeat("█", n)) + " " + report.Percent(share))
		if i < len(t.Buckets)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Package report renders pipeline results for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/correlate"
	"github.com/matheuskafuri/techpulse/internal/forecast"
	"github.com/matheuskafuri/techpulse/internal/rank"
)

// Kind selects which of the four tables to render.
type Kind string

const (
	Probability Kind = "probability"
	Share       Kind = "share"
	Terms       Kind = "terms"
	Articles    Kind = "articles"
)

func Kinds() []Kind { return []Kind{Probability, Share, Terms, Articles} }

func ParseKind(s string) (Kind, error) {
	if s == "" {
		return Probability, nil
	}
	for _, k := range Kinds() {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown table %q (want probability, share, terms or articles)", s)
}

// Title is the heading shown above a table.
func (k Kind) Title() string {
	switch k {
	case Share:
		return "Share of titles mentioning each term"
	case Terms:
		return "Titles mentioning each term"
	case Articles:
		return "Titles per bucket"
	default:
		return "Probability of at least one mention in the next period"
	}
}

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	labelStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(colorAccent)
	dimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// Cell formats one table value.
func Cell(t *forecast.Tables, kind Kind, c forecast.Cell) string {
	switch kind {
	case Share:
		return Percent(t.Shares[c])
	case Terms:
		return strconv.Itoa(t.TermCounts[c])
	case Articles:
		return strconv.Itoa(t.ArticleCounts[c])
	default:
		return Percent(t.Probabilities[c])
	}
}

func Percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 2, 64) + "%"
}

// Grid renders one table with buckets as rows and terms as columns. The
// articles table has a single column since the count does not vary by term.
func Grid(w io.Writer, t *forecast.Tables, kind Kind) error {
	terms := t.Vocabulary.Terms()
	headers := append([]string{"bucket"}, terms...)
	if kind == Articles {
		headers = []string{"bucket", "titles"}
	}

	rows := make([][]string, 0, len(t.Buckets))
	for _, k := range t.Buckets {
		row := []string{t.Scheme.Label(k)}
		if kind == Articles {
			row = append(row, Cell(t, kind, forecast.Cell{Bucket: k, Term: terms[0]}))
		} else {
			for _, term := range terms {
				row = append(row, Cell(t, kind, forecast.Cell{Bucket: k, Term: term}))
			}
		}
		rows = append(rows, row)
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})

	_, err := fmt.Fprintf(w, "%s\n%s\n", titleStyle.Render(kind.Title()), tbl.String())
	return err
}

// Estimate writes a one-line prediction for a single term.
func Estimate(w io.Writer, scheme bucket.Scheme, p forecast.Prediction) error {
	_, err := fmt.Fprintf(w, "%s in %s: %d of %d titles (%s). P(at least one in %s) = %s\n",
		titleStyle.Render(p.Term),
		scheme.Label(p.Observed),
		p.TermCount, p.ArticleCount,
		Percent(p.Share),
		scheme.Label(p.Target),
		Percent(p.Probability),
	)
	return err
}

// Rejected summarises records excluded from the run.
func Rejected(w io.Writer, t *forecast.Tables) error {
	if len(t.Rejected) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d records skipped for unreadable timestamps", len(t.Rejected))))
	return err
}

// Top lists ranked stories.
func Top(w io.Writer, ranked []rank.Ranked) error {
	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(r.Score, 'f', 3, 64),
			strconv.Itoa(r.Descendants),
			r.TitleText(),
		})
	}
	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "rank", "comments", "title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 {
				return lipgloss.NewStyle().Padding(0, 1)
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, tbl.String())
	return err
}

// Correlation writes the hour-of-day table and the coefficient.
func Correlation(w io.Writer, res *correlate.Result) error {
	rows := make([][]string, 0, len(res.Hours))
	for _, h := range res.Hours {
		rows = append(rows, []string{
			fmt.Sprintf("%02d:00", h.Hour),
			strconv.Itoa(h.Articles),
			strconv.Itoa(h.Descendants),
			strconv.FormatFloat(h.Proximity, 'f', 1, 64),
			strconv.FormatFloat(h.ProximityNorm, 'f', 3, 64),
			strconv.FormatFloat(h.DescendantsNorm, 'f', 3, 64),
		})
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("hour", "stories", "comments", "proximity", "proximity (norm)", "comments (norm)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	coeff := "undefined"
	if res.Defined {
		coeff = strconv.FormatFloat(res.Correlation, 'f', 3, 64)
	}
	title := fmt.Sprintf("Proximity to %02d:00 (%s) vs. comments", res.TargetHour, res.Location)
	_, err := fmt.Fprintf(w, "%s\n%s\nCorrelation: %s\n", titleStyle.Render(title), tbl.String(), coeff)
	return err
}

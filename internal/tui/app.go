package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/techpulse/internal/bucket"
	"github.com/matheuskafuri/techpulse/internal/forecast"
	"github.com/matheuskafuri/techpulse/internal/report"
)

type mode int

const (
	modeNormal mode = iota
	modeFilter
	modeHelp
)

type App struct {
	tables *forecast.Tables
	reload func() (*forecast.Tables, error)

	bucketIdx int
	cursor    int
	kind      report.Kind
	mode      mode

	width  int
	height int

	filterInput textinput.Model
	spinner     spinner.Model

	loading bool
	updated time.Time
	err     error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Tables *forecast.Tables
	// Reload recomputes the tables, for example after new articles were
	// stored. Optional.
	Reload func() (*forecast.Tables, error)
	// Bucket preselects a bucket when it is present in Tables.
	Bucket *bucket.Key
	Kind   report.Kind
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Filter terms..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	kind := opts.Kind
	if kind == "" {
		kind = report.Probability
	}

	a := &App{
		tables:      opts.Tables,
		reload:      opts.Reload,
		kind:        kind,
		filterInput: ti,
		spinner:     sp,
		updated:     time.Now(),
	}
	if a.tables != nil && len(a.tables.Buckets) > 0 {
		a.bucketIdx = len(a.tables.Buckets) - 1
		if opts.Bucket != nil {
			for i, k := range a.tables.Buckets {
				if k == *opts.Bucket {
					a.bucketIdx = i
				}
			}
		}
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) reloadCmd() tea.Cmd {
	reload := a.reload
	return func() tea.Msg {
		t, err := reload()
		if err != nil {
			return loadErrMsg{err: err}
		}
		return tablesLoadedMsg{tables: t}
	}
}

// terms returns the vocabulary terms passing the current filter.
func (a *App) terms() []string {
	if a.tables == nil {
		return nil
	}
	return filterTerms(a.tables.Vocabulary.Terms(), a.filterInput.Value())
}

func (a *App) currentBucket() (bucket.Key, bool) {
	if a.tables == nil || a.bucketIdx >= len(a.tables.Buckets) {
		return 0, false
	}
	return a.tables.Buckets[a.bucketIdx], true
}

func (a *App) currentTerm() string {
	terms := a.terms()
	if a.cursor >= len(terms) {
		return ""
	}
	return terms[a.cursor]
}

func (a *App) clampCursor() {
	if n := len(a.terms()); a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case tablesLoadedMsg:
		a.loading = false
		a.tables = msg.tables
		a.updated = time.Now()
		if a.bucketIdx >= len(a.tables.Buckets) {
			a.bucketIdx = max(0, len(a.tables.Buckets)-1)
		}
		a.clampCursor()
		return a, nil

	case loadErrMsg:
		a.loading = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.cursor < len(a.terms())-1 {
			a.cursor++
		}
		return a, nil
	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}
		return a, nil
	case "l", "right":
		if a.tables != nil && a.bucketIdx < len(a.tables.Buckets)-1 {
			a.bucketIdx++
		}
		return a, nil
	case "h", "left":
		if a.bucketIdx > 0 {
			a.bucketIdx--
		}
		return a, nil
	case "tab":
		a.kind = nextKind(a.kind)
		return a, nil
	case "/":
		a.mode = modeFilter
		a.filterInput.Focus()
		return a, textinput.Blink
	case "esc":
		a.filterInput.SetValue("")
		a.clampCursor()
		return a, nil
	case "r":
		if a.reload != nil && !a.loading {
			a.loading = true
			return a, tea.Batch(a.reloadCmd(), a.spinner.Tick)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.filterInput.SetValue("")
		a.filterInput.Blur()
		a.clampCursor()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.filterInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.filterInput, cmd = a.filterInput.Update(msg)
	a.cursor = 0
	return a, cmd
}

func nextKind(k report.Kind) report.Kind {
	kinds := report.Kinds()
	for i, kk := range kinds {
		if kk == k {
			return kinds[(i+1)%len(kinds)]
		}
	}
	return kinds[0]
}

func (a *App) rows(key bucket.Key) []listRow {
	terms := a.terms()
	rows := make([]listRow, len(terms))
	for i, term := range terms {
		rows[i] = listRow{
			term:  term,
			value: report.Cell(a.tables, a.kind, forecast.Cell{Bucket: key, Term: term}),
		}
	}
	return rows
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  techpulse")
	}
	if a.mode == modeHelp {
		return a.renderHelp()
	}

	key, ok := a.currentBucket()
	if !ok {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			helpDimStyle.Render("No articles to analyse. Run `techpulse fetch` or `techpulse import` first."))
	}

	headerHeight := 1
	barHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - barHeight - statusHeight - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := int(float64(a.width) * 0.35)
	detailWidth := a.width - listWidth

	headerLeft := headerStyle.Render("techpulse")
	headerRight := headerKindStyle.Render(a.kind.Title() + " ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	bar := renderBucketBar(a.tables.Scheme, a.tables.Buckets, a.bucketIdx, a.width)
	if a.mode == modeFilter {
		bar = a.filterInput.View()
	}

	listContent := renderList(a.rows(key), a.cursor, contentHeight, listWidth-4)
	listPane := listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	detail := renderDetail(a.tables, key, a.currentTerm(), detailWidth-4, contentHeight)
	detailPane := detailPaneStyle.Width(detailWidth - 2).Height(contentHeight).Render(detail)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	status := renderStatusBar(len(a.terms()), a.filterInput.Value(), a.updated, a.width, a.mode == modeFilter, a.loading)
	if a.loading {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, bar, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("techpulse")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  ←/→, h/l      Previous / next bucket\n" +
		"  ↑/↓, k/j      Move between terms\n" +
		"  tab           Cycle probability, share, terms, titles\n\n" +
		dim.Render("Actions") + "\n" +
		"  /             Filter terms\n" +
		"  esc           Clear filter\n" +
		"  r             Recompute from the article store\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the explorer.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

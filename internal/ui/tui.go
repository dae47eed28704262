// Package ui provides an optional read-only terminal viewer for
// features documents.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/featurecheck/internal/features"
	"github.com/nibzard/featurecheck/internal/validator"
)

// maxFindings bounds the findings listed on screen.
const maxFindings = 10

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiModel)

// WithRefreshInterval sets how often the file is reloaded.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(m *tuiModel) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// RunTUI starts the viewer for the features file at path.
func RunTUI(ctx context.Context, path string, opts validator.Options, tuiOpts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(path, opts, tuiOpts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	path         string
	opts         validator.Options
	data         *tuiData
	tickInterval time.Duration
	filter       features.Status
	showHelp     bool
	showFindings bool
}

// tuiData is one load-and-validate snapshot of the file.
type tuiData struct {
	doc    *features.Document
	result *validator.Result
	counts map[features.Status]int
	total  int
	done   int
}

type tickMsg time.Time

func newTUIModel(path string, opts validator.Options, tuiOpts ...TUIOption) *tuiModel {
	m := &tuiModel{
		path:         path,
		opts:         opts,
		tickInterval: time.Second,
		showFindings: true,
	}
	for _, o := range tuiOpts {
		o(m)
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "f":
			m.showFindings = !m.showFindings
		case "h", "?":
			m.showHelp = !m.showHelp
		case "1":
			m.filter = features.StatusPending
		case "2":
			m.filter = features.StatusInProgress
		case "3":
			m.filter = features.StatusComplete
		case "4":
			m.filter = features.StatusBlocked
		case "0":
			m.filter = ""
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.path)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeValidation(&b, m.data.result, m.showFindings)
	if m.data.doc != nil {
		writeOverview(&b, m.data)
		writeFeatures(&b, m.data.doc, m.filter)
	}
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	doc, res := validator.ValidateFile(m.path, m.opts)
	m.data = buildTUIData(doc, res)
}

func buildTUIData(doc *features.Document, res *validator.Result) *tuiData {
	data := &tuiData{doc: doc, result: res}
	if doc != nil {
		data.counts = doc.StatusCounts()
		data.total, data.done = validator.Counts(doc)
	}
	return data
}

func writeTitle(b *strings.Builder, path string) {
	title := "featurecheck: " + path
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeValidation(b *strings.Builder, res *validator.Result, showFindings bool) {
	errs, warns := res.Errors(), res.Warnings()
	verdict := "PASS"
	switch {
	case !res.Valid:
		verdict = "FAIL"
	case len(warns) > 0:
		verdict = "PASS (with warnings)"
	}
	fmt.Fprintf(b, "Validation: %s  errors: %d  warnings: %d\n\n", verdict, len(errs), len(warns))
	if !showFindings || len(res.Findings) == 0 {
		return
	}
	for i, f := range res.Findings {
		if i == maxFindings {
			fmt.Fprintf(b, "  ... %d more\n", len(res.Findings)-maxFindings)
			break
		}
		b.WriteString("  " + f.String() + "\n")
	}
	b.WriteString("\n")
}

func writeOverview(b *strings.Builder, data *tuiData) {
	doc := data.doc
	project := doc.Project().Value
	if project == "" {
		project = "(unnamed)"
	}
	fmt.Fprintf(b, "Project: %s\n\n", project)
	fmt.Fprintf(b, "  Pending: %d  In progress: %d  Complete: %d  Blocked: %d\n",
		data.counts[features.StatusPending],
		data.counts[features.StatusInProgress],
		data.counts[features.StatusComplete],
		data.counts[features.StatusBlocked],
	)
	fmt.Fprintf(b, "  Counters: total %s (actual %d)  completed %s (actual %d)\n\n",
		declared(doc.Total()), data.total, declared(doc.Completed()), data.done)
}

func declared(a features.Attr) string {
	if !a.Present {
		return "-"
	}
	return a.Value
}

func writeFeatures(b *strings.Builder, doc *features.Document, filter features.Status) {
	for _, c := range doc.Categories {
		var lines []string
		for _, f := range c.Features {
			if filter != "" && features.Status(f.Status.Value) != filter {
				continue
			}
			lines = append(lines, formatFeature(f))
		}
		if len(lines) == 0 && filter != "" {
			continue
		}
		name := c.Name.Value
		if name == "" {
			name = "(unnamed category)"
		}
		fmt.Fprintf(b, "%s (%d)\n", name, len(lines))
		for _, l := range lines {
			b.WriteString(l + "\n")
		}
		b.WriteString("\n")
	}
}

func formatFeature(f *features.Feature) string {
	desc := ""
	if f.Description != nil {
		desc = strings.Join(strings.Fields(f.Description.Text), " ")
	}
	if len(desc) > 60 {
		desc = desc[:57] + "..."
	}
	return fmt.Sprintf("  %s [%s] (%s) %s", StatusIcon(features.Status(f.Status.Value)), f.ID.Value, f.Priority.Value, desc)
}

// StatusIcon returns a one-character marker for s.
func StatusIcon(s features.Status) string {
	switch s {
	case features.StatusPending:
		return " "
	case features.StatusInProgress:
		return ">"
	case features.StatusComplete:
		return "x"
	case features.StatusBlocked:
		return "!"
	default:
		return "?"
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Reload and revalidate\n")
	b.WriteString("  f            Toggle findings\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by pending\n")
	b.WriteString("  2            Filter by in-progress\n")
	b.WriteString("  3            Filter by complete\n")
	b.WriteString("  4            Filter by blocked\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	fmt.Fprintf(b, "Press h for help | q to quit | Refreshing every %s\n", interval)
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "bopkit.dev/pkg/bopkit/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// footerLines is the space the pager reserves below the viewport.
const footerLines = 2

// TUI implements UI with styled output, paged through Bubble Tea when it
// does not fit the terminal.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayReport shows the report table under a status banner.
func (p *TUI) DisplayReport(ctx context.Context, report m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := fmt.Sprintf("bopkit %s  %s", report.Operation, statusLabel(report.Status))

	return p.show(title, renderReportTable(report))
}

// DisplayIndex shows the correspondence tables.
func (p *TUI) DisplayIndex(ctx context.Context, summary m.IndexSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := "bopkit inspect"
	if summary.Scene != "" {
		title += "  " + string(summary.Scene)
	}

	return p.show(title, renderIndexTables(summary))
}

// DisplayBatchSummary shows the batch table.
func (p *TUI) DisplayBatchSummary(ctx context.Context, reports []m.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	failed := 0

	for _, report := range reports {
		if report.Status != m.StatusOK {
			failed++
		}
	}

	status := okStyle.Render("all passed")
	if failed > 0 {
		status = failedStyle.Render(fmt.Sprintf("%d failed", failed))
	}

	return p.show(fmt.Sprintf("bopkit batch  %d scenes  %s", len(reports), status), renderBatchTable(reports))
}

// DisplayWatchEvent prints a one-line notice. It never pages.
func (p *TUI) DisplayWatchEvent(ctx context.Context, path m.Path, err error) {
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		_, _ = fmt.Fprintf(p.output, "%s %s: %v\n", failedStyle.Render("✗"), path, err)
		return
	}

	_, _ = fmt.Fprintf(p.output, "%s %s\n", faintStyle.Render("↻"), path)
}

func (p *TUI) show(title, body string) error {
	model := newPagerModel(title, body)

	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model = model.resize(width, height)
		}
	}

	// If the content fits, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.staticView())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

func statusLabel(status m.ReportStatus) string {
	if status == m.StatusOK {
		return okStyle.Render(string(status))
	}

	return failedStyle.Render(string(status))
}

// pagerModel is the Bubble Tea model that scrolls long output.
type pagerModel struct {
	header   string
	body     string
	viewport viewport.Model
	height   int
	width    int
	quitting bool
}

func newPagerModel(title, body string) pagerModel {
	return pagerModel{
		header:   titleStyle.Render(title) + "\n",
		body:     body,
		viewport: viewport.New(0, 0),
	}
}

func (pm pagerModel) resize(width, height int) pagerModel {
	pm.width = width
	pm.height = height

	pm.viewport.Width = width
	pm.viewport.Height = max(height-lipgloss.Height(pm.header)-footerLines, 1)
	pm.viewport.SetContent(pm.body)

	return pm
}

// needsPagination returns true if the output is taller than the terminal.
func (pm pagerModel) needsPagination() bool {
	if pm.height == 0 {
		return false
	}

	return lipgloss.Height(pm.header)+lipgloss.Height(pm.body) > pm.height
}

func (pm pagerModel) staticView() string {
	return pm.header + "\n" + pm.body
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return pm.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			pm.quitting = true
			return pm, tea.Quit
		case "g", "home":
			pm.viewport.GotoTop()
			return pm, nil
		case "G", "end":
			pm.viewport.GotoBottom()
			return pm, nil
		}
	}

	var cmd tea.Cmd

	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if pm.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(pm.header)
	b.WriteString(pm.viewport.View())
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", faintStyle.Render(fmt.Sprintf(
		"%3.0f%%  ↑/↓ scroll • g/G top/bottom • q quit", pm.viewport.ScrollPercent()*100)))

	return b.String()
}

// Package tui is the Bubble Tea viewer for rendered review reports.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/preflight/internal/review"
)

// Model is the top-level Bubble Tea model: a scrollable view over one
// rendered report.
type Model struct {
	summary review.Summary
	lines   []renderedLine

	width        int
	height       int
	viewHeight   int
	scrollOffset int

	showHelp bool
}

// New builds a viewer for a rendered report. The summary header is
// re-parsed from the Markdown itself.
func New(markdown string) Model {
	summary, _ := review.ParseSummary(markdown)
	return Model{
		summary: summary,
		lines:   renderReport(markdown),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewHeight = m.height - 4 // borders + status bar
		if m.viewHeight < 1 {
			m.viewHeight = 1
		}
		m.clampScroll()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			m.scrollOffset++

		case key.Matches(msg, keys.Up):
			m.scrollOffset--

		case key.Matches(msg, keys.PageDown):
			m.scrollOffset += m.viewHeight

		case key.Matches(msg, keys.PageUp):
			m.scrollOffset -= m.viewHeight

		case key.Matches(msg, keys.Top):
			m.scrollOffset = 0

		case key.Matches(msg, keys.Bottom):
			m.scrollOffset = len(m.lines)

		case key.Matches(msg, keys.NextFinding):
			m.jumpToFinding(1)

		case key.Matches(msg, keys.PrevFinding):
			m.jumpToFinding(-1)

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
		m.clampScroll()
	}

	return m, nil
}

func (m *Model) clampScroll() {
	max := len(m.lines) - m.viewHeight
	if max < 0 {
		max = 0
	}
	if m.scrollOffset > max {
		m.scrollOffset = max
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m *Model) jumpToFinding(dir int) {
	for i := m.scrollOffset + dir; i >= 0 && i < len(m.lines); i += dir {
		if m.lines[i].IsFinding {
			m.scrollOffset = i
			return
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	body := m.renderBody(m.width, m.height-2)
	statusBar := m.renderStatusBar()
	return lipgloss.JoinVertical(lipgloss.Left, body, statusBar)
}

func (m Model) renderBody(width, height int) string {
	innerHeight := height - 2 // borders

	end := m.scrollOffset + m.viewHeight
	if end > len(m.lines) {
		end = len(m.lines)
	}

	var b strings.Builder
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(m.lines[i].Text)
		if i < end-1 {
			b.WriteByte('\n')
		}
	}
	return reportViewStyle.Width(width - 2).Height(innerHeight).Render(b.String())
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s  note=%d minor=%d major=%d",
		styleStatus(string(m.summary.Status)), m.summary.Note, m.summary.Minor, m.summary.Major)
	if m.summary.Status == "" {
		left = " report"
	}

	right := fmt.Sprintf("Line %d/%d  ? help ", m.scrollOffset+1, maxInt(len(m.lines), 1))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("preflight — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Scroll up"},
		{"↓/j", "Scroll down"},
		{"space/f", "Page down"},
		{"b", "Page up"},
		{"g / G", "Top / bottom"},
		{"]/n", "Next finding"},
		{"[/N", "Previous finding"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run shows the report in an alternate-screen viewer and blocks until
// the user quits.
func Run(markdown string) error {
	m := New(markdown)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

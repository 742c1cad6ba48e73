package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nino-chavez/brand-site-sub018/runtime"
)

// InspectModel shows a report: summary on top, the scenario list below and
// the errors of the selected scenario.
type InspectModel struct {
	viewType string
	data     any
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < m.resultCount()-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

func (m InspectModel) resultCount() int {
	if report, ok := m.data.(*runtime.TestReport); ok {
		return len(report.Results)
	}
	return 0
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewInspectReport:
		content = m.renderInspectReport()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("↑/↓ select scenario • q quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectReport() string {
	report, ok := m.data.(*runtime.TestReport)
	if !ok {
		return "Invalid data type for inspect_report"
	}
	s := report.Summary

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Runtime Error Report"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Generated", report.Timestamp},
		{"Run ID", report.RunID},
		{"Base URL", report.Config.BaseURL},
		{"Scenarios", fmt.Sprintf("%d total, %d passed, %d failed", s.Total, s.Passed, s.Failed)},
		{"Errors", fmt.Sprintf("%d (%d critical)", s.TotalErrors, s.CriticalErrors)},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1])))
	}

	if len(report.Results) == 0 {
		return BoxStyle.Render(b.String())
	}

	b.WriteString("\n")
	for i, r := range report.Results {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		mark := "✓"
		if !r.Passed {
			mark = "✗"
		}
		line := fmt.Sprintf("%s %s (%dms, %d errors)", mark, r.Scenario, r.Duration, len(r.Errors))
		b.WriteString(marker + VerdictStyle(r.Passed).Render(line) + "\n")
	}

	selected := report.Results[min(m.cursor, len(report.Results)-1)]
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render(selected.Scenario))
	b.WriteString("\n")
	if selected.Attempts > 1 {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Attempts:"), WarningStyle.Render(fmt.Sprint(selected.Attempts))))
	}
	if len(selected.Errors) == 0 {
		b.WriteString(SuccessStyle.Render("No errors captured") + "\n")
	}
	for _, e := range selected.Errors {
		tag := SeverityStyle(e.Severity).Render("[" + string(e.Severity) + "]")
		b.WriteString(fmt.Sprintf("%s %s: %s\n", tag, e.Type, firstLine(e.Message)))
		if e.Context.Location != "" {
			b.WriteString(fmt.Sprintf("    %s\n", LabelStyle.Render(e.Context.Location)))
		}
	}
	for _, p := range selected.Screenshots {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Screenshot:"), ValueStyle.Render(p)))
	}

	return BoxStyle.Render(b.String())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
	Sort key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous scenario"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next scenario"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort scenarios by errors or critical"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}

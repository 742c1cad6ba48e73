package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nino-chavez/brand-site-sub018/cli/reader"
	"github.com/nino-chavez/brand-site-sub018/types"
)

const (
	maxScenarioRows = 10
	barWidth        = 30
)

// StatsModel shows one stored run: verdict boxes, severity boxes, an
// errors-by-type bar chart and the noisiest scenarios.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	// byCritical ranks scenarios by critical count instead of total errors.
	byCritical bool
	quitting   bool
}

func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{viewType: viewType, data: data}
}

func (m StatsModel) Init() tea.Cmd { return nil }

func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Sort):
			m.byCritical = !m.byCritical
		}
	}
	return m, nil
}

func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}
	if m.viewType != ViewStatsRun {
		return fmt.Sprintf("Unknown view type: %s", m.viewType)
	}
	data, ok := m.data.(*reader.RunHistory)
	if !ok {
		return "Invalid data type for stats_run"
	}
	sections := []string{
		TitleStyle.Render(fmt.Sprintf("Run %s (%s)", data.RunID, data.Day)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			statBox("Scenarios", data.Total, highlightColor),
			statBox("Passed", data.Passed, successColor),
			statBox("Failed", data.Failed, errorColor),
			statBox("Errors", data.TotalErrors, highlightColor),
		),
		severityBoxes(data.ErrorsBySeverity),
	}
	if chart := typeChart(data.ErrorsByType); chart != "" {
		sections = append(sections, chart)
	}
	if len(data.Scenarios) > 0 {
		sections = append(sections, m.scenarioList(data.Scenarios))
	}
	sections = append(sections, HelpStyle.Render("s: "+keys.Sort.Help().Desc+" · q: quit"))
	return strings.Join(sections, "\n\n")
}

func statBox(label string, value int, color lipgloss.TerminalColor) string {
	return StatBoxStyle.BorderForeground(color).Render(lipgloss.JoinVertical(lipgloss.Center,
		StatValueStyle.Foreground(color).Render(fmt.Sprint(value)),
		StatLabelStyle.Render(label),
	))
}

func severityBoxes(bySeverity map[string]int) string {
	severities := []types.Severity{types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow}
	boxes := make([]string, len(severities))
	for i, s := range severities {
		boxes[i] = statBox(string(s), bySeverity[string(s)], severityColor(s))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// typeChart draws one bar per error type, longest first, scaled to the
// most frequent type.
func typeChart(byType map[string]int) string {
	if len(byType) == 0 {
		return ""
	}
	names := make([]string, 0, len(byType))
	peak := 0
	for name, n := range byType {
		names = append(names, name)
		peak = max(peak, n)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(byType[b], byType[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Errors by type"))
	for _, name := range names {
		n := byType[name]
		bar := strings.Repeat("█", max(1, n*barWidth/max(peak, 1)))
		fmt.Fprintf(&b, "\n%s %s %s",
			LabelStyle.Width(20).Render(name),
			SeverityStyle(types.SeverityHigh).Render(bar),
			ValueStyle.Render(fmt.Sprint(n)))
	}
	return b.String()
}

func (m StatsModel) scenarioList(scenarios []reader.ScenarioErrors) string {
	ranked := slices.Clone(scenarios)
	if m.byCritical {
		slices.SortStableFunc(ranked, func(a, b reader.ScenarioErrors) int {
			return cmp.Compare(b.Critical, a.Critical)
		})
	}

	title := "Noisiest scenarios"
	if m.byCritical {
		title += " (by critical)"
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	for i, s := range ranked {
		if i == maxScenarioRows {
			b.WriteString("\n" + LabelStyle.Render(fmt.Sprintf("… %d more", len(ranked)-i)))
			break
		}
		style := ValueStyle
		if s.Critical > 0 {
			style = ErrorStyle
		}
		b.WriteString("\n" + style.Render(fmt.Sprintf("%-32s %3d errors, %d critical", s.Scenario, s.Errors, s.Critical)))
	}
	return b.String()
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	_, err := tea.NewProgram(NewStatsModel(viewType, data), tea.WithAltScreen()).Run()
	return err
}

// RenderStatsStatic renders the stats view once, without a terminal program.
func RenderStatsStatic(viewType string, data any) string {
	m := NewStatsModel(viewType, data)
	m.width, m.height = 80, 24
	return lipgloss.NewStyle().Padding(1, 2).Render(m.View())
}

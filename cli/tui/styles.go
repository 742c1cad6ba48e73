// Package tui provides Bubble Tea views for the read-only commands.
//
// Views are opt-in through --tui and render the same payloads the
// json, table and yaml formats do.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// Palette. Each entry picks a shade per terminal background.
var (
	accentColor = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}
	passColor   = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}
	failColor   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	faintColor  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	textColor   = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	infoColor   = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}

	// Aliases used by the views.
	highlightColor = infoColor
	successColor   = passColor
	errorColor     = failColor
)

var severityColors = map[types.Severity]lipgloss.TerminalColor{
	types.SeverityCritical: failColor,
	types.SeverityHigh:     lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"},
	types.SeverityMedium:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"},
	types.SeverityLow:      faintColor,
}

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginBottom(1)
	LabelStyle   = lipgloss.NewStyle().Foreground(faintColor).Width(16)
	ValueStyle   = lipgloss.NewStyle().Foreground(textColor)
	SuccessStyle = lipgloss.NewStyle().Foreground(passColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(failColor)
	// WarningStyle marks retried scenarios and medium findings.
	WarningStyle = lipgloss.NewStyle().Foreground(severityColors[types.SeverityMedium])
	HelpStyle    = lipgloss.NewStyle().Foreground(faintColor).MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(faintColor).
			Padding(1, 2)

	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(infoColor).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center)
	StatLabelStyle = lipgloss.NewStyle().Foreground(faintColor).Align(lipgloss.Center)
	StatValueStyle = lipgloss.NewStyle().Bold(true).Foreground(textColor).Align(lipgloss.Center)
)

// VerdictStyle returns the style for a scenario verdict.
func VerdictStyle(passed bool) lipgloss.Style {
	if passed {
		return SuccessStyle
	}
	return ErrorStyle
}

// SeverityStyle returns the style for an error severity. Critical is bold.
func SeverityStyle(s types.Severity) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(severityColor(s)).
		Bold(s == types.SeverityCritical)
}

func severityColor(s types.Severity) lipgloss.TerminalColor {
	if c, ok := severityColors[s]; ok {
		return c
	}
	return faintColor
}

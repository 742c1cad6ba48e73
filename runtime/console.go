package runtime

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// Console writes human progress lines. Safe for concurrent use.
type Console struct {
	mu sync.Mutex
	w  io.Writer

	title    lipgloss.Style
	pass     lipgloss.Style
	fail     lipgloss.Style
	warn     lipgloss.Style
	muted    lipgloss.Style
	severity map[types.Severity]lipgloss.Style
}

// NewConsole creates a console writing to w. A nil w discards output.
// Colors follow w's terminal capabilities.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = io.Discard
	}
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		pass:  r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		severity: map[types.Severity]lipgloss.Style{
			types.SeverityCritical: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
			types.SeverityHigh:     r.NewStyle().Foreground(lipgloss.Color("#F97316")),
			types.SeverityMedium:   r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
			types.SeverityLow:      r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		},
	}
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.w, s)
}

// Running announces a scenario attempt.
func (c *Console) Running(name string) {
	c.println(c.muted.Render("▶ Running: ") + name)
}

// Retrying announces a retry.
func (c *Console) Retrying(name string, attempt, total int) {
	c.println(c.warn.Render(fmt.Sprintf("↻ Retrying: %s (attempt %d/%d)", name, attempt, total)))
}

// Advisory prints an advisory finding.
func (c *Console) Advisory(name, finding string) {
	c.println(c.warn.Render("⚠ "+name+": ") + finding)
}

// Result prints the outcome of an attempt.
func (c *Console) Result(r types.TestResult) {
	if r.Passed {
		c.println(c.pass.Render("✓ ") + fmt.Sprintf("%s (%dms)", r.Scenario, r.Duration))
		return
	}
	c.println(c.fail.Render("✗ ") + fmt.Sprintf("%s (%dms) - %d errors", r.Scenario, r.Duration, len(r.Errors)))
}

// SeverityTag renders "[SEVERITY]" in the severity's color.
func (c *Console) SeverityTag(s types.Severity) string {
	tag := "[" + string(s) + "]"
	if style, ok := c.severity[s]; ok {
		return style.Render(tag)
	}
	return tag
}

// Summary prints the final summary block followed by every failed
// scenario's errors.
func (c *Console) Summary(results []types.TestResult) {
	s := types.Summarize(results)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(c.title.Render("Runtime Error Detection Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Total:    %d\n", s.Total)
	fmt.Fprintf(&b, "  Passed:   %s\n", c.pass.Render(fmt.Sprint(s.Passed)))
	fmt.Fprintf(&b, "  Failed:   %s\n", c.fail.Render(fmt.Sprint(s.Failed)))
	fmt.Fprintf(&b, "  Errors:   %d\n", s.TotalErrors)
	fmt.Fprintf(&b, "  Critical: %d\n", s.CriticalErrors)

	if s.Failed > 0 {
		b.WriteString("\n")
		b.WriteString(c.fail.Render("Failed scenarios:"))
		b.WriteString("\n")
		for _, r := range results {
			if r.Passed {
				continue
			}
			fmt.Fprintf(&b, "  ✗ %s\n", r.Scenario)
			for _, e := range r.Errors {
				fmt.Fprintf(&b, "    %s %s: %s\n", c.SeverityTag(e.Severity), e.Type, firstLine(e.Message))
			}
		}
	}

	c.println(strings.TrimRight(b.String(), "\n"))
}

// PrintSummary writes the summary block for results to w.
func PrintSummary(w io.Writer, results []types.TestResult) {
	NewConsole(w).Summary(results)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

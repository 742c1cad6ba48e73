package runtime

import (
	"fmt"
	"strings"

	"github.com/nino-chavez/brand-site-sub018/iox"
)

// RenderMarkdown renders the human-readable report: summary counts, every
// failed scenario with its errors and screenshots, then the passed scenarios.
func RenderMarkdown(report *TestReport) string {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# Runtime Error Detection Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", report.Timestamp)
	if report.RunID != "" {
		fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	}
	fmt.Fprintf(&b, "- Base URL: %s\n\n", report.Config.BaseURL)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total | %d |\n", s.Total)
	fmt.Fprintf(&b, "| Passed | %d |\n", s.Passed)
	fmt.Fprintf(&b, "| Failed | %d |\n", s.Failed)
	fmt.Fprintf(&b, "| Total errors | %d |\n", s.TotalErrors)
	fmt.Fprintf(&b, "| Critical errors | %d |\n", s.CriticalErrors)

	if s.Failed > 0 {
		b.WriteString("\n## Failed Scenarios\n")
		for _, r := range report.Results {
			if r.Passed {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n", r.Scenario)
			fmt.Fprintf(&b, "- Duration: %dms\n", r.Duration)
			if r.Attempts > 1 {
				fmt.Fprintf(&b, "- Attempts: %d\n", r.Attempts)
			}
			if len(r.Errors) > 0 {
				b.WriteString("- Errors:\n")
				for _, e := range r.Errors {
					fmt.Fprintf(&b, "  - **[%s]** %s: %s\n", e.Severity, e.Type, mdInline(e.Message))
					if e.Context.ComponentName != "" {
						fmt.Fprintf(&b, "    - Component: %s\n", e.Context.ComponentName)
					}
					if e.Context.Location != "" {
						fmt.Fprintf(&b, "    - Location: `%s`\n", e.Context.Location)
					}
				}
			}
			if len(r.Screenshots) > 0 {
				b.WriteString("- Screenshots:\n")
				for _, p := range r.Screenshots {
					fmt.Fprintf(&b, "  - `%s`\n", p)
				}
			}
		}
	}

	if s.Passed > 0 {
		b.WriteString("\n## Passed Scenarios\n\n")
		for _, r := range report.Results {
			if r.Passed {
				fmt.Fprintf(&b, "- %s (%dms)\n", r.Scenario, r.Duration)
			}
		}
	}
	return b.String()
}

// WriteMarkdown writes RenderMarkdown(report) to path.
func WriteMarkdown(report *TestReport, path string) error {
	if err := iox.WriteFileAtomic(path, []byte(RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown report to %s: %w", path, err)
	}
	return nil
}

// mdInline keeps a message on one line.
func mdInline(s string) string {
	return strings.Join(strings.Fields(firstLine(s)), " ")
}

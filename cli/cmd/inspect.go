package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/cli/render"
	"github.com/nino-chavez/brand-site-sub018/cli/tui"
	"github.com/nino-chavez/brand-site-sub018/runtime"
)

// InspectReportResponse is the flat view of a report for json/table/yaml.
type InspectReportResponse struct {
	RunID           string   `json:"run_id" yaml:"run_id"`
	Timestamp       string   `json:"timestamp" yaml:"timestamp"`
	BaseURL         string   `json:"base_url" yaml:"base_url"`
	Total           int      `json:"total" yaml:"total"`
	Passed          int      `json:"passed" yaml:"passed"`
	Failed          int      `json:"failed" yaml:"failed"`
	TotalErrors     int      `json:"total_errors" yaml:"total_errors"`
	CriticalErrors  int      `json:"critical_errors" yaml:"critical_errors"`
	FailedScenarios []string `json:"failed_scenarios" yaml:"failed_scenarios"`
	Consistent      bool     `json:"consistent" yaml:"consistent"`
}

// InspectCommand returns the inspect command.
// Inspect reads a report written by a previous run.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect a JSON report written by a run",
		ArgsUsage: "<report.json>",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "markdown",
				Usage: "Render the Markdown report instead of the summary",
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("report path required", 1)
	}
	report, err := runtime.ReadReport(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewInspectReport, report)
	}
	if c.Bool("markdown") {
		return r.RenderMarkdown(runtime.RenderMarkdown(report))
	}
	return r.Render(inspectReport(report))
}

func inspectReport(report *runtime.TestReport) *InspectReportResponse {
	resp := &InspectReportResponse{
		RunID:           report.RunID,
		Timestamp:       report.Timestamp,
		BaseURL:         report.Config.BaseURL,
		Total:           report.Summary.Total,
		Passed:          report.Summary.Passed,
		Failed:          report.Summary.Failed,
		TotalErrors:     report.Summary.TotalErrors,
		CriticalErrors:  report.Summary.CriticalErrors,
		FailedScenarios: []string{},
		Consistent:      report.Check() == nil,
	}
	for _, r := range report.Results {
		if !r.Passed {
			resp.FailedScenarios = append(resp.FailedScenarios, r.Scenario)
		}
	}
	return resp
}

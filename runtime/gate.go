package runtime

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// DefaultGate fails the run on any failed scenario or any critical error.
const DefaultGate = "summary.failed > 0 || summary.criticalErrors > 0"

// Gate decides whether a report fails the run. The expression sees
// summary (total, passed, failed, totalErrors, criticalErrors) and
// results (scenario, category, passed, duration, attempts, errors with
// type, severity, message, source).
type Gate struct {
	source  string
	program *vm.Program
}

// CompileGate compiles a boolean gate expression. Empty means DefaultGate.
func CompileGate(source string) (*Gate, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = DefaultGate
	}
	program, err := expr.Compile(source, expr.Env(gateEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile gate %q: %w", source, err)
	}
	return &Gate{source: source, program: program}, nil
}

// String returns the expression.
func (g *Gate) String() string {
	return g.source
}

// Fails reports whether the report trips the gate.
func (g *Gate) Fails(report *TestReport) (bool, error) {
	out, err := expr.Run(g.program, gateEnv(report))
	if err != nil {
		return false, fmt.Errorf("eval gate %q: %w", g.source, err)
	}
	failed, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("gate %q did not return bool (got %T)", g.source, out)
	}
	return failed, nil
}

// ExitCode returns 1 when the gate trips, else 0.
func (g *Gate) ExitCode(report *TestReport) (int, error) {
	failed, err := g.Fails(report)
	if err != nil {
		return 1, err
	}
	if failed {
		return 1, nil
	}
	return 0, nil
}

func gateEnv(report *TestReport) map[string]any {
	var s types.Summary
	var results []types.TestResult
	if report != nil {
		s = report.Summary
		results = report.Results
	}

	rs := make([]any, len(results))
	for i, r := range results {
		errs := make([]any, len(r.Errors))
		for j, e := range r.Errors {
			errs[j] = map[string]any{
				"type":     string(e.Type),
				"severity": string(e.Severity),
				"message":  e.Message,
				"source":   string(e.Source),
			}
		}
		rs[i] = map[string]any{
			"scenario": r.Scenario,
			"category": r.Category,
			"passed":   r.Passed,
			"duration": r.Duration,
			"attempts": r.Attempts,
			"errors":   errs,
		}
	}

	return map[string]any{
		"summary": map[string]any{
			"total":          s.Total,
			"passed":         s.Passed,
			"failed":         s.Failed,
			"totalErrors":    s.TotalErrors,
			"criticalErrors": s.CriticalErrors,
		},
		"results": rs,
	}
}

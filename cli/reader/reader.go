// Package reader turns stored run records into read-only CLI views.
package reader

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"

	"github.com/justapithecus/lode/lode"

	lodestore "github.com/nino-chavez/brand-site-sub018/lode"
)

// Reader abstracts read-only access to previous runs.
type Reader interface {
	// History returns the summary and error breakdown of one run.
	// An empty runID selects the most recent run.
	History(ctx context.Context, runID string) (*RunHistory, error)
}

// RunHistory is a stored run: its summary record and an aggregate of its
// captured-error records.
type RunHistory struct {
	RunID          string `json:"run_id" yaml:"run_id"`
	Day            string `json:"day" yaml:"day"`
	Total          int    `json:"total" yaml:"total"`
	Passed         int    `json:"passed" yaml:"passed"`
	Failed         int    `json:"failed" yaml:"failed"`
	TotalErrors    int    `json:"total_errors" yaml:"total_errors"`
	CriticalErrors int    `json:"critical_errors" yaml:"critical_errors"`

	ErrorsByType     map[string]int   `json:"errors_by_type" yaml:"errors_by_type"`
	ErrorsBySeverity map[string]int   `json:"errors_by_severity" yaml:"errors_by_severity"`
	Scenarios        []ScenarioErrors `json:"scenarios" yaml:"scenarios"`
}

// ScenarioErrors counts the stored errors of one scenario.
type ScenarioErrors struct {
	Scenario string `json:"scenario" yaml:"scenario"`
	Errors   int    `json:"errors" yaml:"errors"`
	Critical int    `json:"critical" yaml:"critical"`
}

// LodeReader reads run history from the Lode dataset the harness writes.
type LodeReader struct {
	ds lode.Dataset
}

var _ Reader = (*LodeReader)(nil)

// NewLodeReader opens dataset through factory.
func NewLodeReader(dataset string, factory lode.StoreFactory) (*LodeReader, error) {
	if dataset == "" {
		dataset = lodestore.DefaultDataset
	}
	ds, err := lodestore.NewReadDataset(dataset, factory)
	if err != nil {
		return nil, lodestore.WrapInitError(err, dataset)
	}
	return &LodeReader{ds: ds}, nil
}

// History implements Reader.
func (r *LodeReader) History(ctx context.Context, runID string) (*RunHistory, error) {
	summary, err := lodestore.QueryLatestSummary(ctx, r.ds, runID)
	if err != nil {
		return nil, err
	}
	h := &RunHistory{
		RunID:            str(summary["run_id"]),
		Day:              str(summary["day"]),
		Total:            toInt(summary["total"]),
		Passed:           toInt(summary["passed"]),
		Failed:           toInt(summary["failed"]),
		TotalErrors:      toInt(summary["total_errors"]),
		CriticalErrors:   toInt(summary["critical_errors"]),
		ErrorsByType:     map[string]int{},
		ErrorsBySeverity: map[string]int{},
		Scenarios:        []ScenarioErrors{},
	}

	records, err := lodestore.QueryErrors(ctx, r.ds, h.RunID)
	if err != nil {
		return nil, err
	}
	byScenario := map[string]*ScenarioErrors{}
	for _, rec := range records {
		h.ErrorsByType[str(rec["type"])]++
		sev := str(rec["severity"])
		h.ErrorsBySeverity[sev]++

		name := str(rec["scenario"])
		s, ok := byScenario[name]
		if !ok {
			s = &ScenarioErrors{Scenario: name}
			byScenario[name] = s
		}
		s.Errors++
		if sev == "CRITICAL" {
			s.Critical++
		}
	}
	for _, s := range byScenario {
		h.Scenarios = append(h.Scenarios, *s)
	}
	// most errors first, then by name
	slices.SortFunc(h.Scenarios, func(a, b ScenarioErrors) int {
		if c := cmp.Compare(b.Errors, a.Errors); c != 0 {
			return c
		}
		return cmp.Compare(a.Scenario, b.Scenario)
	})
	return h, nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// toInt accepts the numeric shapes a JSONL codec may decode to.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}

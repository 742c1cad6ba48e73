package types

// TestResult is the verdict for one scenario after all of its attempts.
// Only the final attempt's data is retained; Attempts records how many ran.
type TestResult struct {
	Scenario    string          `json:"scenario" yaml:"scenario"`
	Category    string          `json:"category,omitempty" yaml:"category,omitempty"`
	Passed      bool            `json:"passed" yaml:"passed"`
	Duration    int64           `json:"duration" yaml:"duration"`
	Errors      []CapturedError `json:"errors" yaml:"errors"`
	Screenshots []string        `json:"screenshots" yaml:"screenshots"`
	Videos      []string        `json:"videos,omitempty" yaml:"videos,omitempty"`
	Logs        []string        `json:"logs" yaml:"logs"`
	Attempts    int             `json:"attempts" yaml:"attempts"`
}

// CriticalCount returns the number of CRITICAL errors in the result.
func (r TestResult) CriticalCount() int {
	return CountCritical(r.Errors)
}

// Summary holds run-level counts.
// Total == Passed + Failed == number of results.
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	Passed         int `json:"passed" yaml:"passed"`
	Failed         int `json:"failed" yaml:"failed"`
	TotalErrors    int `json:"totalErrors" yaml:"totalErrors"`
	CriticalErrors int `json:"criticalErrors" yaml:"criticalErrors"`
}

// Summarize computes the summary for a result list.
func Summarize(results []TestResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		s.TotalErrors += len(r.Errors)
		s.CriticalErrors += r.CriticalCount()
	}
	return s
}

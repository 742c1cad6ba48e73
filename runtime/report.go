package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nino-chavez/brand-site-sub018/iox"
	"github.com/nino-chavez/brand-site-sub018/metrics"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// TestReport is the run-level aggregate written as report-<ms>.json.
type TestReport struct {
	Timestamp string             `json:"timestamp" yaml:"timestamp"`
	Version   string             `json:"version" yaml:"version"`
	RunID     string             `json:"runId,omitempty" yaml:"runId,omitempty"`
	Config    ReportConfig       `json:"config" yaml:"config"`
	Summary   types.Summary      `json:"summary" yaml:"summary"`
	Results   []types.TestResult `json:"results" yaml:"results"`
	Metrics   *metrics.Snapshot  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// BuildReport composes a report. The summary is always derived from results.
func BuildReport(cfg ReportConfig, meta *types.RunMeta, results []types.TestResult, snap *metrics.Snapshot, now time.Time) *TestReport {
	if results == nil {
		results = []types.TestResult{}
	}
	report := &TestReport{
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Version:   types.ReportVersion,
		Config:    cfg,
		Summary:   types.Summarize(results),
		Results:   results,
		Metrics:   snap,
	}
	if meta != nil {
		report.RunID = meta.RunID
	}
	return report
}

// Check verifies the summary invariants against the results.
func (r *TestReport) Check() error {
	want := types.Summarize(r.Results)
	if r.Summary != want {
		return fmt.Errorf("summary %+v does not match results %+v", r.Summary, want)
	}
	return nil
}

// MarshalReport encodes the report as indented JSON with a trailing newline.
func MarshalReport(report *TestReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteReport writes the report as JSON to path. "-" writes to stdout.
func WriteReport(report *TestReport, path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}
	if path == "-" {
		return writeReportTo(report, os.Stdout)
	}
	data, err := MarshalReport(report)
	if err != nil {
		return err
	}
	if err := iox.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report to %s: %w", path, err)
	}
	return nil
}

func writeReportTo(report *TestReport, w io.Writer) error {
	data, err := MarshalReport(report)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadReport loads a JSON report written by WriteReport.
func ReadReport(path string) (*TestReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report TestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &report, nil
}

// ReportFileName returns report-<ms>.<ext> for t.
func ReportFileName(t time.Time, ext string) string {
	return fmt.Sprintf("report-%d.%s", t.UnixMilli(), ext)
}

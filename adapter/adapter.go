// Package adapter defines the boundary for run-completed notifications.
//
// Adapters publish one event per harness run to a downstream system (a
// webhook endpoint, a Redis channel). The CLI owns adapter lifecycle; users
// provide configuration only.
package adapter

import (
	"context"
	"time"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// EventVersion is the payload version of RunCompletedEvent.
const EventVersion = "1"

// EventTypeRunCompleted is the only event type published today.
const EventTypeRunCompleted = "run_completed"

// Outcome values.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// RunCompletedEvent is the payload published when a run finishes.
type RunCompletedEvent struct {
	EventVersion   string `json:"event_version"`
	EventType      string `json:"event_type"` // always "run_completed"
	RunID          string `json:"run_id"`
	BaseURL        string `json:"base_url"`
	Scenario       string `json:"scenario"`
	Day            string `json:"day"`
	Outcome        string `json:"outcome"` // passed or failed, per the exit gate
	ExitCode       int    `json:"exit_code"`
	ReportPath     string `json:"report_path"`
	StoragePath    string `json:"storage_path,omitempty"`
	Timestamp      string `json:"timestamp"` // ISO 8601
	Total          int    `json:"total"`
	Passed         int    `json:"passed"`
	Failed         int    `json:"failed"`
	TotalErrors    int    `json:"total_errors"`
	CriticalErrors int    `json:"critical_errors"`
	DurationMs     int64  `json:"duration_ms"`
}

// RunInfo is what NewRunCompletedEvent needs besides the summary.
type RunInfo struct {
	RunID       string
	BaseURL     string
	Scenario    string
	Day         string
	ExitCode    int
	ReportPath  string
	StoragePath string
	Duration    time.Duration
}

// NewRunCompletedEvent builds the event for a finished run.
func NewRunCompletedEvent(info RunInfo, summary types.Summary, now time.Time) *RunCompletedEvent {
	outcome := OutcomePassed
	if info.ExitCode != 0 {
		outcome = OutcomeFailed
	}
	return &RunCompletedEvent{
		EventVersion:   EventVersion,
		EventType:      EventTypeRunCompleted,
		RunID:          info.RunID,
		BaseURL:        info.BaseURL,
		Scenario:       info.Scenario,
		Day:            info.Day,
		Outcome:        outcome,
		ExitCode:       info.ExitCode,
		ReportPath:     info.ReportPath,
		StoragePath:    info.StoragePath,
		Timestamp:      now.UTC().Format(time.RFC3339),
		Total:          summary.Total,
		Passed:         summary.Passed,
		Failed:         summary.Failed,
		TotalErrors:    summary.TotalErrors,
		CriticalErrors: summary.CriticalErrors,
		DurationMs:     info.Duration.Milliseconds(),
	}
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

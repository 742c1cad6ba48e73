// Package types defines core domain types for the runtime error harness.
// JSON tags are camelCase because reports are consumed by the site's tooling.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"fmt"
	"strings"
)

// ErrorType is the closed classification tag of a captured error.
type ErrorType string

// Error types. The set is closed; classifiers only ever emit these values.
const (
	ErrorContextMissing ErrorType = "CONTEXT_MISSING"
	ErrorNullAccess     ErrorType = "NULL_ACCESS"
	ErrorTypeError      ErrorType = "TYPE_ERROR"
	ErrorIntegration    ErrorType = "INTEGRATION_ERROR"
	ErrorState          ErrorType = "STATE_ERROR"
	ErrorInfiniteLoop   ErrorType = "INFINITE_LOOP"
	ErrorPerformance    ErrorType = "PERFORMANCE_ERROR"
	ErrorNetwork        ErrorType = "NETWORK_ERROR"
	ErrorUnknown        ErrorType = "UNKNOWN"
)

// ErrorTypes lists every error type in declaration order.
func ErrorTypes() []ErrorType {
	return []ErrorType{
		ErrorContextMissing,
		ErrorNullAccess,
		ErrorTypeError,
		ErrorIntegration,
		ErrorState,
		ErrorInfiniteLoop,
		ErrorPerformance,
		ErrorNetwork,
		ErrorUnknown,
	}
}

// ParseErrorType parses an error type name case-insensitively.
func ParseErrorType(s string) (ErrorType, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range ErrorTypes() {
		if string(t) == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown error type %q", s)
}

// Severity is the four-level ordinal attached to every captured error.
type Severity string

// Severity levels, highest first.
const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank returns the ordinal of s: CRITICAL=4 down to LOW=1, 0 for unknown values.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, nil
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityLow:
		return SeverityLow, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// ErrorSource records which capture surface produced an error.
type ErrorSource string

// Capture surfaces.
const (
	SourceConsole            ErrorSource = "console"
	SourcePageError          ErrorSource = "pageerror"
	SourceUnhandledRejection ErrorSource = "unhandledrejection"
	SourceNetwork            ErrorSource = "network"
	SourceBridge             ErrorSource = "bridge"
	SourceHarness            ErrorSource = "harness"
)

// ErrorContext carries best-effort location details for a captured error.
type ErrorContext struct {
	ComponentName string `json:"componentName,omitempty" yaml:"componentName,omitempty"`
	Location      string `json:"location,omitempty" yaml:"location,omitempty"`
	// PreviousErrors is how many errors the session had captured before this one.
	PreviousErrors int `json:"previousErrors" yaml:"previousErrors"`
}

// CapturedError is one classified runtime fault.
// Type and Severity are derived from Message at capture time and never change.
type CapturedError struct {
	ID        string       `json:"id" yaml:"id"`
	Timestamp int64        `json:"timestamp" yaml:"timestamp"`
	Message   string       `json:"message" yaml:"message"`
	Stack     string       `json:"stack,omitempty" yaml:"stack,omitempty"`
	Type      ErrorType    `json:"type" yaml:"type"`
	Severity  Severity     `json:"severity" yaml:"severity"`
	Context   ErrorContext `json:"context" yaml:"context"`
	URL       string       `json:"url,omitempty" yaml:"url,omitempty"`
	UserAgent string       `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Source    ErrorSource  `json:"source,omitempty" yaml:"source,omitempty"`
}

// IsCritical reports whether the error is CRITICAL.
func (e CapturedError) IsCritical() bool {
	return e.Severity == SeverityCritical
}

// CountCritical returns the number of CRITICAL errors in errs.
func CountCritical(errs []CapturedError) int {
	n := 0
	for _, e := range errs {
		if e.IsCritical() {
			n++
		}
	}
	return n
}

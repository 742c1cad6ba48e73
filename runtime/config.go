// Package runtime runs scenarios against a live application and turns the
// captured errors into verdicts, reports and an exit code.
package runtime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/capture"
)

// CaptureSource selects how captured errors reach the engine.
type CaptureSource string

const (
	// CaptureEvents subscribes the engine to native page events.
	CaptureEvents CaptureSource = "events"
	// CaptureBridge pulls the in-page bridge array after the settle time.
	CaptureBridge CaptureSource = "bridge"
)

// ParseCaptureSource parses a capture source name.
func ParseCaptureSource(s string) (CaptureSource, error) {
	switch CaptureSource(strings.ToLower(strings.TrimSpace(s))) {
	case CaptureEvents, "":
		return CaptureEvents, nil
	case CaptureBridge:
		return CaptureBridge, nil
	default:
		return "", fmt.Errorf("unknown capture source %q (want events or bridge)", s)
	}
}

// Default configuration values.
const (
	DefaultBaseURL       = "http://localhost:3000"
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 2
	DefaultParallelism   = 3
	DefaultSettleTime    = time.Second
	DefaultOutputDir     = "test-results"
)

// Config configures a Runner.
type Config struct {
	// BaseURL is loaded before every scenario.
	BaseURL string
	// Headless is passed to the default launcher.
	Headless bool
	// Timeout bounds navigation and, when a scenario has no MaxDuration, execution.
	Timeout time.Duration
	// RetryAttempts is the number of extra attempts after a failure.
	RetryAttempts int
	// ScreenshotOnError captures a full-page screenshot of a failed final attempt.
	ScreenshotOnError bool
	// VideoOnError records frames and keeps them only for a failed final attempt.
	VideoOnError bool
	// Parallelism is the batch size.
	Parallelism int
	// SettleTime is waited after execution before errors are collected.
	SettleTime time.Duration
	// NetworkIdle is how long the network must be idle after navigation.
	NetworkIdle time.Duration
	// CaptureSource selects native events or the in-page bridge.
	CaptureSource CaptureSource
	// MaxErrorHistory bounds each scenario's capture engine.
	MaxErrorHistory int
	// OutputDir receives screenshots/ and videos/.
	OutputDir string
	// Browser configures the default launcher.
	Browser browser.LaunchConfig
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		Headless:          true,
		Timeout:           DefaultTimeout,
		RetryAttempts:     DefaultRetryAttempts,
		ScreenshotOnError: true,
		VideoOnError:      false,
		Parallelism:       DefaultParallelism,
		SettleTime:        DefaultSettleTime,
		NetworkIdle:       browser.DefaultNetworkIdle,
		CaptureSource:     CaptureEvents,
		MaxErrorHistory:   capture.DefaultMaxHistory,
		OutputDir:         DefaultOutputDir,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry attempts must be >= 0, got %d", c.RetryAttempts))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be >= 1, got %d", c.Parallelism))
	}
	if c.SettleTime < 0 {
		errs = append(errs, fmt.Errorf("settle time must be >= 0, got %s", c.SettleTime))
	}
	if _, err := ParseCaptureSource(string(c.CaptureSource)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ReportConfig is the configuration as recorded in a report.
type ReportConfig struct {
	BaseURL           string `json:"baseUrl" yaml:"baseUrl"`
	Headless          bool   `json:"headless" yaml:"headless"`
	TimeoutMs         int64  `json:"timeout" yaml:"timeout"`
	RetryAttempts     int    `json:"retryAttempts" yaml:"retryAttempts"`
	ScreenshotOnError bool   `json:"screenshotOnError" yaml:"screenshotOnError"`
	VideoOnError      bool   `json:"videoOnError" yaml:"videoOnError"`
	Parallelism       int    `json:"parallelism" yaml:"parallelism"`
	SettleTimeMs      int64  `json:"settleTime" yaml:"settleTime"`
	CaptureSource     string `json:"captureSource" yaml:"captureSource"`
	// Scenario and CI are filled in by the CLI.
	Scenario string `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	CI       bool   `json:"ci,omitempty" yaml:"ci,omitempty"`
}

// ReportConfig returns the report view of c.
func (c Config) ReportConfig() ReportConfig {
	return ReportConfig{
		BaseURL:           c.BaseURL,
		Headless:          c.Headless,
		TimeoutMs:         c.Timeout.Milliseconds(),
		RetryAttempts:     c.RetryAttempts,
		ScreenshotOnError: c.ScreenshotOnError,
		VideoOnError:      c.VideoOnError,
		Parallelism:       c.Parallelism,
		SettleTimeMs:      c.SettleTime.Milliseconds(),
		CaptureSource:     string(c.CaptureSource),
	}
}

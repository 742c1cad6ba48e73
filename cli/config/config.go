package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents a runtime-errors.yaml file.
// All values are optional and act as defaults for the run flags.
// CLI flags always override config values; --ci overrides both.
type Config struct {
	BaseURL         string        `yaml:"base_url"`
	Headless        *bool         `yaml:"headless,omitempty"`
	Timeout         Duration      `yaml:"timeout"`
	Retries         *int          `yaml:"retries,omitempty"`
	Screenshot      *bool         `yaml:"screenshot,omitempty"`
	Video           *bool         `yaml:"video,omitempty"`
	Parallelism     int           `yaml:"parallelism"`
	SettleTime      Duration      `yaml:"settle_time"`
	MaxErrorHistory int           `yaml:"max_error_history"`
	OutputDir       string        `yaml:"output_dir"`
	Capture         string        `yaml:"capture"`
	Scenario        string        `yaml:"scenario"`
	ScenarioFiles   []string      `yaml:"scenario_files"`
	Gate            string        `yaml:"gate"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	Browser         BrowserConfig `yaml:"browser"`
	Storage         StorageConfig `yaml:"storage"`
	Notify          NotifyConfig  `yaml:"notify"`
}

// BrowserConfig holds browser launch defaults.
type BrowserConfig struct {
	// Bin is a Chromium binary; empty lets rod download one.
	Bin string `yaml:"bin"`
	// URL connects to a running browser's DevTools endpoint instead of launching.
	URL   string            `yaml:"url"`
	Proxy string            `yaml:"proxy"`
	Flags map[string]string `yaml:"flags,omitempty"`
}

// StorageConfig holds artifact storage defaults from the config file.
type StorageConfig struct {
	Dataset     string `yaml:"dataset"`
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// NotifyConfig holds run-completed notification defaults.
type NotifyConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	// Secret signs webhook bodies. Use ${VAR:?} rather than a literal.
	Secret  string            `yaml:"secret,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
	// History keeps the last N events in a redis list. Ignored by webhook.
	History int               `yaml:"history,omitempty"`
}

// Validate checks enumerated values. Zero values are always valid.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case "", "none", "fs", "s3":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q (want fs or s3)", c.Storage.Backend))
	}
	switch c.Notify.Type {
	case "", "none", "webhook", "redis":
	default:
		errs = append(errs, fmt.Errorf("notify.type: unknown type %q (want webhook or redis)", c.Notify.Type))
	}
	if c.Notify.Type != "" && c.Notify.Type != "none" && c.Notify.URL == "" {
		errs = append(errs, errors.New("notify.url is required when notify.type is set"))
	}
	if c.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism must be >= 0, got %d", c.Parallelism))
	}
	if c.Notify.History < 0 {
		errs = append(errs, fmt.Errorf("notify.history must be >= 0, got %d", c.Notify.History))
	}
	if c.Retries != nil && *c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must be >= 0, got %d", *c.Retries))
	}
	return errors.Join(errs...)
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

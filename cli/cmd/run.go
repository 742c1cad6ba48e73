package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/adapter"
	"github.com/nino-chavez/brand-site-sub018/adapter/redis"
	"github.com/nino-chavez/brand-site-sub018/adapter/webhook"
	"github.com/nino-chavez/brand-site-sub018/browser"
	rtconfig "github.com/nino-chavez/brand-site-sub018/cli/config"
	"github.com/nino-chavez/brand-site-sub018/lode"
	"github.com/nino-chavez/brand-site-sub018/log"
	"github.com/nino-chavez/brand-site-sub018/metrics"
	"github.com/nino-chavez/brand-site-sub018/runtime"
	"github.com/nino-chavez/brand-site-sub018/scenario"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// Exit codes. The exit code is the CI gate.
const (
	exitSuccess = 0
	exitFailure = 1
)

// ciParallelism is forced by --ci.
const ciParallelism = 5

// notifyTimeout bounds the run-completed notification after the run.
const notifyTimeout = 30 * time.Second

// launchBrowser overrides browser creation when non-nil. Tests use it to run
// the whole action against a stub browser.
var launchBrowser runtime.Launcher

// RunFlags returns the flags of the harness run. They are attached to the
// root command so the binary is invoked as `run-runtime-errors --ci`.
func RunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML config file (flags override its values)",
		},
		&cli.StringFlag{
			Name:  "scenario",
			Usage: "Scenario group to run, comma-separated groups, or \"all\"",
			Value: scenario.AllGroups,
		},
		&cli.StringSliceFlag{
			Name:  "scenario-file",
			Usage: "YAML scenario file adding a group (repeatable)",
		},
		&cli.StringFlag{
			Name:    "baseUrl",
			Aliases: []string{"base-url"},
			Usage:   "URL of the application under test",
			Value:   runtime.DefaultBaseURL,
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the browser headless",
			Value: true,
		},
		&cli.IntFlag{
			Name:  "retries",
			Usage: "Extra attempts for a failing scenario",
			Value: runtime.DefaultRetryAttempts,
		},
		&cli.BoolFlag{
			Name:  "screenshot",
			Usage: "Capture a full-page screenshot of failed scenarios",
			Value: true,
		},
		&cli.BoolFlag{
			Name:  "video",
			Usage: "Record video and keep it for failed scenarios",
		},
		&cli.BoolFlag{
			Name:  "ci",
			Usage: fmt.Sprintf("CI mode: forces headless and parallelism %d", ciParallelism),
		},
		&cli.IntFlag{
			Name:  "parallelism",
			Usage: "Scenarios per concurrent batch",
			Value: runtime.DefaultParallelism,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Navigation timeout and default scenario budget",
			Value: runtime.DefaultTimeout,
		},
		&cli.DurationFlag{
			Name:  "settle",
			Usage: "Wait after each scenario before collecting errors",
			Value: runtime.DefaultSettleTime,
		},
		&cli.StringFlag{
			Name:  "capture",
			Usage: "Capture source: events (native page events) or bridge (in-page array)",
			Value: string(runtime.CaptureEvents),
		},
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for reports, screenshots and videos",
			Value: runtime.DefaultOutputDir,
		},
		&cli.StringFlag{
			Name:  "gate",
			Usage: "Boolean expression over summary/results that fails the run. A custom gate replaces the default exit rule (exit 1 on any failed scenario or critical error)",
			Value: runtime.DefaultGate,
		},
		// Browser flags
		&cli.StringFlag{
			Name:  "browser-bin",
			Usage: "Chromium binary (default: auto-detect or download)",
		},
		&cli.StringFlag{
			Name:  "browser-url",
			Usage: "DevTools URL of a running browser to connect to instead of launching",
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "Proxy server for the browser",
		},
		// Storage flags
		&cli.StringFlag{
			Name:  "storage-backend",
			Usage: "Artifact storage backend: fs or s3 (default: none)",
		},
		&cli.StringFlag{
			Name:  "storage-path",
			Usage: "Storage path (fs: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "storage-region",
			Usage: "AWS region for the s3 backend",
		},
		&cli.StringFlag{
			Name:  "storage-endpoint",
			Usage: "Custom endpoint for S3-compatible stores (MinIO, R2)",
		},
		&cli.BoolFlag{
			Name:  "storage-s3-path-style",
			Usage: "Use path-style S3 addressing",
		},
		// Notification flags
		&cli.StringFlag{
			Name:  "notify",
			Usage: "Run-completed notification: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "notify-url",
			Usage: "Webhook endpoint or redis URL",
		},
		// Output flags
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Structured log level on stderr: debug, info, warn, error",
			Value: "warn",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Structured log layout on stderr: json or console",
			Value: "json",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "Suppress progress output",
		},
	}
}

// runChoice is the fully resolved invocation.
type runChoice struct {
	runner        runtime.Config
	scenario      string
	scenarioFiles []string
	ci            bool
	gate          string
	logLevel      string
	logFormat     string
	quiet         bool
	storage       storageChoice
	notify        notifyChoice
}

// storageChoice holds the resolved artifact storage configuration.
type storageChoice struct {
	backend   string // "", "none", "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	dataset   string
	region    string
	endpoint  string
	pathStyle bool
}

func (s storageChoice) enabled() bool {
	return s.backend != "" && s.backend != "none"
}

// notifyChoice holds the resolved notification configuration.
type notifyChoice struct {
	kind    string // "", "none", "webhook" or "redis"
	url     string
	channel string
	headers map[string]string
	secret  string
	timeout time.Duration
	retries int
	history int
}

func (n notifyChoice) enabled() bool {
	return n.kind != "" && n.kind != "none"
}

// RunAction runs the harness and exits with the gate's verdict.
func RunAction(c *cli.Context) error {
	var fileCfg *rtconfig.Config
	if path := c.String("config"); path != "" {
		loaded, err := rtconfig.Load(path)
		if err != nil {
			return cli.Exit(err.Error(), exitFailure)
		}
		fileCfg = loaded
	}

	choice, err := resolveRunChoice(c, fileCfg)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var stdout io.Writer = c.App.Writer
	if stdout == nil {
		stdout = os.Stdout
	}
	code, err := executeRun(ctx, choice, stdout, time.Now)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	return cli.Exit("", code)
}

// resolveRunChoice merges defaults, the config file and flags.
// Precedence: defaults < config file < explicit flags < --ci.
func resolveRunChoice(c *cli.Context, fc *rtconfig.Config) (runChoice, error) {
	if fc != nil {
		if err := fc.Validate(); err != nil {
			return runChoice{}, fmt.Errorf("invalid config: %w", err)
		}
	}

	capture, err := runtime.ParseCaptureSource(resolveString(c, "capture", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Capture })))
	if err != nil {
		return runChoice{}, fmt.Errorf("invalid --capture: %w", err)
	}

	rc := runtime.DefaultConfig()
	rc.BaseURL = resolveString(c, "baseUrl", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.BaseURL }))
	rc.Headless = resolveBool(c, "headless", configPtr(fc, func(cfg *rtconfig.Config) *bool { return cfg.Headless }, rc.Headless))
	rc.Timeout = resolveDuration(c, "timeout", configVal(fc, func(cfg *rtconfig.Config) time.Duration { return cfg.Timeout.Duration }))
	rc.RetryAttempts = resolveIntPtr(c, "retries", configVal(fc, func(cfg *rtconfig.Config) *int { return cfg.Retries }))
	rc.ScreenshotOnError = resolveBool(c, "screenshot", configPtr(fc, func(cfg *rtconfig.Config) *bool { return cfg.Screenshot }, rc.ScreenshotOnError))
	rc.VideoOnError = resolveBool(c, "video", configPtr(fc, func(cfg *rtconfig.Config) *bool { return cfg.Video }, rc.VideoOnError))
	rc.Parallelism = resolveInt(c, "parallelism", configVal(fc, func(cfg *rtconfig.Config) int { return cfg.Parallelism }))
	rc.SettleTime = resolveDuration(c, "settle", configVal(fc, func(cfg *rtconfig.Config) time.Duration { return cfg.SettleTime.Duration }))
	rc.CaptureSource = capture
	rc.OutputDir = resolveString(c, "output-dir", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.OutputDir }))
	if n := configVal(fc, func(cfg *rtconfig.Config) int { return cfg.MaxErrorHistory }); n > 0 {
		rc.MaxErrorHistory = n
	}
	rc.Browser = browser.LaunchConfig{
		Bin:        resolveString(c, "browser-bin", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Browser.Bin })),
		ControlURL: resolveString(c, "browser-url", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Browser.URL })),
		Proxy:      resolveString(c, "proxy", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Browser.Proxy })),
		Flags:      browserFlags(configVal(fc, func(cfg *rtconfig.Config) map[string]string { return cfg.Browser.Flags })),
	}

	choice := runChoice{
		runner:    rc,
		scenario:  resolveString(c, "scenario", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Scenario })),
		ci:        c.Bool("ci"),
		gate:      resolveString(c, "gate", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Gate })),
		logLevel:  resolveString(c, "log-level", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.LogLevel })),
		logFormat: resolveString(c, "log-format", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.LogFormat })),
		quiet:     c.Bool("quiet"),
	}

	// Scenario files from the config and from flags both apply.
	choice.scenarioFiles = append(choice.scenarioFiles, configVal(fc, func(cfg *rtconfig.Config) []string { return cfg.ScenarioFiles })...)
	choice.scenarioFiles = append(choice.scenarioFiles, c.StringSlice("scenario-file")...)

	choice.storage = storageChoice{
		backend:   resolveString(c, "storage-backend", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Storage.Backend })),
		path:      resolveString(c, "storage-path", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Storage.Path })),
		region:    resolveString(c, "storage-region", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Storage.Region })),
		dataset:   configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Storage.Dataset }),
		endpoint:  resolveString(c, "storage-endpoint", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Storage.Endpoint })),
		pathStyle: resolveBool(c, "storage-s3-path-style", configVal(fc, func(cfg *rtconfig.Config) bool { return cfg.Storage.S3PathStyle })),
	}
	if err := validateStorageChoice(choice.storage); err != nil {
		return runChoice{}, err
	}

	choice.notify = notifyChoice{
		kind:    resolveString(c, "notify", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Notify.Type })),
		url:     resolveString(c, "notify-url", configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Notify.URL })),
		channel: configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Notify.Channel }),
		headers: configVal(fc, func(cfg *rtconfig.Config) map[string]string { return cfg.Notify.Headers }),
		secret:  configVal(fc, func(cfg *rtconfig.Config) string { return cfg.Notify.Secret }),
		timeout: configVal(fc, func(cfg *rtconfig.Config) time.Duration { return cfg.Notify.Timeout.Duration }),
		retries: configPtr(fc, func(cfg *rtconfig.Config) *int { return cfg.Notify.Retries }, -1),
		history: configVal(fc, func(cfg *rtconfig.Config) int { return cfg.Notify.History }),
	}
	if err := validateNotifyChoice(choice.notify); err != nil {
		return runChoice{}, err
	}

	if choice.ci {
		choice.runner.Headless = true
		choice.runner.Parallelism = ciParallelism
	}

	if err := choice.runner.Validate(); err != nil {
		return runChoice{}, fmt.Errorf("invalid run configuration: %w", err)
	}
	if _, err := log.ParseLevel(choice.logLevel); err != nil {
		return runChoice{}, fmt.Errorf("invalid --log-level: %w", err)
	}
	if _, err := log.ParseFormat(choice.logFormat); err != nil {
		return runChoice{}, fmt.Errorf("invalid --log-format: %w", err)
	}
	return choice, nil
}

func validateStorageChoice(s storageChoice) error {
	switch s.backend {
	case "", "none":
		return nil
	case "fs", "s3":
		if s.path == "" {
			return fmt.Errorf("--storage-path is required when --storage-backend=%s", s.backend)
		}
		return nil
	default:
		return fmt.Errorf("invalid --storage-backend %q (must be fs or s3)", s.backend)
	}
}

func validateNotifyChoice(n notifyChoice) error {
	switch n.kind {
	case "", "none":
		return nil
	case "webhook", "redis":
		if n.url == "" {
			return fmt.Errorf("--notify-url is required when --notify=%s", n.kind)
		}
		return nil
	default:
		return fmt.Errorf("invalid --notify %q (must be webhook or redis)", n.kind)
	}
}

// browserFlags turns the config's flag map into sorted switches.
func browserFlags(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for name, val := range m {
		if val == "" {
			out = append(out, "--"+name)
		} else {
			out = append(out, "--"+name+"="+val)
		}
	}
	sort.Strings(out)
	return out
}

// executeRun performs one harness run and returns the exit code.
// Only setup failures are returned as errors; scenario failures are data.
func executeRun(ctx context.Context, choice runChoice, stdout io.Writer, now func() time.Time) (int, error) {
	startTime := now()
	meta := types.NewRunMeta(startTime)

	level, _ := log.ParseLevel(choice.logLevel)
	format, _ := log.ParseFormat(choice.logFormat)
	logger := log.NewLogger(meta, level, format)
	defer func() { _ = logger.Sync() }()

	gate, err := runtime.CompileGate(choice.gate)
	if err != nil {
		return exitFailure, err
	}

	groups, err := selectGroups(choice.scenario, choice.scenarioFiles)
	if err != nil {
		return exitFailure, err
	}

	out := choice.runner.OutputDir
	if err := prepareOutputDirs(out, choice.runner.VideoOnError); err != nil {
		return exitFailure, err
	}

	collector := metrics.NewCollector(string(choice.runner.CaptureSource), storageBackendName(choice.storage), meta.RunID)

	opts := []runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithCollector(collector),
	}
	if !choice.quiet {
		opts = append(opts, runtime.WithConsole(stdout))
	}
	if launchBrowser != nil {
		opts = append(opts, runtime.WithLauncher(launchBrowser))
	}

	var store lode.Writer
	if choice.storage.enabled() {
		s, err := buildStore(ctx, choice.storage, meta, startTime)
		if err != nil {
			return exitFailure, fmt.Errorf("failed to open storage: %w", err)
		}
		store = lode.NewInstrumentedWriter(s, collector)
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("storage close failed", map[string]any{"error": err.Error()})
			}
		}()
		opts = append(opts, runtime.WithStore(store))
	}

	runner := runtime.NewRunner(choice.runner, opts...)
	for _, g := range groups {
		runner.Register(g.Scenarios...)
	}

	results, runErr := runner.Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return exitFailure, fmt.Errorf("run failed: %w", runErr)
	}

	snap := collector.Snapshot()
	reportCfg := choice.runner.ReportConfig()
	reportCfg.Scenario = choice.scenario
	reportCfg.CI = choice.ci
	report := runtime.BuildReport(reportCfg, meta, results, &snap, now())

	finished := now()
	jsonPath := filepath.Join(out, runtime.ReportFileName(finished, "json"))
	mdPath := filepath.Join(out, runtime.ReportFileName(finished, "md"))
	if err := runtime.WriteReport(report, jsonPath); err != nil {
		return exitFailure, err
	}
	if err := runtime.WriteMarkdown(report, mdPath); err != nil {
		return exitFailure, err
	}
	if !choice.quiet {
		_, _ = fmt.Fprintf(stdout, "\nReports:\n  %s\n  %s\n", jsonPath, mdPath)
	}

	if store != nil {
		uploadReports(ctx, store, logger, jsonPath, mdPath)
		if err := store.WriteSummary(ctx, report.Summary); err != nil {
			logger.Warn("storing run summary failed", map[string]any{"error": err.Error()})
		}
	}

	code, err := gate.ExitCode(report)
	if err != nil {
		logger.Error("gate evaluation failed", map[string]any{"gate": gate.String(), "error": err.Error()})
	}
	if runErr != nil {
		// A cancelled run never passes.
		code = exitFailure
	}

	if choice.notify.enabled() {
		info := adapter.RunInfo{
			RunID:       meta.RunID,
			BaseURL:     choice.runner.BaseURL,
			Scenario:    choice.scenario,
			Day:         lode.DeriveDay(startTime),
			ExitCode:    code,
			ReportPath:  jsonPath,
			StoragePath: storagePath(choice.storage),
			Duration:    finished.Sub(startTime),
		}
		publishRunCompleted(ctx, choice.notify, adapter.NewRunCompletedEvent(info, report.Summary, finished), logger)
	}

	return code, nil
}

// selectGroups resolves the --scenario filter against the built-in catalog
// plus every scenario file.
func selectGroups(filter string, files []string) ([]scenario.Group, error) {
	groups := scenario.Groups()
	for _, f := range files {
		g, err := scenario.LoadFile(f)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	selected, err := scenario.Select(groups, filter)
	if err != nil {
		return nil, err
	}
	if len(scenario.Flatten(selected)) == 0 {
		return nil, fmt.Errorf("scenario filter %q selects no scenarios", filter)
	}
	return selected, nil
}

// prepareOutputDirs creates <out>, <out>/screenshots and, with video, <out>/videos.
func prepareOutputDirs(out string, video bool) error {
	dirs := []string{out, filepath.Join(out, "screenshots")}
	if video {
		dirs = append(dirs, filepath.Join(out, "videos"))
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}

// buildStore opens the Lode-backed artifact store for the run.
func buildStore(ctx context.Context, s storageChoice, meta *types.RunMeta, startTime time.Time) (*lode.Store, error) {
	cfg := lode.Config{
		Dataset: s.dataset,
		Day:     lode.DeriveDay(startTime),
		RunID:   meta.RunID,
	}
	switch s.backend {
	case "fs":
		return lode.NewFSStore(cfg, s.path)
	case "s3":
		bucket, prefix := lode.ParseS3Path(s.path)
		return lode.NewS3Store(ctx, cfg, lode.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       s.region,
			Endpoint:     s.endpoint,
			UsePathStyle: s.pathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", s.backend)
	}
}

func storageBackendName(s storageChoice) string {
	if !s.enabled() {
		return "none"
	}
	return s.backend
}

// storagePath returns a human-readable location of the stored artifacts.
func storagePath(s storageChoice) string {
	switch s.backend {
	case "fs":
		return s.path
	case "s3":
		return "s3://" + s.path
	default:
		return ""
	}
}

// uploadReports copies the written reports into the store. Failures are logged.
func uploadReports(ctx context.Context, store lode.Writer, logger *log.Logger, paths ...string) {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("reading report for upload failed", map[string]any{"path": p, "error": err.Error()})
			continue
		}
		contentType := "application/json"
		if filepath.Ext(p) == ".md" {
			contentType = "text/markdown"
		}
		if err := store.PutFile(ctx, "reports/"+filepath.Base(p), contentType, data); err != nil {
			logger.Warn("report upload failed", map[string]any{"path": p, "error": err.Error(), "transient": lode.Transient(err)})
		}
	}
}

// buildAdapter creates the notification adapter for n.
func buildAdapter(n notifyChoice) (adapter.Adapter, error) {
	switch n.kind {
	case "webhook":
		cfg := webhook.Config{URL: n.url, Headers: n.headers, Secret: n.secret, Timeout: n.timeout, Retries: webhook.DefaultRetries}
		if n.retries >= 0 {
			cfg.Retries = n.retries
		}
		return webhook.New(cfg)
	case "redis":
		cfg := redis.Config{URL: n.url, Channel: n.channel, Timeout: n.timeout, Retries: redis.DefaultRetries, History: n.history}
		if n.retries >= 0 {
			cfg.Retries = n.retries
		}
		return redis.New(cfg)
	default:
		return nil, fmt.Errorf("unknown notify type: %s", n.kind)
	}
}

// publishRunCompleted sends the event. Notification failures never change
// the exit code.
func publishRunCompleted(ctx context.Context, n notifyChoice, event *adapter.RunCompletedEvent, logger *log.Logger) {
	a, err := buildAdapter(n)
	if err != nil {
		logger.Warn("notification adapter setup failed", map[string]any{"type": n.kind, "error": err.Error()})
		return
	}
	defer func() { _ = a.Close() }()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := a.Publish(pubCtx, event); err != nil {
		logger.Warn("run notification failed", map[string]any{"type": n.kind, "error": err.Error()})
		return
	}
	logger.Info("run notification sent", map[string]any{"type": n.kind, "outcome": event.Outcome})
}

// resolveString returns the flag value if it was set explicitly, else the
// config value if non-empty, else the flag's default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) || cfgVal == "" {
		return c.String(name)
	}
	return cfgVal
}

// resolveInt is resolveString for ints; a zero config value means unset.
func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Int(name)
	}
	return cfgVal
}

// resolveIntPtr is resolveInt for optional config values where zero is meaningful.
func resolveIntPtr(c *cli.Context, name string, cfgVal *int) int {
	if c.IsSet(name) || cfgVal == nil {
		return c.Int(name)
	}
	return *cfgVal
}

// resolveBool prefers an explicit flag over the config value.
func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return cfgVal
}

// resolveDuration is resolveString for durations; zero means unset.
func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) || cfgVal == 0 {
		return c.Duration(name)
	}
	return cfgVal
}

// configVal reads a field from a possibly nil config.
func configVal[T any](cfg *rtconfig.Config, get func(*rtconfig.Config) T) T {
	var zero T
	if cfg == nil {
		return zero
	}
	return get(cfg)
}

// configPtr reads an optional field, falling back to def when nil or unset.
func configPtr[T any](cfg *rtconfig.Config, get func(*rtconfig.Config) *T, def T) T {
	if cfg == nil {
		return def
	}
	if p := get(cfg); p != nil {
		return *p
	}
	return def
}

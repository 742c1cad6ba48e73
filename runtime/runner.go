package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/capture"
	"github.com/nino-chavez/brand-site-sub018/lode"
	"github.com/nino-chavez/brand-site-sub018/log"
	"github.com/nino-chavez/brand-site-sub018/metrics"
	"github.com/nino-chavez/brand-site-sub018/scenario"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// ErrNoScenarios is returned by Run when nothing was registered.
var ErrNoScenarios = errors.New("no scenarios registered")

// ErrScenarioTimeout is the cancellation cause of a scenario that exceeded its budget.
var ErrScenarioTimeout = errors.New("scenario timeout")

// cleanupTimeout bounds screenshot capture after the scenario context is gone.
const cleanupTimeout = 10 * time.Second

// Launcher starts the shared browser. Used for test injection.
type Launcher func(ctx context.Context) (browser.Browser, error)

// Option configures a Runner.
type Option func(*Runner)

// WithLauncher overrides browser creation.
func WithLauncher(l Launcher) Option {
	return func(r *Runner) { r.launcher = l }
}

// WithLogger sets the structured logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithCollector sets the metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(r *Runner) { r.collector = c }
}

// WithStore uploads screenshots and captured errors through w.
func WithStore(w lode.Writer) Option {
	return func(r *Runner) { r.store = w }
}

// WithConsole sets the writer for human progress lines.
func WithConsole(w io.Writer) Option {
	return func(r *Runner) { r.console = NewConsole(w) }
}

// Runner executes registered scenarios against one shared browser.
type Runner struct {
	cfg       Config
	launcher  Launcher
	logger    *log.Logger
	collector *metrics.Collector
	store     lode.Writer
	console   *Console
	now       func() time.Time

	mu        sync.Mutex
	scenarios []scenario.Scenario
}

// NewRunner creates a runner. Zero-valued config fields keep their defaults.
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:     withDefaults(cfg),
		logger:  log.NewNop(),
		console: NewConsole(nil),
		now:     time.Now,
	}
	r.launcher = r.defaultLauncher
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.NetworkIdle <= 0 {
		cfg.NetworkIdle = def.NetworkIdle
	}
	if cfg.CaptureSource == "" {
		cfg.CaptureSource = def.CaptureSource
	}
	if cfg.MaxErrorHistory <= 0 {
		cfg.MaxErrorHistory = def.MaxErrorHistory
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	if cfg.SettleTime < 0 {
		cfg.SettleTime = 0
	}
	return cfg
}

func (r *Runner) defaultLauncher(ctx context.Context) (browser.Browser, error) {
	lc := r.cfg.Browser
	lc.Headless = r.cfg.Headless
	return browser.Launch(ctx, lc)
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// Register appends scenarios. Duplicate names are kept and run twice.
func (r *Runner) Register(s ...scenario.Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios = append(r.scenarios, s...)
}

// Scenarios returns the registered scenarios in registration order.
func (r *Runner) Scenarios() []scenario.Scenario {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]scenario.Scenario, len(r.scenarios))
	copy(out, r.scenarios)
	return out
}

// Run executes every registered scenario and returns one result per
// scenario in registration order.
//
// Batches of Parallelism scenarios run one after another; scenarios inside a
// batch run concurrently, each in its own browsing context. If ctx is
// cancelled no further batch starts and the results gathered so far are
// returned with ctx's error.
func (r *Runner) Run(ctx context.Context) ([]types.TestResult, error) {
	scenarios := r.Scenarios()
	if len(scenarios) == 0 {
		return nil, ErrNoScenarios
	}

	r.logger.Info("starting run", map[string]any{
		"scenarios":   len(scenarios),
		"parallelism": r.cfg.Parallelism,
		"base_url":    r.cfg.BaseURL,
		"capture":     string(r.cfg.CaptureSource),
	})

	b, err := r.launcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			r.logger.Warn("browser close failed", map[string]any{"error": err.Error()})
		}
	}()

	results := make([]types.TestResult, len(scenarios))
	for n, batch := range Batches(len(scenarios), r.cfg.Parallelism) {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run cancelled", map[string]any{"completed": batch.Start})
			return results[:batch.Start], err
		}
		r.logger.Debug("starting batch", map[string]any{
			"batch": n + 1,
			"size":  batch.Len(),
		})

		// runScenario never fails; every outcome is a result.
		var g errgroup.Group
		for i := batch.Start; i < batch.End; i++ {
			g.Go(func() error {
				results[i] = r.runScenario(ctx, b, scenarios[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	r.console.Summary(results)
	s := types.Summarize(results)
	r.logger.Info("run finished", map[string]any{
		"total":           s.Total,
		"passed":          s.Passed,
		"failed":          s.Failed,
		"critical_errors": s.CriticalErrors,
	})
	return results, nil
}

// runScenario makes up to RetryAttempts+1 attempts and returns the first
// passing attempt or, failing that, the last one. Earlier attempts are discarded.
func (r *Runner) runScenario(ctx context.Context, b browser.Browser, s scenario.Scenario) types.TestResult {
	r.collector.IncScenarioStarted()
	total := r.cfg.RetryAttempts + 1

	var result types.TestResult
	for attempt := 1; attempt <= total; attempt++ {
		if attempt > 1 {
			r.collector.IncScenarioRetried()
			r.console.Retrying(s.Name, attempt, total)
			r.logger.Info("retrying scenario", map[string]any{
				"scenario": s.Name,
				"attempt":  attempt,
				"of":       total,
			})
		}
		result = r.executeScenario(ctx, b, s, attempt == total)
		result.Attempts = attempt
		if result.Passed || ctx.Err() != nil {
			break
		}
	}

	if result.Passed {
		r.collector.IncScenarioPassed()
	} else {
		r.collector.IncScenarioFailed()
	}
	severities := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		severities[i] = string(e.Severity)
	}
	r.collector.AddErrors(severities...)

	if r.store != nil && len(result.Errors) > 0 {
		if err := r.store.WriteErrors(context.WithoutCancel(ctx), s.Name, result.Errors); err != nil {
			r.logger.Warn("storing captured errors failed", map[string]any{
				"scenario":  s.Name,
				"error":     err.Error(),
				"transient": lode.Transient(err),
			})
		}
	}
	return result
}

// logBuffer collects raw page log lines. Page events arrive on driver goroutines.
type logBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (l *logBuffer) add(line string) {
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
}

func (l *logBuffer) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// executeScenario runs one attempt in a fresh browsing context. It never
// returns an error: orchestration failures become a failing result with a
// synthetic CRITICAL error. Artifacts are only kept for a final attempt.
func (r *Runner) executeScenario(ctx context.Context, b browser.Browser, s scenario.Scenario, final bool) types.TestResult {
	start := r.now()
	r.console.Running(s.Name)
	logger := r.logger.With(map[string]any{"scenario": s.Name})

	result := types.TestResult{
		Scenario:    s.Name,
		Category:    string(s.Category),
		Errors:      []types.CapturedError{},
		Screenshots: []string{},
		Logs:        []string{},
	}
	logs := &logBuffer{}

	opts := browser.ContextOptions{NetworkIdle: r.cfg.NetworkIdle}
	var videoDir string
	if r.cfg.VideoOnError {
		videoDir = filepath.Join(r.cfg.OutputDir, "videos", fmt.Sprintf("%s-%d", SanitizeName(s.Name), start.UnixMilli()))
		opts.VideoDir = videoDir
	}
	keepVideo := false

	bctx, err := b.NewContext(ctx, opts)
	if err != nil {
		return r.finish(logger, r.orchestrationFailure(result, logs, start, fmt.Errorf("open browsing context: %w", err)))
	}
	r.collector.IncContextOpened()
	defer func() {
		if err := bctx.Close(); err != nil {
			logger.Warn("browsing context close failed", map[string]any{"error": err.Error()})
		}
		r.collector.IncContextClosed()
		if videoDir != "" && !keepVideo {
			_ = os.RemoveAll(videoDir)
		}
	}()

	engine := capture.New(capture.Config{MaxHistory: r.cfg.MaxErrorHistory})
	defer engine.Close()

	page, err := bctx.NewPage(ctx)
	if err != nil {
		return r.finish(logger, r.orchestrationFailure(result, logs, start, fmt.Errorf("open page: %w", err)))
	}
	if err := page.AddInitScript(ctx, capture.BridgeScript()); err != nil {
		return r.finish(logger, r.orchestrationFailure(result, logs, start, fmt.Errorf("install bridge: %w", err)))
	}
	if r.cfg.CaptureSource == CaptureEvents {
		engine.Attach(page)
	}
	removeConsole := page.OnConsole(func(m browser.ConsoleMessage) {
		logs.add(fmt.Sprintf("[%s] %s", m.Level, m.Text))
	})
	defer removeConsole()
	removePageError := page.OnPageError(func(pe browser.PageError) {
		logs.add("[pageerror] " + pe.Message)
	})
	defer removePageError()

	runErr := r.drive(ctx, s, page, engine, logs, logger)
	if runErr == nil {
		runErr = r.collect(ctx, page, engine)
	}

	if runErr != nil {
		result.Errors = engine.Errors(capture.Filter{})
		result = r.orchestrationFailure(result, logs, start, runErr)
	} else {
		result.Errors = engine.Errors(capture.Filter{})
		result.Passed = Passed(s.ExpectedErrors, result.Errors)
		if !result.Passed {
			for _, t := range MissingExpected(s.ExpectedErrors, result.Errors) {
				logs.add(fmt.Sprintf("[harness] expected error %s was not captured", t))
			}
		}
		result.Logs = logs.snapshot()
		result.Duration = r.now().Sub(start).Milliseconds()
	}

	if !result.Passed && final {
		if r.cfg.ScreenshotOnError {
			if p, err := r.screenshot(ctx, page, s.Name, runErr != nil); err != nil {
				logger.Warn("screenshot failed", map[string]any{"error": err.Error()})
			} else {
				result.Screenshots = append(result.Screenshots, p)
			}
		}
		if videoDir != "" {
			keepVideo = true
			result.Videos = append(result.Videos, videoDir)
		}
	}

	return r.finish(logger, result)
}

// drive loads the base URL under Timeout and runs the scenario body under
// its budget. The body's context is cancelled at the deadline, which aborts
// in-flight page calls.
func (r *Runner) drive(ctx context.Context, s scenario.Scenario, page browser.Page, engine *capture.Engine, logs *logBuffer, logger *log.Logger) error {
	navCtx, cancelNav := context.WithTimeout(ctx, r.cfg.Timeout)
	err := page.Goto(navCtx, r.cfg.BaseURL)
	cancelNav()
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", r.cfg.BaseURL, err)
	}
	if ua, err := page.UserAgent(ctx); err == nil {
		engine.SetUserAgent(ua)
	}

	budget := s.MaxDuration
	if budget <= 0 {
		budget = r.cfg.Timeout
	}
	execCtx, cancel := context.WithTimeoutCause(ctx, budget, ErrScenarioTimeout)
	defer cancel()
	execCtx = scenario.WithAdvice(execCtx, func(finding string) {
		logs.add("[advisory] " + finding)
		r.console.Advisory(s.Name, finding)
		logger.Warn("advisory finding", map[string]any{"finding": finding})
	})

	done := make(chan error, 1)
	go func() {
		done <- s.Execute(execCtx, page)
	}()

	select {
	case err = <-done:
	case <-execCtx.Done():
		err = context.Cause(execCtx)
	}
	if errors.Is(context.Cause(execCtx), ErrScenarioTimeout) && err != nil {
		r.collector.IncScenarioTimedOut()
		return fmt.Errorf("%w after %s", ErrScenarioTimeout, budget)
	}
	if err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

// collect waits the settle time and, in bridge mode, feeds the bridge
// entries through the engine.
func (r *Runner) collect(ctx context.Context, page browser.Page, engine *capture.Engine) error {
	if err := scenario.Sleep(ctx, r.cfg.SettleTime); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	if r.cfg.CaptureSource != CaptureBridge {
		return nil
	}
	entries, err := capture.ReadBridge(ctx, page)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		engine.Capture(entry.Raw())
	}
	return nil
}

// orchestrationFailure turns err into a failing result. Errors captured
// before the failure are kept; one synthetic CRITICAL error is appended.
func (r *Runner) orchestrationFailure(result types.TestResult, logs *logBuffer, start time.Time, err error) types.TestResult {
	now := r.now()
	msg := "Orchestration failure: " + err.Error()
	if errors.Is(err, ErrScenarioTimeout) {
		msg = "Scenario timeout: " + err.Error()
	}
	result.Passed = false
	result.Errors = append(result.Errors, types.CapturedError{
		ID:        fmt.Sprintf("harness_%d", now.UnixMilli()),
		Timestamp: now.UnixMilli(),
		Message:   msg,
		Type:      types.ErrorUnknown,
		Severity:  types.SeverityCritical,
		Source:    types.SourceHarness,
		Context:   types.ErrorContext{PreviousErrors: len(result.Errors)},
	})
	logs.add("[harness] " + msg)
	result.Logs = logs.snapshot()
	result.Duration = now.Sub(start).Milliseconds()
	return result
}

// screenshot captures a full-page PNG to
// <out>/screenshots/<name>-[error-]<ms>.png and uploads it to the store.
func (r *Runner) screenshot(ctx context.Context, page browser.Page, name string, orchestration bool) (string, error) {
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	data, err := page.Screenshot(shotCtx, true)
	if err != nil {
		return "", err
	}
	prefix := ""
	if orchestration {
		prefix = "error-"
	}
	file := fmt.Sprintf("%s-%s%d.png", SanitizeName(name), prefix, r.now().UnixMilli())
	dir := filepath.Join(r.cfg.OutputDir, "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, file)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", err
	}
	if r.store != nil {
		if err := r.store.PutFile(shotCtx, "screenshots/"+file, "image/png", data); err != nil {
			r.logger.Warn("screenshot upload failed", map[string]any{"file": file, "error": err.Error(), "transient": lode.Transient(err)})
		}
	}
	return p, nil
}

func (r *Runner) finish(logger *log.Logger, result types.TestResult) types.TestResult {
	r.console.Result(result)
	logger.Info("scenario finished", map[string]any{
		"passed":      result.Passed,
		"errors":      len(result.Errors),
		"critical":    result.CriticalCount(),
		"duration_ms": result.Duration,
	})
	return result
}

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/capture"
	"github.com/nino-chavez/brand-site-sub018/lode"
	"github.com/nino-chavez/brand-site-sub018/metrics"
	"github.com/nino-chavez/brand-site-sub018/scenario"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testConfig returns a fast configuration writing into a temp dir.
func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.BaseURL = "http://app.test/"
	cfg.Timeout = 2 * time.Second
	cfg.SettleTime = 0
	cfg.RetryAttempts = 0
	cfg.OutputDir = t.TempDir()
	return cfg
}

func stubLauncher(b *browser.StubBrowser) Launcher {
	return func(context.Context) (browser.Browser, error) { return b, nil }
}

func newTestRunner(t *testing.T, cfg Config, b *browser.StubBrowser, opts ...Option) *Runner {
	t.Helper()
	return NewRunner(cfg, append([]Option{WithLauncher(stubLauncher(b))}, opts...)...)
}

func stubPage(t *testing.T, page browser.Page) *browser.StubPage {
	t.Helper()
	p, ok := page.(*browser.StubPage)
	if !ok {
		t.Fatalf("page is %T, want *browser.StubPage", page)
	}
	return p
}

// emitting returns a scenario body that raises message as a console error.
func emitting(t *testing.T, message string) scenario.ExecuteFunc {
	return func(ctx context.Context, page browser.Page) error {
		stubPage(t, page).EmitConsole(browser.ConsoleMessage{Level: "error", Text: message})
		return nil
	}
}

func noop(context.Context, browser.Page) error { return nil }

func screenshotFiles(t *testing.T, cfg Config) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, "screenshots"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_NoScenarios(t *testing.T) {
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser())
	if _, err := r.Run(t.Context()); !errors.Is(err, ErrNoScenarios) {
		t.Fatalf("Run error = %v, want ErrNoScenarios", err)
	}
}

func TestRun_LaunchFailure(t *testing.T) {
	boom := errors.New("no chrome")
	r := NewRunner(testConfig(t), WithLauncher(func(context.Context) (browser.Browser, error) {
		return nil, boom
	}))
	r.Register(scenario.Scenario{Name: "a", Category: scenario.CategoryDOM, Execute: noop})

	if _, err := r.Run(t.Context()); !errors.Is(err, boom) {
		t.Fatalf("Run error = %v, want %v", err, boom)
	}
}

func TestRun_CleanScenarioPasses(t *testing.T) {
	b := browser.NewStubBrowser()
	r := newTestRunner(t, testConfig(t), b)
	r.Register(scenario.Scenario{Name: "Navigate only", Category: scenario.CategoryHooks, Execute: noop})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	got := results[0]
	if !got.Passed {
		t.Errorf("passed = false, errors = %+v", got.Errors)
	}
	if len(got.Errors) != 0 {
		t.Errorf("errors = %+v, want none", got.Errors)
	}
	if got.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", got.Attempts)
	}

	page := b.Contexts()[0].Pages()[0]
	if actions := page.Actions(); len(actions) == 0 || actions[0] != "goto http://app.test/" {
		t.Errorf("actions = %v, want goto base url first", actions)
	}
	if scripts := page.InitScripts(); len(scripts) != 1 || scripts[0] != capture.BridgeScript() {
		t.Error("bridge init script not installed")
	}
	if page.Subscriptions() != 0 {
		t.Errorf("subscriptions = %d after run, want 0", page.Subscriptions())
	}
}

func TestRun_NonCriticalErrorPasses(t *testing.T) {
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser())
	r.Register(scenario.Scenario{
		Name:     "Null read",
		Category: scenario.CategoryNullSafety,
		Execute:  emitting(t, "Cannot read properties of null (reading 'x')"),
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if !got.Passed {
		t.Fatal("non-critical error should not fail an unannotated scenario")
	}
	if len(got.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(got.Errors))
	}
	if got.Errors[0].Type != types.ErrorNullAccess || got.Errors[0].Severity != types.SeverityHigh {
		t.Errorf("classified as %s/%s, want NULL_ACCESS/HIGH", got.Errors[0].Type, got.Errors[0].Severity)
	}
	if got.Errors[0].UserAgent != browser.StubUserAgent {
		t.Errorf("user agent = %q", got.Errors[0].UserAgent)
	}
	if len(got.Logs) != 1 || !strings.Contains(got.Logs[0], "Cannot read properties of null") {
		t.Errorf("logs = %v", got.Logs)
	}
}

func TestRun_CriticalErrorFails(t *testing.T) {
	cfg := testConfig(t)
	r := newTestRunner(t, cfg, browser.NewStubBrowser())
	r.Register(scenario.Scenario{
		Name:     "Uncaught type error",
		Category: scenario.CategoryType,
		Execute:  emitting(t, "Uncaught TypeError: x is not a function"),
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if got.Passed {
		t.Fatal("critical error should fail the scenario")
	}
	if got.Errors[0].Severity != types.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", got.Errors[0].Severity)
	}

	files := screenshotFiles(t, cfg)
	if len(files) != 1 {
		t.Fatalf("screenshots = %v, want 1", files)
	}
	if !strings.HasPrefix(files[0], "uncaught-type-error-") || strings.HasPrefix(files[0], "uncaught-type-error-error-") {
		t.Errorf("screenshot name = %q", files[0])
	}
	if diff := cmp.Diff([]string{filepath.Join(cfg.OutputDir, "screenshots", files[0])}, got.Screenshots); diff != "" {
		t.Errorf("screenshots mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ThrownExceptionFromDriverFails(t *testing.T) {
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser())
	r.Register(scenario.Scenario{
		Name:     "Lens update throws",
		Category: scenario.CategoryType,
		Execute: func(ctx context.Context, page browser.Page) error {
			// Chrome reports a thrown Error as a bare banner plus the
			// error's own description.
			stubPage(t, page).EmitException(&proto.RuntimeExceptionThrown{
				ExceptionDetails: &proto.RuntimeExceptionDetails{
					Text: "Uncaught",
					URL:  "http://app.test/main.js",
					Exception: &proto.RuntimeRemoteObject{
						Description: "TypeError: lens.update is not a function\n    at CursorLens (http://app.test/main.js:40:9)",
					},
				},
			})
			return nil
		},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if got.Passed {
		t.Fatalf("thrown exception should fail the scenario, errors = %+v", got.Errors)
	}
	if len(got.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(got.Errors))
	}
	e := got.Errors[0]
	if e.Type != types.ErrorTypeError || e.Severity != types.SeverityCritical {
		t.Errorf("classified as %s/%s, want TYPE_ERROR/CRITICAL", e.Type, e.Severity)
	}
	if e.Message != "Uncaught TypeError: lens.update is not a function" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestRun_ExpectedErrorMissingFails(t *testing.T) {
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser())
	r.Register(scenario.Scenario{
		Name:           "Missing provider",
		Category:       scenario.CategoryContext,
		Execute:        noop,
		ExpectedErrors: []types.ErrorType{types.ErrorContextMissing},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if got.Passed {
		t.Fatal("missing expected error should fail")
	}
	if !containsLine(got.Logs, "expected error CONTEXT_MISSING was not captured") {
		t.Errorf("logs = %v", got.Logs)
	}
}

func TestRun_ExpectedErrorPresentPasses(t *testing.T) {
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser())
	r.Register(scenario.Scenario{
		Name:           "Missing provider",
		Category:       scenario.CategoryContext,
		Execute:        emitting(t, "useTheme must be used within a ThemeProvider"),
		ExpectedErrors: []types.ErrorType{types.ErrorContextMissing},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatalf("expected error present should pass, errors = %+v", results[0].Errors)
	}
}

func TestRun_RetryKeepsLastAttempt(t *testing.T) {
	cfg := testConfig(t)
	cfg.RetryAttempts = 2
	collector := metrics.NewCollector("events", "none", "run-1")
	b := browser.NewStubBrowser()
	var console bytes.Buffer
	r := newTestRunner(t, cfg, b, WithCollector(collector), WithConsole(&console))

	var attempts atomic.Int32
	r.Register(scenario.Scenario{
		Name:     "Flaky",
		Category: scenario.CategoryAsync,
		Execute: func(ctx context.Context, page browser.Page) error {
			n := attempts.Add(1)
			if n < 3 {
				stubPage(t, page).EmitConsole(browser.ConsoleMessage{
					Level: "error",
					Text:  fmt.Sprintf("Uncaught Error: attempt %d", n),
				})
			}
			return nil
		},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if !got.Passed {
		t.Fatal("third attempt should pass")
	}
	if got.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", got.Attempts)
	}
	if len(got.Errors) != 0 || len(got.Logs) != 0 {
		t.Errorf("earlier attempts leaked into the result: errors=%v logs=%v", got.Errors, got.Logs)
	}
	if files := screenshotFiles(t, cfg); len(files) != 0 {
		t.Errorf("non-final attempts left screenshots: %v", files)
	}
	if n := strings.Count(console.String(), "↻ Retrying: Flaky"); n != 2 {
		t.Errorf("retry lines = %d, want 2\n%s", n, console.String())
	}

	snap := collector.Snapshot()
	if snap.ScenariosStarted != 1 || snap.ScenariosRetried != 2 || snap.ScenariosPassed != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.ContextsOpened != 3 || snap.LeakedContexts() != 0 {
		t.Errorf("contexts opened=%d leaked=%d", snap.ContextsOpened, snap.LeakedContexts())
	}
	if len(b.Contexts()) != 3 || b.OpenContexts() != 0 {
		t.Errorf("contexts = %d open = %d", len(b.Contexts()), b.OpenContexts())
	}
}

func TestRun_BatchesAndCleanup(t *testing.T) {
	cfg := testConfig(t)
	cfg.Parallelism = 3
	b := browser.NewStubBrowser()
	r := newTestRunner(t, cfg, b)

	var active, peak atomic.Int32
	var mu sync.Mutex
	var order []string
	names := make([]string, 10)
	for i := range names {
		names[i] = fmt.Sprintf("scenario-%02d", i)
		name := names[i]
		r.Register(scenario.Scenario{
			Name:     name,
			Category: scenario.CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
				err := scenario.Sleep(ctx, 20*time.Millisecond)
				active.Add(-1)
				if i%2 == 0 {
					return errors.New("scenario body failed")
				}
				return err
			},
		})
	}

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := make([]string, len(results))
	for i, res := range results {
		got[i] = res.Scenario
	}
	if diff := cmp.Diff(names, got); diff != "" {
		t.Errorf("results not in registration order (-want +got):\n%s", diff)
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
	if len(b.Contexts()) != 10 {
		t.Errorf("contexts opened = %d, want 10", len(b.Contexts()))
	}
	if open := b.OpenContexts(); open != 0 {
		t.Errorf("%d contexts leaked", open)
	}

	// every scenario of batch k starts before any of batch k+1
	mu.Lock()
	defer mu.Unlock()
	for i, name := range order {
		var idx int
		if _, err := fmt.Sscanf(name, "scenario-%02d", &idx); err != nil {
			t.Fatalf("bad name %q", name)
		}
		if idx/3 != i/3 {
			t.Errorf("scenario %s ran in batch %d, want %d", name, i/3, idx/3)
		}
	}

	if got := len(Batches(10, 3)); got != 4 {
		t.Errorf("batches = %d, want 4", got)
	}
}

func TestRun_ScenarioTimeout(t *testing.T) {
	cfg := testConfig(t)
	collector := metrics.NewCollector("events", "none", "run-1")
	b := browser.NewStubBrowser()
	r := newTestRunner(t, cfg, b, WithCollector(collector))
	r.Register(scenario.Scenario{
		Name:        "Hangs",
		Category:    scenario.CategoryAsync,
		MaxDuration: 50 * time.Millisecond,
		Execute: func(ctx context.Context, page browser.Page) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if got.Passed {
		t.Fatal("timed out scenario should fail")
	}
	if len(got.Errors) != 1 {
		t.Fatalf("errors = %+v, want one synthetic error", got.Errors)
	}
	synthetic := got.Errors[0]
	if !strings.HasPrefix(synthetic.Message, "Scenario timeout") {
		t.Errorf("message = %q", synthetic.Message)
	}
	if synthetic.Severity != types.SeverityCritical || synthetic.Type != types.ErrorUnknown || synthetic.Source != types.SourceHarness {
		t.Errorf("synthetic error = %+v", synthetic)
	}
	if collector.Snapshot().ScenariosTimedOut != 1 {
		t.Errorf("timed out = %d, want 1", collector.Snapshot().ScenariosTimedOut)
	}
	if files := screenshotFiles(t, cfg); len(files) != 1 || !strings.HasPrefix(files[0], "hangs-error-") {
		t.Errorf("screenshots = %v, want one hangs-error-*.png", files)
	}
	if b.OpenContexts() != 0 {
		t.Error("context leaked after timeout")
	}
}

func TestRun_HangingPageIsCancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScreenshotOnError = false
	b := browser.NewStubBrowser()
	r := newTestRunner(t, cfg, b)
	r.Register(scenario.Scenario{
		Name:        "Hanging page",
		Category:    scenario.CategoryDOM,
		MaxDuration: 50 * time.Millisecond,
		Execute: func(ctx context.Context, page browser.Page) error {
			stubPage(t, page).Hang = true
			return page.Reload(ctx)
		},
	})

	start := time.Now()
	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("timeout did not abort the page call (took %s)", time.Since(start))
	}
	if results[0].Passed {
		t.Fatal("hanging scenario should fail")
	}
}

func TestRun_NavigationFailure(t *testing.T) {
	cfg := testConfig(t)
	b := browser.NewStubBrowser()
	b.OnPage = func(p *browser.StubPage) {
		p.OnGoto = func(*browser.StubPage, string) error { return errors.New("net::ERR_CONNECTION_REFUSED") }
	}
	r := newTestRunner(t, cfg, b)
	r.Register(scenario.Scenario{Name: "Unreachable", Category: scenario.CategoryIntegration, Execute: noop})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if got.Passed {
		t.Fatal("navigation failure should fail")
	}
	last := got.Errors[len(got.Errors)-1]
	if !strings.Contains(last.Message, "Orchestration failure: navigate to http://app.test/") {
		t.Errorf("message = %q", last.Message)
	}
	if b.OpenContexts() != 0 {
		t.Error("context leaked")
	}
}

func TestRun_ContextOpenFailure(t *testing.T) {
	b := browser.NewStubBrowser()
	b.ContextErr = errors.New("target closed")
	r := newTestRunner(t, testConfig(t), b)
	r.Register(scenario.Scenario{Name: "a", Category: scenario.CategoryDOM, Execute: noop})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if results[0].Passed || results[0].CriticalCount() != 1 {
		t.Errorf("result = %+v", results[0])
	}
}

func TestRun_BridgeCapture(t *testing.T) {
	cfg := testConfig(t)
	cfg.CaptureSource = CaptureBridge
	b := browser.NewStubBrowser()
	b.OnPage = func(p *browser.StubPage) {
		p.EvaluateFunc = func(fn string) (any, error) {
			if !strings.Contains(fn, capture.BridgeGlobal) {
				return nil, nil
			}
			return []map[string]any{{
				"timestamp": 1700000000000,
				"message":   "Uncaught TypeError: x is not a function",
				"source":    "error",
				"filename":  "http://app.test/app.js",
				"lineno":    10,
				"colno":     5,
			}}, nil
		}
	}
	r := newTestRunner(t, cfg, b)
	r.Register(scenario.Scenario{
		Name:     "Bridge",
		Category: scenario.CategoryType,
		Execute: func(ctx context.Context, page browser.Page) error {
			// native events are not attached in bridge mode
			stubPage(t, page).EmitConsole(browser.ConsoleMessage{Level: "error", Text: "Uncaught Error: ignored"})
			return nil
		},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := results[0]
	if len(got.Errors) != 1 {
		t.Fatalf("errors = %+v, want exactly the bridge entry", got.Errors)
	}
	if got.Errors[0].Source != types.SourcePageError {
		t.Errorf("source = %s, want pageerror", got.Errors[0].Source)
	}
	if got.Errors[0].Timestamp != 1700000000000 {
		t.Errorf("timestamp = %d", got.Errors[0].Timestamp)
	}
	if got.Passed {
		t.Error("critical bridge entry should fail the scenario")
	}
}

func TestRun_AdvisoryNeverFails(t *testing.T) {
	var console bytes.Buffer
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser(), WithConsole(&console))
	r.Register(scenario.Scenario{
		Name:     "Loop probe",
		Category: scenario.CategoryHooks,
		Execute: func(ctx context.Context, page browser.Page) error {
			scenario.Advise(ctx, "render loop suspected: %d renders", 120)
			return nil
		},
	})

	results, err := r.Run(t.Context())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !results[0].Passed {
		t.Fatal("advisory finding must not fail the scenario")
	}
	if !containsLine(results[0].Logs, "[advisory] render loop suspected: 120 renders") {
		t.Errorf("logs = %v", results[0].Logs)
	}
	if !strings.Contains(console.String(), "⚠ Loop probe: ") {
		t.Errorf("console = %q", console.String())
	}
}

func TestRun_StoreReceivesArtifacts(t *testing.T) {
	store := lode.NewStubWriter()
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser(), WithStore(store))
	r.Register(
		scenario.Scenario{Name: "Broken", Category: scenario.CategoryType, Execute: emitting(t, "Uncaught TypeError: boom")},
		scenario.Scenario{Name: "Clean", Category: scenario.CategoryType, Execute: noop},
	)

	if _, err := r.Run(t.Context()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(store.Errors["Broken"]) != 1 {
		t.Errorf("stored errors = %v", store.Errors)
	}
	if _, ok := store.Errors["Clean"]; ok {
		t.Error("clean scenario should store nothing")
	}
	names := store.FileNames()
	if len(names) != 1 || !strings.HasPrefix(names[0], "screenshots/broken-") {
		t.Errorf("stored files = %v", names)
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser())
	r.Register(scenario.Scenario{Name: "a", Category: scenario.CategoryDOM, Execute: noop})

	results, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestRun_ConsoleLines(t *testing.T) {
	var console bytes.Buffer
	r := newTestRunner(t, testConfig(t), browser.NewStubBrowser(), WithConsole(&console))
	r.Register(
		scenario.Scenario{Name: "Good", Category: scenario.CategoryDOM, Execute: noop},
		scenario.Scenario{Name: "Bad", Category: scenario.CategoryDOM, Execute: emitting(t, "Uncaught Error: x")},
	)

	if _, err := r.Run(t.Context()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	out := console.String()
	for _, want := range []string{"▶ Running: Good", "✓ Good (", "✗ Bad (", "ms) - 1 errors", "[CRITICAL] UNKNOWN: Uncaught Error: x"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestRegister_KeepsDuplicates(t *testing.T) {
	r := NewRunner(Config{})
	s := scenario.Scenario{Name: "dup", Category: scenario.CategoryDOM, Execute: noop}
	r.Register(s, s)
	if n := len(r.Scenarios()); n != 2 {
		t.Errorf("registered = %d, want 2", n)
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	got := NewRunner(Config{}).Config()
	if got.BaseURL != DefaultBaseURL || got.Parallelism != DefaultParallelism || got.Timeout != DefaultTimeout {
		t.Errorf("config = %+v", got)
	}
	if got.CaptureSource != CaptureEvents || got.MaxErrorHistory != capture.DefaultMaxHistory {
		t.Errorf("config = %+v", got)
	}
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

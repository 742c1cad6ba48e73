package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FullConfig(t *testing.T) {
	yaml := `base_url: http://localhost:4173
headless: false
timeout: 45s
retries: 1
screenshot: true
video: true
parallelism: 4
settle_time: 500ms
max_error_history: 50
output_dir: ./artifacts
capture: bridge
scenario: context
scenario_files:
  - scenarios/gallery.yaml
gate: summary.failed > 0
log_level: debug

browser:
  bin: /usr/bin/chromium
  proxy: http://proxy:8080
  flags:
    disable-gpu: ""

storage:
  dataset: runtime-errors
  backend: s3
  path: my-bucket/prefix
  region: us-east-1
  endpoint: https://minio.local
  s3_path_style: true

notify:
  type: webhook
  url: https://hooks.example.com/ci
  headers:
    Authorization: Bearer token123
  timeout: 10s
  retries: 3
`
	path := writeTemp(t, yaml)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertEqual(t, "base_url", cfg.BaseURL, "http://localhost:4173")
	assertEqual(t, "output_dir", cfg.OutputDir, "./artifacts")
	assertEqual(t, "capture", cfg.Capture, "bridge")
	assertEqual(t, "scenario", cfg.Scenario, "context")
	assertEqual(t, "gate", cfg.Gate, "summary.failed > 0")
	assertEqual(t, "log_level", cfg.LogLevel, "debug")
	if cfg.Headless == nil || *cfg.Headless {
		t.Error("expected headless=false")
	}
	if cfg.Retries == nil || *cfg.Retries != 1 {
		t.Errorf("retries = %v, want 1", cfg.Retries)
	}
	if cfg.Video == nil || !*cfg.Video {
		t.Error("expected video=true")
	}
	if cfg.Timeout.Duration != 45*time.Second || cfg.SettleTime.Duration != 500*time.Millisecond {
		t.Errorf("timeout=%s settle=%s", cfg.Timeout, cfg.SettleTime)
	}
	if cfg.Parallelism != 4 || cfg.MaxErrorHistory != 50 {
		t.Errorf("parallelism=%d history=%d", cfg.Parallelism, cfg.MaxErrorHistory)
	}
	if len(cfg.ScenarioFiles) != 1 || cfg.ScenarioFiles[0] != filepath.Join(filepath.Dir(path), "scenarios", "gallery.yaml") {
		t.Errorf("scenario_files = %v", cfg.ScenarioFiles)
	}

	assertEqual(t, "browser.bin", cfg.Browser.Bin, "/usr/bin/chromium")
	assertEqual(t, "browser.proxy", cfg.Browser.Proxy, "http://proxy:8080")
	if _, ok := cfg.Browser.Flags["disable-gpu"]; !ok {
		t.Error("expected browser flag disable-gpu")
	}

	assertEqual(t, "storage.backend", cfg.Storage.Backend, "s3")
	assertEqual(t, "storage.path", cfg.Storage.Path, "my-bucket/prefix")
	assertEqual(t, "storage.region", cfg.Storage.Region, "us-east-1")
	if !cfg.Storage.S3PathStyle {
		t.Error("expected storage.s3_path_style=true")
	}

	assertEqual(t, "notify.type", cfg.Notify.Type, "webhook")
	assertEqual(t, "notify.headers", cfg.Notify.Headers["Authorization"], "Bearer token123")
	if cfg.Notify.Timeout.Duration != 10*time.Second {
		t.Errorf("notify.timeout = %s", cfg.Notify.Timeout)
	}
	if cfg.Notify.Retries == nil || *cfg.Notify.Retries != 3 {
		t.Errorf("notify.retries = %v", cfg.Notify.Retries)
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	for name, content := range map[string]string{
		"empty":      "",
		"whitespace": "   \n\n  ",
		"comments":   "# nothing here\n# still nothing\n",
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(writeTemp(t, content))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.BaseURL != "" || cfg.Headless != nil || cfg.Retries != nil {
				t.Errorf("expected zero config, got %+v", cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeTemp(t, "base_url: [unclosed")); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("APP_URL", "http://preview.internal:3000")
	t.Setenv("HOOK_TOKEN", "s3cret")

	cfg, err := Load(writeTemp(t, `base_url: ${APP_URL}
output_dir: ${OUT_DIR_UNSET_987:-./ci-results}
notify:
  type: webhook
  url: https://hooks.example.com
  headers:
    Authorization: Bearer ${HOOK_TOKEN}
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertEqual(t, "base_url", cfg.BaseURL, "http://preview.internal:3000")
	assertEqual(t, "output_dir", cfg.OutputDir, "./ci-results")
	assertEqual(t, "authorization", cfg.Notify.Headers["Authorization"], "Bearer s3cret")
}

func TestLoad_RequiredEnv(t *testing.T) {
	_, err := Load(writeTemp(t, "base_url: ${PREVIEW_URL_UNSET_4411:?set the preview deployment url}\nnotify:\n  type: webhook\n  url: ${HOOK_URL_UNSET_4411:?}\n"))
	if err == nil {
		t.Fatal("expected error for missing required variables")
	}
	for _, want := range []string{"PREVIEW_URL_UNSET_4411", "set the preview deployment url", "HOOK_URL_UNSET_4411"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
}

func TestLoad_AbsoluteScenarioFileKept(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "teleport.yaml")
	cfg, err := Load(writeTemp(t, "scenario_files: ["+abs+"]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ScenarioFiles[0] != abs {
		t.Errorf("scenario_files[0] = %q, want %q", cfg.ScenarioFiles[0], abs)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Parallelism != 0 || cfg.ScenarioFiles != nil {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	for name, content := range map[string]string{
		"top level": "base_url: http://x\nbase_uri: typo\n",
		"nested":    "storage:\n  backend: fs\n  bucket: nope\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, content)); err == nil {
				t.Fatal("expected error for unknown key")
			}
		})
	}
}

func TestLoad_RetriesZeroDistinctFromNil(t *testing.T) {
	cfg, err := Load(writeTemp(t, "retries: 0\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retries == nil || *cfg.Retries != 0 {
		t.Errorf("retries = %v, want explicit 0", cfg.Retries)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := map[string]string{
		"bad backend":      "storage:\n  backend: gcs\n",
		"bad notify type":  "notify:\n  type: kafka\n  url: x\n",
		"notify needs url": "notify:\n  type: redis\n",
		"negative retries": "retries: -1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, content)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDuration_InvalidFormat(t *testing.T) {
	_, err := Load(writeTemp(t, "timeout: forever\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("error = %v, want invalid duration", err)
	}
}

func TestDuration_EmptyIsZero(t *testing.T) {
	cfg, err := Load(writeTemp(t, "timeout: \"\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Timeout.Duration != 0 {
		t.Errorf("timeout = %s, want 0", cfg.Timeout)
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runtime-errors.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func assertEqual(t *testing.T, field, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

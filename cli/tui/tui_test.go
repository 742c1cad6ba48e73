package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nino-chavez/brand-site-sub018/cli/reader"
	"github.com/nino-chavez/brand-site-sub018/runtime"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"inspect_report", true},
		{"stats_run", true},

		// Not supported: list, debug, schema, version
		{"list_scenarios", false},
		{"debug_classify", false},
		{"schema", false},
		{"version", false},

		// Not supported: unknown
		{"inspect_", false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			if got := IsTUISupported(tt.viewType); got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	for _, v := range SupportedTUIViews() {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	if err := Run("list_scenarios", nil); err == nil {
		t.Error("expected error for unsupported view type")
	}
}

var testTime = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func testReport() *runtime.TestReport {
	results := []types.TestResult{
		{Scenario: "rapid-navigation", Passed: true, Duration: 1200, Attempts: 1},
		{Scenario: "provider-missing", Passed: false, Duration: 3400, Attempts: 3, Errors: []types.CapturedError{
			{Type: types.ErrorContextMissing, Severity: types.SeverityCritical, Message: "useLayout must be used within LayoutProvider\n  at Hero"},
		}},
	}
	return runtime.BuildReport(runtime.ReportConfig{BaseURL: "http://localhost:3000"}, &types.RunMeta{RunID: "run-42"}, results, nil, testTime)
}

func TestInspectModel_RendersReport(t *testing.T) {
	out := RenderInspectStatic(ViewInspectReport, testReport())

	for _, want := range []string{"run-42", "rapid-navigation", "provider-missing", "2 total, 1 passed, 1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect view missing %q:\n%s", want, out)
		}
	}
}

func TestInspectModel_CursorSelectsScenario(t *testing.T) {
	var m tea.Model = NewInspectModel(ViewInspectReport, testReport())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	out := m.View()
	if !strings.Contains(out, "CONTEXT_MISSING") || !strings.Contains(out, "Attempts:") {
		t.Errorf("second scenario details not shown after moving down:\n%s", out)
	}

	// Moving past the end keeps the last selection.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(InspectModel).cursor; got != 1 {
		t.Errorf("cursor = %d, want 1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	out = m.View()
	if !strings.Contains(out, "No errors captured") {
		t.Errorf("first scenario should show no errors:\n%s", out)
	}
}

func TestInspectModel_Quit(t *testing.T) {
	m := NewInspectModel(ViewInspectReport, testReport())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestInspectModel_WrongData(t *testing.T) {
	out := NewInspectModel(ViewInspectReport, "nope").View()
	if !strings.Contains(out, "Invalid data type") {
		t.Errorf("expected invalid data message, got:\n%s", out)
	}
}

func TestStatsModel_RendersHistory(t *testing.T) {
	h := &reader.RunHistory{
		RunID:            "run-7",
		Day:              "2026-10-14",
		Total:            5,
		Passed:           4,
		Failed:           1,
		TotalErrors:      3,
		CriticalErrors:   1,
		ErrorsByType:     map[string]int{"NULL_ACCESS": 2, "INFINITE_LOOP": 1},
		ErrorsBySeverity: map[string]int{"CRITICAL": 1, "HIGH": 2},
		Scenarios:        []reader.ScenarioErrors{{Scenario: "layout-switch", Errors: 3, Critical: 1}},
	}

	out := RenderStatsStatic(ViewStatsRun, h)
	for _, want := range []string{"run-7", "NULL_ACCESS", "INFINITE_LOOP", "layout-switch", "CRITICAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats view missing %q:\n%s", want, out)
		}
	}
}

func TestStatsModel_SortToggle(t *testing.T) {
	h := &reader.RunHistory{
		RunID: "run-8",
		Scenarios: []reader.ScenarioErrors{
			{Scenario: "wheel-storm", Errors: 9, Critical: 0},
			{Scenario: "provider-missing", Errors: 2, Critical: 2},
		},
		ErrorsByType: map[string]int{"TYPE_ERROR": 2, "NULL_ACCESS": 9},
	}
	m := NewStatsModel(ViewStatsRun, h)

	out := m.View()
	if strings.Index(out, "wheel-storm") > strings.Index(out, "provider-missing") {
		t.Errorf("default order should follow total errors:\n%s", out)
	}
	if strings.Index(out, "NULL_ACCESS") > strings.Index(out, "TYPE_ERROR") {
		t.Errorf("type chart should list the most frequent type first:\n%s", out)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	out = next.View()
	if !strings.Contains(out, "(by critical)") {
		t.Errorf("sort toggle should retitle the list:\n%s", out)
	}
	if strings.Index(out, "provider-missing") > strings.Index(out, "wheel-storm") {
		t.Errorf("critical order should put provider-missing first:\n%s", out)
	}
}

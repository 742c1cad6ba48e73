package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/classify"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func newPage(t *testing.T, start string) *browser.StubPage {
	t.Helper()
	ctx := context.Background()
	bc, err := browser.NewStubBrowser().NewContext(ctx, browser.ContextOptions{})
	if err != nil {
		t.Fatal(err)
	}
	p, err := bc.NewPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sp := p.(*browser.StubPage)
	if start != "" {
		if err := sp.Goto(ctx, start); err != nil {
			t.Fatal(err)
		}
	}
	return sp
}

func TestCatalogValid(t *testing.T) {
	names := map[string]bool{}
	for _, g := range Groups() {
		if len(g.Scenarios) == 0 {
			t.Errorf("group %s is empty", g.Name)
		}
		for _, s := range g.Scenarios {
			if err := s.Validate(); err != nil {
				t.Errorf("%s: %v", g.Name, err)
			}
			if names[s.Name] {
				t.Errorf("duplicate scenario name %q", s.Name)
			}
			names[s.Name] = true
		}
	}
}

func TestGroupOrder(t *testing.T) {
	want := []string{
		"contextProviders", "nullSafety", "reactLifecycle", "asyncErrors",
		"domManipulation", "typeCoercion", "browserCompat",
	}
	if diff := cmp.Diff(want, Names(Groups())); diff != "" {
		t.Errorf("group order mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogSize(t *testing.T) {
	want := map[string]int{
		"contextProviders": 9,
		"nullSafety":       10,
		"reactLifecycle":   10,
		"asyncErrors":      10,
		"domManipulation":  10,
		"typeCoercion":     8,
		"browserCompat":    10,
	}
	got := map[string]int{}
	for _, g := range Groups() {
		got[g.Name] = len(g.Scenarios)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("scenarios per group mismatch (-want +got):\n%s", diff)
	}
	if n := len(Flatten(Groups())); n != 67 {
		t.Errorf("catalog has %d scenarios, want 67", n)
	}
}

// Outside reactLifecycle, scenarios that do not emit a known message drive
// the page with input and navigation only.
func TestCatalogStaysBlackBox(t *testing.T) {
	if testing.Short() {
		t.Skip("scenarios sleep between actions")
	}
	for _, g := range Groups() {
		if g.Name == "reactLifecycle" {
			continue
		}
		for _, s := range g.Scenarios {
			if len(s.ExpectedErrors) > 0 {
				continue
			}
			t.Run(g.Name+"/"+s.Name, func(t *testing.T) {
				t.Parallel()
				page := newPage(t, "http://localhost:3000/")
				if err := s.Execute(context.Background(), page); err != nil {
					t.Fatal(err)
				}
				actions := page.Actions()
				if len(actions) < 2 {
					t.Errorf("scenario drove no actions: %v", actions)
				}
				for _, a := range actions {
					if a == "evaluate" {
						t.Errorf("scenario evaluated script in page: %v", actions)
						break
					}
				}
			})
		}
	}
}

func TestReactLifecycleCoverage(t *testing.T) {
	g, ok := Lookup(Groups(), "reactLifecycle")
	if !ok {
		t.Fatal("reactLifecycle missing")
	}
	var names []string
	for _, s := range g.Scenarios {
		names = append(names, s.Name)
	}
	want := []string{
		"Rapid navigation", "Rapid scroll", "Resize churn", "Rapid mouse movement",
		"Navigate away during async work", "Conditional hook path switching",
		"Interval and timeout cleanup", "Focus and blur churn",
		"Infinite loop detection", "Cursor lens activation",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("reactLifecycle mismatch (-want +got):\n%s", diff)
	}
}

func TestSelect(t *testing.T) {
	gs := Groups()
	tests := []struct {
		name    string
		filter  string
		want    []string
		wantErr error
	}{
		{name: "empty selects all", filter: "", want: Names(gs)},
		{name: "all selects all", filter: "ALL", want: Names(gs)},
		{name: "single", filter: "nullSafety", want: []string{"nullSafety"}},
		{name: "separator insensitive", filter: "react-lifecycle", want: []string{"reactLifecycle"}},
		{name: "list", filter: "asyncErrors, typeCoercion", want: []string{"asyncErrors", "typeCoercion"}},
		{name: "unknown", filter: "visualRegression", wantErr: ErrUnknownGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(gs, tt.filter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select(%q) error = %v, want %v", tt.filter, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, Names(got)); diff != "" {
				t.Errorf("Select(%q) mismatch (-want +got):\n%s", tt.filter, diff)
			}
		})
	}
}

func TestScenarioValidate(t *testing.T) {
	noop := func(context.Context, browser.Page) error { return nil }
	tests := []struct {
		name string
		s    Scenario
		ok   bool
	}{
		{"valid", Scenario{Name: "a", Category: CategoryDOM, Execute: noop}, true},
		{"missing name", Scenario{Category: CategoryDOM, Execute: noop}, false},
		{"bad category", Scenario{Name: "a", Category: "visual", Execute: noop}, false},
		{"missing execute", Scenario{Name: "a", Category: CategoryDOM}, false},
		{"bad expected error", Scenario{Name: "a", Category: CategoryDOM, Execute: noop, ExpectedErrors: []types.ErrorType{"OOPS"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%t", err, tt.ok)
			}
		})
	}
}

var consoleErrorArg = regexp.MustCompile(`console\.error\((".*")\)`)

// Negative-test scenarios emit a message whose classification must match
// their expectations.
func TestNegativeScenariosClassify(t *testing.T) {
	for _, s := range Flatten(Groups()) {
		if len(s.ExpectedErrors) == 0 {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			page := newPage(t, "http://localhost:3000/")
			var scripts []string
			page.EvaluateFunc = func(fn string) (any, error) {
				scripts = append(scripts, fn)
				return nil, nil
			}
			if err := s.Execute(context.Background(), page); err != nil {
				t.Fatal(err)
			}
			var got []types.ErrorType
			for _, js := range scripts {
				m := consoleErrorArg.FindStringSubmatch(js)
				if m == nil {
					continue
				}
				var msg string
				if err := json.Unmarshal([]byte(m[1]), &msg); err != nil {
					t.Fatal(err)
				}
				got = append(got, classify.Classify(msg))
			}
			if diff := cmp.Diff(s.ExpectedErrors, got); diff != "" {
				t.Errorf("emitted classification mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInfiniteLoopDetectionIsAdvisory(t *testing.T) {
	g, _ := Lookup(Groups(), "reactLifecycle")
	var detect Scenario
	for _, s := range g.Scenarios {
		if s.Name == "Infinite loop detection" {
			detect = s
		}
	}

	page := newPage(t, "http://localhost:3000/")
	page.EvaluateFunc = func(fn string) (any, error) {
		return []map[string]any{
			{"message": "Warning: Maximum update depth exceeded.", "source": "console"},
			{"message": "unrelated"},
		}, nil
	}
	var advice []string
	ctx := WithAdvice(context.Background(), func(msg string) { advice = append(advice, msg) })

	if err := detect.Execute(ctx, page); err != nil {
		t.Fatalf("advisory scenario returned error: %v", err)
	}
	if len(advice) != 1 || !strings.Contains(advice[0], "Maximum update depth") {
		t.Errorf("advice = %q", advice)
	}
	actions := page.Actions()
	if !strings.Contains(actions[1], "layout=canvas") {
		t.Errorf("scenario did not switch to canvas layout: %v", actions)
	}
}

func TestAdviseWithoutReceiver(t *testing.T) {
	Advise(context.Background(), "dropped %d", 1)
}

func TestURLHelpers(t *testing.T) {
	page := newPage(t, "http://localhost:3000/work?layout=canvas#gallery")
	base, err := BaseURL(context.Background(), page)
	if err != nil {
		t.Fatal(err)
	}
	if base.String() != "http://localhost:3000/work" {
		t.Errorf("BaseURL = %s", base)
	}
	if got := Layout(base, LayoutTraditional); got != "http://localhost:3000/work?layout=traditional" {
		t.Errorf("Layout = %s", got)
	}
	if got := WithHash(base, "#about"); got != "http://localhost:3000/work#about" {
		t.Errorf("WithHash = %s", got)
	}
	if got := WithPath(base, "/"); got != "http://localhost:3000/" {
		t.Errorf("WithPath = %s", got)
	}
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep = %v, want context.Canceled", err)
	}
}

func TestBack(t *testing.T) {
	ctx := context.Background()
	page := newPage(t, "http://localhost:3000/")
	if err := Navigate(ctx, page, 0, "http://localhost:3000/#work", "http://localhost:3000/missing"); err != nil {
		t.Fatal(err)
	}
	if err := Back(ctx, page, 2, 0); err != nil {
		t.Fatal(err)
	}
	if got, _ := page.URL(ctx); got != "http://localhost:3000/" {
		t.Errorf("URL after Back = %s", got)
	}
}

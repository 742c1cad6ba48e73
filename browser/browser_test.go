package browser

import (
	"context"
	"strings"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/google/go-cmp/cmp"
	"github.com/ysmood/gson"
)

func TestStringifyConsoleArgs(t *testing.T) {
	args := []*proto.RuntimeRemoteObject{
		{Type: proto.RuntimeRemoteObjectTypeString, Value: gson.New("Failed to load")},
		nil,
		{Type: proto.RuntimeRemoteObjectTypeNumber, Value: gson.New(42)},
		{Type: proto.RuntimeRemoteObjectTypeObject, Description: "Error: boom"},
	}
	got := stringifyConsoleArgs(args)
	if got != "Failed to load 42 Error: boom" {
		t.Errorf("stringifyConsoleArgs = %q", got)
	}
}

func TestConsoleMessage(t *testing.T) {
	ev := &proto.RuntimeConsoleAPICalled{
		Type: proto.RuntimeConsoleAPICalledTypeWarning,
		Args: []*proto.RuntimeRemoteObject{{Value: gson.New("careful")}},
		StackTrace: &proto.RuntimeStackTrace{CallFrames: []*proto.RuntimeCallFrame{
			{FunctionName: "Gallery", URL: "http://localhost:3000/app.js", LineNumber: 9, ColumnNumber: 4},
		}},
	}
	got := consoleMessage(ev)
	want := ConsoleMessage{
		Level:  "warning",
		Text:   "careful",
		URL:    "http://localhost:3000/app.js",
		Line:   9,
		Column: 4,
		Stack:  "    at Gallery (http://localhost:3000/app.js:10:5)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("consoleMessage mismatch (-want +got):\n%s", diff)
	}
}

func TestPageError(t *testing.T) {
	t.Run("error object", func(t *testing.T) {
		ev := &proto.RuntimeExceptionThrown{ExceptionDetails: &proto.RuntimeExceptionDetails{
			Text: "Uncaught",
			URL:  "http://localhost:3000/main.js",
			Exception: &proto.RuntimeRemoteObject{
				Description: "TypeError: x is not a function\n    at render (main.js:1:2)",
			},
		}}
		got := pageError(ev)
		if got.Message != "Uncaught TypeError: x is not a function" {
			t.Errorf("Message = %q", got.Message)
		}
		if got.Stack != "    at render (main.js:1:2)" {
			t.Errorf("Stack = %q", got.Stack)
		}
		if got.Rejection {
			t.Error("Rejection = true, want false")
		}
	})

	t.Run("promise rejection with primitive", func(t *testing.T) {
		ev := &proto.RuntimeExceptionThrown{ExceptionDetails: &proto.RuntimeExceptionDetails{
			Text:      "Uncaught (in promise)",
			Exception: &proto.RuntimeRemoteObject{Value: gson.New("nope")},
			StackTrace: &proto.RuntimeStackTrace{CallFrames: []*proto.RuntimeCallFrame{
				{URL: "a.js"},
			}},
		}}
		got := pageError(ev)
		if got.Message != "Uncaught (in promise) nope" {
			t.Errorf("Message = %q", got.Message)
		}
		if !got.Rejection {
			t.Error("Rejection = false, want true")
		}
		if !strings.Contains(got.Stack, "<anonymous> (a.js:1:1)") {
			t.Errorf("Stack = %q", got.Stack)
		}
	})

	t.Run("banner not doubled", func(t *testing.T) {
		ev := &proto.RuntimeExceptionThrown{ExceptionDetails: &proto.RuntimeExceptionDetails{
			Text:      "Uncaught",
			Exception: &proto.RuntimeRemoteObject{Description: "Uncaught ReferenceError: lens is not defined"},
		}}
		if got := pageError(ev).Message; got != "Uncaught ReferenceError: lens is not defined" {
			t.Errorf("Message = %q", got)
		}
	})

	t.Run("non-banner text left out", func(t *testing.T) {
		ev := &proto.RuntimeExceptionThrown{ExceptionDetails: &proto.RuntimeExceptionDetails{
			Text:      "Script error",
			Exception: &proto.RuntimeRemoteObject{Description: "Error: boom"},
		}}
		if got := pageError(ev).Message; got != "Error: boom" {
			t.Errorf("Message = %q", got)
		}
	})

	t.Run("nil details", func(t *testing.T) {
		if got := pageError(&proto.RuntimeExceptionThrown{}); got != (PageError{}) {
			t.Errorf("pageError = %+v, want zero", got)
		}
	})
}

func TestLookupKey(t *testing.T) {
	for _, name := range KeyNames() {
		if _, err := LookupKey(name); err != nil {
			t.Errorf("LookupKey(%q): %v", name, err)
		}
	}
	if _, err := LookupKey("Hyper"); err == nil {
		t.Error("LookupKey(Hyper) = nil error")
	}
}

func TestSubscribersRemove(t *testing.T) {
	s := newSubscribers()
	var got []string
	remove := s.addConsole(func(m ConsoleMessage) { got = append(got, m.Text) })
	removeErr := s.addPageError(func(PageError) {})
	if s.count() != 2 {
		t.Fatalf("count = %d, want 2", s.count())
	}

	s.console(ConsoleMessage{Text: "one"})
	remove()
	s.console(ConsoleMessage{Text: "two"})
	removeErr()

	if diff := cmp.Diff([]string{"one"}, got); diff != "" {
		t.Errorf("delivered mismatch (-want +got):\n%s", diff)
	}
	if s.count() != 0 {
		t.Errorf("count = %d, want 0", s.count())
	}
}

func TestStubBrowserLifecycle(t *testing.T) {
	b := NewStubBrowser()
	b.OnPage = func(p *StubPage) {
		p.EvaluateFunc = func(string) (any, error) { return map[string]int{"n": 3}, nil }
	}
	ctx := context.Background()

	bc, err := b.NewContext(ctx, ContextOptions{Viewport: Viewport{Width: 800, Height: 600}})
	if err != nil {
		t.Fatal(err)
	}
	page, err := bc.NewPage(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if err := page.Goto(ctx, "http://localhost:3000/"); err != nil {
		t.Fatal(err)
	}
	if err := page.Goto(ctx, "http://localhost:3000/#about"); err != nil {
		t.Fatal(err)
	}
	if err := page.Back(ctx); err != nil {
		t.Fatal(err)
	}
	u, _ := page.URL(ctx)
	if u != "http://localhost:3000/" {
		t.Errorf("URL after Back = %q", u)
	}

	var out struct{ N int }
	if err := page.Evaluate(ctx, "() => ({n: 3})", &out); err != nil {
		t.Fatal(err)
	}
	if out.N != 3 {
		t.Errorf("Evaluate decoded N = %d, want 3", out.N)
	}
	if err := page.Press(ctx, "NotAKey"); err == nil {
		t.Error("Press(NotAKey) = nil error")
	}

	if b.OpenContexts() != 1 {
		t.Errorf("OpenContexts = %d, want 1", b.OpenContexts())
	}
	if err := bc.Close(); err != nil {
		t.Fatal(err)
	}
	if b.OpenContexts() != 0 {
		t.Errorf("OpenContexts after Close = %d, want 0", b.OpenContexts())
	}
	if _, err := bc.NewPage(ctx); err == nil {
		t.Error("NewPage on closed context = nil error")
	}
}

func TestStubPageHangHonorsContext(t *testing.T) {
	p := &StubPage{subs: newSubscribers(), Hang: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Goto(ctx, "http://x"); err != context.Canceled {
		t.Errorf("Goto = %v, want context.Canceled", err)
	}
}

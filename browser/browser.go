// Package browser defines the browser-automation surface used by the runner
// and the scenario catalog, with a go-rod implementation.
//
// The runner only ever issues NewContext against a shared Browser. Each
// Context is owned by one scenario attempt and must be closed by it.
// Every blocking call takes a context; cancelling it aborts the in-flight
// CDP command rather than abandoning it.
package browser

import (
	"context"
	"time"
)

// Browser is a shared browser process.
type Browser interface {
	// NewContext opens an isolated browsing context (own cookies and storage).
	NewContext(ctx context.Context, opts ContextOptions) (Context, error)
	// Close shuts the browser down.
	Close() error
}

// Context is an isolated browsing context inside a shared Browser.
type Context interface {
	// NewPage opens a blank page in the context.
	NewPage(ctx context.Context) (Page, error)
	// Close disposes of the context and every page in it.
	Close() error
}

// Page is a single tab. Scenarios interact with it the way a user would.
type Page interface {
	// AddInitScript registers a script evaluated before any page script on
	// every new document.
	AddInitScript(ctx context.Context, script string) error

	// OnConsole subscribes to console API calls. The returned func removes the subscription.
	OnConsole(fn func(ConsoleMessage)) (remove func())
	// OnPageError subscribes to uncaught exceptions and unhandled rejections.
	OnPageError(fn func(PageError)) (remove func())
	// OnRequestFailed subscribes to failed network requests.
	OnRequestFailed(fn func(RequestFailure)) (remove func())

	// Goto navigates and waits for the load event and network idle.
	Goto(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	Back(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	UserAgent(ctx context.Context) (string, error)

	// Evaluate runs a JavaScript function definition such as "() => 1" and
	// decodes its JSON result into out. out may be nil.
	Evaluate(ctx context.Context, fn string, out any) error

	MouseMove(ctx context.Context, x, y float64) error
	MouseDown(ctx context.Context) error
	MouseUp(ctx context.Context) error
	Wheel(ctx context.Context, dx, dy float64) error
	// Press sends a key down/up pair. Key names follow KeyNames.
	Press(ctx context.Context, key string) error
	SetViewport(ctx context.Context, width, height int) error

	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
}

// ContextOptions configures a new browsing context.
type ContextOptions struct {
	// Viewport is applied to every page of the context. Zero means driver default.
	Viewport Viewport
	// VideoDir enables frame recording into the directory when non-empty.
	VideoDir string
	// NetworkIdle is how long the network must be quiet for Goto to return.
	NetworkIdle time.Duration
}

// Viewport is a page size in CSS pixels.
type Viewport struct {
	Width  int
	Height int
}

// IsZero reports whether no viewport was configured.
func (v Viewport) IsZero() bool {
	return v.Width == 0 && v.Height == 0
}

// ConsoleMessage is one console API call observed on a page.
type ConsoleMessage struct {
	// Level is the console method: "error", "warning", "log", ...
	Level  string
	Text   string
	URL    string
	Line   int
	Column int
	Stack  string
}

// PageError is an uncaught exception or unhandled promise rejection.
type PageError struct {
	Message string
	Stack   string
	URL     string
	Line    int
	Column  int
	// Rejection is true for unhandled promise rejections.
	Rejection bool
}

// RequestFailure is a network request that failed to complete.
type RequestFailure struct {
	URL       string
	Method    string
	ErrorText string
	Canceled  bool
}

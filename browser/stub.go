package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-rod/rod/lib/proto"
)

// StubUserAgent is reported by every StubPage.
const StubUserAgent = "StubBrowser/1.0"

// StubBrowser is an in-memory Browser for tests. It records every context
// it opens and lets tests script page behavior through OnPage.
type StubBrowser struct {
	// OnPage, when set, is called for every new page before it is returned.
	OnPage func(*StubPage)
	// ContextErr, when set, makes NewContext fail.
	ContextErr error

	mu       sync.Mutex
	contexts []*StubContext
	closed   bool
}

var _ Browser = (*StubBrowser)(nil)

// NewStubBrowser creates a stub browser.
func NewStubBrowser() *StubBrowser {
	return &StubBrowser{}
}

// NewContext opens a stub context.
func (b *StubBrowser) NewContext(ctx context.Context, opts ContextOptions) (Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b.ContextErr != nil {
		return nil, b.ContextErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("browser closed")
	}
	c := &StubContext{browser: b, Options: opts}
	b.contexts = append(b.contexts, c)
	return c, nil
}

// Close marks the browser closed.
func (b *StubBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Contexts returns every context opened so far.
func (b *StubBrowser) Contexts() []*StubContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*StubContext, len(b.contexts))
	copy(out, b.contexts)
	return out
}

// OpenContexts returns the number of contexts not yet closed.
func (b *StubBrowser) OpenContexts() int {
	n := 0
	for _, c := range b.Contexts() {
		if !c.Closed() {
			n++
		}
	}
	return n
}

// StubContext is a Context opened by StubBrowser.
type StubContext struct {
	browser *StubBrowser
	Options ContextOptions

	mu     sync.Mutex
	pages  []*StubPage
	closed bool
}

// NewPage opens a stub page.
func (c *StubContext) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.New("browser context closed")
	}
	p := &StubPage{subs: newSubscribers(), url: "about:blank", viewport: c.Options.Viewport}
	c.pages = append(c.pages, p)
	c.mu.Unlock()

	if c.browser.OnPage != nil {
		c.browser.OnPage(p)
	}
	return p, nil
}

// Close closes the context. Safe to call more than once.
func (c *StubContext) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *StubContext) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Pages returns the pages opened in the context.
func (c *StubContext) Pages() []*StubPage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*StubPage, len(c.pages))
	copy(out, c.pages)
	return out
}

// StubPage is a scriptable Page. Every interaction is appended to Actions.
type StubPage struct {
	// OnGoto is called after every Goto with the target URL.
	OnGoto func(p *StubPage, url string) error
	// OnAction is called after every recorded action.
	OnAction func(p *StubPage, action string) error
	// EvaluateFunc answers Evaluate. The default answers nothing.
	EvaluateFunc func(fn string) (any, error)
	// Hang makes every blocking call wait for its context.
	Hang bool

	subs *subscribers

	mu          sync.Mutex
	actions     []string
	initScripts []string
	url         string
	history     []string
	viewport    Viewport
}

var _ Page = (*StubPage)(nil)

func (p *StubPage) record(ctx context.Context, action string) error {
	if p.Hang {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.actions = append(p.actions, action)
	p.mu.Unlock()
	if p.OnAction != nil {
		return p.OnAction(p, action)
	}
	return nil
}

// Actions returns the recorded interactions in order.
func (p *StubPage) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.actions))
	copy(out, p.actions)
	return out
}

// InitScripts returns the scripts registered with AddInitScript.
func (p *StubPage) InitScripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.initScripts))
	copy(out, p.initScripts)
	return out
}

// Subscriptions returns the number of live event subscriptions.
func (p *StubPage) Subscriptions() int {
	return p.subs.count()
}

// EmitConsole delivers a console message to subscribers.
func (p *StubPage) EmitConsole(m ConsoleMessage) { p.subs.console(m) }

// EmitPageError delivers a page error to subscribers.
func (p *StubPage) EmitPageError(e PageError) { p.subs.pageError(e) }

// EmitException delivers a raw CDP exception the way the rod driver does.
func (p *StubPage) EmitException(ev *proto.RuntimeExceptionThrown) { p.subs.pageError(pageError(ev)) }

// EmitRequestFailed delivers a request failure to subscribers.
func (p *StubPage) EmitRequestFailed(f RequestFailure) { p.subs.requestFailed(f) }

func (p *StubPage) AddInitScript(ctx context.Context, script string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	p.initScripts = append(p.initScripts, script)
	p.mu.Unlock()
	return nil
}

func (p *StubPage) OnConsole(fn func(ConsoleMessage)) func() { return p.subs.addConsole(fn) }

func (p *StubPage) OnPageError(fn func(PageError)) func() { return p.subs.addPageError(fn) }

func (p *StubPage) OnRequestFailed(fn func(RequestFailure)) func() {
	return p.subs.addRequestFailed(fn)
}

func (p *StubPage) Goto(ctx context.Context, url string) error {
	if err := p.record(ctx, "goto "+url); err != nil {
		return err
	}
	p.mu.Lock()
	p.history = append(p.history, p.url)
	p.url = url
	p.mu.Unlock()
	if p.OnGoto != nil {
		return p.OnGoto(p, url)
	}
	return nil
}

func (p *StubPage) Reload(ctx context.Context) error {
	return p.record(ctx, "reload")
}

func (p *StubPage) Back(ctx context.Context) error {
	if err := p.record(ctx, "back"); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.history); n > 0 {
		p.url = p.history[n-1]
		p.history = p.history[:n-1]
	}
	return nil
}

func (p *StubPage) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *StubPage) UserAgent(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return StubUserAgent, nil
}

func (p *StubPage) Evaluate(ctx context.Context, fn string, out any) error {
	if err := p.record(ctx, "evaluate"); err != nil {
		return err
	}
	if p.EvaluateFunc == nil {
		return nil
	}
	v, err := p.EvaluateFunc(fn)
	if err != nil || out == nil || v == nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (p *StubPage) MouseMove(ctx context.Context, x, y float64) error {
	return p.record(ctx, fmt.Sprintf("move %g,%g", x, y))
}

func (p *StubPage) MouseDown(ctx context.Context) error { return p.record(ctx, "down") }

func (p *StubPage) MouseUp(ctx context.Context) error { return p.record(ctx, "up") }

func (p *StubPage) Wheel(ctx context.Context, dx, dy float64) error {
	return p.record(ctx, fmt.Sprintf("wheel %g,%g", dx, dy))
}

func (p *StubPage) Press(ctx context.Context, key string) error {
	if _, err := LookupKey(key); err != nil {
		return err
	}
	return p.record(ctx, "press "+key)
}

func (p *StubPage) SetViewport(ctx context.Context, width, height int) error {
	if err := p.record(ctx, fmt.Sprintf("viewport %dx%d", width, height)); err != nil {
		return err
	}
	p.mu.Lock()
	p.viewport = Viewport{Width: width, Height: height}
	p.mu.Unlock()
	return nil
}

// Viewport returns the current viewport.
func (p *StubPage) Viewport() Viewport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewport
}

func (p *StubPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := p.record(ctx, fmt.Sprintf("screenshot full=%t", fullPage)); err != nil {
		return nil, err
	}
	return []byte("\x89PNG stub"), nil
}

package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultNetworkIdle is used when ContextOptions.NetworkIdle is zero.
const DefaultNetworkIdle = 500 * time.Millisecond

// LaunchConfig configures how the shared browser is obtained.
type LaunchConfig struct {
	// ControlURL connects to an already running browser (ws://...) instead of launching one.
	ControlURL string
	// Bin is the browser binary. Empty means launcher lookup/download.
	Bin string
	// Flags are extra command-line switches, e.g. "--disable-gpu" or "--lang=en-US".
	Flags    []string
	Headless bool
	// Proxy is passed as --proxy-server.
	Proxy string
}

// RodBrowser is a Browser backed by go-rod over the DevTools protocol.
type RodBrowser struct {
	base     context.Context
	browser  *rod.Browser
	launcher *launcher.Launcher
}

var _ Browser = (*RodBrowser)(nil)

// Launch launches (or connects to) a browser. ctx bounds the browser lifetime.
func Launch(ctx context.Context, cfg LaunchConfig) (*RodBrowser, error) {
	controlURL := cfg.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Context(ctx).Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		if cfg.Proxy != "" {
			l = l.Proxy(cfg.Proxy)
		}
		for _, rawFlag := range cfg.Flags {
			name, val, hasVal := strings.Cut(strings.TrimLeft(rawFlag, "-"), "=")
			if hasVal {
				l = l.Set(flags.Flag(name), val)
			} else {
				l = l.Set(flags.Flag(name))
			}
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	return &RodBrowser{base: ctx, browser: b, launcher: l}, nil
}

// NewContext opens an incognito browser context.
func (b *RodBrowser) NewContext(ctx context.Context, opts ContextOptions) (Context, error) {
	inc, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	return &rodContext{
		base: b.base,
		inc:  inc.Context(b.base),
		opts: opts,
	}, nil
}

// Close closes the browser. A launched process is killed and its profile removed.
func (b *RodBrowser) Close() error {
	err := b.browser.Close()
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	return err
}

type rodContext struct {
	base context.Context
	inc  *rod.Browser
	opts ContextOptions

	mu     sync.Mutex
	pages  []*rodPage
	closed bool
}

func (c *rodContext) NewPage(ctx context.Context) (Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("browser context closed")
	}

	p, err := c.inc.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	pctx, cancel := context.WithCancel(c.base)
	page := newRodPage(pctx, cancel, p.Context(pctx), c.opts.NetworkIdle)

	if !c.opts.Viewport.IsZero() {
		if err := page.SetViewport(ctx, c.opts.Viewport.Width, c.opts.Viewport.Height); err != nil {
			page.close()
			return nil, err
		}
	}
	if c.opts.VideoDir != "" {
		if err := page.startRecording(ctx, c.opts.VideoDir, len(c.pages)); err != nil {
			page.close()
			return nil, err
		}
	}
	c.pages = append(c.pages, page)
	return page, nil
}

// Close stops every page stream and disposes the incognito context.
// Safe to call more than once.
func (c *rodContext) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pages := c.pages
	c.pages = nil
	c.mu.Unlock()

	for _, p := range pages {
		p.close()
	}
	return c.inc.Close()
}

type rodPage struct {
	ctx    context.Context
	cancel context.CancelFunc
	page   *rod.Page
	idle   time.Duration

	subs *subscribers

	mu       sync.Mutex
	x, y     float64
	removers []func() error
	recorder *recorder
}

func newRodPage(ctx context.Context, cancel context.CancelFunc, p *rod.Page, idle time.Duration) *rodPage {
	if idle <= 0 {
		idle = DefaultNetworkIdle
	}
	rp := &rodPage{ctx: ctx, cancel: cancel, page: p, idle: idle, subs: newSubscribers()}

	_ = proto.RuntimeEnable{}.Call(p)
	_ = proto.NetworkEnable{}.Call(p)

	requests := map[proto.NetworkRequestID]*proto.NetworkRequest{}
	var reqMu sync.Mutex

	wait := p.EachEvent(
		func(ev *proto.RuntimeConsoleAPICalled) {
			rp.subs.console(consoleMessage(ev))
		},
		func(ev *proto.RuntimeExceptionThrown) {
			rp.subs.pageError(pageError(ev))
		},
		func(ev *proto.NetworkRequestWillBeSent) {
			if ev.Request == nil {
				return
			}
			reqMu.Lock()
			requests[ev.RequestID] = ev.Request
			reqMu.Unlock()
		},
		func(ev *proto.NetworkLoadingFinished) {
			reqMu.Lock()
			delete(requests, ev.RequestID)
			reqMu.Unlock()
		},
		func(ev *proto.NetworkLoadingFailed) {
			reqMu.Lock()
			req := requests[ev.RequestID]
			delete(requests, ev.RequestID)
			reqMu.Unlock()

			f := RequestFailure{ErrorText: ev.ErrorText, Canceled: ev.Canceled}
			if req != nil {
				f.URL = req.URL
				f.Method = req.Method
			}
			rp.subs.requestFailed(f)
		},
	)
	go wait()
	return rp
}

func (p *rodPage) close() {
	p.mu.Lock()
	removers := p.removers
	p.removers = nil
	rec := p.recorder
	p.recorder = nil
	p.mu.Unlock()

	for _, remove := range removers {
		_ = remove()
	}
	if rec != nil {
		rec.stop()
	}
	p.cancel()
}

func (p *rodPage) AddInitScript(ctx context.Context, script string) error {
	remove, err := p.page.Context(ctx).EvalOnNewDocument(script)
	if err != nil {
		return fmt.Errorf("add init script: %w", err)
	}
	p.mu.Lock()
	p.removers = append(p.removers, remove)
	p.mu.Unlock()
	return nil
}

func (p *rodPage) OnConsole(fn func(ConsoleMessage)) func() {
	return p.subs.addConsole(fn)
}

func (p *rodPage) OnPageError(fn func(PageError)) func() {
	return p.subs.addPageError(fn)
}

func (p *rodPage) OnRequestFailed(fn func(RequestFailure)) func() {
	return p.subs.addRequestFailed(fn)
}

func (p *rodPage) Goto(ctx context.Context, url string) error {
	pc := p.page.Context(ctx)
	waitIdle := pc.WaitRequestIdle(p.idle, nil, nil, nil)
	if err := pc.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := pc.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	waitIdle()
	return ctx.Err()
}

func (p *rodPage) Reload(ctx context.Context) error {
	pc := p.page.Context(ctx)
	if err := pc.Reload(); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	return pc.WaitLoad()
}

func (p *rodPage) Back(ctx context.Context) error {
	pc := p.page.Context(ctx)
	if err := pc.NavigateBack(); err != nil {
		return fmt.Errorf("navigate back: %w", err)
	}
	return nil
}

func (p *rodPage) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (p *rodPage) UserAgent(ctx context.Context) (string, error) {
	var ua string
	if err := p.Evaluate(ctx, `() => navigator.userAgent`, &ua); err != nil {
		return "", err
	}
	return ua, nil
}

func (p *rodPage) Evaluate(ctx context.Context, fn string, out any) error {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           fn,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if out == nil {
		return nil
	}
	data, err := res.Value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("evaluate result: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode evaluate result: %w", err)
	}
	return nil
}

func (p *rodPage) MouseMove(ctx context.Context, x, y float64) error {
	p.mu.Lock()
	p.x, p.y = x, y
	p.mu.Unlock()
	return p.mouse(ctx, proto.InputDispatchMouseEvent{
		Type: proto.InputDispatchMouseEventTypeMouseMoved,
		X:    x,
		Y:    y,
	})
}

func (p *rodPage) MouseDown(ctx context.Context) error {
	x, y := p.pos()
	return p.mouse(ctx, proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMousePressed,
		X:          x,
		Y:          y,
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	})
}

func (p *rodPage) MouseUp(ctx context.Context) error {
	x, y := p.pos()
	return p.mouse(ctx, proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMouseReleased,
		X:          x,
		Y:          y,
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	})
}

func (p *rodPage) Wheel(ctx context.Context, dx, dy float64) error {
	x, y := p.pos()
	return p.mouse(ctx, proto.InputDispatchMouseEvent{
		Type:   proto.InputDispatchMouseEventTypeMouseWheel,
		X:      x,
		Y:      y,
		DeltaX: dx,
		DeltaY: dy,
	})
}

func (p *rodPage) pos() (float64, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y
}

func (p *rodPage) mouse(ctx context.Context, ev proto.InputDispatchMouseEvent) error {
	if err := ev.Call(p.page.Context(ctx)); err != nil {
		return fmt.Errorf("mouse %s: %w", ev.Type, err)
	}
	return nil
}

func (p *rodPage) Press(ctx context.Context, key string) error {
	k, err := LookupKey(key)
	if err != nil {
		return err
	}
	pc := p.page.Context(ctx)
	if err := k.Encode(proto.InputDispatchKeyEventTypeKeyDown, 0).Call(pc); err != nil {
		return fmt.Errorf("key down %s: %w", key, err)
	}
	if err := k.Encode(proto.InputDispatchKeyEventTypeKeyUp, 0).Call(pc); err != nil {
		return fmt.Errorf("key up %s: %w", key, err)
	}
	return nil
}

func (p *rodPage) SetViewport(ctx context.Context, width, height int) error {
	err := proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	}.Call(p.page.Context(ctx))
	if err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

func (p *rodPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	data, err := p.page.Context(ctx).Screenshot(fullPage, nil)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

// consoleMessage flattens a CDP console event.
func consoleMessage(ev *proto.RuntimeConsoleAPICalled) ConsoleMessage {
	msg := ConsoleMessage{
		Level: consoleLevel(ev.Type),
		Text:  stringifyConsoleArgs(ev.Args),
	}
	if ev.StackTrace != nil && len(ev.StackTrace.CallFrames) > 0 {
		top := ev.StackTrace.CallFrames[0]
		msg.URL = top.URL
		msg.Line = top.LineNumber
		msg.Column = top.ColumnNumber
		msg.Stack = formatStack(ev.StackTrace)
	}
	return msg
}

func consoleLevel(t proto.RuntimeConsoleAPICalledType) string {
	if t == proto.RuntimeConsoleAPICalledTypeWarning {
		return "warning"
	}
	return string(t)
}

func stringifyConsoleArgs(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a == nil {
			continue
		}
		if !a.Value.Nil() {
			parts = append(parts, a.Value.String())
			continue
		}
		if a.Description != "" {
			parts = append(parts, a.Description)
		}
	}
	return strings.Join(parts, " ")
}

// pageError flattens a CDP exception. The description of a thrown Error
// is "Name: message\n    at ...". Text is the "Uncaught" banner; it is kept
// in front of the message so native capture reads the same as the
// browser's own onerror text ("Uncaught TypeError: ...").
func pageError(ev *proto.RuntimeExceptionThrown) PageError {
	d := ev.ExceptionDetails
	if d == nil {
		return PageError{}
	}
	pe := PageError{
		Message:   d.Text,
		URL:       d.URL,
		Line:      d.LineNumber,
		Column:    d.ColumnNumber,
		Rejection: strings.Contains(d.Text, "(in promise)"),
	}
	if d.Exception != nil && d.Exception.Description != "" {
		head, rest, _ := strings.Cut(d.Exception.Description, "\n")
		pe.Message = withBanner(d.Text, head)
		pe.Stack = rest
	} else if d.Exception != nil && !d.Exception.Value.Nil() {
		pe.Message = withBanner(d.Text, d.Exception.Value.String())
	}
	if pe.Stack == "" && d.StackTrace != nil {
		pe.Stack = formatStack(d.StackTrace)
	}
	return pe
}

// withBanner prefixes msg with an "Uncaught" banner unless msg already
// carries it.
func withBanner(banner, msg string) string {
	banner = strings.TrimSpace(banner)
	if !strings.HasPrefix(banner, "Uncaught") || strings.HasPrefix(msg, "Uncaught") {
		return msg
	}
	return banner + " " + msg
}

func formatStack(st *proto.RuntimeStackTrace) string {
	var b strings.Builder
	for i, f := range st.CallFrames {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := f.FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Fprintf(&b, "    at %s (%s:%d:%d)", name, f.URL, f.LineNumber+1, f.ColumnNumber+1)
	}
	return b.String()
}

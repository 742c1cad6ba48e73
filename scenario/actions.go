package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/capture"
)

// Layout mode query values understood by the target site.
const (
	LayoutParam       = "layout"
	LayoutCanvas      = "canvas"
	LayoutTraditional = "traditional"
)

// Sections are the in-page anchors the site exposes.
var Sections = []string{"hero", "about", "work", "gallery", "services", "contact"}

// Standard viewports, smallest first.
var (
	ViewportMobile    = browser.Viewport{Width: 375, Height: 667}
	ViewportTablet    = browser.Viewport{Width: 768, Height: 1024}
	ViewportLaptop    = browser.Viewport{Width: 1366, Height: 768}
	ViewportDesktop   = browser.Viewport{Width: 1920, Height: 1080}
	ViewportUltraWide = browser.Viewport{Width: 2560, Height: 1080}
)

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BaseURL returns the page URL without query or fragment.
func BaseURL(ctx context.Context, page browser.Page) (*url.URL, error) {
	raw, err := page.URL(ctx)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse page url %q: %w", raw, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// WithQuery returns base with the given query parameters set.
func WithQuery(base *url.URL, kv ...string) string {
	u := *base
	q := u.Query()
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// WithHash returns base with fragment h.
func WithHash(base *url.URL, h string) string {
	u := *base
	u.Fragment = strings.TrimPrefix(h, "#")
	return u.String()
}

// WithPath returns base with its path replaced.
func WithPath(base *url.URL, p string) string {
	u := *base
	u.Path = p
	return u.String()
}

// Layout returns the base URL in the given layout mode.
func Layout(base *url.URL, mode string) string {
	return WithQuery(base, LayoutParam, mode)
}

// Navigate visits each URL in turn, pausing between visits.
func Navigate(ctx context.Context, page browser.Page, pause time.Duration, urls ...string) error {
	for _, u := range urls {
		if err := page.Goto(ctx, u); err != nil {
			return err
		}
		if pause > 0 {
			if err := Sleep(ctx, pause); err != nil {
				return err
			}
		}
	}
	return nil
}

// Back walks history back n times, pausing after each step.
func Back(ctx context.Context, page browser.Page, n int, pause time.Duration) error {
	for i := 0; i < n; i++ {
		if err := page.Back(ctx); err != nil {
			return err
		}
		if err := Sleep(ctx, pause); err != nil {
			return err
		}
	}
	return nil
}

// ScrollStorm sends n wheel events alternating direction every flip events.
func ScrollStorm(ctx context.Context, page browser.Page, n, flip int, dy float64, pause time.Duration) error {
	if flip <= 0 {
		flip = n
	}
	for i := 0; i < n; i++ {
		d := dy
		if (i/flip)%2 == 1 {
			d = -dy
		}
		if err := page.Wheel(ctx, 0, d); err != nil {
			return err
		}
		if err := Sleep(ctx, pause); err != nil {
			return err
		}
	}
	return nil
}

// ResizeStorm cycles through sizes for rounds rounds.
func ResizeStorm(ctx context.Context, page browser.Page, rounds int, pause time.Duration, sizes ...browser.Viewport) error {
	for r := 0; r < rounds; r++ {
		for _, v := range sizes {
			if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
				return err
			}
			if err := Sleep(ctx, pause); err != nil {
				return err
			}
		}
	}
	return nil
}

// MouseStorm moves the pointer across a w×h area in a deterministic zigzag.
func MouseStorm(ctx context.Context, page browser.Page, n int, w, h float64, pause time.Duration) error {
	for i := 0; i < n; i++ {
		x := float64((i*97)%int(w)) + 1
		y := float64((i*61)%int(h)) + 1
		if err := page.MouseMove(ctx, x, y); err != nil {
			return err
		}
		if pause > 0 {
			if err := Sleep(ctx, pause); err != nil {
				return err
			}
		}
	}
	return nil
}

// Click presses and releases the left button at (x, y).
func Click(ctx context.Context, page browser.Page, x, y float64) error {
	if err := page.MouseMove(ctx, x, y); err != nil {
		return err
	}
	if err := page.MouseDown(ctx); err != nil {
		return err
	}
	return page.MouseUp(ctx)
}

// Drag presses at from, moves in steps to to, and releases.
func Drag(ctx context.Context, page browser.Page, fromX, fromY, toX, toY float64, steps int) error {
	if err := page.MouseMove(ctx, fromX, fromY); err != nil {
		return err
	}
	if err := page.MouseDown(ctx); err != nil {
		return err
	}
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		if err := page.MouseMove(ctx, fromX+(toX-fromX)*f, fromY+(toY-fromY)*f); err != nil {
			return err
		}
	}
	return page.MouseUp(ctx)
}

// PressSeq presses each key in order, rounds times.
func PressSeq(ctx context.Context, page browser.Page, rounds int, pause time.Duration, keys ...string) error {
	for r := 0; r < rounds; r++ {
		for _, k := range keys {
			if err := page.Press(ctx, k); err != nil {
				return err
			}
			if pause > 0 {
				if err := Sleep(ctx, pause); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Emit writes message through console.error in the page. Negative tests
// use it to check classification end to end.
func Emit(ctx context.Context, page browser.Page, message string) error {
	js := fmt.Sprintf(`() => { console.error(%s); }`, jsQuote(message))
	return page.Evaluate(ctx, js, nil)
}

func jsQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// BridgeMatches returns the bridge messages containing any keyword,
// case-insensitively.
func BridgeMatches(ctx context.Context, page browser.Page, keywords ...string) ([]string, error) {
	entries, err := capture.ReadBridge(ctx, page)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		lower := strings.ToLower(e.Message)
		for _, k := range keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				out = append(out, e.Message)
				break
			}
		}
	}
	return out, nil
}

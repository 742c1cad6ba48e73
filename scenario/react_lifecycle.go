package scenario

import (
	"context"
	"strings"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
)

// Keywords grepped from bridge messages by the advisory probes.
var (
	InfiniteLoopKeywords = []string{"maximum update depth", "too many re-renders"}
	CursorLensKeywords   = []string{"cursor", "lens", "position"}
)

func reactLifecycle() []Scenario {
	return []Scenario{
		{
			Name:        "Rapid navigation",
			Description: "Hops between sections faster than effects can clean up",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				for i := 0; i < 10; i++ {
					if err := page.Goto(ctx, WithHash(base, Sections[i%len(Sections)])); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Rapid scroll",
			Description: "Scroll storm with direction flips to stress scroll listener cleanup",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				return ScrollStorm(ctx, page, 40, 5, 400, 20*time.Millisecond)
			},
		},
		{
			Name:        "Resize churn",
			Description: "Cycles viewport sizes so resize observers and media queries re-fire",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				return ResizeStorm(ctx, page, 3, 100*time.Millisecond,
					ViewportMobile, ViewportTablet, ViewportLaptop, ViewportDesktop)
			},
		},
		{
			Name:        "Rapid mouse movement",
			Description: "Sweeps the pointer across the viewport to stress pointer-driven state",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				return MouseStorm(ctx, page, 200, 1280, 720, 0)
			},
		},
		{
			Name:        "Navigate away during async work",
			Description: "Starts a layout switch and leaves before its effects resolve",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				for i := 0; i < 3; i++ {
					if err := page.Goto(ctx, Layout(base, LayoutCanvas)); err != nil {
						return err
					}
					if err := page.Goto(ctx, WithHash(base, "contact")); err != nil {
						return err
					}
				}
				return Sleep(ctx, 500*time.Millisecond)
			},
		},
		{
			Name:        "Conditional hook path switching",
			Description: "Toggles the layout parameter so different hook sets mount and unmount",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				for i := 0; i < 4; i++ {
					mode := LayoutCanvas
					if i%2 == 1 {
						mode = LayoutTraditional
					}
					if err := page.Goto(ctx, Layout(base, mode)); err != nil {
						return err
					}
					if err := Sleep(ctx, 250*time.Millisecond); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Interval and timeout cleanup",
			Description: "Idles long enough for timers to fire, then unmounts and idles again",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := Sleep(ctx, 2*time.Second); err != nil {
					return err
				}
				if err := page.Goto(ctx, Layout(base, LayoutTraditional)); err != nil {
					return err
				}
				return Sleep(ctx, 2*time.Second)
			},
		},
		{
			Name:        "Focus and blur churn",
			Description: "Tabs through focusable elements and escapes repeatedly",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				return PressSeq(ctx, page, 10, 20*time.Millisecond, "Tab", "Tab", "Escape")
			},
		},
		{
			Name:        "Infinite loop detection",
			Description: "Switches to canvas layout, waits, and reports render-loop messages (advisory)",
			Category:    CategoryHooks,
			MaxDuration: 15 * time.Second,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, Layout(base, LayoutCanvas)); err != nil {
					return err
				}
				if err := Sleep(ctx, 3*time.Second); err != nil {
					return err
				}
				hits, err := BridgeMatches(ctx, page, InfiniteLoopKeywords...)
				if err != nil {
					return err
				}
				if len(hits) > 0 {
					Advise(ctx, "possible infinite render loop: %s", strings.Join(hits, " | "))
				}
				return nil
			},
		},
		{
			Name:        "Cursor lens activation",
			Description: "Presses and holds in canvas layout to activate the cursor lens, then reports lens errors (advisory)",
			Category:    CategoryHooks,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, Layout(base, LayoutCanvas)); err != nil {
					return err
				}
				if err := page.MouseMove(ctx, 640, 360); err != nil {
					return err
				}
				if err := page.MouseDown(ctx); err != nil {
					return err
				}
				if err := Sleep(ctx, time.Second); err != nil {
					return err
				}
				if err := page.MouseUp(ctx); err != nil {
					return err
				}
				if err := MouseStorm(ctx, page, 30, 1280, 720, 10*time.Millisecond); err != nil {
					return err
				}
				hits, err := BridgeMatches(ctx, page, CursorLensKeywords...)
				if err != nil {
					return err
				}
				if len(hits) > 0 {
					Advise(ctx, "cursor lens errors: %s", strings.Join(hits, " | "))
				}
				return nil
			},
		},
	}
}

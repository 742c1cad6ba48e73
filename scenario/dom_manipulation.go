package scenario

import (
	"context"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
)

func domManipulation() []Scenario {
	return []Scenario{
		{
			Name:        "Scroll to bottom and back",
			Description: "Scrolls through the whole document and returns to the top",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				return ScrollStorm(ctx, page, 30, 15, 800, 40*time.Millisecond)
			},
		},
		{
			Name:        "Resize across breakpoints",
			Description: "Crosses every layout breakpoint in both directions",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				return ResizeStorm(ctx, page, 1, 300*time.Millisecond,
					ViewportMobile, ViewportTablet, ViewportLaptop, ViewportDesktop,
					ViewportLaptop, ViewportTablet, ViewportMobile)
			},
		},
		{
			Name:        "Wheel during resize",
			Description: "Interleaves scrolling with viewport changes so measurements go stale",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				for _, v := range []browser.Viewport{ViewportDesktop, ViewportMobile, ViewportTablet, ViewportDesktop} {
					if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
						return err
					}
					if err := page.Wheel(ctx, 0, 500); err != nil {
						return err
					}
				}
				return Sleep(ctx, 300*time.Millisecond)
			},
		},
		{
			Name:        "Drag gesture",
			Description: "Drags across the viewport, which canvas layouts treat as panning",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, Layout(base, LayoutCanvas)); err != nil {
					return err
				}
				if err := Drag(ctx, page, 200, 300, 1000, 400, 20); err != nil {
					return err
				}
				return Drag(ctx, page, 1000, 400, 200, 300, 20)
			},
		},
		{
			Name:        "Click storm",
			Description: "Clicks the same point many times in quick succession",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				for i := 0; i < 20; i++ {
					if err := Click(ctx, page, 640, 360); err != nil {
						return err
					}
				}
				return Sleep(ctx, 300*time.Millisecond)
			},
		},
		{
			Name:        "Keyboard page navigation",
			Description: "Drives scroll position from the keyboard",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				return PressSeq(ctx, page, 2, 100*time.Millisecond, "PageDown", "PageDown", "End", "PageUp", "Home")
			},
		},
		{
			Name:        "Double click storm",
			Description: "Sends paired clicks on the same point faster than a double-click interval",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				for i := 0; i < 10; i++ {
					x, y := float64(200+(i*113)%900), float64(150+(i*71)%500)
					for j := 0; j < 2; j++ {
						if err := Click(ctx, page, x, y); err != nil {
							return err
						}
					}
					if err := Sleep(ctx, 60*time.Millisecond); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Drag off the viewport",
			Description: "Starts a drag in the page and releases outside the visible area",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				v := ViewportLaptop
				if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
					return err
				}
				cx, cy := float64(v.Width)/2, float64(v.Height)/2
				if err := Drag(ctx, page, cx, cy, float64(v.Width+200), cy, 12); err != nil {
					return err
				}
				return Drag(ctx, page, cx, cy, cx, -100, 12)
			},
		},
		{
			Name:        "Scroll while dragging",
			Description: "Holds the button down through wheel events and pointer moves",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				if err := page.MouseMove(ctx, 400, 300); err != nil {
					return err
				}
				if err := page.MouseDown(ctx); err != nil {
					return err
				}
				for i := 0; i < 8; i++ {
					if err := page.Wheel(ctx, 0, 250); err != nil {
						return err
					}
					if err := page.MouseMove(ctx, float64(400+i*30), float64(300+i*10)); err != nil {
						return err
					}
				}
				return page.MouseUp(ctx)
			},
		},
		{
			Name:        "Tab focus cycling with activation",
			Description: "Tabs through focusable elements and activates or dismisses each",
			Category:    CategoryDOM,
			Execute: func(ctx context.Context, page browser.Page) error {
				return PressSeq(ctx, page, 5, 80*time.Millisecond, "Tab", "Tab", "Enter", "Escape", "Space")
			},
		},
	}
}

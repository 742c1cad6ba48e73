package scenario

import (
	"context"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func asyncErrors() []Scenario {
	return []Scenario{
		{
			Name:        "Reload during pending requests",
			Description: "Reloads back to back so in-flight fetches resolve into unmounted components",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				for i := 0; i < 4; i++ {
					if err := page.Reload(ctx); err != nil {
						return err
					}
				}
				return Sleep(ctx, time.Second)
			},
		},
		{
			Name:        "Leave before lazy content resolves",
			Description: "Scrolls to trigger lazy loading and navigates away immediately",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Wheel(ctx, 0, 3000); err != nil {
					return err
				}
				if err := page.Goto(ctx, WithPath(base, "/")); err != nil {
					return err
				}
				return Sleep(ctx, 500*time.Millisecond)
			},
		},
		{
			Name:        "Hash changes while loading",
			Description: "Fires hash changes between reload and idle",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Reload(ctx); err != nil {
					return err
				}
				return Navigate(ctx, page, 0, WithHash(base, "work"), WithHash(base, "gallery"), WithHash(base, "hero"))
			},
		},
		{
			Name:        "Interaction after long idle",
			Description: "Idles past typical debounce and timer windows, then interacts",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				if err := Sleep(ctx, 3*time.Second); err != nil {
					return err
				}
				if err := ScrollStorm(ctx, page, 10, 0, 300, 30*time.Millisecond); err != nil {
					return err
				}
				return Click(ctx, page, 640, 360)
			},
		},
		{
			Name:           "Failed fetch is classified as NETWORK_ERROR",
			Description:    "Emits a fetch failure and expects the harness to classify it",
			Category:       CategoryAsync,
			ExpectedErrors: []types.ErrorType{types.ErrorNetwork},
			Execute: func(ctx context.Context, page browser.Page) error {
				return Emit(ctx, page, "Failed to fetch: network request to /api/gallery failed")
			},
		},
		{
			Name:        "Reload mid-scroll",
			Description: "Reloads while lazy sections are still being scrolled into view",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				for i := 0; i < 3; i++ {
					if err := ScrollStorm(ctx, page, 5, 0, 600, 20*time.Millisecond); err != nil {
						return err
					}
					if err := page.Reload(ctx); err != nil {
						return err
					}
				}
				return Sleep(ctx, 500*time.Millisecond)
			},
		},
		{
			Name:        "Missing route and back",
			Description: "Navigates to a route the server does not know, then returns",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, WithPath(base, "/this-route-does-not-exist")); err != nil {
					return err
				}
				if err := Sleep(ctx, 300*time.Millisecond); err != nil {
					return err
				}
				return Back(ctx, page, 1, 500*time.Millisecond)
			},
		},
		{
			Name:        "Missing API route",
			Description: "Loads an unknown API path directly, then returns while the app refetches",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, WithPath(base, "/api/does-not-exist")); err != nil {
					return err
				}
				return Back(ctx, page, 1, 500*time.Millisecond)
			},
		},
		{
			Name:        "Layout switch during load",
			Description: "Reloads and switches layout before the first load settles",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Reload(ctx); err != nil {
					return err
				}
				return Navigate(ctx, page, 0, Layout(base, LayoutCanvas), Layout(base, LayoutTraditional))
			},
		},
		{
			Name:        "Resize while requests resolve",
			Description: "Reloads and immediately cycles viewports while data is still arriving",
			Category:    CategoryAsync,
			Execute: func(ctx context.Context, page browser.Page) error {
				if err := page.Reload(ctx); err != nil {
					return err
				}
				return ResizeStorm(ctx, page, 2, 30*time.Millisecond, ViewportMobile, ViewportDesktop, ViewportTablet)
			},
		},
	}
}

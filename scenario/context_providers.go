package scenario

import (
	"context"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func contextProviders() []Scenario {
	return []Scenario{
		{
			Name:        "Context providers mount on initial load",
			Description: "Loads the site and idles so every provider tree finishes mounting",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				return Sleep(ctx, 2*time.Second)
			},
		},
		{
			Name:        "Providers survive section hash navigation",
			Description: "Walks every section anchor so consumers re-read context on each route change",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				urls := make([]string, 0, len(Sections))
				for _, s := range Sections {
					urls = append(urls, WithHash(base, s))
				}
				return Navigate(ctx, page, 300*time.Millisecond, urls...)
			},
		},
		{
			Name:        "Providers survive layout mode switch",
			Description: "Switches between canvas and traditional layouts, which mount different provider trees",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 500*time.Millisecond,
					Layout(base, LayoutCanvas),
					Layout(base, LayoutTraditional),
					Layout(base, LayoutCanvas),
				)
			},
		},
		{
			Name:        "Provider state survives reloads",
			Description: "Reloads repeatedly so persisted provider state is rehydrated each time",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				for i := 0; i < 3; i++ {
					if err := page.Reload(ctx); err != nil {
						return err
					}
					if err := Sleep(ctx, 400*time.Millisecond); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Providers survive history traversal",
			Description: "Navigates forward through sections then walks history back",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := Navigate(ctx, page, 200*time.Millisecond,
					WithHash(base, "about"), WithHash(base, "gallery"), Layout(base, LayoutCanvas)); err != nil {
					return err
				}
				return Back(ctx, page, 3, 200*time.Millisecond)
			},
		},
		{
			Name:           "Missing provider is classified as CONTEXT_MISSING",
			Description:    "Emits the hook-outside-provider message and expects the harness to classify it",
			Category:       CategoryContext,
			ExpectedErrors: []types.ErrorType{types.ErrorContextMissing},
			Execute: func(ctx context.Context, page browser.Page) error {
				return Emit(ctx, page, "useUnifiedGallery must be used within a UnifiedGalleryProvider")
			},
		},
		{
			Name:        "Providers survive viewport remount",
			Description: "Reloads at phone and desktop sizes so breakpoint-dependent trees remount under the providers",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				for _, v := range []browser.Viewport{ViewportMobile, ViewportDesktop, ViewportMobile} {
					if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
						return err
					}
					if err := page.Reload(ctx); err != nil {
						return err
					}
					if err := ScrollStorm(ctx, page, 4, 0, 400, 40*time.Millisecond); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Provider consumers under rapid layout toggles",
			Description: "Flips between layout modes with no settle time between loads",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				var urls []string
				for i := 0; i < 3; i++ {
					urls = append(urls, Layout(base, LayoutCanvas), Layout(base, LayoutTraditional))
				}
				return Navigate(ctx, page, 50*time.Millisecond, urls...)
			},
		},
		{
			Name:        "Providers survive back after reload",
			Description: "Reloads on a deep section and walks history back past it",
			Category:    CategoryContext,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := Navigate(ctx, page, 200*time.Millisecond, WithHash(base, "work"), WithHash(base, "contact")); err != nil {
					return err
				}
				if err := page.Reload(ctx); err != nil {
					return err
				}
				return Back(ctx, page, 2, 300*time.Millisecond)
			},
		},
	}
}

package scenario

import (
	"context"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
)

func viewportScenario(name, desc string, vs ...browser.Viewport) Scenario {
	return Scenario{
		Name:        name,
		Description: desc,
		Category:    CategoryLayout,
		Execute: func(ctx context.Context, page browser.Page) error {
			for _, v := range vs {
				if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
					return err
				}
				if err := page.Reload(ctx); err != nil {
					return err
				}
				if err := ScrollStorm(ctx, page, 6, 3, 500, 50*time.Millisecond); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func browserCompat() []Scenario {
	return []Scenario{
		viewportScenario("Mobile viewport", "Loads and scrolls at phone size", ViewportMobile),
		viewportScenario("Tablet orientations", "Loads in portrait, then landscape",
			ViewportTablet, browser.Viewport{Width: ViewportTablet.Height, Height: ViewportTablet.Width}),
		viewportScenario("Ultra-wide viewport", "Loads at a 21:9 desktop size", ViewportUltraWide),
		viewportScenario("Tiny viewport", "Loads below the smallest supported width", browser.Viewport{Width: 320, Height: 480}),
		{
			Name:        "Tap-like pointer input",
			Description: "Short press and release sequences without intermediate movement",
			Category:    CategoryIntegration,
			Execute: func(ctx context.Context, page browser.Page) error {
				if err := page.SetViewport(ctx, ViewportMobile.Width, ViewportMobile.Height); err != nil {
					return err
				}
				for _, y := range []float64{100, 300, 500} {
					if err := Click(ctx, page, 187, y); err != nil {
						return err
					}
					if err := Sleep(ctx, 150*time.Millisecond); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Layout switch at mobile size",
			Description: "Switches layout modes on a small screen",
			Category:    CategoryIntegration,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.SetViewport(ctx, ViewportMobile.Width, ViewportMobile.Height); err != nil {
					return err
				}
				return Navigate(ctx, page, 400*time.Millisecond,
					Layout(base, LayoutCanvas), Layout(base, LayoutTraditional))
			},
		},
		viewportScenario("Landscape phone viewport", "Loads and scrolls at phone size turned sideways",
			browser.Viewport{Width: ViewportMobile.Height, Height: ViewportMobile.Width}),
		viewportScenario("Print-proportioned viewport", "Loads at A4 proportions as used by print preview", browser.Viewport{Width: 794, Height: 1123}),
		{
			Name:        "Touch-sized tablet taps",
			Description: "Taps on a tablet-sized viewport at finger-sized spacing",
			Category:    CategoryIntegration,
			Execute: func(ctx context.Context, page browser.Page) error {
				v := ViewportTablet
				if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
					return err
				}
				for y := 80.0; y < float64(v.Height); y += 220 {
					if err := Click(ctx, page, float64(v.Width)/2, y); err != nil {
						return err
					}
					if err := Sleep(ctx, 120*time.Millisecond); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			Name:        "Back-forward cache hops",
			Description: "Leaves the app, returns through history and reloads the restored page",
			Category:    CategoryIntegration,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := Navigate(ctx, page, 200*time.Millisecond, WithHash(base, "gallery"), WithPath(base, "/")); err != nil {
					return err
				}
				if err := Back(ctx, page, 2, 200*time.Millisecond); err != nil {
					return err
				}
				if err := page.Reload(ctx); err != nil {
					return err
				}
				return ScrollStorm(ctx, page, 4, 2, 400, 40*time.Millisecond)
			},
		},
	}
}

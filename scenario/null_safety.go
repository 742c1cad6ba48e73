package scenario

import (
	"context"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func nullSafety() []Scenario {
	return []Scenario{
		{
			Name:        "Unknown hash target",
			Description: "Deep links to an anchor that does not exist so scroll-to-section code sees a null element",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, WithHash(base, "does-not-exist")); err != nil {
					return err
				}
				return Sleep(ctx, time.Second)
			},
		},
		{
			Name:        "Unknown layout parameter",
			Description: "Loads with an unsupported layout value and empty parameters",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 500*time.Millisecond,
					WithQuery(base, LayoutParam, "unknown"),
					WithQuery(base, LayoutParam, "", "section", ""),
				)
			},
		},
		{
			Name:        "Missing route",
			Description: "Visits a path the site does not serve",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, WithPath(base, "/this-route-does-not-exist")); err != nil {
					return err
				}
				return Sleep(ctx, 500*time.Millisecond)
			},
		},
		{
			Name:        "Interaction before settle",
			Description: "Reloads and interacts immediately, before lazy refs are attached",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				if err := page.Reload(ctx); err != nil {
					return err
				}
				if err := Click(ctx, page, 400, 300); err != nil {
					return err
				}
				return page.Wheel(ctx, 0, 600)
			},
		},
		{
			Name:        "Clicks on empty regions",
			Description: "Clicks viewport corners where no interactive element exists",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				for _, pt := range [][2]float64{{1, 1}, {1279, 1}, {1, 719}, {1279, 719}, {640, 360}} {
					if err := Click(ctx, page, pt[0], pt[1]); err != nil {
						return err
					}
				}
				return Sleep(ctx, 300*time.Millisecond)
			},
		},
		{
			Name:        "Keyboard input with nothing focused",
			Description: "Presses navigation keys before any element holds focus",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				return PressSeq(ctx, page, 2, 50*time.Millisecond, "Escape", "ArrowRight", "ArrowLeft", "Enter", "Space")
			},
		},
		{
			Name:           "Null access is classified as NULL_ACCESS",
			Description:    "Emits a null property read and expects the harness to classify it",
			Category:       CategoryNullSafety,
			ExpectedErrors: []types.ErrorType{types.ErrorNullAccess},
			Execute: func(ctx context.Context, page browser.Page) error {
				return Emit(ctx, page, "Cannot read properties of null (reading 'getBoundingClientRect')")
			},
		},
		{
			Name:        "Empty query parameters",
			Description: "Loads with known parameters present but empty",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 300*time.Millisecond,
					WithQuery(base, "image", ""),
					WithQuery(base, LayoutParam, ""),
					WithQuery(base, "image", "", LayoutParam, LayoutCanvas),
				)
			},
		},
		{
			Name:        "Back past the first entry",
			Description: "Walks history back with nothing behind the initial load, then interacts",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				if err := Back(ctx, page, 3, 100*time.Millisecond); err != nil {
					return err
				}
				return ScrollStorm(ctx, page, 6, 3, 400, 40*time.Millisecond)
			},
		},
		{
			Name:        "Pointer at viewport edges",
			Description: "Clicks the corners and edges where hit tests find no element",
			Category:    CategoryNullSafety,
			Execute: func(ctx context.Context, page browser.Page) error {
				v := ViewportLaptop
				if err := page.SetViewport(ctx, v.Width, v.Height); err != nil {
					return err
				}
				w, h := float64(v.Width-1), float64(v.Height-1)
				for _, pt := range [][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}, {w / 2, 0}, {w / 2, h}} {
					if err := Click(ctx, page, pt[0], pt[1]); err != nil {
						return err
					}
				}
				return Sleep(ctx, 300*time.Millisecond)
			},
		},
	}
}

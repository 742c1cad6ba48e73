package scenario

import (
	"context"
	"strings"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

func typeCoercion() []Scenario {
	return []Scenario{
		{
			Name:        "Non-numeric numeric parameters",
			Description: "Passes words and negative values where the site parses numbers",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 300*time.Millisecond,
					WithQuery(base, "image", "abc"),
					WithQuery(base, "image", "-1"),
					WithQuery(base, "image", "1e309"),
					WithQuery(base, LayoutParam, "1"),
				)
			},
		},
		{
			Name:        "Encoded hash fragments",
			Description: "Uses percent-encoded and unicode fragments as section ids",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 200*time.Millisecond,
					WithHash(base, "%E2%9C%93"),
					WithHash(base, "gallery%20"),
					WithHash(base, "ünïcødé"),
				)
			},
		},
		{
			Name:        "Oversized query string",
			Description: "Loads with a very long parameter value",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := page.Goto(ctx, WithQuery(base, "q", strings.Repeat("x", 4000))); err != nil {
					return err
				}
				return Sleep(ctx, 500*time.Millisecond)
			},
		},
		{
			Name:        "Boolean-like parameters",
			Description: "Passes string booleans the site might coerce",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 300*time.Millisecond,
					WithQuery(base, "debug", "false"),
					WithQuery(base, "debug", "0"),
					WithQuery(base, "debug", "null"),
				)
			},
		},
		{
			Name:           "Type error is classified as TYPE_ERROR",
			Description:    "Emits a call on a non-function and expects the harness to classify it",
			Category:       CategoryType,
			ExpectedErrors: []types.ErrorType{types.ErrorTypeError},
			Execute: func(ctx context.Context, page browser.Page) error {
				return Emit(ctx, page, "images.map is not a function")
			},
		},
		{
			Name:        "Case-variant layout values",
			Description: "Uses mixed-case and padded layout values",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				return Navigate(ctx, page, 300*time.Millisecond,
					Layout(base, strings.ToUpper(LayoutCanvas)),
					Layout(base, " "+LayoutTraditional+" "),
					Layout(base, "Canvas"),
				)
			},
		},
		{
			Name:        "Literal-value hash fragments",
			Description: "Uses fragments that read as JavaScript literals",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				var urls []string
				for _, h := range []string{"0", "true", "null", "undefined", "NaN", "__proto__"} {
					urls = append(urls, WithHash(base, h))
				}
				return Navigate(ctx, page, 150*time.Millisecond, urls...)
			},
		},
		{
			Name:        "Numeric-looking section paths",
			Description: "Loads paths made of numbers and dotted segments",
			Category:    CategoryType,
			Execute: func(ctx context.Context, page browser.Page) error {
				base, err := BaseURL(ctx, page)
				if err != nil {
					return err
				}
				if err := Navigate(ctx, page, 200*time.Millisecond,
					WithPath(base, "/0"), WithPath(base, "/-1"), WithPath(base, "/1.5")); err != nil {
					return err
				}
				return page.Goto(ctx, base.String())
			},
		},
	}
}

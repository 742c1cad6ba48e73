// Package scenario holds the catalog of adversarial interaction scenarios.
//
// Scenarios are black-box probes. They drive the page with navigation,
// mouse, keyboard and viewport changes only. The single exception is reading
// the in-page error bridge, plus the negative tests that emit a known message
// to check classification end to end.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// Category groups scenarios in reports.
type Category string

// Scenario categories.
const (
	CategoryContext     Category = "context"
	CategoryNullSafety  Category = "null-safety"
	CategoryHooks       Category = "hooks"
	CategoryAsync       Category = "async"
	CategoryDOM         Category = "dom"
	CategoryType        Category = "type"
	CategoryIntegration Category = "integration"
	CategoryLayout      Category = "layout"
)

// Categories lists every category.
func Categories() []Category {
	return []Category{
		CategoryContext, CategoryNullSafety, CategoryHooks, CategoryAsync,
		CategoryDOM, CategoryType, CategoryIntegration, CategoryLayout,
	}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Categories(), c) {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ExecuteFunc drives the page. The page has already loaded the base URL.
type ExecuteFunc func(ctx context.Context, page browser.Page) error

// Scenario is one interaction pattern known to trigger runtime faults.
type Scenario struct {
	Name        string
	Description string
	Category    Category
	Execute     ExecuteFunc
	// ExpectedErrors, when set, must all appear among the captured types.
	ExpectedErrors []types.ErrorType
	// MaxDuration bounds Execute. Zero means the runner timeout.
	MaxDuration time.Duration
}

// Validate checks that the scenario can be registered.
func (s Scenario) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if _, err := ParseCategory(string(s.Category)); err != nil {
		errs = append(errs, err)
	}
	if s.Execute == nil {
		errs = append(errs, errors.New("execute is required"))
	}
	if s.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("max duration %s is negative", s.MaxDuration))
	}
	for _, t := range s.ExpectedErrors {
		if _, err := types.ParseErrorType(string(t)); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

type adviceKey struct{}

// AdviceFunc receives advisory findings. Advisory findings are logged and
// attached to the result but never fail a scenario on their own.
type AdviceFunc func(msg string)

// WithAdvice returns a context that delivers Advise calls to fn.
func WithAdvice(ctx context.Context, fn AdviceFunc) context.Context {
	return context.WithValue(ctx, adviceKey{}, fn)
}

// Advise reports an advisory finding. Without a receiver it is dropped.
func Advise(ctx context.Context, format string, args ...any) {
	if fn, ok := ctx.Value(adviceKey{}).(AdviceFunc); ok && fn != nil {
		fn(fmt.Sprintf(format, args...))
	}
}

package runtime

import (
	"regexp"
	"strings"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// Passed computes the verdict for one attempt.
//
// Without expectations a scenario passes iff no CRITICAL error was captured.
// With expectations it passes iff every expected type was captured; other
// errors, critical or not, do not matter.
func Passed(expected []types.ErrorType, errs []types.CapturedError) bool {
	if len(expected) == 0 {
		return types.CountCritical(errs) == 0
	}
	seen := make(map[types.ErrorType]bool, len(errs))
	for _, e := range errs {
		seen[e.Type] = true
	}
	for _, t := range expected {
		if !seen[t] {
			return false
		}
	}
	return true
}

// MissingExpected returns the expected types that were not captured.
func MissingExpected(expected []types.ErrorType, errs []types.CapturedError) []types.ErrorType {
	seen := make(map[types.ErrorType]bool, len(errs))
	for _, e := range errs {
		seen[e.Type] = true
	}
	var missing []types.ErrorType
	for _, t := range expected {
		if !seen[t] {
			missing = append(missing, t)
		}
	}
	return missing
}

// Batch is a half-open index range [Start, End) of registered scenarios.
type Batch struct {
	Start int
	End   int
}

// Len returns the number of scenarios in the batch.
func (b Batch) Len() int { return b.End - b.Start }

// Batches partitions n items into consecutive batches of at most size.
// A size below 1 is treated as 1.
func Batches(n, size int) []Batch {
	if size < 1 {
		size = 1
	}
	out := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		out = append(out, Batch{Start: start, End: min(start+size, n)})
	}
	return out
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeName turns a scenario name into a file-name fragment.
func SanitizeName(name string) string {
	s := unsafeName.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "scenario"
	}
	return s
}

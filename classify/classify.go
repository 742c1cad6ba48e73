// Package classify maps error messages to an error type and severity.
//
// The rule tables here are the only classification source in the harness:
// the Go capture engine calls Apply directly and the in-page bridge script
// embeds Script(), which is generated from the same tables.
package classify

import (
	"strings"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// Rule maps a set of case-insensitive message substrings to an error type.
type Rule struct {
	Type     types.ErrorType `json:"type"`
	Patterns []string        `json:"patterns"`
}

// TypeRules are evaluated in order; the first rule with a matching pattern wins.
var TypeRules = []Rule{
	{
		Type: types.ErrorInfiniteLoop,
		Patterns: []string{
			"maximum update depth exceeded",
			"too many re-renders",
			"maximum call stack size exceeded",
		},
	},
	{
		Type:     types.ErrorContextMissing,
		Patterns: []string{"must be used within", "provider", "context"},
	},
	{
		Type: types.ErrorNullAccess,
		Patterns: []string{
			"cannot read properties of null",
			"cannot read properties of undefined",
			"null is not an object",
			"undefined is not an object",
		},
	},
	{
		Type:     types.ErrorTypeError,
		Patterns: []string{"is not a function", "is not a constructor", "is not iterable"},
	},
	{
		Type:     types.ErrorNetwork,
		Patterns: []string{"network", "fetch", "xhr"},
	},
}

// UncaughtMarker escalates any message containing it to CRITICAL.
// Matched case-sensitively, as browsers emit it verbatim.
const UncaughtMarker = "Uncaught"

// Classify returns the error type for message. Unmatched messages are UNKNOWN.
func Classify(message string) types.ErrorType {
	lower := strings.ToLower(message)
	for _, rule := range TypeRules {
		for _, p := range rule.Patterns {
			if strings.Contains(lower, p) {
				return rule.Type
			}
		}
	}
	return types.ErrorUnknown
}

// SeverityOf returns the severity for an error of type t carrying message.
func SeverityOf(t types.ErrorType, message string) types.Severity {
	switch {
	case t == types.ErrorInfiniteLoop:
		return types.SeverityCritical
	case t == types.ErrorContextMissing:
		return types.SeverityCritical
	case strings.Contains(message, UncaughtMarker):
		return types.SeverityCritical
	case t == types.ErrorNullAccess, t == types.ErrorTypeError:
		return types.SeverityHigh
	case t == types.ErrorNetwork, t == types.ErrorIntegration:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// Apply classifies message and derives its severity in one call.
func Apply(message string) (types.ErrorType, types.Severity) {
	t := Classify(message)
	return t, SeverityOf(t, message)
}

// Package config loads the optional YAML config file for the harness.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// refPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// ExpandEnv substitutes environment references in a config document.
//
//	${VAR}           value, or empty when unset
//	${VAR:-default}  value, or default when unset or empty
//	${VAR:?message}  value, or an error naming VAR when unset or empty
//
// Every missing required variable is reported, not just the first.
func ExpandEnv(doc string) (string, error) {
	var missing []error
	out := refPattern.ReplaceAllStringFunc(doc, func(ref string) string {
		m := refPattern.FindStringSubmatch(ref)
		name, op, arg := m[1], m[2], m[3]
		if v := os.Getenv(name); v != "" {
			return v
		}
		switch op {
		case "-":
			return arg
		case "?":
			if arg == "" {
				arg = "required but not set"
			}
			missing = append(missing, fmt.Errorf("${%s}: %s", name, arg))
		}
		return ""
	})
	return out, errors.Join(missing...)
}

package browser

import (
	"fmt"
	"sort"

	"github.com/go-rod/rod/lib/input"
)

var keyTable = map[string]input.Key{
	"Tab":        input.Tab,
	"Enter":      input.Enter,
	"Escape":     input.Escape,
	"Space":      input.Space,
	"Backspace":  input.Backspace,
	"ArrowUp":    input.ArrowUp,
	"ArrowDown":  input.ArrowDown,
	"ArrowLeft":  input.ArrowLeft,
	"ArrowRight": input.ArrowRight,
	"PageUp":     input.PageUp,
	"PageDown":   input.PageDown,
	"Home":       input.Home,
	"End":        input.End,
}

// KeyNames returns the key names accepted by Page.Press, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(keyTable))
	for name := range keyTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupKey resolves a key name.
func LookupKey(name string) (input.Key, error) {
	k, ok := keyTable[name]
	if !ok {
		return 0, fmt.Errorf("unsupported key %q", name)
	}
	return k, nil
}

package scenario

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownGroup is returned by Select for a group name not in the catalog.
var ErrUnknownGroup = errors.New("unknown scenario group")

// AllGroups selects every group.
const AllGroups = "all"

// Group is a named list of scenarios.
type Group struct {
	Name      string
	Scenarios []Scenario
}

// Groups returns the built-in catalog in its fixed order.
func Groups() []Group {
	return []Group{
		{Name: "contextProviders", Scenarios: contextProviders()},
		{Name: "nullSafety", Scenarios: nullSafety()},
		{Name: "reactLifecycle", Scenarios: reactLifecycle()},
		{Name: "asyncErrors", Scenarios: asyncErrors()},
		{Name: "domManipulation", Scenarios: domManipulation()},
		{Name: "typeCoercion", Scenarios: typeCoercion()},
		{Name: "browserCompat", Scenarios: browserCompat()},
	}
}

// Names returns the group names of gs in order.
func Names(gs []Group) []string {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.Name
	}
	return names
}

// normalize folds case and drops separators so "react-lifecycle",
// "react_lifecycle" and "reactLifecycle" all name the same group.
func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

// Lookup finds a group by name in gs.
func Lookup(gs []Group, name string) (Group, bool) {
	want := normalize(name)
	for _, g := range gs {
		if normalize(g.Name) == want {
			return g, true
		}
	}
	return Group{}, false
}

// Select returns the groups named by filter. Empty or "all" selects every
// group; otherwise filter is a comma-separated list of group names.
func Select(gs []Group, filter string) ([]Group, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, AllGroups) {
		return gs, nil
	}
	var out []Group
	for _, name := range strings.Split(filter, ",") {
		g, ok := Lookup(gs, name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (have %s)", ErrUnknownGroup, strings.TrimSpace(name), strings.Join(Names(gs), ", "))
		}
		out = append(out, g)
	}
	return out, nil
}

// Flatten returns the scenarios of gs in group order.
func Flatten(gs []Group) []Scenario {
	var out []Scenario
	for _, g := range gs {
		out = append(out, g.Scenarios...)
	}
	return out
}

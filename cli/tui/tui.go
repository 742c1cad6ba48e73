package tui

import (
	"fmt"
	"sort"
)

// Views with an interactive mode.
const (
	ViewInspectReport = "inspect_report"
	ViewStatsRun      = "stats_run"
)

type launcher func(viewType string, data any) error

var views = map[string]launcher{
	ViewInspectReport: RunInspectTUI,
	ViewStatsRun:      RunStatsTUI,
}

// Run opens the interactive view registered for viewType.
func Run(viewType string, data any) error {
	launch, ok := views[viewType]
	if !ok {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
	return launch(viewType, data)
}

// IsTUISupported reports whether viewType has an interactive view.
func IsTUISupported(viewType string) bool {
	_, ok := views[viewType]
	return ok
}

// SupportedTUIViews lists the interactive views in name order.
func SupportedTUIViews() []string {
	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package cmd

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/cli/render"
	"github.com/nino-chavez/brand-site-sub018/scenario"
)

// ScenarioInfo is one row of the list command.
type ScenarioInfo struct {
	Group          string `json:"group" yaml:"group"`
	Name           string `json:"name" yaml:"name"`
	Category       string `json:"category" yaml:"category"`
	ExpectedErrors string `json:"expected_errors" yaml:"expected_errors"`
	MaxDuration    string `json:"max_duration" yaml:"max_duration"`
	Description    string `json:"description" yaml:"description"`
}

// ListCommand returns the list command.
// It lists the scenarios a run would register, without launching a browser.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List scenario groups and scenarios",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "scenario",
				Usage: "Scenario group filter (same syntax as the run)",
				Value: scenario.AllGroups,
			},
			&cli.StringSliceFlag{
				Name:  "scenario-file",
				Usage: "YAML scenario file adding a group (repeatable)",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only list scenarios of this category",
			},
		),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list command", 1)
	}

	var category scenario.Category
	if s := c.String("category"); s != "" {
		category, err = scenario.ParseCategory(s)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	groups, err := selectGroups(c.String("scenario"), c.StringSlice("scenario-file"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return r.Render(scenarioInfos(groups, category))
}

// scenarioInfos flattens groups into list rows, optionally filtered by category.
func scenarioInfos(groups []scenario.Group, category scenario.Category) []ScenarioInfo {
	rows := []ScenarioInfo{}
	for _, g := range groups {
		for _, s := range g.Scenarios {
			if category != "" && s.Category != category {
				continue
			}
			expected := make([]string, len(s.ExpectedErrors))
			for i, t := range s.ExpectedErrors {
				expected[i] = string(t)
			}
			row := ScenarioInfo{
				Group:          g.Name,
				Name:           s.Name,
				Category:       string(s.Category),
				ExpectedErrors: strings.Join(expected, ","),
				Description:    s.Description,
			}
			if s.MaxDuration > 0 {
				row.MaxDuration = s.MaxDuration.String()
			}
			rows = append(rows, row)
		}
	}
	return rows
}

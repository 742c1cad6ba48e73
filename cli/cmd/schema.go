package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/scenario"
)

// SchemaCommand returns the schema command.
// It prints the JSON Schema scenario files are validated against.
func SchemaCommand() *cli.Command {
	return &cli.Command{
		Name:   "schema",
		Usage:  "Print the JSON Schema of YAML scenario files",
		Action: schemaAction,
	}
}

func schemaAction(c *cli.Context) error {
	data, err := scenario.JSONSchema()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to build schema: %v", err), 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}

// ValidateCommand returns the validate command.
// It checks scenario files without running them.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate YAML scenario files",
		ArgsUsage: "<file> [file...]",
		Action:    validateAction,
	}
}

func validateAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("at least one scenario file required", 1)
	}
	failed := 0
	for _, path := range c.Args().Slice() {
		g, err := scenario.LoadFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(c.App.ErrWriter, "%v\n", err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s: group %q, %d scenarios\n", path, g.Name, len(g.Scenarios))
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files invalid", failed, c.NArg()), 1)
	}
	return nil
}

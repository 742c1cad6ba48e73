// Package main provides the run-runtime-errors entrypoint.
//
// The root command runs the harness; the subcommands are read-only.
//
// Usage:
//
//	run-runtime-errors [--scenario=<group|all>] [--headless=<bool>] [--retries=<n>]
//	                   [--screenshot=<bool>] [--video=<bool>] [--ci] [--baseUrl=<url>]
//	run-runtime-errors <command> [options]
//
// Exit codes for a run:
//   - 0: every scenario passed and no critical error was captured
//   - 1: any failure, any critical error, or a setup error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/cli/cmd"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "run-runtime-errors",
		Usage:          "Drive a browser through adversarial scenarios and gate on runtime errors",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:          cmd.RunFlags(),
		Action:         cmd.RunAction,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.ListCommand(),
			cmd.InspectCommand(),
			cmd.StatsCommand(),
			cmd.SchemaCommand(),
			cmd.ValidateCommand(),
			cmd.DebugCommand(),
			cmd.VersionCommand(commit),
		},
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "" or "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

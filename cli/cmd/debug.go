package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/adapter/redis"
	"github.com/nino-chavez/brand-site-sub018/capture"
	"github.com/nino-chavez/brand-site-sub018/classify"
	"github.com/nino-chavez/brand-site-sub018/cli/render"
)

// ClassifyResponse is the response for debug classify.
type ClassifyResponse struct {
	Message   string `json:"message" yaml:"message"`
	Type      string `json:"type" yaml:"type"`
	Severity  string `json:"severity" yaml:"severity"`
	Component string `json:"component,omitempty" yaml:"component,omitempty"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
}

// DebugCommand returns the debug command with subcommands.
// Debug commands are diagnostic tools and never launch a browser.
func DebugCommand() *cli.Command {
	return &cli.Command{
		Name:  "debug",
		Usage: "Diagnostic tools (classify, bridge, notifications)",
		Subcommands: []*cli.Command{
			debugClassifyCommand(),
			debugBridgeCommand(),
			debugNotificationsCommand(),
		},
	}
}

func debugClassifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify error messages the way captured errors are classified",
		ArgsUsage: "<message> [message...]",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "stack",
				Usage: "Stack trace used to derive component and location",
			},
		),
		Action: debugClassifyAction,
	}
}

func debugClassifyAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("at least one message required", 1)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for debug classify", 1)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	stack := c.String("stack")
	out := make([]ClassifyResponse, 0, c.NArg())
	for _, msg := range c.Args().Slice() {
		out = append(out, classifyMessage(msg, stack))
	}
	if len(out) == 1 {
		return r.Render(out[0])
	}
	return r.Render(out)
}

func classifyMessage(msg, stack string) ClassifyResponse {
	t, sev := classify.Apply(msg)
	return ClassifyResponse{
		Message:   msg,
		Type:      string(t),
		Severity:  string(sev),
		Component: capture.ComponentName(stack),
		Location:  capture.Location(stack, ""),
	}
}

func debugBridgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "bridge",
		Usage: "Print the init script installed into every page",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rules",
				Usage: "Print the classification rules instead of the script",
			},
		},
		Action: debugBridgeAction,
	}
}

func debugBridgeAction(c *cli.Context) error {
	w := c.App.Writer
	if c.Bool("rules") {
		var b strings.Builder
		for i, rule := range classify.TypeRules {
			fmt.Fprintf(&b, "%d. %s <- %s\n", i+1, rule.Type, strings.Join(rule.Patterns, " | "))
		}
		fmt.Fprintf(&b, "otherwise UNKNOWN; %q in the message is CRITICAL\n", classify.UncaughtMarker)
		_, err := fmt.Fprint(w, b.String())
		return err
	}
	_, err := fmt.Fprintln(w, capture.BridgeScript())
	return err
}

func debugNotificationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "notifications",
		Usage: "Show the recent run-completed events kept by the redis notifier",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:     "redis-url",
				Usage:    "Redis URL the runs notify",
				Required: true,
				EnvVars:  []string{envPrefix + "REDIS_URL"},
			},
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Notification channel",
				Value: redis.DefaultChannel,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Events to show, newest first (0 = all kept)",
				Value: 10,
			},
		),
		Action: debugNotificationsAction,
	}
}

func debugNotificationsAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for debug notifications", 1)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	a, err := redis.New(redis.Config{URL: c.String("redis-url"), Channel: c.String("channel")})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() { _ = a.Close() }()

	events, err := a.Recent(c.Context, c.Int("limit"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return r.Render(events)
}

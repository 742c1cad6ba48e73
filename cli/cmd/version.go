package cmd

import (
	goruntime "runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/cli/render"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// VersionResponse describes the build. ChromiumRevision is the revision
// rod downloads when no --browser-bin or --browser-url is given.
type VersionResponse struct {
	Version          string `json:"version"`
	ReportVersion    string `json:"report_version"`
	Commit           string `json:"commit"`
	GoVersion        string `json:"go_version"`
	Platform         string `json:"platform"`
	ChromiumRevision int    `json:"chromium_revision"`
}

// VersionCommand returns the version command. It never launches a browser.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			if c.Bool("tui") {
				return cli.Exit("--tui is not supported for version command", 1)
			}
			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(buildInfo(commit))
		},
	}
}

func buildInfo(commit string) VersionResponse {
	return VersionResponse{
		Version:          types.Version,
		ReportVersion:    types.ReportVersion,
		Commit:           commit,
		GoVersion:        goruntime.Version(),
		Platform:         goruntime.GOOS + "/" + goruntime.GOARCH,
		ChromiumRevision: launcher.RevisionDefault,
	}
}

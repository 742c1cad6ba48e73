package cmd

import (
	"context"
	"errors"
	"fmt"

	lodelibrary "github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/nino-chavez/brand-site-sub018/cli/reader"
	"github.com/nino-chavez/brand-site-sub018/cli/render"
	"github.com/nino-chavez/brand-site-sub018/cli/tui"
	"github.com/nino-chavez/brand-site-sub018/lode"
)

// StatsCommand returns the stats command.
// Stats aggregates the captured errors a run stored through Lode.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show error statistics of a stored run",
		Flags: append(append(ReadOnlyFlags(), StorageReadFlags()...),
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run to show (default: the most recent run)",
			},
		),
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	factory, err := readFactory(c.Context, c.String("storage-backend"), c.String("storage-path"), lode.S3Config{
		Region:       c.String("storage-region"),
		Endpoint:     c.String("storage-endpoint"),
		UsePathStyle: c.Bool("storage-s3-path-style"),
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	rd, err := reader.NewLodeReader(c.String("dataset"), factory)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	history, err := rd.History(c.Context, c.String("run-id"))
	if err != nil {
		if errors.Is(err, lode.ErrNoSummaryFound) {
			return cli.Exit("no stored runs found", 1)
		}
		return cli.Exit(fmt.Sprintf("failed to read run history: %v", err), 1)
	}

	if c.Bool("tui") {
		return r.RenderTUI(tui.ViewStatsRun, history)
	}
	return r.Render(history)
}

// readFactory builds a store factory for read-only access. For s3 the
// bucket and prefix come from path; s3cfg supplies the connection.
func readFactory(ctx context.Context, backend, path string, s3cfg lode.S3Config) (lodelibrary.StoreFactory, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch backend {
	case "fs", "":
		if path == "" {
			return nil, errors.New("--storage-path is required")
		}
		return lodelibrary.NewFSFactory(path), nil
	case "s3":
		s3cfg.Bucket, s3cfg.Prefix = lode.ParseS3Path(path)
		return lode.NewS3Factory(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("invalid --storage-backend %q (must be fs or s3)", backend)
	}
}

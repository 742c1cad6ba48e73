// Package cmd provides the commands of the run-runtime-errors binary.
package cmd

import "github.com/urfave/cli/v2"

// envPrefix namespaces the environment fallbacks of read-only flags.
const envPrefix = "RUNTIME_ERRORS_"

// ReadOnlyFlags returns the output flags shared by every read-only command.
// Each call builds fresh flags so separate apps never share parse state.
// --tui is present everywhere so commands without a view can reject it by name.
func ReadOnlyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: json, table, yaml",
			EnvVars: []string{envPrefix + "FORMAT"},
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Interactive view (inspect, stats)",
		},
	}
}

// StorageReadFlags returns the flags that locate a stored dataset. They
// mirror the run command's storage flags so a stats call can point at
// whatever a run wrote, S3-compatible endpoints included.
func StorageReadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "storage-backend",
			Usage:   "Storage backend: fs or s3",
			Value:   "fs",
			EnvVars: []string{envPrefix + "STORAGE_BACKEND"},
		},
		&cli.StringFlag{
			Name:     "storage-path",
			Usage:    "Storage path (fs: directory, s3: bucket/prefix)",
			Required: true,
			EnvVars:  []string{envPrefix + "STORAGE_PATH"},
		},
		&cli.StringFlag{
			Name:    "storage-region",
			Usage:   "AWS region for the s3 backend",
			EnvVars: []string{envPrefix + "STORAGE_REGION"},
		},
		&cli.StringFlag{
			Name:    "storage-endpoint",
			Usage:   "Custom endpoint for S3-compatible stores (MinIO, R2)",
			EnvVars: []string{envPrefix + "STORAGE_ENDPOINT"},
		},
		&cli.BoolFlag{
			Name:  "storage-s3-path-style",
			Usage: "Use path-style S3 addressing",
		},
		&cli.StringFlag{
			Name:  "dataset",
			Usage: "Dataset ID (default: runtime-errors)",
		},
	}
}

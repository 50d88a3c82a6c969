package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "election-affinity",
		Usage: "party affinity quiz and election information service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML, JSON or TOML configuration file",
				EnvVars: []string{"AFFINITY_CONFIG"},
			},
		},
		Action: serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serveCommand,
			},
			{
				Name:  "validate",
				Usage: "load and validate the content dataset, then print its counts",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data-dir",
						Usage: "content directory, overrides content.data_dir",
					},
				},
				Action: validateCommand,
			},
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/alorle/iptv-checker/internal/application"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "iptv-checker",
		Usage: "Filter IPTV playlists down to live streams and report channel changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file (YAML or TOML)",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Probe and report without writing playlists, history or notifications",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (DEBUG, INFO, WARN, ERROR)",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "history",
				Usage:  "Print the stored channel history",
				Action: historyAction,
			},
			{
				Name:   "config",
				Usage:  "Print the effective configuration",
				Action: configAction,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "iptv-checker: %v\n", err)
		if errors.Is(err, application.ErrNoSources) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

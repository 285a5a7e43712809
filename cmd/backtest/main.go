package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Usage:   "Backtest trading strategies over historical price series",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "strategies",
				Usage:  "List the available strategies",
				Action: strategiesAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of a strategy's parameters, or of the engine config when no type is given",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Strategy type, e.g. SMA_CROSSOVER",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "run",
				Usage: "Run a strategy over one or more price files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Strategy type to run",
						Value:   "SMA_CROSSOVER",
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Glob of price files (`.csv`, `.parquet`, `.duckdb`)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "param",
						Aliases: []string{"p"},
						Usage:   "Parameter override as `key=value`, repeatable",
					},
					&cli.StringFlag{
						Name:  "strategy-wasm",
						Usage: "Path to a strategy WASM module; registered as a custom strategy and run instead of --type",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name of the strategy loaded with --strategy-wasm",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the engine YAML config",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory reports are written to; nothing is written when empty",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (yaml, json)",
						Value: "yaml",
					},
					&cli.StringFlag{
						Name:  "start",
						Usage: "Only use prices on or after `YYYY-MM-DD`",
					},
					&cli.StringFlag{
						Name:  "end",
						Usage: "Only use prices on or before `YYYY-MM-DD`",
					},
				},
				Action: runAction,
			},
			{
				Name:  "generate",
				Usage: "Generate a random walk price series",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of daily prices",
						Value: 365,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Random seed",
						Value: 42,
					},
					&cli.TimestampFlag{
						Name:  "end",
						Usage: "Day after the last generated price in `YYYY-MM-DD` format. Defaults to today.",
						Value: time.Now().UTC().Truncate(24 * time.Hour),
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output file (`.csv` or `.parquet`)",
						Required: true,
					},
				},
				Action: generateAction,
			},
			{
				Name:  "serve",
				Usage: "Serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the engine YAML config",
					},
				},
				Action: serveAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/five82/parkdash/internal/app"

	_ "time/tzdata"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "parkdash: %v\n", err)
		return 1
	}
	return 0
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "parkdash",
		Usage: "live parking occupancy dashboard for Open Data Hub stations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file path (default ~/.config/parkdash/config.toml)",
			},
			&cli.StringFlag{
				Name:  "prefs",
				Usage: "preferences file path (default ~/.config/parkdash/prefs.toml)",
			},
			&cli.StringFlag{
				Name:  "stations",
				Usage: "comma separated station codes, e.g. 103,104",
			},
			&cli.IntFlag{
				Name:  "poll",
				Usage: "refresh interval in seconds",
			},
			&cli.BoolFlag{
				Name:  "show-timestamp",
				Usage: "show the last update time on every card",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "write logs as JSON",
				EnvVars: []string{"PARKDASH_LOG_JSON"},
			},
		},
		Action: func(c *cli.Context) error {
			return app.RunTUI(c.Context, options(c))
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the embeddable widget, JSON API and metrics over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen address for the web server (default 127.0.0.1:8080)",
					},
				},
				Action: func(c *cli.Context) error {
					opts := options(c)
					opts.Listen = c.String("listen")
					return app.Serve(c.Context, opts)
				},
			},
		},
	}
}

// options collects the global flags. Unset flags leave config values alone.
func options(c *cli.Context) app.Options {
	opts := app.Options{
		ConfigPath: c.String("config"),
		PrefsPath:  c.String("prefs"),
		Stations:   c.String("stations"),
		PollEvery:  c.Int("poll"),
		LogJSON:    c.Bool("log-json"),
		LogLevel:   c.String("log-level"),
	}
	if c.IsSet("show-timestamp") {
		show := c.Bool("show-timestamp")
		opts.ShowTimestamp = &show
	}
	return opts
}

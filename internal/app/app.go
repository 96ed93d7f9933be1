package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/five82/parkdash/internal/config"
	"github.com/five82/parkdash/internal/logging"
	"github.com/five82/parkdash/internal/opendatahub"
	"github.com/five82/parkdash/internal/parking"
	"github.com/five82/parkdash/internal/prefs"
	"github.com/five82/parkdash/internal/render"
	"github.com/five82/parkdash/internal/server"
	"github.com/five82/parkdash/internal/state"
	"github.com/five82/parkdash/internal/ui"
)

// Options configure a parkdash run. Zero values keep the config file values.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/parkdash/prefs.toml
	Stations   string // comma separated station codes
	PollEvery  int    // seconds
	Listen     string
	// ShowTimestamp overrides both config and saved prefs when set.
	ShowTimestamp *bool
	LogJSON       bool
	LogLevel      string
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.Stations != "" {
		cfg.Stations = config.ParseStations(opts.Stations)
	}
	if opts.PollEvery > 0 {
		cfg.RefreshInterval = time.Duration(opts.PollEvery) * time.Second
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.ShowTimestamp != nil {
		cfg.ShowTimestamp = *opts.ShowTimestamp
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newScheduler wires the API client and the classification settings.
func newScheduler(cfg config.Config, store *state.Store) (*Scheduler, error) {
	client, err := opendatahub.NewClient(cfg.APIBase, opendatahub.Options{
		Timeout: cfg.RequestTimeout,
		Origin:  cfg.Origin,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return NewScheduler(store, client, SchedulerOptions{
		Stations:        cfg.Stations,
		Interval:        cfg.RefreshInterval,
		Timeout:         cfg.RequestTimeout,
		UseStandardName: cfg.UseStandardName,
		Build: parking.Options{
			Thresholds: parking.Thresholds{
				Critical:   cfg.ThresholdCritical,
				Warning:    cfg.ThresholdWarning,
				StaleAfter: cfg.StaleAfter,
			},
			FreshnessMonths: cfg.FreshnessMonths,
			Location:        loc,
		},
		Render: render.Options{
			ShowTimestamp: cfg.ShowTimestamp,
			Location:      loc,
		},
	}), nil
}

// RunTUI boots the terminal dashboard until the user quits or the context
// is cancelled. Logs go to the configured log file.
func RunTUI(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closer, err := logging.Setup(logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel, JSON: opts.LogJSON})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	store := &state.Store{}
	sched, err := newScheduler(cfg, store)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	userPrefs := prefs.Load(opts.PrefsPath)
	showTimestamp := userPrefs.TimestampOr(cfg.ShowTimestamp)
	if opts.ShowTimestamp != nil {
		showTimestamp = *opts.ShowTimestamp
	}
	loc, _ := cfg.Location()

	logPath := cfg.LogPath
	if opts.LogJSON {
		// The log view only understands console lines.
		logPath = ""
	}

	return ui.Run(ui.Options{
		Context:       ctx,
		Refresher:     sched,
		Store:         store,
		ThemeName:     userPrefs.Theme,
		ShowTimestamp: showTimestamp,
		PrefsPath:     opts.PrefsPath,
		LogPath:       logPath,
		Location:      loc,
	})
}

// Serve runs the scheduler and the HTTP surface until the context is
// cancelled or either of them fails. Logs go to stderr.
func Serve(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	closer, err := logging.Setup(logging.Options{Level: cfg.LogLevel, JSON: opts.LogJSON})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	store := &state.Store{}
	sched, err := newScheduler(cfg, store)
	if err != nil {
		return err
	}
	srv := server.New(store, server.Options{Listen: cfg.Listen, Refresh: cfg.RefreshInterval})

	log.Info().
		Str("listen", cfg.Listen).
		Strs("stations", cfg.Stations).
		Dur("interval", cfg.RefreshInterval).
		Msg("parkdash serving")

	return serveAll(ctx, sched, srv)
}

type listener interface {
	ListenAndServe(ctx context.Context) error
}

// serveAll runs the scheduler and the server side by side. The first error
// cancels the other.
func serveAll(ctx context.Context, sched *Scheduler, srv listener) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return srv.ListenAndServe(ctx)
	})
	p.Go(func(ctx context.Context) error {
		if err := sched.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		sched.Stop()
		return nil
	})
	return p.Wait()
}

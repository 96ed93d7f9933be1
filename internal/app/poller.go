package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/five82/parkdash/internal/config"
	"github.com/five82/parkdash/internal/metrics"
	"github.com/five82/parkdash/internal/opendatahub"
	"github.com/five82/parkdash/internal/parking"
	"github.com/five82/parkdash/internal/render"
	"github.com/five82/parkdash/internal/state"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultCycleTimeout = 10 * time.Second
	maxBackoff          = 10 * time.Minute
)

// ErrSchedulerRunning is returned by Start on a scheduler that is already running.
var ErrSchedulerRunning = errors.New("scheduler already running")

// SchedulerOptions configure a Scheduler. Zero values use defaults.
type SchedulerOptions struct {
	Stations        []string
	Interval        time.Duration
	Timeout         time.Duration
	UseStandardName bool
	Build           parking.Options
	Render          render.Options
	Now             func() time.Time
	Logger          *zerolog.Logger
}

// Scheduler owns the repeating fetch, classify and render task. It writes
// every cycle's result into the store.
type Scheduler struct {
	store           *state.Store
	fetcher         opendatahub.Fetcher
	stations        []string
	interval        time.Duration
	timeout         time.Duration
	useStandardName bool
	build           parking.Options
	render          render.Options
	now             func() time.Time
	logger          zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler builds a stopped scheduler.
func NewScheduler(store *state.Store, fetcher opendatahub.Fetcher, opts SchedulerOptions) *Scheduler {
	s := &Scheduler{
		store:           store,
		fetcher:         fetcher,
		stations:        append([]string(nil), opts.Stations...),
		interval:        opts.Interval,
		timeout:         opts.Timeout,
		useStandardName: opts.UseStandardName,
		build:           opts.Build,
		render:          opts.Render,
		now:             opts.Now,
		logger:          log.Logger,
	}
	if len(s.stations) == 0 {
		s.stations = config.DefaultStations()
	}
	if s.interval <= 0 {
		s.interval = defaultPollInterval
	}
	if s.timeout <= 0 {
		s.timeout = defaultCycleTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	s.logger = s.logger.With().Str("component", "scheduler").Logger()
	return s
}

// Interval returns the success cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start launches the polling goroutine. The first cycle runs immediately.
// It returns without waiting for that cycle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrSchedulerRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)
	s.logger.Info().
		Strs("stations", s.stations).
		Dur("interval", s.interval).
		Msg("scheduler started")
	return nil
}

// Stop cancels the loop and waits for an in-flight cycle to finish. It is
// safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	retry := newBackoff(s.interval)
	for {
		wait := s.interval
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			wait = retry.NextBackOff()
			s.logger.Debug().Dur("retry_in", wait).Msg("backing off after failed cycle")
		} else {
			retry.Reset()
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Refresh runs one cycle now in the caller's goroutine. Cycles may overlap;
// the store keeps only the most recently started one.
func (s *Scheduler) Refresh(ctx context.Context) error {
	seq := s.store.Begin()
	start := time.Now()
	err := s.cycle(ctx, seq)
	metrics.ObserveFetch(time.Since(start), err)
	if err != nil {
		s.store.Fail(seq, err)
		s.logger.Warn().Err(err).Uint64("cycle", seq).Msg("poll failed")
		return err
	}
	return nil
}

func (s *Scheduler) cycle(ctx context.Context, seq uint64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stations, err := s.fetcher.FetchLatest(ctx, s.stations)
	if err != nil {
		return fmt.Errorf("fetch stations: %w", err)
	}

	records := opendatahub.Records(stations, s.useStandardName)
	cards, rejected := parking.Build(records, s.now(), s.build)
	for _, r := range rejected {
		ev := s.logger.Warn().
			Str("code", r.Record.Code).
			Str("name", r.Record.Name).
			Str("timestamp", r.Record.UpdatedAt).
			Str("reason", string(r.Reason))
		if r.Err != nil {
			ev = ev.Err(r.Err)
		}
		ev.Msg("station excluded")
	}

	markup, err := render.Markup(cards, s.render)
	if err != nil {
		return err
	}
	if !s.store.Commit(seq, cards, markup, len(rejected)) {
		s.logger.Debug().Uint64("cycle", seq).Msg("cycle superseded, result dropped")
		return nil
	}
	metrics.RecordCycle(cards, rejected)
	s.logger.Debug().
		Uint64("cycle", seq).
		Int("cards", len(cards)).
		Int("rejected", len(rejected)).
		Msg("cycle committed")
	return nil
}

// newBackoff grows the wait after consecutive failures: interval, 2x, 4x and
// so on up to maxBackoff. There is no jitter and no overall deadline.
func newBackoff(interval time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = max(maxBackoff, interval)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

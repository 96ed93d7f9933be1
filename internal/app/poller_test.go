package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/parkdash/internal/opendatahub"
	"github.com/five82/parkdash/internal/parking"
	"github.com/five82/parkdash/internal/state"
)

type fakeFetcher struct {
	mu       sync.Mutex
	stations []opendatahub.Station
	err      error
	block    bool
	calls    int
	codes    [][]string
}

func (f *fakeFetcher) FetchLatest(ctx context.Context, codes []string) ([]opendatahub.Station, error) {
	f.mu.Lock()
	f.calls++
	f.codes = append(f.codes, append([]string(nil), codes...))
	stations, err, block := f.stations, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return stations, err
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var pollerNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func sampleStations() []opendatahub.Station {
	return []opendatahub.Station{
		{
			Code:      "104",
			Name:      "Parcheggio Centro",
			Value:     90,
			ValidTime: "2024-05-10 11:55:00.000+0000",
			Metadata:  opendatahub.StationMetadata{Capacity: 100},
		},
		{
			Code:      "103",
			Name:      "Bahnhof",
			Value:     20,
			ValidTime: "2024-05-10 11:58:00.000+0000",
			Metadata:  opendatahub.StationMetadata{Capacity: 100},
		},
		{
			Code:      "105",
			Name:      "Ancient",
			Value:     5,
			ValidTime: "2023-01-01 00:00:00.000+0000",
			Metadata:  opendatahub.StationMetadata{Capacity: 10},
		},
	}
}

func newTestScheduler(store *state.Store, fetcher opendatahub.Fetcher, opts SchedulerOptions) *Scheduler {
	nop := zerolog.Nop()
	opts.Logger = &nop
	if opts.Now == nil {
		opts.Now = func() time.Time { return pollerNow }
	}
	if opts.Build.Thresholds == (parking.Thresholds{}) {
		opts.Build.Thresholds = parking.DefaultThresholds()
	}
	opts.Build.Location = time.UTC
	opts.Render.Location = time.UTC
	return NewScheduler(store, fetcher, opts)
}

func TestRefreshCommitsSortedCards(t *testing.T) {
	store := &state.Store{}
	fetcher := &fakeFetcher{stations: sampleStations()}
	sched := newTestScheduler(store, fetcher, SchedulerOptions{Stations: []string{"103", "104", "105"}})

	if err := sched.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	snap := store.Snapshot()
	if !snap.HasData {
		t.Fatalf("expected data after successful refresh")
	}
	if len(snap.Cards) != 2 {
		t.Fatalf("expected 2 cards (expired station excluded), got %d", len(snap.Cards))
	}
	if snap.Cards[0].Name != "Bahnhof" || snap.Cards[1].Name != "Parcheggio Centro" {
		t.Fatalf("cards not sorted by name: %q, %q", snap.Cards[0].Name, snap.Cards[1].Name)
	}
	if snap.Cards[1].Status != parking.StatusCritical || snap.Cards[0].Status != parking.StatusNormal {
		t.Fatalf("unexpected statuses: %v, %v", snap.Cards[0].Status, snap.Cards[1].Status)
	}
	if snap.Rejected != 1 {
		t.Fatalf("expected 1 rejected record, got %d", snap.Rejected)
	}
	if !strings.Contains(snap.Markup, "90%") || !strings.Contains(snap.Markup, "20%") {
		t.Fatalf("markup missing percentages: %s", snap.Markup)
	}
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("expected clean error state, got %v/%d", snap.LastError, snap.ConsecutiveFailures)
	}
}

func TestRefreshFailureKeepsLastRender(t *testing.T) {
	store := &state.Store{}
	fetcher := &fakeFetcher{stations: sampleStations()}
	sched := newTestScheduler(store, fetcher, SchedulerOptions{})

	if err := sched.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh: %v", err)
	}
	before := store.Snapshot()

	fetcher.setErr(errors.New("connection refused"))
	for i := 0; i < 2; i++ {
		if err := sched.Refresh(context.Background()); err == nil {
			t.Fatalf("expected error on failing fetch")
		}
	}

	after := store.Snapshot()
	if after.Markup != before.Markup || len(after.Cards) != len(before.Cards) {
		t.Fatalf("failed cycles must keep the last render")
	}
	if after.LastError == nil || !strings.Contains(after.LastError.Error(), "connection refused") {
		t.Fatalf("expected last error to be recorded, got %v", after.LastError)
	}
	if !after.IsOffline() {
		t.Fatalf("expected offline after two failures")
	}

	fetcher.setErr(nil)
	if err := sched.Refresh(context.Background()); err != nil {
		t.Fatalf("recovery Refresh: %v", err)
	}
	if snap := store.Snapshot(); snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("expected failures reset after recovery, got %d/%v", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestRefreshTimesOut(t *testing.T) {
	store := &state.Store{}
	fetcher := &fakeFetcher{block: true}
	sched := newTestScheduler(store, fetcher, SchedulerOptions{Timeout: 20 * time.Millisecond})

	err := sched.Refresh(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if store.Snapshot().HasData {
		t.Fatalf("timed out cycle must not produce data")
	}
}

func TestEmptyStationsUseDefaults(t *testing.T) {
	fetcher := &fakeFetcher{}
	sched := newTestScheduler(&state.Store{}, fetcher, SchedulerOptions{})

	if err := sched.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	want := "103,104,105,106"
	if got := strings.Join(fetcher.codes[0], ","); got != want {
		t.Fatalf("requested codes = %q, want %q", got, want)
	}
}

func TestSchedulerStartTicksAndStops(t *testing.T) {
	store := &state.Store{}
	fetcher := &fakeFetcher{stations: sampleStations()}
	sched := newTestScheduler(store, fetcher, SchedulerOptions{Interval: 10 * time.Millisecond})

	if err := sched.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sched.Start(context.Background()); !errors.Is(err, ErrSchedulerRunning) {
		t.Fatalf("second Start = %v, want ErrSchedulerRunning", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.callCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler did not tick; calls=%d", fetcher.callCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	sched.Stop()
	sched.Stop()
	calls := fetcher.callCount()
	time.Sleep(40 * time.Millisecond)
	if got := fetcher.callCount(); got != calls {
		t.Fatalf("scheduler kept polling after Stop: %d -> %d", calls, got)
	}
	if !store.Snapshot().HasData {
		t.Fatalf("expected data after ticks")
	}
}

func TestSchedulerStopsWithContext(t *testing.T) {
	fetcher := &fakeFetcher{block: true}
	sched := newTestScheduler(&state.Store{}, fetcher, SchedulerOptions{Interval: time.Hour, Timeout: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	if err := sched.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	done := make(chan struct{})
	go func() {
		sched.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Stop did not return after context cancel")
	}
}

func TestBackoffSequence(t *testing.T) {
	b := newBackoff(time.Minute)
	want := []time.Duration{
		time.Minute,
		2 * time.Minute,
		4 * time.Minute,
		8 * time.Minute,
		10 * time.Minute,
		10 * time.Minute,
	}
	for i, w := range want {
		if got := b.NextBackOff(); got != w {
			t.Fatalf("step %d: got %v, want %v", i, got, w)
		}
	}
	b.Reset()
	if got := b.NextBackOff(); got != time.Minute {
		t.Fatalf("after reset got %v, want %v", got, time.Minute)
	}
}

func TestBackoffNeverBelowInterval(t *testing.T) {
	b := newBackoff(time.Hour)
	for i := 0; i < 3; i++ {
		if got := b.NextBackOff(); got != time.Hour {
			t.Fatalf("step %d: got %v, want %v", i, got, time.Hour)
		}
	}
}

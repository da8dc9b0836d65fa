package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"arcade-pot-backend/internal/models"
	"arcade-pot-backend/internal/services"
)

type fakeMonitorStore struct {
	mu       sync.Mutex
	expired  []models.Game
	advanced map[string]time.Time
}

func (f *fakeMonitorStore) FindExpiredGames(ctx context.Context, now time.Time) ([]models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.expired, nil
}

func (f *fakeMonitorStore) AdvanceCycle(ctx context.Context, gameID string, until time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.advanced == nil {
		f.advanced = make(map[string]time.Time)
	}
	f.advanced[gameID] = until
	return nil
}

type fakeSettler struct {
	mu      sync.Mutex
	calls   map[string]int
	results map[string]bool
	errs    map[string]error
	started chan struct{}
	block   chan struct{}
}

func (f *fakeSettler) Settle(ctx context.Context, gameID string) (bool, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[gameID]++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.results[gameID], f.errs[gameID]
}

func (f *fakeSettler) callCount(gameID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[gameID]
}

func expiredGame(id string, cycleSeconds int64) models.Game {
	return models.Game{
		GameID:       id,
		CycleSeconds: cycleSeconds,
		CycleEndTime: time.Now().Add(-time.Minute),
	}
}

func TestSweepSettlesAndAdvancesExpiredGames(t *testing.T) {
	store := &fakeMonitorStore{expired: []models.Game{
		expiredGame("g1", 3600),
		expiredGame("g2", 0),
	}}
	settler := &fakeSettler{results: map[string]bool{"g1": true, "g2": false}}
	monitor := services.NewCycleMonitor(store, settler, time.Minute, 2*time.Hour, testLogger())

	settled := monitor.Sweep(context.Background())
	if settled != 1 {
		t.Fatalf("Sweep settled %d games, want 1", settled)
	}
	if settler.callCount("g1") != 1 || settler.callCount("g2") != 1 {
		t.Error("Every expired game should get exactly one settlement attempt")
	}

	// Both deadlines advance whether or not the game paid out.
	if len(store.advanced) != 2 {
		t.Fatalf("Expected 2 cycle advances, got %d", len(store.advanced))
	}
	now := time.Now()
	g1Until, g2Until := store.advanced["g1"], store.advanced["g2"]
	if d := g1Until.Sub(now); d < 59*time.Minute || d > 61*time.Minute {
		t.Errorf("g1 should roll forward by its own cycle length, got %v", d)
	}
	// g2 has no cycle length stored and falls back to the default.
	if d := g2Until.Sub(now); d < 119*time.Minute || d > 121*time.Minute {
		t.Errorf("g2 should roll forward by the default cycle, got %v", d)
	}
}

func TestSweepAdvancesCycleEvenWhenSettlementFails(t *testing.T) {
	store := &fakeMonitorStore{expired: []models.Game{
		expiredGame("broken", 3600),
		expiredGame("healthy", 3600),
	}}
	settler := &fakeSettler{
		results: map[string]bool{"healthy": true},
		errs:    map[string]error{"broken": errors.New("rpc unavailable")},
	}
	monitor := services.NewCycleMonitor(store, settler, time.Minute, 2*time.Hour, testLogger())

	settled := monitor.Sweep(context.Background())
	if settled != 1 {
		t.Fatalf("Sweep settled %d games, want 1", settled)
	}
	if settler.callCount("healthy") != 1 {
		t.Error("A failing game must not halt the rest of the sweep")
	}
	if _, ok := store.advanced["broken"]; !ok {
		t.Error("The failing game still gets a fresh deadline for the retry")
	}
}

func TestOverlappingSweepsAreSkipped(t *testing.T) {
	store := &fakeMonitorStore{expired: []models.Game{expiredGame("g1", 3600)}}
	settler := &fakeSettler{
		started: make(chan struct{}),
		block:   make(chan struct{}),
	}
	monitor := services.NewCycleMonitor(store, settler, time.Minute, 2*time.Hour, testLogger())

	done := make(chan int)
	go func() { done <- monitor.Sweep(context.Background()) }()
	<-settler.started

	// Second call while the first is mid-settlement must bail out.
	if got := monitor.Sweep(context.Background()); got != 0 {
		t.Errorf("Overlapping sweep returned %d, want 0", got)
	}

	close(settler.block)
	<-done

	if settler.callCount("g1") != 1 {
		t.Errorf("Game was settled %d times, want 1", settler.callCount("g1"))
	}

	// After the first sweep finishes the monitor accepts new sweeps.
	settler.started, settler.block = nil, nil
	monitor.Sweep(context.Background())
	if settler.callCount("g1") != 2 {
		t.Error("Monitor should sweep again once the previous sweep has finished")
	}
}

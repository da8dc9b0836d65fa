package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"arcade-pot-backend/internal/models"
)

// Settler is the slice of the settlement engine the monitor drives.
type Settler interface {
	Settle(ctx context.Context, gameID string) (bool, error)
}

// MonitorStore is the registry surface the monitor queries and advances.
type MonitorStore interface {
	FindExpiredGames(ctx context.Context, now time.Time) ([]models.Game, error)
	AdvanceCycle(ctx context.Context, gameID string, until time.Time) error
}

// CycleMonitor periodically settles every game whose cycle deadline has
// passed and rolls it into a fresh cycle. Sweeps never overlap: a tick that
// lands while a sweep is running is skipped. The in-progress flag is state
// of this instance, not shared globals, so monitors in tests are isolated.
type CycleMonitor struct {
	store        MonitorStore
	settler      Settler
	interval     time.Duration
	defaultCycle time.Duration
	log          *logrus.Logger

	mu       sync.Mutex
	sweeping bool
}

func NewCycleMonitor(store MonitorStore, settler Settler, interval, defaultCycle time.Duration, log *logrus.Logger) *CycleMonitor {
	return &CycleMonitor{
		store:        store,
		settler:      settler,
		interval:     interval,
		defaultCycle: defaultCycle,
		log:          log,
	}
}

// Start runs the sweep loop until ctx is cancelled. Blocking; run it in its
// own goroutine.
func (m *CycleMonitor) Start(ctx context.Context) {
	m.log.WithField("interval", m.interval).Info("cycle monitor started")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("cycle monitor stopped")
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep settles all elapsed games once. Returns the number of games that
// actually paid out; overlapping calls return immediately with 0.
func (m *CycleMonitor) Sweep(ctx context.Context) int {
	if !m.beginSweep() {
		m.log.Debug("sweep already in progress, skipping tick")
		return 0
	}
	defer m.endSweep()

	now := time.Now()
	games, err := m.store.FindExpiredGames(ctx, now)
	if err != nil {
		m.log.WithError(err).Error("failed to query expired games")
		return 0
	}

	settled := 0
	for _, game := range games {
		paid, err := m.settler.Settle(ctx, game.GameID)
		if err != nil {
			// One game's failure never halts the sweep; the game gets a
			// fresh deadline below and is retried next cycle.
			m.log.WithError(err).WithField("gameId", game.GameID).Error("settlement failed")
		}
		if paid {
			settled++
		}

		next := now.Add(game.CycleLength(m.defaultCycle))
		if err := m.store.AdvanceCycle(ctx, game.GameID, next); err != nil {
			m.log.WithError(err).WithField("gameId", game.GameID).Error("failed to advance cycle")
			continue
		}
		m.log.WithFields(logrus.Fields{
			"gameId":       game.GameID,
			"nextCycleEnd": next,
			"paidOut":      paid,
		}).Info("cycle advanced")
	}

	return settled
}

func (m *CycleMonitor) beginSweep() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sweeping {
		return false
	}
	m.sweeping = true
	return true
}

func (m *CycleMonitor) endSweep() {
	m.mu.Lock()
	m.sweeping = false
	m.mu.Unlock()
}

package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/store"
)

// orphanGrace keeps freshly registered devices out of the orphan sweep
// while their sign-in is still creating the refresh token.
const orphanGrace = 10 * time.Minute

// HousekeepingService periodically deletes expired refresh tokens and
// devices nothing points at. Session correctness never depends on it;
// expired rows are already unusable when read.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  *Metrics
	Now      func() time.Time

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	store store.Store,
	logger *slog.Logger,
	interval time.Duration,
	metrics *Metrics,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Metrics:  metrics,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Cancels any in-progress cleanup and blocks until the worker exits. A service
// that was never started has nothing to stop. It cannot be restarted.
func (s *HousekeepingService) Stop() {
	if !s.started.Load() {
		return
	}
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	// Stop cancels a pass that is still running.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(ctx)

	for {
		select {
		case <-ticker.C:
			s.Cleanup(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Cleanup runs one pass. Each deletion is independent; a failure in one
// does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Now().UTC()

	tokens, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	} else {
		s.record("refresh_tokens", tokens)
	}

	devices, err := s.Store.Devices().DeleteOrphanedDevices(ctx, now.Add(-orphanGrace))
	if err != nil {
		s.Logger.Error("failed to delete orphaned devices", "error", err)
	} else {
		s.record("devices", devices)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"refresh_tokens_deleted", tokens,
		"devices_deleted", devices,
	)
}

func (s *HousekeepingService) record(table string, n int64) {
	if s.Metrics != nil && n > 0 {
		s.Metrics.HousekeepingPurged.WithLabelValues(table).Add(float64(n))
	}
}

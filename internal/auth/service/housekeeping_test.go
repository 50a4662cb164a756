package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	rt, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)
	used, err := f.store.Devices().GetDeviceByID(ctx, rt.DeviceID)
	require.NoError(t, err)

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, f.metrics)
	hk.Now = f.clock.Now

	// An unused device younger than the grace period survives.
	unused := f.device(t, u.ID, "device-b")
	hk.Cleanup(ctx)
	_, err = f.store.Devices().GetDeviceByID(ctx, unused.ID)
	require.NoError(t, err)

	f.clock.Advance(31 * 24 * time.Hour)
	hk.Cleanup(ctx)

	_, err = f.store.RefreshTokens().GetRefreshTokenByValue(ctx, rt.TokenValue)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Devices().GetDeviceByID(ctx, used.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.store.Devices().GetDeviceByID(ctx, unused.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.HousekeepingPurged.WithLabelValues("refresh_tokens")))
	require.Equal(t, 2.0, testutil.ToFloat64(f.metrics.HousekeepingPurged.WithLabelValues("devices")))
}

func TestHousekeepingStartStop(t *testing.T) {
	f := newFixture(t)

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), 0, nil)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}

func TestHousekeepingStopWithoutStart(t *testing.T) {
	f := newFixture(t)

	hk := NewHousekeepingService(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute, nil)
	hk.Stop()

	hk.Start()
	hk.Stop()
	hk.Stop()
}

// stuckStore blocks the expired-token purge until its context ends.
type stuckStore struct {
	store.Store
	entered chan struct{}
}

type stuckTokens struct {
	store.RefreshTokens
	entered chan struct{}
}

func (s *stuckStore) RefreshTokens() store.RefreshTokens {
	return &stuckTokens{RefreshTokens: s.Store.RefreshTokens(), entered: s.entered}
}

func (s *stuckTokens) DeleteExpiredRefreshTokens(ctx context.Context, _ time.Time) (int64, error) {
	close(s.entered)
	<-ctx.Done()
	return 0, ctx.Err()
}

func TestHousekeepingStopCancelsRunningCleanup(t *testing.T) {
	f := newFixture(t)

	st := &stuckStore{Store: f.store, entered: make(chan struct{})}
	hk := NewHousekeepingService(st, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, nil)

	hk.Start()
	select {
	case <-st.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup never started")
	}

	stopped := make(chan struct{})
	go func() {
		hk.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not cancel the running cleanup")
	}
}

package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/internal/auth/store"
	"github.com/aussiebroadwan/stanza/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/stanza/pkg/cryptox"
	"github.com/aussiebroadwan/stanza/pkg/idx"
	"github.com/aussiebroadwan/stanza/pkg/jwtx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery staple"

// testClock is a settable clock shared with the issuer under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store   *sqlite.Store
	issuer  *jwtx.Issuer
	hasher  *cryptox.PasswordHasher
	clock   *testClock
	metrics *Metrics
	svc     *SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	priv, pub, err := cryptox.GenerateRSAKeyPair(2048)
	require.NoError(t, err)
	keys, err := jwtx.LoadKeyPair(priv, pub)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer, err := jwtx.NewIssuer(keys, jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	hasher := cryptox.NewPasswordHasher("test-pepper")
	metrics := NewMetrics(prometheus.NewRegistry())

	return &fixture{
		store:   st,
		issuer:  issuer,
		hasher:  hasher,
		clock:   clock,
		metrics: metrics,
		svc:     NewSessionService(st, issuer, hasher, metrics),
	}
}

func (f *fixture) seedUser(t *testing.T, email string) domain.User {
	t.Helper()

	hash, err := f.hasher.HashPassword(testPassword)
	require.NoError(t, err)

	now := f.clock.Now()
	u := domain.User{
		ID:             idx.NewAt(now).String(),
		Email:          email,
		PasswordHash:   hash,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		OrganizationID: "org-1",
		Level:          "3",
		Role:           "editor",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, f.store.Users().CreateUser(t.Context(), u))
	return u
}

func (f *fixture) device(t *testing.T, userID, code string) domain.Device {
	t.Helper()

	d, err := f.svc.FindOrCreateDevice(t.Context(), userID, code, "ios", "phone")
	require.NoError(t, err)
	return d
}

func deviceInfo(code string) domain.DeviceInfo {
	return domain.DeviceInfo{Code: code, Type: "ios", Name: "phone"}
}

func (f *fixture) activeTokens(t *testing.T, userID string) []domain.RefreshToken {
	t.Helper()

	active, err := f.store.RefreshTokens().ListActiveRefreshTokens(t.Context(), userID)
	require.NoError(t, err)
	return active
}

func TestAccessTokenRoundTrip(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "ada@example.com")

	token, err := f.svc.IssueAccessToken(u.Principal())
	require.NoError(t, err)

	require.True(t, f.svc.ValidateAccessToken(token, u.Principal()))

	other := u.Principal()
	other.Subject = "someone-else"
	require.False(t, f.svc.ValidateAccessToken(token, other))

	f.clock.Advance(24 * time.Hour)
	require.False(t, f.svc.ValidateAccessToken(token, u.Principal()), "access tokens live 24h")
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "ada@example.com")

	pair, err := f.svc.Login(t.Context(), "ada@example.com", testPassword, deviceInfo("device-a"))
	require.NoError(t, err)

	// Past the access lifetime but well inside the refresh one.
	f.clock.Advance(48 * time.Hour)
	require.False(t, f.svc.ValidateAccessToken(pair.RefreshToken, u.Principal()))

	ok, err := f.svc.ValidateRefreshToken(t.Context(), pair.RefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIssueAccessTokenRequiresSubject(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.IssueAccessToken(domain.Principal{})
	require.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestCreateOrReuseRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	first, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)
	require.Equal(t, domain.TokenStatusActive, first.Status)
	require.Equal(t, 30*24*time.Hour, first.ExpiresAt.Sub(first.CreatedAt))

	d, err := f.store.Devices().GetDeviceByCode(ctx, u.ID, "device-a")
	require.NoError(t, err, "the device is registered on the way")
	require.Equal(t, d.ID, first.DeviceID)

	t.Run("reuse is idempotent", func(t *testing.T) {
		f.clock.Advance(time.Hour)

		second, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.Equal(t, first.TokenValue, second.TokenValue)
		require.True(t, first.ExpiresAt.Equal(second.ExpiresAt))

		require.Len(t, f.activeTokens(t, u.ID), 1)
		require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshIssued))
		require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshReused))
	})

	t.Run("expired token is replaced", func(t *testing.T) {
		f.clock.Advance(30 * 24 * time.Hour)

		fresh, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
		require.NoError(t, err)
		require.NotEqual(t, first.ID, fresh.ID)
		require.NotEqual(t, first.TokenValue, fresh.TokenValue)

		active := f.activeTokens(t, u.ID)
		require.Len(t, active, 1)
		require.Equal(t, fresh.ID, active[0].ID)

		_, err = f.store.RefreshTokens().GetRefreshTokenByValue(ctx, first.TokenValue)
		require.ErrorIs(t, err, store.ErrNotFound, "stale rows are deleted, not flagged")
	})
}

func TestCreateOrReuseRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	ada := f.seedUser(t, "ada@example.com")
	grace := f.seedUser(t, "grace@example.com")

	_, err := f.svc.CreateOrReuseRefreshToken(t.Context(), ada, ada.Principal(), deviceInfo("  "))
	require.ErrorIs(t, err, ErrInvalidDevice)

	_, err = f.svc.CreateOrReuseRefreshToken(t.Context(), ada, grace.Principal(), deviceInfo("device-a"))
	require.ErrorIs(t, err, ErrInvalidPrincipal)

	require.Empty(t, f.activeTokens(t, ada.ID))
}

func TestConcurrentCreateOrReuseAcrossInstances(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	// A second service on the same store has its own lock table, like a
	// second instance would.
	other := NewSessionService(f.store, f.issuer, f.hasher, nil)

	const n = 16
	results := make([]domain.RefreshToken, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc := f.svc
			if i%2 == 1 {
				svc = other
			}
			results[i], errs[i] = svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].TokenValue, results[i].TokenValue)
	}
	require.Len(t, f.activeTokens(t, u.ID), 1)
}

// slowTxStore holds every transaction open for a moment and records how
// many were in flight at once.
type slowTxStore struct {
	store.Store
	hold     time.Duration
	inflight atomic.Int32
	peak     atomic.Int32
}

func (s *slowTxStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}

	time.Sleep(s.hold)
	return s.Store.WithTx(ctx, fn)
}

func TestCreateOrReuseSerialisesPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	slow := &slowTxStore{Store: f.store, hold: 20 * time.Millisecond}
	svc := NewSessionService(slow, f.issuer, f.hasher, nil)

	const n = 8
	results := make([]domain.RefreshToken, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo(fmt.Sprintf("device-%d", i)))
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, slow.peak.Load(), "one transaction per user at a time")
	for i := range n {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].TokenValue, results[i].TokenValue)
	}
	require.Len(t, f.activeTokens(t, u.ID), 1)
}

func TestRevokeAndCreateAreSerialised(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	slow := &slowTxStore{Store: f.store, hold: 20 * time.Millisecond}
	svc := NewSessionService(slow, f.issuer, f.hasher, nil)

	_, err := svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				errs[i] = svc.RevokeSession(ctx, u.ID)
				return
			}
			_, errs[i] = svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, slow.peak.Load(), "one transaction per user at a time")
	for i, err := range errs {
		if i%2 == 0 && err != nil {
			require.ErrorIs(t, err, ErrSessionNotFound)
			continue
		}
		require.NoError(t, err)
	}

	active := f.activeTokens(t, u.ID)
	require.LessOrEqual(t, len(active), 1)
	for _, rt := range active {
		_, err := f.store.Devices().GetDeviceByID(ctx, rt.DeviceID)
		require.NoError(t, err, "an active token always has its device")
	}
}

func TestValidateRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	rt, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)

	ok, err := f.svc.ValidateRefreshToken(ctx, rt.TokenValue)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.ValidateRefreshToken(ctx, "not-a-stored-token")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.svc.ValidateRefreshToken(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)

	// A REVOKED row is never valid, even before expiry
	revoked := rt
	revoked.Status = domain.TokenStatusRevoked
	require.NoError(t, f.store.RefreshTokens().UpdateRefreshToken(ctx, revoked))
	ok, err = f.svc.ValidateRefreshToken(ctx, rt.TokenValue)
	require.NoError(t, err)
	require.False(t, ok)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshValidations.WithLabelValues(resultValid)))
	require.Equal(t, 2.0, testutil.ToFloat64(f.metrics.RefreshValidations.WithLabelValues(resultUnknown)))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshValidations.WithLabelValues(resultExpired)))
}

func TestExpiredRefreshTokenRejected(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	rt, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)

	f.clock.Advance(30*24*time.Hour + time.Second)

	ok, err := f.svc.ValidateRefreshToken(ctx, rt.TokenValue)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = f.svc.RefreshAccessToken(ctx, rt.TokenValue)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestRefreshAccessTokenUnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RefreshAccessToken(t.Context(), "nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginThenRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	info := domain.DeviceInfo{Code: "device-a", Type: "android", Name: "Pixel"}

	pair, err := f.svc.Login(ctx, "ada@example.com", testPassword, info)
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.EqualValues(t, 24*60*60, pair.ExpiresIn)
	require.True(t, f.svc.ValidateAccessToken(pair.AccessToken, u.Principal()))

	claims, err := f.issuer.ParseAccessClaims(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "editor", claims.Role)
	require.Equal(t, "org-1", claims.OrganizationID)

	dev, err := f.store.Devices().GetDeviceByCode(ctx, u.ID, "device-a")
	require.NoError(t, err)
	require.Equal(t, "android", dev.Type)

	f.clock.Advance(25 * time.Hour)
	require.False(t, f.svc.ValidateAccessToken(pair.AccessToken, u.Principal()))

	access, err := f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.True(t, f.svc.ValidateAccessToken(access, u.Principal()))

	t.Run("second login reuses the refresh token", func(t *testing.T) {
		again, err := f.svc.Login(ctx, "ADA@example.com", testPassword, info)
		require.NoError(t, err)
		require.Equal(t, pair.RefreshToken, again.RefreshToken)
	})
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	f.seedUser(t, "ada@example.com")
	info := domain.DeviceInfo{Code: "device-a"}

	_, err := f.svc.Login(ctx, "ada@example.com", "wrong", info)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@example.com", testPassword, info)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "", "", info)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "ada@example.com", testPassword, domain.DeviceInfo{})
	require.ErrorIs(t, err, ErrInvalidDevice)
}

func TestRevokeSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	pair, err := f.svc.Login(ctx, "ada@example.com", testPassword, domain.DeviceInfo{Code: "device-a"})
	require.NoError(t, err)

	require.NoError(t, f.svc.RevokeSession(ctx, u.ID))

	_, err = f.store.RefreshTokens().GetRefreshTokenByValue(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.store.Devices().GetDeviceByCode(ctx, u.ID, "device-a")
	require.ErrorIs(t, err, store.ErrNotFound, "the bound device goes with the token")

	_, err = f.svc.RefreshAccessToken(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SessionsRevoked))
}

func TestRevokeSessionWithoutSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	d := f.device(t, u.ID, "device-a")

	err := f.svc.RevokeSession(ctx, u.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Nothing was deleted
	_, err = f.store.Devices().GetDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	require.Zero(t, testutil.ToFloat64(f.metrics.SessionsRevoked))
}

func TestRevokedTokenStaysDeadAfterQuickSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	// The clock does not move: both sign-ins share iat and exp.
	first, err := f.svc.Login(ctx, "ada@example.com", testPassword, deviceInfo("device-a"))
	require.NoError(t, err)
	require.NoError(t, f.svc.RevokeSession(ctx, u.ID))

	second, err := f.svc.Login(ctx, "ada@example.com", testPassword, deviceInfo("device-b"))
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	ok, err := f.svc.ValidateRefreshToken(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.False(t, ok, "a revoked token must not come back")

	ok, err = f.svc.ValidateRefreshToken(ctx, second.RefreshToken)
	require.NoError(t, err)
	require.True(t, ok)
}

// sweepingStore runs the orphan sweep inside each transaction right after
// a device is stamped, the worst moment for it to land.
type sweepingStore struct {
	store.Store
	cutoff func() time.Time
}

type sweepingTx struct {
	baseTx
	cutoff func() time.Time
}

type sweepingDevices struct {
	store.Devices
	cutoff func() time.Time
}

func (s *sweepingStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&sweepingTx{baseTx: tx, cutoff: s.cutoff})
	})
}

func (s *sweepingTx) Devices() store.Devices {
	return &sweepingDevices{Devices: s.baseTx.Devices(), cutoff: s.cutoff}
}

func (s *sweepingDevices) TouchDevice(ctx context.Context, userID, code string, now time.Time) (domain.Device, error) {
	d, err := s.Devices.TouchDevice(ctx, userID, code, now)
	if err != nil {
		return d, err
	}
	if _, err := s.Devices.DeleteOrphanedDevices(ctx, s.cutoff()); err != nil {
		return domain.Device{}, err
	}
	return d, nil
}

func TestSignInKeepsIdleDeviceFromSweep(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")
	idle := f.device(t, u.ID, "device-a")

	// Long enough that the device, still without a token, is sweepable.
	f.clock.Advance(time.Hour)

	cutoff := func() time.Time { return f.clock.Now().Add(-orphanGrace) }
	svc := NewSessionService(&sweepingStore{Store: f.store, cutoff: cutoff}, f.issuer, f.hasher, nil)

	rt, err := svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)
	require.Equal(t, idle.ID, rt.DeviceID)

	d, err := f.store.Devices().GetDeviceByID(ctx, idle.ID)
	require.NoError(t, err)
	require.True(t, d.LastSeenAt.Equal(f.clock.Now()))
}

func TestFindOrCreateDevice(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	d1, err := f.svc.FindOrCreateDevice(ctx, u.ID, " device-a ", "ios", "phone")
	require.NoError(t, err)
	require.Equal(t, "device-a", d1.Code)

	require.True(t, d1.LastSeenAt.Equal(d1.CreatedAt))

	f.clock.Advance(time.Hour)
	d2, err := f.svc.FindOrCreateDevice(ctx, u.ID, "device-a", "android", "renamed")
	require.NoError(t, err)
	require.Equal(t, d1.ID, d2.ID)
	require.Equal(t, "ios", d2.Type, "details are recorded on creation only")
	require.True(t, d2.CreatedAt.Equal(d1.CreatedAt))
	require.True(t, d2.LastSeenAt.Equal(f.clock.Now()))

	_, err = f.svc.FindOrCreateDevice(ctx, u.ID, "  ", "ios", "phone")
	require.ErrorIs(t, err, ErrInvalidDevice)
}

// phantomStore makes ListActiveRefreshTokens report an extra, older ACTIVE
// row for one user, the state a missing unique index would allow.
type phantomStore struct {
	store.Store
	phantom *phantomRow
}

type phantomRow struct {
	mu      sync.Mutex
	token   domain.RefreshToken
	deleted bool
}

// baseTx lets phantomTx embed a store.Tx without the embedded field's
// name hiding the Tx method.
type baseTx interface{ store.Tx }

type phantomTx struct {
	baseTx
	phantom *phantomRow
}

type phantomTokens struct {
	store.RefreshTokens
	phantom *phantomRow
}

func (p *phantomStore) RefreshTokens() store.RefreshTokens {
	return &phantomTokens{RefreshTokens: p.Store.RefreshTokens(), phantom: p.phantom}
}

func (p *phantomStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return p.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&phantomTx{baseTx: tx, phantom: p.phantom})
	})
}

func (p *phantomTx) RefreshTokens() store.RefreshTokens {
	return &phantomTokens{RefreshTokens: p.baseTx.RefreshTokens(), phantom: p.phantom}
}

func (p *phantomTokens) ListActiveRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error) {
	rows, err := p.RefreshTokens.ListActiveRefreshTokens(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.phantom.mu.Lock()
	defer p.phantom.mu.Unlock()
	if userID == p.phantom.token.UserID && !p.phantom.deleted {
		rows = append(rows, p.phantom.token)
	}
	return rows, nil
}

func (p *phantomTokens) DeleteRefreshToken(ctx context.Context, id string) error {
	p.phantom.mu.Lock()
	defer p.phantom.mu.Unlock()
	if id == p.phantom.token.ID {
		p.phantom.deleted = true
		return nil
	}
	return p.RefreshTokens.DeleteRefreshToken(ctx, id)
}

func TestInvariantRepairKeepsNewest(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	u := f.seedUser(t, "ada@example.com")

	newest, err := f.svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)

	phantom := &phantomRow{token: domain.RefreshToken{
		ID:         idx.NewAt(newest.CreatedAt.Add(-time.Hour)).String(),
		UserID:     u.ID,
		DeviceID:   newest.DeviceID,
		TokenValue: "older-duplicate",
		Status:     domain.TokenStatusActive,
		CreatedAt:  newest.CreatedAt.Add(-time.Hour),
		ExpiresAt:  newest.ExpiresAt.Add(-time.Hour),
	}}

	svc := NewSessionService(&phantomStore{Store: f.store, phantom: phantom}, f.issuer, f.hasher, f.metrics)

	got, err := svc.CreateOrReuseRefreshToken(ctx, u, u.Principal(), deviceInfo("device-a"))
	require.NoError(t, err)
	require.Equal(t, newest.TokenValue, got.TokenValue)
	require.True(t, phantom.deleted, "the older duplicate is pruned")
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.InvariantRepairs))
}

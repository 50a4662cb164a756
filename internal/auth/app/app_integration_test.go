//go:build integration

package app

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/pkg/authsdk"
	"github.com/aussiebroadwan/stanza/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "stanza",
				"POSTGRES_PASSWORD": "stanza",
				"POSTGRES_DB":       "stanza",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://stanza:stanza@%s:%s/stanza?sslmode=disable", host, port.Port())
}

// Two instances share one database, so only the partial unique index keeps
// a user's active refresh token single.
func TestTwoInstancesShareOneSession(t *testing.T) {
	url := startPostgres(t)

	cfg := testConfig(t)
	cfg.DatabaseDriver = DriverPostgres
	cfg.DatabaseURL = url
	cfg.HousekeepingInterval = 0

	first, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Shutdown() })

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Shutdown() })

	hash, err := first.hasher.HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, first.db.Users().CreateUser(t.Context(), domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        "margaret@example.com",
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	var clients []*authsdk.SDKClient
	for _, a := range []*Application{first, second} {
		srv := httptest.NewServer(a.Handler())
		t.Cleanup(srv.Close)
		clients = append(clients, authsdk.NewSDKClient(srv.URL))
	}

	const perInstance = 3
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []string
		errs    []error
	)
	for i, client := range clients {
		for j := range perInstance {
			wg.Add(1)
			go func() {
				defer wg.Done()
				pair, err := client.LoginGrant(context.Background(), authsdk.LoginRequest{
					Email:      "margaret@example.com",
					Password:   "s3cret-passphrase",
					DeviceCode: fmt.Sprintf("device-%d-%d", i, j),
				})

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				results = append(results, pair.RefreshToken)
			}()
		}
	}
	wg.Wait()

	require.Empty(t, errs)
	require.Len(t, results, 2*perInstance)
	for _, token := range results[1:] {
		require.Equal(t, results[0], token, "every sign-in must get the same refresh token")
	}

	// A token minted through one instance refreshes through the other.
	_, err = clients[1].Refresh(t.Context(), results[0])
	require.NoError(t, err)
}

package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenIsUsable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		token  domain.RefreshToken
		usable bool
	}{
		{
			name:   "active and unexpired",
			token:  domain.RefreshToken{Status: domain.TokenStatusActive, ExpiresAt: now.Add(time.Hour)},
			usable: true,
		},
		{
			name:  "active but expired",
			token: domain.RefreshToken{Status: domain.TokenStatusActive, ExpiresAt: now.Add(-time.Second)},
		},
		{
			name:  "expires exactly now",
			token: domain.RefreshToken{Status: domain.TokenStatusActive, ExpiresAt: now},
		},
		{
			name:  "revoked",
			token: domain.RefreshToken{Status: domain.TokenStatusRevoked, ExpiresAt: now.Add(time.Hour)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.usable, tt.token.IsUsable(now))
		})
	}
}

func TestUserPrincipal(t *testing.T) {
	u := domain.User{
		ID:             "01JNB3Z7Q6X0000000000000AA",
		Email:          "ada@example.com",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		OrganizationID: "org-1",
		Level:          "3",
		Role:           "editor",
	}

	p := u.Principal()
	require.Equal(t, u.ID, p.Subject)
	require.Equal(t, "Ada", p.FirstName)
	require.Equal(t, "editor", p.Role)
}

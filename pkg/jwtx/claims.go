package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetimes. These are fixed; sessions are kept alive by the refresh
// token, not by long-lived access tokens.
const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// Token types, carried in the JOSE typ header. Both kinds are signed with
// the same key, so verification pins the expected type.
const (
	TypeAccess  = "at+jwt"
	TypeRefresh = "rt+jwt"
)

// Identity is the informational part of an access token. None of it is used
// for access control beyond the subject, it is there so downstream services
// can render a name without a round trip.
type Identity struct {
	FirstName      string
	LastName       string
	OrganizationID string
	Level          string
	Role           string
}

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims

	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	OrganizationID string `json:"organization_id,omitempty"`
	Level          string `json:"level,omitempty"`
	Role           string `json:"role,omitempty"`
}

// Identity returns the informational claims as an Identity.
func (c AccessClaims) Identity() Identity {
	return Identity{
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		OrganizationID: c.OrganizationID,
		Level:          c.Level,
		Role:           c.Role,
	}
}

// NewAccessClaims builds access token claims issued at now.
func NewAccessClaims(subject, issuer string, id Identity, now time.Time) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
		FirstName:      id.FirstName,
		LastName:       id.LastName,
		OrganizationID: id.OrganizationID,
		Level:          id.Level,
		Role:           id.Role,
	}
}

// NewRefreshClaims builds refresh token claims. Refresh tokens only carry
// sub, iat and exp; everything else lives in the refresh_tokens row.
func NewRefreshClaims(subject string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
	}
}

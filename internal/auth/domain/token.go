package domain

import "time"

// TokenStatus is the stored state of a refresh token. Expiry is not a
// status; it is computed from ExpiresAt when the row is read.
type TokenStatus string

const (
	TokenStatusActive  TokenStatus = "ACTIVE"
	TokenStatusRevoked TokenStatus = "REVOKED"
)

// RefreshToken models the stored refresh token record in the DB.
type RefreshToken struct {
	ID         string
	UserID     string
	DeviceID   string
	TokenValue string // the signed JWT handed to the client
	Status     TokenStatus
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// IsExpired reports whether t is past its expiry at now.
func (t RefreshToken) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// IsUsable is true for an ACTIVE token that has not expired at now.
func (t RefreshToken) IsUsable(now time.Time) bool {
	return t.Status == TokenStatusActive && !t.IsExpired(now)
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
}

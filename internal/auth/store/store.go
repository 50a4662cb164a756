package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrNestedTx      = errors.New("store: nested transactions are not supported")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories rather than flat methods so a
// Tx-scoped store has exactly the same shape and nested transactions can be
// refused in one place.
type Store interface {
	Users() Users
	Devices() Devices
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used at login. Emails compare case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error
}

type Devices interface {
	// GetDeviceByCode looks a device up by the code the client reports.
	GetDeviceByCode(ctx context.Context, userID, code string) (domain.Device, error)

	GetDeviceByID(ctx context.Context, id string) (domain.Device, error)

	// CreateDevice inserts a device. A second device with the same
	// (user_id, code) returns ErrAlreadyExists.
	CreateDevice(ctx context.Context, d domain.Device) error

	// TouchDevice sets last_seen_at on the user's device with code and
	// returns it, or ErrNotFound. Inside a transaction the row stays locked
	// until commit.
	TouchDevice(ctx context.Context, userID, code string, now time.Time) (domain.Device, error)

	DeleteDevice(ctx context.Context, id string) error

	// DeleteOrphanedDevices removes devices not seen since olderThan that no
	// refresh token points at. Returns the number of rows removed.
	DeleteOrphanedDevices(ctx context.Context, olderThan time.Time) (int64, error)
}

type RefreshTokens interface {
	// ListActiveRefreshTokens returns every ACTIVE row for userID, newest
	// first. Expired rows are included; callers decide what expired means.
	ListActiveRefreshTokens(ctx context.Context, userID string) ([]domain.RefreshToken, error)

	// GetRefreshTokenByValue looks a row up by the exact token string.
	GetRefreshTokenByValue(ctx context.Context, value string) (domain.RefreshToken, error)

	// CreateRefreshToken stores a new row. A second ACTIVE row for the same
	// user returns ErrAlreadyExists.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// UpdateRefreshToken overwrites status, value and expiry of an existing row.
	UpdateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	DeleteRefreshToken(ctx context.Context, id string) error

	// DeleteExpiredRefreshTokens removes rows with expires_at <= now.
	// Returns the number of rows removed.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

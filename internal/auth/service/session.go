package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/internal/auth/store"
	"github.com/aussiebroadwan/stanza/pkg/cryptox"
	"github.com/aussiebroadwan/stanza/pkg/idx"
	"github.com/aussiebroadwan/stanza/pkg/jwtx"
	"github.com/aussiebroadwan/stanza/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidDevice      = errors.New("invalid_device")
	ErrInvalidPrincipal   = errors.New("invalid_principal")
	ErrSessionNotFound    = errors.New("session_not_found")
	ErrSessionExpired     = errors.New("session_expired")
)

// PasswordVerifier checks a plaintext password against a stored hash.
// *cryptox.PasswordHasher satisfies it.
type PasswordVerifier interface {
	VerifyPassword(password, encodedHash string) error
}

// SessionService owns the refresh token lifecycle: at most one active
// refresh token per user, bound to the device it was issued on.
type SessionService struct {
	store     store.Store
	issuer    *jwtx.Issuer
	passwords PasswordVerifier
	metrics   *Metrics
	locks     *userLocks
}

// NewSessionService wires the session lifecycle. A nil metrics gets a
// private, unexported registry.
func NewSessionService(
	st store.Store,
	issuer *jwtx.Issuer,
	passwords PasswordVerifier,
	metrics *Metrics,
) *SessionService {
	if metrics == nil {
		metrics = NewMetrics(prometheus.NewRegistry())
	}

	return &SessionService{
		store:     st,
		issuer:    issuer,
		passwords: passwords,
		metrics:   metrics,
		locks:     newUserLocks(),
	}
}

// Login checks credentials, registers the device and returns an access
// token plus the user's refresh token, reusing the active one if there is
// one.
func (s *SessionService) Login(
	ctx context.Context,
	email, password string,
	device domain.DeviceInfo,
) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.passwords.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHash) {
			l.Error("stored password hash is unusable", "user_id", user.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	principal := user.Principal()

	refresh, err := s.CreateOrReuseRefreshToken(ctx, user, principal, device)
	if err != nil {
		return nil, err
	}

	access, err := s.IssueAccessToken(principal)
	if err != nil {
		return nil, err
	}

	l.Info("user signed in", "user_id", user.ID, "device_id", refresh.DeviceID)

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh.TokenValue,
		TokenType:    "Bearer",
		ExpiresIn:    int64(jwtx.AccessTokenTTL.Seconds()),
	}, nil
}

// IssueAccessToken signs a 24h access token for principal.
func (s *SessionService) IssueAccessToken(principal domain.Principal) (string, error) {
	if principal.Subject == "" {
		return "", ErrInvalidPrincipal
	}
	return s.issuer.IssueAccessToken(principal.Subject, jwtx.Identity{
		FirstName:      principal.FirstName,
		LastName:       principal.LastName,
		OrganizationID: principal.OrganizationID,
		Level:          principal.Level,
		Role:           principal.Role,
	})
}

// ValidateAccessToken is true when token verifies, is unexpired and was
// issued to principal. Never returns an error; bad tokens are just invalid.
func (s *SessionService) ValidateAccessToken(token string, principal domain.Principal) bool {
	return s.issuer.Validate(token, principal.Subject)
}

// CreateOrReuseRefreshToken registers the device (or stamps it as seen),
// then returns the user's active refresh token if it is still usable,
// otherwise mints a new one bound to the device. Stale and surplus active
// rows are deleted on the way. All of it runs in one transaction.
//
// Calls for the same user are serialised in-process; across instances the
// stores' unique indexes reject the losing insert, and the single retry then
// resolves as a reuse.
func (s *SessionService) CreateOrReuseRefreshToken(
	ctx context.Context,
	user domain.User,
	principal domain.Principal,
	device domain.DeviceInfo,
) (domain.RefreshToken, error) {
	if user.ID == "" || principal.Subject != user.ID {
		return domain.RefreshToken{}, ErrInvalidPrincipal
	}
	device, err := normalizeDevice(user.ID, device)
	if err != nil {
		return domain.RefreshToken{}, err
	}

	unlock := s.locks.Lock(user.ID)
	defer unlock()

	token, reused, err := s.createOrReuse(ctx, user.ID, device)
	if errors.Is(err, store.ErrAlreadyExists) {
		slogx.FromContext(ctx).Info("refresh token insert lost a race, retrying", "user_id", user.ID)
		s.metrics.ConflictRetries.Inc()
		token, reused, err = s.createOrReuse(ctx, user.ID, device)
	}
	if err != nil {
		return domain.RefreshToken{}, fmt.Errorf("create or reuse refresh token: %w", err)
	}

	if reused {
		s.metrics.RefreshReused.Inc()
	} else {
		s.metrics.RefreshIssued.Inc()
	}
	return token, nil
}

func (s *SessionService) createOrReuse(
	ctx context.Context,
	userID string,
	info domain.DeviceInfo,
) (token domain.RefreshToken, reused bool, err error) {
	l := slogx.FromContext(ctx)
	now := s.issuer.Now()

	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		device, err := s.resolveDevice(ctx, tx.Devices(), userID, info, now)
		if err != nil {
			return err
		}

		active, err := tx.RefreshTokens().ListActiveRefreshTokens(ctx, userID)
		if err != nil {
			return err
		}

		if len(active) > 1 {
			l.Warn("more than one active refresh token, keeping the newest",
				"user_id", userID, "count", len(active))
			s.metrics.InvariantRepairs.Inc()
		}

		// Newest first: keep the head if it is still usable, drop the rest.
		for i, t := range active {
			if i == 0 && t.IsUsable(now) {
				token, reused = t, true
				continue
			}
			if err := tx.RefreshTokens().DeleteRefreshToken(ctx, t.ID); err != nil {
				return fmt.Errorf("delete stale refresh token: %w", err)
			}
		}
		if reused {
			return nil
		}

		issued, err := s.issuer.IssueRefreshToken(userID)
		if err != nil {
			return err
		}

		token = domain.RefreshToken{
			ID:         idx.NewAt(now).String(),
			UserID:     userID,
			DeviceID:   device.ID,
			TokenValue: issued.Token,
			Status:     domain.TokenStatusActive,
			CreatedAt:  issued.IssuedAt,
			ExpiresAt:  issued.ExpiresAt,
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, token)
	})
	if err != nil {
		return domain.RefreshToken{}, false, err
	}
	return token, reused, nil
}

// ValidateRefreshToken reports whether token is a stored, ACTIVE and
// unexpired refresh token. Unknown tokens are invalid, not an error.
func (s *SessionService) ValidateRefreshToken(ctx context.Context, token string) (bool, error) {
	_, err := s.usableRefreshToken(ctx, token)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
		return false, nil
	default:
		return false, err
	}
}

// RefreshAccessToken exchanges a valid refresh token for a fresh access
// token. The refresh token itself is left as is.
func (s *SessionService) RefreshAccessToken(ctx context.Context, token string) (string, error) {
	rt, err := s.usableRefreshToken(ctx, token)
	if err != nil {
		return "", err
	}

	user, err := s.store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	return s.IssueAccessToken(user.Principal())
}

func (s *SessionService) usableRefreshToken(ctx context.Context, token string) (domain.RefreshToken, error) {
	if token == "" {
		s.metrics.RefreshValidations.WithLabelValues(resultUnknown).Inc()
		return domain.RefreshToken{}, ErrSessionNotFound
	}

	rt, err := s.store.RefreshTokens().GetRefreshTokenByValue(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.RefreshValidations.WithLabelValues(resultUnknown).Inc()
			return domain.RefreshToken{}, ErrSessionNotFound
		}
		return domain.RefreshToken{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	if !rt.IsUsable(s.issuer.Now()) {
		s.metrics.RefreshValidations.WithLabelValues(resultExpired).Inc()
		return domain.RefreshToken{}, ErrSessionExpired
	}

	s.metrics.RefreshValidations.WithLabelValues(resultValid).Inc()
	return rt, nil
}

// RevokeSession signs userID out: the active refresh token is deleted,
// then the device it was bound to. Without an active token nothing is
// touched and ErrSessionNotFound is returned.
func (s *SessionService) RevokeSession(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidPrincipal
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	l := slogx.FromContext(ctx)

	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		active, err := tx.RefreshTokens().ListActiveRefreshTokens(ctx, userID)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return ErrSessionNotFound
		}
		if len(active) > 1 {
			l.Warn("more than one active refresh token at sign-out, revoking all",
				"user_id", userID, "count", len(active))
			s.metrics.InvariantRepairs.Inc()
		}

		for _, t := range active {
			if err := tx.RefreshTokens().DeleteRefreshToken(ctx, t.ID); err != nil {
				return fmt.Errorf("delete refresh token: %w", err)
			}
			if err := tx.Devices().DeleteDevice(ctx, t.DeviceID); err != nil {
				return fmt.Errorf("delete device: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	s.metrics.SessionsRevoked.Inc()
	l.Info("session revoked", "user_id", userID)
	return nil
}

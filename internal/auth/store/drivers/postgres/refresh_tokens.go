package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/jackc/pgx/v5"
)

const refreshTokenColumns = `id, user_id, device_id, token_value, status, created_at, expires_at`

type refreshTokensRepo struct {
	q querier
}

func scanRefreshToken(row interface{ Scan(...any) error }) (domain.RefreshToken, error) {
	var (
		t      domain.RefreshToken
		status string
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.DeviceID, &t.TokenValue, &status, &t.CreatedAt, &t.ExpiresAt); err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.Status = domain.TokenStatus(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return t, nil
}

func (r *refreshTokensRepo) ListActiveRefreshTokens(
	ctx context.Context,
	userID string,
) ([]domain.RefreshToken, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+refreshTokenColumns+`
		   FROM refresh_tokens
		  WHERE user_id = $1 AND status = 'ACTIVE'
		  ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RefreshToken, error) {
		return scanRefreshToken(row)
	})
}

func (r *refreshTokensRepo) GetRefreshTokenByValue(
	ctx context.Context,
	value string,
) (domain.RefreshToken, error) {
	return scanRefreshToken(r.q.QueryRow(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_value = $1`, value))
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO refresh_tokens (`+refreshTokenColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.UserID, t.DeviceID, t.TokenValue, string(t.Status), t.CreatedAt.UTC(), t.ExpiresAt.UTC(),
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) UpdateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.Exec(ctx,
		`UPDATE refresh_tokens SET token_value = $1, status = $2, expires_at = $3 WHERE id = $4`,
		t.TokenValue, string(t.Status), t.ExpiresAt.UTC(), t.ID,
	)
	return mapConflict(err)
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/internal/auth/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) ListActiveRefreshTokens(
	ctx context.Context,
	userID string,
) ([]domain.RefreshToken, error) {
	rows, err := r.q.ListActiveRefreshTokensByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tokens := make([]domain.RefreshToken, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, mapRefreshToken(row))
	}
	return tokens, nil
}

func (r *refreshTokensRepo) GetRefreshTokenByValue(
	ctx context.Context,
	value string,
) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByValue(ctx, value)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.CreateRefreshToken(ctx, gen.CreateRefreshTokenParams{
		ID:         t.ID,
		UserID:     t.UserID,
		DeviceID:   t.DeviceID,
		TokenValue: t.TokenValue,
		Status:     string(t.Status),
		CreatedAt:  t.CreatedAt.UTC(),
		ExpiresAt:  t.ExpiresAt.UTC(),
	})
	return mapConflict(err)
}

func (r *refreshTokensRepo) UpdateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.UpdateRefreshToken(ctx, gen.UpdateRefreshTokenParams{
		TokenValue: t.TokenValue,
		Status:     string(t.Status),
		ExpiresAt:  t.ExpiresAt.UTC(),
		ID:         t.ID,
	})
	return mapConflict(err)
}

func (r *refreshTokensRepo) DeleteRefreshToken(ctx context.Context, id string) error {
	return r.q.DeleteRefreshToken(ctx, id)
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, now.UTC())
}

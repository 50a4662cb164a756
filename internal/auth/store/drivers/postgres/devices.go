package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
)

const deviceColumns = `id, user_id, device_code, device_type, device_name, created_at, last_seen_at`

type devicesRepo struct {
	q querier
}

func scanDevice(row interface{ Scan(...any) error }) (domain.Device, error) {
	var d domain.Device
	if err := row.Scan(&d.ID, &d.UserID, &d.Code, &d.Type, &d.Name, &d.CreatedAt, &d.LastSeenAt); err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	d.CreatedAt = d.CreatedAt.UTC()
	d.LastSeenAt = d.LastSeenAt.UTC()
	return d, nil
}

func (r *devicesRepo) GetDeviceByCode(ctx context.Context, userID, code string) (domain.Device, error) {
	return scanDevice(r.q.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE user_id = $1 AND device_code = $2`,
		userID, code))
}

func (r *devicesRepo) GetDeviceByID(ctx context.Context, id string) (domain.Device, error) {
	return scanDevice(r.q.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = $1`, id))
}

func (r *devicesRepo) CreateDevice(ctx context.Context, d domain.Device) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO devices (`+deviceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.UserID, d.Code, d.Type, d.Name, d.CreatedAt.UTC(), d.Seen().UTC(),
	)
	return mapConflict(err)
}

// TouchDevice takes the row lock, so inside a transaction a concurrent
// orphan sweep waits for commit and then sees the fresh last_seen_at.
func (r *devicesRepo) TouchDevice(ctx context.Context, userID, code string, now time.Time) (domain.Device, error) {
	return scanDevice(r.q.QueryRow(ctx,
		`UPDATE devices SET last_seen_at = $1
		  WHERE user_id = $2 AND device_code = $3
		  RETURNING `+deviceColumns,
		now.UTC(), userID, code))
}

func (r *devicesRepo) DeleteDevice(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id)
	return err
}

func (r *devicesRepo) DeleteOrphanedDevices(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM devices d
		  WHERE d.last_seen_at < $1
		    AND NOT EXISTS (SELECT 1 FROM refresh_tokens rt WHERE rt.device_id = d.id)`,
		olderThan.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/stanza/internal/auth/domain"
	"github.com/aussiebroadwan/stanza/internal/auth/store/drivers/sqlite/gen"
)

type devicesRepo struct {
	q *gen.Queries
}

func (r *devicesRepo) GetDeviceByCode(ctx context.Context, userID, code string) (domain.Device, error) {
	row, err := r.q.GetDeviceByCode(ctx, gen.GetDeviceByCodeParams{
		UserID:     userID,
		DeviceCode: code,
	})
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) GetDeviceByID(ctx context.Context, id string) (domain.Device, error) {
	row, err := r.q.GetDeviceByID(ctx, id)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) CreateDevice(ctx context.Context, d domain.Device) error {
	err := r.q.CreateDevice(ctx, gen.CreateDeviceParams{
		ID:         d.ID,
		UserID:     d.UserID,
		DeviceCode: d.Code,
		DeviceType: d.Type,
		DeviceName: d.Name,
		CreatedAt:  d.CreatedAt.UTC(),
		LastSeenAt: d.Seen().UTC(),
	})
	return mapConflict(err)
}

func (r *devicesRepo) TouchDevice(ctx context.Context, userID, code string, now time.Time) (domain.Device, error) {
	row, err := r.q.TouchDevice(ctx, gen.TouchDeviceParams{
		LastSeenAt: now.UTC(),
		UserID:     userID,
		DeviceCode: code,
	})
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) DeleteDevice(ctx context.Context, id string) error {
	return r.q.DeleteDevice(ctx, id)
}

func (r *devicesRepo) DeleteOrphanedDevices(ctx context.Context, olderThan time.Time) (int64, error) {
	return r.q.DeleteOrphanedDevices(ctx, olderThan.UTC())
}

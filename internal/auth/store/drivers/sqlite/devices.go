package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

type devicesRepo struct {
	q *gen.Queries
}

func (r *devicesRepo) CreateDevice(ctx context.Context, d domain.Device) error {
	err := r.q.CreateDevice(ctx, gen.CreateDeviceParams{
		ID:        d.ID,
		UserID:    d.UserID,
		Label:     d.Label,
		Secret:    d.Secret,
		CreatedAt: toUnix(d.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *devicesRepo) GetDeviceByID(ctx context.Context, id string) (domain.Device, error) {
	row, err := r.q.GetDeviceByID(ctx, id)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) GetConfirmedDevice(ctx context.Context, userID string) (domain.Device, error) {
	row, err := r.q.GetConfirmedDevice(ctx, userID)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) GetPendingDevice(ctx context.Context, userID string) (domain.Device, error) {
	row, err := r.q.GetPendingDevice(ctx, userID)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) ConfirmDevice(ctx context.Context, id string, at time.Time) error {
	n, err := r.q.ConfirmDevice(ctx, id, toUnix(at))
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(n, nil)
}

func (r *devicesRepo) TouchDevice(ctx context.Context, id string, at time.Time) error {
	return requireRow(r.q.TouchDevice(ctx, id, toUnix(at)))
}

func (r *devicesRepo) DeleteUnconfirmedDevices(ctx context.Context, userID string) error {
	_, err := r.q.DeleteUnconfirmedDevices(ctx, userID)
	return err
}

func (r *devicesRepo) DeleteUserDevices(ctx context.Context, userID string) (int64, error) {
	return r.q.DeleteUserDevices(ctx, userID)
}

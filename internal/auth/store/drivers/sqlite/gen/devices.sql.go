package gen

import (
	"context"
	"database/sql"
)

const deviceColumns = `id, user_id, label, secret, created_at, confirmed_at, last_used_at`

func scanDevice(row interface{ Scan(...any) error }) (Device, error) {
	var i Device
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Label,
		&i.Secret,
		&i.CreatedAt,
		&i.ConfirmedAt,
		&i.LastUsedAt,
	)
	return i, err
}

const createDevice = `INSERT INTO devices (id, user_id, label, secret, created_at) VALUES (?, ?, ?, ?, ?)`

type CreateDeviceParams struct {
	ID        string
	UserID    string
	Label     string
	Secret    string
	CreatedAt int64
}

func (q *Queries) CreateDevice(ctx context.Context, arg CreateDeviceParams) error {
	_, err := q.db.ExecContext(ctx, createDevice,
		arg.ID,
		arg.UserID,
		arg.Label,
		arg.Secret,
		arg.CreatedAt,
	)
	return err
}

const getDeviceByID = `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`

func (q *Queries) GetDeviceByID(ctx context.Context, id string) (Device, error) {
	return scanDevice(q.db.QueryRowContext(ctx, getDeviceByID, id))
}

const getConfirmedDevice = `SELECT ` + deviceColumns + `
FROM devices
WHERE user_id = ? AND confirmed_at IS NOT NULL`

func (q *Queries) GetConfirmedDevice(ctx context.Context, userID string) (Device, error) {
	return scanDevice(q.db.QueryRowContext(ctx, getConfirmedDevice, userID))
}

const getPendingDevice = `SELECT ` + deviceColumns + `
FROM devices
WHERE user_id = ? AND confirmed_at IS NULL
ORDER BY created_at DESC
LIMIT 1`

func (q *Queries) GetPendingDevice(ctx context.Context, userID string) (Device, error) {
	return scanDevice(q.db.QueryRowContext(ctx, getPendingDevice, userID))
}

const confirmDevice = `UPDATE devices
SET confirmed_at = ?, last_used_at = ?
WHERE id = ? AND confirmed_at IS NULL`

func (q *Queries) ConfirmDevice(ctx context.Context, id string, at int64) (int64, error) {
	return q.execRows(ctx, confirmDevice, at, at, id)
}

const touchDevice = `UPDATE devices SET last_used_at = ? WHERE id = ?`

func (q *Queries) TouchDevice(ctx context.Context, id string, at int64) (int64, error) {
	return q.execRows(ctx, touchDevice, sql.NullInt64{Int64: at, Valid: true}, id)
}

const deleteUnconfirmedDevices = `DELETE FROM devices WHERE user_id = ? AND confirmed_at IS NULL`

func (q *Queries) DeleteUnconfirmedDevices(ctx context.Context, userID string) (int64, error) {
	return q.execRows(ctx, deleteUnconfirmedDevices, userID)
}

const deleteUserDevices = `DELETE FROM devices WHERE user_id = ?`

func (q *Queries) DeleteUserDevices(ctx context.Context, userID string) (int64, error) {
	return q.execRows(ctx, deleteUserDevices, userID)
}

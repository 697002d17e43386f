package gen

import (
	"context"
	"database/sql"
)

const userColumns = `id, username, email, password_hash, email_verified, two_factor_enabled, last_login_ip, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.EmailVerified,
		&i.TwoFactorEnabled,
		&i.LastLoginIp,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const createUser = `INSERT INTO users (
    id, username, email, password_hash, email_verified, two_factor_enabled, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	EmailVerified    bool
	TwoFactorEnabled bool
	CreatedAt        int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.EmailVerified,
		arg.TwoFactorEnabled,
		arg.CreatedAt,
		arg.CreatedAt,
	)
	return err
}

const updateUserPasswordHash = `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateUserPasswordHash(ctx context.Context, id, hash string, now int64) (int64, error) {
	return q.execRows(ctx, updateUserPasswordHash, hash, now, id)
}

const markUserEmailVerified = `UPDATE users SET email_verified = 1, updated_at = ? WHERE id = ?`

func (q *Queries) MarkUserEmailVerified(ctx context.Context, id string, now int64) (int64, error) {
	return q.execRows(ctx, markUserEmailVerified, now, id)
}

const setUserTwoFactorEnabled = `UPDATE users SET two_factor_enabled = ?, updated_at = ? WHERE id = ?`

func (q *Queries) SetUserTwoFactorEnabled(ctx context.Context, id string, enabled bool, now int64) (int64, error) {
	return q.execRows(ctx, setUserTwoFactorEnabled, enabled, now, id)
}

const updateUserLastLoginIP = `UPDATE users SET last_login_ip = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateUserLastLoginIP(ctx context.Context, id string, ip sql.NullString, now int64) (int64, error) {
	return q.execRows(ctx, updateUserLastLoginIP, ip, now, id)
}

func (q *Queries) execRows(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

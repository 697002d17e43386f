package gen

import "context"

const createRefreshToken = `INSERT INTO refresh_tokens (id, user_id, session_id, amr, created_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateRefreshToken(ctx context.Context, arg RefreshToken) error {
	_, err := q.db.ExecContext(ctx, createRefreshToken,
		arg.ID,
		arg.UserID,
		arg.SessionID,
		arg.Amr,
		arg.CreatedAt,
		arg.ExpiresAt,
	)
	return err
}

const consumeRefreshToken = `DELETE FROM refresh_tokens
WHERE id = ?
RETURNING id, user_id, session_id, amr, created_at, expires_at`

func (q *Queries) ConsumeRefreshToken(ctx context.Context, id string) (RefreshToken, error) {
	row := q.db.QueryRowContext(ctx, consumeRefreshToken, id)
	var i RefreshToken
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SessionID,
		&i.Amr,
		&i.CreatedAt,
		&i.ExpiresAt,
	)
	return i, err
}

const deleteUserRefreshTokens = `DELETE FROM refresh_tokens WHERE user_id = ?`

func (q *Queries) DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	return q.execRows(ctx, deleteUserRefreshTokens, userID)
}

const deleteExpiredRefreshTokens = `DELETE FROM refresh_tokens WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredRefreshTokens(ctx context.Context, now int64) (int64, error) {
	return q.execRows(ctx, deleteExpiredRefreshTokens, now)
}

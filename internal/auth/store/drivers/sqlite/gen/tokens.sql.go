package gen

import "context"

const upsertToken = `INSERT INTO ephemeral_tokens (user_id, purpose, token_hash, issued_at, expires_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, purpose) DO UPDATE SET
    token_hash = excluded.token_hash,
    issued_at  = excluded.issued_at,
    expires_at = excluded.expires_at`

func (q *Queries) UpsertToken(ctx context.Context, arg EphemeralToken) error {
	_, err := q.db.ExecContext(ctx, upsertToken,
		arg.UserID,
		arg.Purpose,
		arg.TokenHash,
		arg.IssuedAt,
		arg.ExpiresAt,
	)
	return err
}

// Deleting with RETURNING is the compare-and-clear: only the statement that
// removes the row gets it back.
const consumeToken = `DELETE FROM ephemeral_tokens
WHERE token_hash = ? AND purpose = ?
RETURNING user_id, purpose, token_hash, issued_at, expires_at`

func (q *Queries) ConsumeToken(ctx context.Context, hash, purpose string) (EphemeralToken, error) {
	row := q.db.QueryRowContext(ctx, consumeToken, hash, purpose)
	var i EphemeralToken
	err := row.Scan(
		&i.UserID,
		&i.Purpose,
		&i.TokenHash,
		&i.IssuedAt,
		&i.ExpiresAt,
	)
	return i, err
}

const deleteExpiredTokens = `DELETE FROM ephemeral_tokens WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredTokens(ctx context.Context, now int64) (int64, error) {
	return q.execRows(ctx, deleteExpiredTokens, now)
}

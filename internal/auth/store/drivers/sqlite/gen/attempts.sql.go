package gen

import (
	"context"
	"database/sql"
)

const appendAttempt = `INSERT INTO attempts (id, scope, user_id, source_ip, succeeded, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) AppendAttempt(ctx context.Context, arg Attempt) error {
	_, err := q.db.ExecContext(ctx, appendAttempt,
		arg.ID,
		arg.Scope,
		arg.UserID,
		arg.SourceIp,
		arg.Succeeded,
		arg.CreatedAt,
	)
	return err
}

const countAttemptsSince = `SELECT COUNT(*), MIN(created_at)
FROM attempts
WHERE scope = ? AND source_ip = ? AND created_at >= ?`

func (q *Queries) CountAttemptsSince(ctx context.Context, scope, sourceIP string, since int64) (int64, sql.NullInt64, error) {
	var (
		count  int64
		oldest sql.NullInt64
	)
	err := q.db.QueryRowContext(ctx, countAttemptsSince, scope, sourceIP, since).Scan(&count, &oldest)
	return count, oldest, err
}

const listUserAttempts = `SELECT id, scope, user_id, source_ip, succeeded, created_at
FROM attempts
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListUserAttempts(ctx context.Context, userID string, limit int64) ([]Attempt, error) {
	rows, err := q.db.QueryContext(ctx, listUserAttempts, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Attempt
	for rows.Next() {
		var i Attempt
		if err := rows.Scan(
			&i.ID,
			&i.Scope,
			&i.UserID,
			&i.SourceIp,
			&i.Succeeded,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

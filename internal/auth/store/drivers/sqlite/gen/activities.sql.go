package gen

import "context"

const appendActivity = `INSERT INTO activities (id, user_id, kind, source_ip, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) AppendActivity(ctx context.Context, arg Activity) error {
	_, err := q.db.ExecContext(ctx, appendActivity,
		arg.ID,
		arg.UserID,
		arg.Kind,
		arg.SourceIp,
		arg.Detail,
		arg.CreatedAt,
	)
	return err
}

const listUserActivities = `SELECT id, user_id, kind, source_ip, detail, created_at
FROM activities
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListUserActivities(ctx context.Context, userID string, limit int64) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listUserActivities, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Activity
	for rows.Next() {
		var i Activity
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Kind,
			&i.SourceIp,
			&i.Detail,
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

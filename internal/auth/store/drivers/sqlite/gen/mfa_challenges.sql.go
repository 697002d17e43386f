package gen

import "context"

const mfaChallengeColumns = `id, user_id, source_ip, attempts, created_at, expires_at`

func scanMfaChallenge(row interface{ Scan(...any) error }) (MfaChallenge, error) {
	var i MfaChallenge
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.SourceIp,
		&i.Attempts,
		&i.CreatedAt,
		&i.ExpiresAt,
	)
	return i, err
}

const createMfaChallenge = `INSERT INTO mfa_challenges (id, user_id, source_ip, attempts, created_at, expires_at)
VALUES (?, ?, ?, 0, ?, ?)`

func (q *Queries) CreateMfaChallenge(ctx context.Context, arg MfaChallenge) error {
	_, err := q.db.ExecContext(ctx, createMfaChallenge,
		arg.ID,
		arg.UserID,
		arg.SourceIp,
		arg.CreatedAt,
		arg.ExpiresAt,
	)
	return err
}

const getMfaChallenge = `SELECT ` + mfaChallengeColumns + ` FROM mfa_challenges WHERE id = ?`

func (q *Queries) GetMfaChallenge(ctx context.Context, id string) (MfaChallenge, error) {
	return scanMfaChallenge(q.db.QueryRowContext(ctx, getMfaChallenge, id))
}

const incrementMfaChallengeAttempts = `UPDATE mfa_challenges
SET attempts = attempts + 1
WHERE id = ?
RETURNING ` + mfaChallengeColumns

func (q *Queries) IncrementMfaChallengeAttempts(ctx context.Context, id string) (MfaChallenge, error) {
	return scanMfaChallenge(q.db.QueryRowContext(ctx, incrementMfaChallengeAttempts, id))
}

const deleteMfaChallenge = `DELETE FROM mfa_challenges WHERE id = ?`

func (q *Queries) DeleteMfaChallenge(ctx context.Context, id string) (int64, error) {
	return q.execRows(ctx, deleteMfaChallenge, id)
}

const deleteExpiredMfaChallenges = `DELETE FROM mfa_challenges WHERE expires_at <= ?`

func (q *Queries) DeleteExpiredMfaChallenges(ctx context.Context, now int64) (int64, error) {
	return q.execRows(ctx, deleteExpiredMfaChallenges, now)
}

package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

type attemptsRepo struct {
	q *gen.Queries
}

func (r *attemptsRepo) AppendAttempt(ctx context.Context, a domain.AttemptRecord) error {
	err := r.q.AppendAttempt(ctx, gen.Attempt{
		ID:        a.ID,
		Scope:     string(a.Scope),
		UserID:    mapOptionalString(a.UserID),
		SourceIp:  a.SourceIP,
		Succeeded: a.Succeeded,
		CreatedAt: toUnix(a.CreatedAt),
	})
	return mapConstraint(err)
}

func (r *attemptsRepo) CountAttemptsSince(
	ctx context.Context,
	scope domain.Scope,
	sourceIP string,
	since time.Time,
) (int, time.Time, error) {
	count, oldest, err := r.q.CountAttemptsSince(ctx, string(scope), sourceIP, toUnix(since))
	if err != nil {
		return 0, time.Time{}, err
	}
	if !oldest.Valid {
		return int(count), time.Time{}, nil
	}
	return int(count), fromUnix(oldest.Int64), nil
}

func (r *attemptsRepo) ListUserAttempts(ctx context.Context, userID string, limit int) ([]domain.AttemptRecord, error) {
	rows, err := r.q.ListUserAttempts(ctx, userID, int64(limit))
	if err != nil {
		return nil, err
	}

	out := make([]domain.AttemptRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapAttempt(row))
	}
	return out, nil
}

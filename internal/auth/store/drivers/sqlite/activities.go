package sqlite

import (
	"context"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

type activitiesRepo struct {
	q *gen.Queries
}

func (r *activitiesRepo) AppendActivity(ctx context.Context, a domain.Activity) error {
	return r.q.AppendActivity(ctx, gen.Activity{
		ID:        a.ID,
		UserID:    a.UserID,
		Kind:      string(a.Kind),
		SourceIp:  a.SourceIP,
		Detail:    a.Detail,
		CreatedAt: toUnix(a.CreatedAt),
	})
}

func (r *activitiesRepo) ListUserActivities(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	rows, err := r.q.ListUserActivities(ctx, userID, int64(limit))
	if err != nil {
		return nil, err
	}

	out := make([]domain.Activity, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapActivity(row))
	}
	return out, nil
}

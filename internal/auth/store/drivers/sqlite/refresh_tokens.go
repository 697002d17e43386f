package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.CreateRefreshToken(ctx, gen.RefreshToken{
		ID:        t.ID,
		UserID:    t.UserID,
		SessionID: t.SessionID,
		Amr:       strings.Join(t.AMR, " "),
		CreatedAt: toUnix(t.CreatedAt),
		ExpiresAt: toUnix(t.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *refreshTokensRepo) ConsumeRefreshToken(ctx context.Context, id string) (domain.RefreshToken, error) {
	row, err := r.q.ConsumeRefreshToken(ctx, id)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return domain.RefreshToken{
		ID:        row.ID,
		UserID:    row.UserID,
		SessionID: row.SessionID,
		AMR:       strings.Fields(row.Amr),
		CreatedAt: fromUnix(row.CreatedAt),
		ExpiresAt: fromUnix(row.ExpiresAt),
	}, nil
}

func (r *refreshTokensRepo) DeleteUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	return r.q.DeleteUserRefreshTokens(ctx, userID)
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, toUnix(now))
}

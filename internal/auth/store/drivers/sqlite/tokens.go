package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

type tokensRepo struct {
	q *gen.Queries
}

func (r *tokensRepo) UpsertToken(ctx context.Context, t domain.EphemeralToken) error {
	err := r.q.UpsertToken(ctx, gen.EphemeralToken{
		UserID:    t.UserID,
		Purpose:   string(t.Purpose),
		TokenHash: t.TokenHash,
		IssuedAt:  toUnix(t.IssuedAt),
		ExpiresAt: toUnix(t.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *tokensRepo) ConsumeToken(
	ctx context.Context,
	hash string,
	purpose domain.TokenPurpose,
) (domain.EphemeralToken, error) {
	row, err := r.q.ConsumeToken(ctx, hash, string(purpose))
	if err != nil {
		return domain.EphemeralToken{}, mapNotFound(err)
	}
	return mapToken(row), nil
}

func (r *tokensRepo) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredTokens(ctx, toUnix(now))
}

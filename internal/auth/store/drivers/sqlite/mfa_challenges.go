package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite/gen"
)

type mfaChallengesRepo struct {
	q *gen.Queries
}

func (r *mfaChallengesRepo) CreateMFAChallenge(ctx context.Context, c domain.MFAChallenge) error {
	err := r.q.CreateMfaChallenge(ctx, gen.MfaChallenge{
		ID:        c.ID,
		UserID:    c.UserID,
		SourceIp:  c.SourceIP,
		CreatedAt: toUnix(c.CreatedAt),
		ExpiresAt: toUnix(c.ExpiresAt),
	})
	return mapConstraint(err)
}

func (r *mfaChallengesRepo) GetMFAChallenge(ctx context.Context, id string) (domain.MFAChallenge, error) {
	row, err := r.q.GetMfaChallenge(ctx, id)
	if err != nil {
		return domain.MFAChallenge{}, mapNotFound(err)
	}
	return mapMFAChallenge(row), nil
}

func (r *mfaChallengesRepo) IncrementMFAChallengeAttempts(ctx context.Context, id string) (domain.MFAChallenge, error) {
	row, err := r.q.IncrementMfaChallengeAttempts(ctx, id)
	if err != nil {
		return domain.MFAChallenge{}, mapNotFound(err)
	}
	return mapMFAChallenge(row), nil
}

func (r *mfaChallengesRepo) DeleteMFAChallenge(ctx context.Context, id string) error {
	return requireRow(r.q.DeleteMfaChallenge(ctx, id))
}

func (r *mfaChallengesRepo) DeleteExpiredMFAChallenges(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredMfaChallenges(ctx, toUnix(now))
}

package throttle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/pkg/idx"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "thr:"

// RedisWindow keeps one sorted set per (scope, source). Members are unique
// IDs scored by the attempt time in milliseconds.
type RedisWindow struct {
	redis     redis.UniversalClient
	retention time.Duration
}

// NewRedisWindow creates a window that keeps entries for retention, which
// must cover the widest configured limit window.
func NewRedisWindow(client redis.UniversalClient, retention time.Duration) *RedisWindow {
	if retention <= 0 {
		retention = time.Hour
	}
	return &RedisWindow{redis: client, retention: retention}
}

func (w *RedisWindow) key(scope domain.Scope, sourceIP string) string {
	return redisKeyPrefix + string(scope) + ":" + sourceIP
}

func (w *RedisWindow) Observe(ctx context.Context, scope domain.Scope, sourceIP string, at time.Time) error {
	key := w.key(scope, sourceIP)
	cutoff := at.Add(-w.retention).UnixMilli()

	_, err := w.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: float64(at.UnixMilli()), Member: idx.New().String()})
		p.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		p.PExpire(ctx, key, w.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (w *RedisWindow) Count(ctx context.Context, scope domain.Scope, sourceIP string, since time.Time) (int, time.Time, error) {
	key := w.key(scope, sourceIP)
	lower := strconv.FormatInt(since.UnixMilli(), 10)

	var (
		countCmd  *redis.IntCmd
		oldestCmd *redis.ZSliceCmd
	)
	_, err := w.redis.Pipelined(ctx, func(p redis.Pipeliner) error {
		countCmd = p.ZCount(ctx, key, lower, "+inf")
		oldestCmd = p.ZRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{Min: lower, Max: "+inf", Count: 1})
		return nil
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	n := int(countCmd.Val())
	if n == 0 {
		return 0, time.Time{}, nil
	}

	var oldest time.Time
	if zs := oldestCmd.Val(); len(zs) > 0 {
		oldest = time.UnixMilli(int64(zs[0].Score)).UTC()
	}
	return n, oldest, nil
}

// Ping reports whether Redis is reachable.
func (w *RedisWindow) Ping(ctx context.Context) error {
	if err := w.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisWindow_CountsPerScopeAndSource(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	w := throttle.NewRedisWindow(client, time.Hour)
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, w.Observe(ctx, domain.ScopeLogin, "198.51.100.1", now.Add(-30*time.Minute)))
	require.NoError(t, w.Observe(ctx, domain.ScopeLogin, "198.51.100.1", now.Add(-10*time.Minute)))
	require.NoError(t, w.Observe(ctx, domain.ScopeLogin, "198.51.100.2", now))
	require.NoError(t, w.Observe(ctx, domain.ScopeTwoFactor, "198.51.100.1", now))

	n, oldest, err := w.Count(ctx, domain.ScopeLogin, "198.51.100.1", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, now.Add(-30*time.Minute), oldest)

	n, oldest, err = w.Count(ctx, domain.ScopeLogin, "198.51.100.1", now.Add(-15*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, now.Add(-10*time.Minute), oldest)

	n, oldest, err = w.Count(ctx, domain.ScopePasswordReset, "198.51.100.1", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)
	require.True(t, oldest.IsZero())
}

func TestRedisWindow_SameInstantCountsTwice(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	w := throttle.NewRedisWindow(client, time.Hour)
	now := time.Now()

	for range 3 {
		require.NoError(t, w.Observe(ctx, domain.ScopeLogin, "203.0.113.5", now))
	}

	n, _, err := w.Count(ctx, domain.ScopeLogin, "203.0.113.5", now.Add(-time.Minute))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRedisWindow_PrunesAndExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	w := throttle.NewRedisWindow(client, time.Hour)
	now := time.Now()

	require.NoError(t, w.Observe(ctx, domain.ScopeLogin, "203.0.113.6", now.Add(-2*time.Hour)))
	require.NoError(t, w.Observe(ctx, domain.ScopeLogin, "203.0.113.6", now))

	members, err := mr.ZMembers("thr:login:203.0.113.6")
	require.NoError(t, err)
	require.Len(t, members, 1, "entries older than the retention are pruned")

	mr.FastForward(2 * time.Hour)
	require.False(t, mr.Exists("thr:login:203.0.113.6"))
}

func TestRedisWindow_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	w := throttle.NewRedisWindow(client, time.Hour)
	mr.Close()

	err := w.Observe(ctx, domain.ScopeLogin, "203.0.113.7", time.Now())
	require.ErrorIs(t, err, throttle.ErrUnavailable)

	_, _, err = w.Count(ctx, domain.ScopeLogin, "203.0.113.7", time.Now())
	require.ErrorIs(t, err, throttle.ErrUnavailable)

	require.ErrorIs(t, w.Ping(ctx), throttle.ErrUnavailable)
}

func TestRedisWindow_Ping(t *testing.T) {
	_, client := newTestRedis(t)
	w := throttle.NewRedisWindow(client, time.Hour)

	require.NoError(t, w.Ping(context.Background()))
}

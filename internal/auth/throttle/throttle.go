// Package throttle answers "how many attempts has this source made against
// this scope recently". The attempt log in the store is the default source of
// truth; a Redis sorted set can front it when several replicas share limits.
package throttle

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
)

// ErrUnavailable reports a window backend that could not be read or written.
var ErrUnavailable = errors.New("throttle: backend unavailable")

// Window counts attempts per (scope, source) over a sliding interval.
type Window interface {
	// Observe notes one attempt at the given time.
	Observe(ctx context.Context, scope domain.Scope, sourceIP string, at time.Time) error

	// Count returns the number of attempts at or after since, plus the time
	// of the oldest of them (zero when the count is zero).
	Count(ctx context.Context, scope domain.Scope, sourceIP string, since time.Time) (int, time.Time, error)
}

// Limit bounds attempts within a window.
type Limit struct {
	Max    int
	Window time.Duration
}

// Limits maps each scope to its bound.
type Limits map[domain.Scope]Limit

// DefaultLimits are the production bounds.
func DefaultLimits() Limits {
	return Limits{
		domain.ScopeLogin:             {Max: 5, Window: time.Hour},
		domain.ScopePasswordReset:     {Max: 3, Window: time.Hour},
		domain.ScopeResetRedemption:   {Max: 10, Window: time.Hour},
		domain.ScopeEmailVerification: {Max: 10, Window: time.Hour},
		domain.ScopeTwoFactor:         {Max: 5, Window: 15 * time.Minute},
	}
}

// For returns the limit for scope. Unknown scopes report false.
func (l Limits) For(scope domain.Scope) (Limit, bool) {
	lim, ok := l[scope]
	return lim, ok
}

// Longest is the widest window across all scopes. Redis keys are retained
// for this long.
func (l Limits) Longest() time.Duration {
	var longest time.Duration
	for _, lim := range l {
		longest = max(longest, lim.Window)
	}
	return longest
}

// Decision is the outcome of a throttle check.
type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	RetryAfter time.Duration
}

// Evaluate applies lim to an observed count. A source is denied once count
// reaches Max; it may retry when the oldest counted attempt leaves the window.
func Evaluate(lim Limit, count int, oldest, now time.Time) Decision {
	d := Decision{Allowed: count < lim.Max, Count: count, Limit: lim.Max}
	if d.Allowed {
		return d
	}

	d.RetryAfter = lim.Window
	if !oldest.IsZero() {
		d.RetryAfter = oldest.Add(lim.Window).Sub(now)
	}
	if d.RetryAfter < time.Second {
		d.RetryAfter = time.Second
	}
	return d
}

// Pinger is implemented by windows that can report their backend health.
type Pinger interface {
	Ping(ctx context.Context) error
}

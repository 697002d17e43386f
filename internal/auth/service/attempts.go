package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/aussiebroadwan/authguard/pkg/idx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

// AttemptTracker records attempts of attempt-bearing flows and decides
// whether a source may try again.
type AttemptTracker struct {
	Store  store.Store
	Window throttle.Window
	Limits throttle.Limits
	Now    func() time.Time

	failures atomic.Int64
}

// NewAttemptTracker counts attempts straight from the attempt log unless a
// different window is supplied.
func NewAttemptTracker(s store.Store, w throttle.Window, limits throttle.Limits) *AttemptTracker {
	if w == nil {
		w = throttle.NewStoreWindow(s)
	}
	if limits == nil {
		limits = throttle.DefaultLimits()
	}
	return &AttemptTracker{Store: s, Window: w, Limits: limits}
}

// Record appends an attempt. It never fails the caller: a write that cannot
// be persisted is logged and counted in RecordFailures.
func (t *AttemptTracker) Record(ctx context.Context, scope domain.Scope, sourceIP string, userID *string, succeeded bool) {
	l := slogx.FromContext(ctx)
	now := clock(t.Now)

	rec := domain.AttemptRecord{
		ID:        idx.NewAt(now).String(),
		Scope:     scope,
		UserID:    userID,
		SourceIP:  sourceIP,
		Succeeded: succeeded,
		CreatedAt: now,
	}
	if err := t.Store.Attempts().AppendAttempt(ctx, rec); err != nil {
		t.failures.Add(1)
		l.Error("failed to record attempt",
			slog.String("scope", string(scope)),
			slog.String("source_ip", sourceIP),
			slog.Any("error", err),
		)
		return
	}

	if t.Window == nil {
		return
	}
	if err := t.Window.Observe(ctx, scope, sourceIP, now); err != nil {
		t.failures.Add(1)
		l.Error("failed to observe attempt in throttle window",
			slog.String("scope", string(scope)),
			slog.String("source_ip", sourceIP),
			slog.Any("error", err),
		)
	}
}

// RecordFailures reports how many attempts could not be recorded since start.
func (t *AttemptTracker) RecordFailures() int64 {
	return t.failures.Load()
}

// Check reports whether sourceIP may make another attempt in scope.
func (t *AttemptTracker) Check(ctx context.Context, scope domain.Scope, sourceIP string) (throttle.Decision, error) {
	lim, ok := t.Limits.For(scope)
	if !ok {
		return throttle.Decision{}, fatal("check attempts", fmt.Errorf("no limit configured for scope %q", scope))
	}

	now := clock(t.Now)
	window := t.Window
	if window == nil {
		window = throttle.NewStoreWindow(t.Store)
	}

	count, oldest, err := window.Count(ctx, scope, sourceIP, now.Add(-lim.Window))
	if err != nil {
		return throttle.Decision{}, fatal("count attempts", err)
	}
	return throttle.Evaluate(lim, count, oldest, now), nil
}

// Allow is Check returning a *ThrottledError when the source is over its
// limit.
func (t *AttemptTracker) Allow(ctx context.Context, scope domain.Scope, sourceIP string) error {
	d, err := t.Check(ctx, scope, sourceIP)
	if err != nil {
		return err
	}
	if !d.Allowed {
		slogx.FromContext(ctx).Warn("attempt throttled",
			slog.String("scope", string(scope)),
			slog.String("source_ip", sourceIP),
			slog.Int("count", d.Count),
			slog.Int("limit", d.Limit),
		)
		return &ThrottledError{Scope: scope, RetryAfter: d.RetryAfter}
	}
	return nil
}

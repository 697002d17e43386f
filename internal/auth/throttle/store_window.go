package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
)

// StoreWindow counts directly over the append-only attempt log.
type StoreWindow struct {
	store store.Store
}

// NewStoreWindow builds a window over s.
func NewStoreWindow(s store.Store) *StoreWindow {
	return &StoreWindow{store: s}
}

// Observe is a no-op: the attempt record itself is the observation.
func (w *StoreWindow) Observe(context.Context, domain.Scope, string, time.Time) error {
	return nil
}

func (w *StoreWindow) Count(ctx context.Context, scope domain.Scope, sourceIP string, since time.Time) (int, time.Time, error) {
	n, oldest, err := w.store.Attempts().CountAttemptsSince(ctx, scope, sourceIP, since)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return n, oldest, nil
}

// Ping reports whether the attempt store is reachable.
func (w *StoreWindow) Ping(ctx context.Context) error {
	return w.store.Ping(ctx)
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/store"
)

// HousekeepingService periodically deletes expired rows so the token and
// challenge tables do not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs a sweep immediately and then on every tick until Stop.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// SweepResult counts the rows a sweep removed.
type SweepResult struct {
	Tokens        int64
	Challenges    int64
	RefreshTokens int64
}

// Sweep deletes everything that expired before now. Each table is swept
// independently; a failure in one does not stop the others.
func (s *HousekeepingService) Sweep(ctx context.Context) SweepResult {
	now := clock(s.Now)
	var (
		res SweepResult
		err error
	)

	res.Tokens, err = s.Store.Tokens().DeleteExpiredTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired tokens", slog.Any("error", err))
	}

	res.Challenges, err = s.Store.MFAChallenges().DeleteExpiredMFAChallenges(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired challenges", slog.Any("error", err))
	}

	res.RefreshTokens, err = s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", slog.Any("error", err))
	}

	s.Logger.Info("housekeeping sweep completed",
		slog.Int64("tokens", res.Tokens),
		slog.Int64("challenges", res.Challenges),
		slog.Int64("refresh_tokens", res.RefreshTokens),
	)
	return res
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/cryptox"
	"github.com/aussiebroadwan/authguard/pkg/idx"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

// DefaultRefreshTTL bounds how long a session can be renewed without
// signing in again.
const DefaultRefreshTTL = 24 * time.Hour

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

// mintRefresh stores a new refresh token for the session and returns the
// value for the client.
func (s *AuthService) mintRefresh(ctx context.Context, repo store.RefreshTokens, userID, sessionID string, amr []string) (string, error) {
	tok, err := cryptox.NewOpaqueToken()
	if err != nil {
		return "", fatal("generate refresh token", err)
	}

	now := s.now()
	err = repo.CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        tok.Fingerprint,
		UserID:    userID,
		SessionID: sessionID,
		AMR:       amr,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshTTL()),
	})
	if err != nil {
		return "", fatal("store refresh token", err)
	}
	return tok.Value, nil
}

// RefreshRequest exchanges a refresh token for a new session.
type RefreshRequest struct {
	RefreshToken string
	SourceIP     string
}

// RefreshSession rotates a refresh token: the presented value is consumed
// and a new one for the same session is returned with a fresh access token.
// Unknown, reused and expired values fail with ErrInvalidToken. The access
// token keeps the methods proven at sign in and adds "refresh".
func (s *AuthService) RefreshSession(ctx context.Context, req RefreshRequest) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	value := strings.TrimSpace(req.RefreshToken)
	if err := required("refresh_token", value); err != nil {
		return domain.Session{}, err
	}

	var (
		u    domain.User
		next string
		amr  []string
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		old, err := tx.RefreshTokens().ConsumeRefreshToken(ctx, cryptox.FingerprintToken(value))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return fatal("consume refresh token", err)
		}
		if old.Expired(s.now()) {
			// Commit so the expired row is gone
			return nil
		}

		u, err = tx.Users().GetUserByID(ctx, old.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return fatal("get user", err)
		}

		next, err = s.mintRefresh(ctx, tx.RefreshTokens(), u.ID, old.SessionID, old.AMR)
		if err != nil {
			return err
		}
		amr = old.AMR
		return nil
	})
	if err != nil {
		return domain.Session{}, classify("refresh session", err)
	}
	if next == "" {
		return domain.Session{}, ErrInvalidToken
	}

	issued := amr
	if !slices.Contains(issued, jwtx.AMRRefresh) {
		issued = append(slices.Clone(amr), jwtx.AMRRefresh)
	}
	sess, err := s.Sessions.Issue(u, issued, s.now())
	if err != nil {
		return domain.Session{}, fatal("issue session", err)
	}
	sess.RefreshToken = next

	l.Debug("session refreshed", slog.String("user_id", u.ID))
	return sess, nil
}

// endSessions revokes every refresh token of a user inside tx.
func endSessions(ctx context.Context, tx store.Tx, userID string) error {
	n, err := tx.RefreshTokens().DeleteUserRefreshTokens(ctx, userID)
	if err != nil {
		return fatal("revoke sessions", err)
	}
	if n > 0 {
		slogx.FromContext(ctx).Info("sessions revoked", slog.String("user_id", userID), slog.Int64("count", n))
	}
	return nil
}

func newSessionID(now time.Time) string { return idx.NewAt(now).String() }

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/cryptox"
)

const (
	DefaultResetTokenTTL  = time.Hour
	DefaultVerifyTokenTTL = 24 * time.Hour
)

// TokenStore issues and consumes single-use tokens bound to a user and a
// purpose. Only fingerprints are persisted.
type TokenStore struct {
	Store     store.Store
	ResetTTL  time.Duration
	VerifyTTL time.Duration
	Now       func() time.Time
}

func (s *TokenStore) ttl(p domain.TokenPurpose) time.Duration {
	switch p {
	case domain.PurposePasswordReset:
		if s.ResetTTL > 0 {
			return s.ResetTTL
		}
		return DefaultResetTokenTTL
	default:
		if s.VerifyTTL > 0 {
			return s.VerifyTTL
		}
		return DefaultVerifyTokenTTL
	}
}

// Issue returns a fresh token for (userID, purpose). Any earlier token for
// the same pair stops working.
func (s *TokenStore) Issue(ctx context.Context, userID string, purpose domain.TokenPurpose) (string, error) {
	if !purpose.Valid() {
		return "", fatal("issue token", fmt.Errorf("unknown purpose %q", purpose))
	}

	tok, err := cryptox.NewOpaqueToken()
	if err != nil {
		return "", fatal("generate token", err)
	}

	now := clock(s.Now)
	err = s.Store.Tokens().UpsertToken(ctx, domain.EphemeralToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: tok.Fingerprint,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl(purpose)),
	})
	if err != nil {
		return "", fatal("store token", err)
	}
	return tok.Value, nil
}

// Consume redeems value for purpose and returns the owning user. A token
// can be redeemed once; unknown, expired and wrong purpose tokens all fail
// with ErrInvalidToken.
func (s *TokenStore) Consume(ctx context.Context, value string, purpose domain.TokenPurpose) (string, error) {
	return s.consume(ctx, s.Store.Tokens(), value, purpose)
}

// ConsumeTx is Consume inside the caller's transaction.
func (s *TokenStore) ConsumeTx(ctx context.Context, tx store.Tx, value string, purpose domain.TokenPurpose) (string, error) {
	return s.consume(ctx, tx.Tokens(), value, purpose)
}

func (s *TokenStore) consume(ctx context.Context, tokens store.Tokens, value string, purpose domain.TokenPurpose) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrInvalidToken
	}

	t, err := tokens.ConsumeToken(ctx, cryptox.FingerprintToken(value), purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fatal("consume token", err)
	}

	// The row is gone either way; an expired token cannot be retried
	if t.Expired(clock(s.Now)) {
		return "", ErrInvalidToken
	}
	return t.UserID, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/mail"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

const verifyRoute = "verify-email"

func (s *AuthService) sendVerification(ctx context.Context, u domain.User) error {
	token, err := s.Tokens.Issue(ctx, u.ID, domain.PurposeEmailVerify)
	if err != nil {
		return err
	}
	msg := mail.VerificationMessage(u.Email, u.Username, s.link(verifyRoute, token))
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return fatal("send verification email", err)
	}
	return nil
}

// RequestEmailVerification mails a new verification link. The previous
// link stops working.
func (s *AuthService) RequestEmailVerification(ctx context.Context, userID, sourceIP string) error {
	if err := s.Attempts.Allow(ctx, domain.ScopeEmailVerification, sourceIP); err != nil {
		return err
	}

	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		s.Attempts.Record(ctx, domain.ScopeEmailVerification, sourceIP, &u.ID, false)
		return ErrEmailAlreadyVerified
	}

	s.Attempts.Record(ctx, domain.ScopeEmailVerification, sourceIP, &u.ID, true)
	return s.sendVerification(ctx, u)
}

// VerifyEmailRequest redeems a verification token.
type VerifyEmailRequest struct {
	Token    string
	SourceIP string
}

// VerifyEmail consumes the token and marks the address verified atomically.
func (s *AuthService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	req.Token = strings.TrimSpace(req.Token)
	if err := required("token", req.Token); err != nil {
		return err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeEmailVerification, req.SourceIP); err != nil {
		return err
	}

	var userID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := s.Tokens.ConsumeTx(ctx, tx, req.Token, domain.PurposeEmailVerify)
		if err != nil {
			return err
		}
		if err := tx.Users().MarkEmailVerified(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return fatal("mark email verified", err)
		}
		userID = id
		return nil
	})
	if err != nil {
		s.Attempts.Record(ctx, domain.ScopeEmailVerification, req.SourceIP, nil, false)
		return classify("verify email", err)
	}

	s.Attempts.Record(ctx, domain.ScopeEmailVerification, req.SourceIP, &userID, true)
	s.activity(ctx, userID, domain.ActivityEmailVerification, req.SourceIP, "")
	slogx.FromContext(ctx).Info("email verified", slog.String("user_id", userID))
	return nil
}

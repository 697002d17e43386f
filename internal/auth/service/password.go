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

const resetRoute = "reset-password"

// PasswordResetRequest asks for a reset link to be mailed.
type PasswordResetRequest struct {
	Email    string
	SourceIP string
}

// RequestPasswordReset mails a reset link when the address belongs to an
// account. The result is the same whether or not it does.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	l := slogx.FromContext(ctx)

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopePasswordReset, req.SourceIP); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Attempts.Record(ctx, domain.ScopePasswordReset, req.SourceIP, nil, false)
			l.Info("password reset requested for unknown email")
			return nil
		}
		return fatal("get user", err)
	}
	s.Attempts.Record(ctx, domain.ScopePasswordReset, req.SourceIP, &u.ID, true)

	token, err := s.Tokens.Issue(ctx, u.ID, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	msg := mail.PasswordResetMessage(u.Email, u.Username, s.link(resetRoute, token))
	if err := s.Mailer.Send(ctx, msg); err != nil {
		l.Error("failed to send password reset email", slog.String("user_id", u.ID), slog.Any("error", err))
	}

	s.activity(ctx, u.ID, domain.ActivityPasswordResetRequest, req.SourceIP, "")
	return nil
}

// ResetPasswordRequest redeems a reset token.
type ResetPasswordRequest struct {
	Token       string
	NewPassword string
	SourceIP    string
}

// ResetPassword replaces the password and ends every session of the user in
// the transaction that consumes the token.
// Redemptions are throttled apart from reset requests, so asking for a link
// never locks out the link itself.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	req.Token = strings.TrimSpace(req.Token)
	if err := required("token", req.Token); err != nil {
		return err
	}
	if err := validatePassword("new_password", req.NewPassword); err != nil {
		return err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeResetRedemption, req.SourceIP); err != nil {
		return err
	}

	// Hash before opening the transaction so the store is not held while
	// argon2 runs
	hash, err := s.Hasher.Hash(req.NewPassword)
	if err != nil {
		return fatal("hash password", err)
	}

	var userID string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		id, err := s.Tokens.ConsumeTx(ctx, tx, req.Token, domain.PurposePasswordReset)
		if err != nil {
			return err
		}
		if err := tx.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return fatal("update password", err)
		}
		userID = id
		return endSessions(ctx, tx, id)
	})
	if err != nil {
		s.Attempts.Record(ctx, domain.ScopeResetRedemption, req.SourceIP, nil, false)
		return classify("reset password", err)
	}

	s.Attempts.Record(ctx, domain.ScopeResetRedemption, req.SourceIP, &userID, true)
	s.activity(ctx, userID, domain.ActivityPasswordReset, req.SourceIP, "")
	slogx.FromContext(ctx).Info("password reset", slog.String("user_id", userID))
	return nil
}

// ChangePasswordRequest replaces the password of a signed-in user.
type ChangePasswordRequest struct {
	UserID      string
	OldPassword string
	NewPassword string
	SourceIP    string
}

// ChangePassword checks the current password before replacing it. Wrong
// passwords count against the login scope.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := required("old_password", req.OldPassword); err != nil {
		return err
	}
	if err := validatePassword("new_password", req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword == req.OldPassword {
		return invalid("new_password", "must differ from the current password")
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeLogin, req.SourceIP); err != nil {
		return err
	}

	u, err := s.user(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.Attempts.Record(ctx, domain.ScopeLogin, req.SourceIP, nil, false)
		}
		return err
	}

	if err := s.checkPassword(ctx, u, req.OldPassword); err != nil {
		s.Attempts.Record(ctx, domain.ScopeLogin, req.SourceIP, &u.ID, false)
		return err
	}
	s.Attempts.Record(ctx, domain.ScopeLogin, req.SourceIP, &u.ID, true)

	hash, err := s.Hasher.Hash(req.NewPassword)
	if err != nil {
		return fatal("hash password", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fatal("update password", err)
	}

	s.activity(ctx, u.ID, domain.ActivityPasswordChange, req.SourceIP, "")
	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", u.ID))
	return nil
}

// classify passes taxonomy errors through and marks anything else fatal.
func classify(op string, err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrThrottled, ErrAuthFailure, ErrFatal} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fatal(op, err)
}

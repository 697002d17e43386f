package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

// SetupTwoFactor starts a device enrollment for the user.
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID, label string) (domain.Enrollment, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return domain.Enrollment{}, err
	}
	return s.Devices.Enroll(ctx, u, label)
}

// VerifyTwoFactorRequest confirms a pending enrollment.
type VerifyTwoFactorRequest struct {
	UserID   string
	Code     string
	SourceIP string
}

// VerifyTwoFactor confirms the user's pending device with a code from it
// and enables two-factor for the account in the same transaction.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, req VerifyTwoFactorRequest) error {
	code, err := normalizeCode(req.Code)
	if err != nil {
		return err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeTwoFactor, req.SourceIP); err != nil {
		return err
	}

	fail := func(err error) error {
		s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &req.UserID, false)
		return err
	}

	pending, err := s.Devices.PendingDevice(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, ErrNoPendingEnrollment) {
			if _, cerr := s.Devices.ConfirmedDevice(ctx, req.UserID); cerr == nil {
				return fail(ErrTwoFactorAlreadyEnabled)
			}
		}
		return fail(err)
	}

	ok, err := s.Devices.confirm(ctx, pending.ID, code, func(tx store.Tx, d domain.Device) error {
		return tx.Users().SetTwoFactorEnabled(ctx, d.UserID, true)
	})
	if err != nil {
		return fail(err)
	}
	if !ok {
		return fail(ErrInvalidCode)
	}

	s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &req.UserID, true)
	s.activity(ctx, req.UserID, domain.ActivityTwoFactorEnabled, req.SourceIP, pending.Label)
	slogx.FromContext(ctx).Info("two-factor enabled",
		slog.String("user_id", req.UserID),
		slog.String("device_id", pending.ID),
	)
	return nil
}

// DisableTwoFactorRequest carries both factors; neither alone is enough.
type DisableTwoFactorRequest struct {
	UserID   string
	Password string
	Code     string
	SourceIP string
}

// DisableTwoFactor removes the user's devices after checking the password
// and a current code. Both are always evaluated and a failure does not say
// which one was wrong. Existing sessions end with the devices.
func (s *AuthService) DisableTwoFactor(ctx context.Context, req DisableTwoFactorRequest) error {
	if err := required("password", req.Password); err != nil {
		return err
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeTwoFactor, req.SourceIP); err != nil {
		return err
	}

	fail := func(err error) error {
		s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &req.UserID, false)
		return err
	}

	u, err := s.user(ctx, req.UserID)
	if err != nil {
		return fail(err)
	}

	d, err := s.Devices.ConfirmedDevice(ctx, u.ID)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return fail(ErrTwoFactorNotEnabled)
		}
		return fail(err)
	}

	passwordErr := s.checkPassword(ctx, u, req.Password)
	codeOK, err := s.Devices.Engine.Verify(d.Secret, code, s.now())
	if err != nil {
		return fail(fatal("verify code", err))
	}
	if passwordErr != nil || !codeOK {
		return fail(ErrInvalidCredentials)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Devices().DeleteUserDevices(ctx, u.ID); err != nil {
			return err
		}
		if err := tx.Users().SetTwoFactorEnabled(ctx, u.ID, false); err != nil {
			return err
		}
		return endSessions(ctx, tx, u.ID)
	})
	if err != nil {
		return fail(fatal("disable two-factor", err))
	}

	s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &u.ID, true)
	s.activity(ctx, u.ID, domain.ActivityTwoFactorDisabled, req.SourceIP, "")
	slogx.FromContext(ctx).Info("two-factor disabled", slog.String("user_id", u.ID))
	return nil
}

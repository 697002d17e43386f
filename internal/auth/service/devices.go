package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/idx"
	"github.com/aussiebroadwan/authguard/pkg/otpx"
	"github.com/aussiebroadwan/authguard/pkg/qrcode"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

const (
	// DefaultTOTPIssuer labels provisioning URIs when no issuer is configured.
	DefaultTOTPIssuer = "AuthGuard"

	maxDeviceLabel = 64
)

// DeviceRegistry owns the lifecycle of TOTP authenticators: enrollment,
// confirmation and revocation.
type DeviceRegistry struct {
	Store  store.Store
	Engine otpx.Engine
	Issuer string
	Now    func() time.Time
}

func (r *DeviceRegistry) issuer() string {
	if r.Issuer == "" {
		return DefaultTOTPIssuer
	}
	return r.Issuer
}

// Enroll replaces any pending enrollment for u with a fresh unconfirmed
// device. The secret is only ever returned here.
func (r *DeviceRegistry) Enroll(ctx context.Context, u domain.User, label string) (domain.Enrollment, error) {
	l := slogx.FromContext(ctx)
	now := clock(r.Now)

	label = strings.TrimSpace(label)
	if label == "" {
		label = u.Username
	}
	if utf8.RuneCountInString(label) > maxDeviceLabel {
		return domain.Enrollment{}, invalid("label", fmt.Sprintf("must be at most %d characters", maxDeviceLabel))
	}

	secret, err := otpx.GenerateSecret(r.issuer(), u.Username)
	if err != nil {
		return domain.Enrollment{}, fatal("generate secret", err)
	}

	d := domain.Device{
		ID:        idx.NewAt(now).String(),
		UserID:    u.ID,
		Label:     label,
		Secret:    secret,
		CreatedAt: now,
	}

	err = r.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Devices().GetConfirmedDevice(ctx, u.ID)
		switch {
		case err == nil:
			return ErrTwoFactorAlreadyEnabled
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		if err := tx.Devices().DeleteUnconfirmedDevices(ctx, u.ID); err != nil {
			return err
		}
		return tx.Devices().CreateDevice(ctx, d)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return domain.Enrollment{}, err
		}
		return domain.Enrollment{}, fatal("enroll device", err)
	}

	uri := otpx.ProvisioningURI(r.issuer(), u.Username, secret)
	qr, err := qrcode.DataURI(uri, 0)
	if err != nil {
		// The URI alone is enough to enroll, so a QR failure is not fatal
		l.Warn("failed to render provisioning QR code",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
	}

	l.Info("device enrolled", slog.String("user_id", u.ID), slog.String("device_id", d.ID))

	return domain.Enrollment{
		Device:          d,
		Secret:          secret,
		ProvisioningURI: uri,
		QRCode:          qr,
	}, nil
}

// Confirm checks code against the device secret and, when it matches,
// moves the device to confirmed. A wrong code returns false with no error
// and leaves the device untouched.
func (r *DeviceRegistry) Confirm(ctx context.Context, deviceID, code string) (bool, error) {
	return r.confirm(ctx, deviceID, code, nil)
}

// confirm runs then in the same transaction as the state change, so callers
// can attach their own writes to a successful confirmation.
func (r *DeviceRegistry) confirm(ctx context.Context, deviceID, code string, then func(tx store.Tx, d domain.Device) error) (bool, error) {
	now := clock(r.Now)

	d, err := r.Store.Devices().GetDeviceByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrDeviceNotFound
		}
		return false, fatal("get device", err)
	}
	if d.Confirmed() {
		return false, ErrDeviceAlreadyConfirmed
	}

	ok, err := r.Engine.Verify(d.Secret, code, now)
	if err != nil {
		return false, fatal("verify code", err)
	}
	if !ok {
		return false, nil
	}

	err = r.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Devices().ConfirmDevice(ctx, deviceID, now); err != nil {
			return err
		}
		if then != nil {
			return then(tx, d)
		}
		return nil
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		// Lost a race: the device was confirmed or replaced in between
		return false, r.confirmConflict(ctx, deviceID)
	case errors.Is(err, store.ErrAlreadyExists):
		return false, ErrTwoFactorAlreadyEnabled
	default:
		return false, fatal("confirm device", err)
	}
}

func (r *DeviceRegistry) confirmConflict(ctx context.Context, deviceID string) error {
	_, err := r.Store.Devices().GetDeviceByID(ctx, deviceID)
	switch {
	case err == nil:
		return ErrDeviceAlreadyConfirmed
	case errors.Is(err, store.ErrNotFound):
		return ErrDeviceNotFound
	default:
		return fatal("get device", err)
	}
}

// Revoke removes every device of the user. Revoking a user with no devices
// is not an error.
func (r *DeviceRegistry) Revoke(ctx context.Context, userID string) error {
	n, err := r.Store.Devices().DeleteUserDevices(ctx, userID)
	if err != nil {
		return fatal("revoke devices", err)
	}
	slogx.FromContext(ctx).Info("devices revoked", slog.String("user_id", userID), slog.Int64("count", n))
	return nil
}

func (r *DeviceRegistry) ConfirmedDevice(ctx context.Context, userID string) (domain.Device, error) {
	return r.lookup(ctx, r.Store.Devices().GetConfirmedDevice, userID, ErrDeviceNotFound)
}

// PendingDevice returns the enrollment waiting for its first code.
func (r *DeviceRegistry) PendingDevice(ctx context.Context, userID string) (domain.Device, error) {
	return r.lookup(ctx, r.Store.Devices().GetPendingDevice, userID, ErrNoPendingEnrollment)
}

func (r *DeviceRegistry) lookup(
	ctx context.Context,
	get func(context.Context, string) (domain.Device, error),
	userID string,
	notFound error,
) (domain.Device, error) {
	d, err := get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Device{}, notFound
		}
		return domain.Device{}, fatal("get device", err)
	}
	return d, nil
}

// Touch records a successful use of the device.
func (r *DeviceRegistry) Touch(ctx context.Context, deviceID string) error {
	if err := r.Store.Devices().TouchDevice(ctx, deviceID, clock(r.Now)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrDeviceNotFound
		}
		return fatal("touch device", err)
	}
	return nil
}

package otpx

import (
	"encoding/base32"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// Engine derives and verifies codes. The zero value uses a 30 second step
// and accepts one step of drift on either side.
type Engine struct {
	// Step is the TOTP time step. Zero means DefaultStep seconds.
	Step time.Duration

	// Tolerance is the number of steps accepted before and after the
	// current one. Zero means DefaultTolerance; a negative value accepts
	// the current step only.
	Tolerance int
}

func (e Engine) step() uint {
	if e.Step < time.Second {
		return DefaultStep
	}
	return uint(e.Step / time.Second)
}

func (e Engine) tolerance() uint {
	switch {
	case e.Tolerance < 0:
		return 0
	case e.Tolerance == 0:
		return DefaultTolerance
	}
	return uint(e.Tolerance)
}

func hotpOpts() hotp.ValidateOpts {
	return hotp.ValidateOpts{Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}
}

// Counter returns the TOTP moving factor for t.
func (e Engine) Counter(t time.Time) uint64 {
	unix := t.Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix) / uint64(e.step())
}

// HOTP computes the 6 digit HMAC-based one-time password for counter.
func (e Engine) HOTP(secret string, counter uint64) (uint32, error) {
	if _, err := DecodeSecret(secret); err != nil {
		return 0, err
	}

	code, err := hotp.GenerateCodeCustom(secret, counter, hotpOpts())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}

	n, err := strconv.ParseUint(code, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("otpx: unexpected code %q: %w", code, err)
	}
	return uint32(n), nil
}

// TOTP computes the code for the time step containing t.
func (e Engine) TOTP(secret string, t time.Time) (uint32, error) {
	return e.HOTP(secret, e.Counter(t))
}

// Verify reports whether code matches the secret within the tolerance
// window around t. A code that is not exactly six decimal digits is simply
// rejected; only an undecodable secret produces an error.
func (e Engine) Verify(secret, code string, t time.Time) (bool, error) {
	if _, err := DecodeSecret(secret); err != nil {
		return false, err
	}

	ok, err := totp.ValidateCustom(code, secret, t, totp.ValidateOpts{
		Period:    e.step(),
		Skew:      e.tolerance(),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	switch {
	case errors.Is(err, otp.ErrValidateInputInvalidLength):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return ok, nil
}

// FormatCode renders a code as a zero-padded six digit string.
func FormatCode(code uint32) string {
	return otp.DigitsSix.Format(int32(code))
}

// DecodeSecret decodes a base32 secret the way codes are derived from it:
// case-insensitive, surrounding whitespace ignored, padding optional.
func DecodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	if n := len(s) % 8; n != 0 {
		s += strings.Repeat("=", 8-n)
	}

	key, err := base32.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

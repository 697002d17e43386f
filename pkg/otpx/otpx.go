// Package otpx implements the one-time password primitives used for two-factor
// authentication: shared secret generation, HOTP (RFC 4226) and TOTP
// (RFC 6238) derivation, windowed verification and provisioning URIs.
//
// Everything in this package is stateless and safe for concurrent use.
package otpx

import "errors"

const (
	// DefaultStep is the TOTP time step.
	DefaultStep = 30

	// DefaultTolerance is the number of adjacent steps accepted on either
	// side of the current one when verifying a code.
	DefaultTolerance = 1

	// Digits is the length of a generated code.
	Digits = 6

	// SecretSize is the number of random bytes behind a generated secret.
	// 20 bytes encode to 32 base32 symbols (160 bits).
	SecretSize = 20
)

var (
	// ErrInvalidSecret reports a secret that is not decodable base32 or
	// decodes to an empty key.
	ErrInvalidSecret = errors.New("otpx: invalid secret")

	// ErrRandomUnavailable reports a failure of the secure random source
	// while generating a secret.
	ErrRandomUnavailable = errors.New("otpx: secure random source unavailable")
)

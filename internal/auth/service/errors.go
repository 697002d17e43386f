package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is, which is what the HTTP boundary switches on.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrThrottled   = errors.New("too many attempts")
	ErrAuthFailure = errors.New("authentication failed")
	ErrFatal       = errors.New("internal failure")
)

var (
	// ErrInvalidToken covers unknown, expired, already used and wrong purpose
	// tokens alike.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrNotFound)

	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrDeviceNotFound      = fmt.Errorf("%w: device", ErrNotFound)
	ErrNoPendingEnrollment = fmt.Errorf("%w: no pending two-factor enrollment", ErrNotFound)

	ErrTwoFactorAlreadyEnabled = fmt.Errorf("%w: two-factor authentication is already enabled", ErrConflict)
	ErrTwoFactorNotEnabled     = fmt.Errorf("%w: two-factor authentication is not enabled", ErrConflict)
	ErrDeviceAlreadyConfirmed  = fmt.Errorf("%w: device already confirmed", ErrConflict)
	ErrAccountExists           = fmt.Errorf("%w: username or email already registered", ErrConflict)
	ErrEmailAlreadyVerified    = fmt.Errorf("%w: email already verified", ErrConflict)
)

// ValidationError reports malformed input. It is raised before any attempt
// is recorded.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ThrottledError reports a source that exhausted its attempts for a scope.
type ThrottledError struct {
	Scope      domain.Scope
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("too many %s attempts, retry in %s", e.Scope, e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error { return ErrThrottled }

// RetryAfterSeconds is the Retry-After header value, never below one.
func (e *ThrottledError) RetryAfterSeconds() string {
	secs := int64(e.RetryAfter.Round(time.Second) / time.Second)
	return strconv.FormatInt(max(secs, 1), 10)
}

func fatal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrFatal, op, err)
}

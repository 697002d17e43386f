package domain

import "time"

type ActivityKind string

const (
	ActivityRegistration         ActivityKind = "registration"
	ActivityLogin                ActivityKind = "login"
	ActivityPasswordResetRequest ActivityKind = "password_reset_request"
	ActivityPasswordReset        ActivityKind = "password_reset"
	ActivityEmailVerification    ActivityKind = "email_verification"
	ActivityTwoFactorEnabled     ActivityKind = "2fa_enabled"
	ActivityTwoFactorDisabled    ActivityKind = "2fa_disabled"
	ActivityPasswordChange       ActivityKind = "password_change"
)

// Activity is a user-facing audit trail entry written after a state
// transition succeeds.
type Activity struct {
	ID        string
	UserID    string
	Kind      ActivityKind
	SourceIP  string
	Detail    string
	CreatedAt time.Time
}

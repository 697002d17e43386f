package domain

import "time"

// Scope names an attempt-bearing flow. Attempts are counted per scope and
// source address.
type Scope string

const (
	ScopeLogin             Scope = "login"
	ScopePasswordReset     Scope = "password_reset"
	ScopeResetRedemption   Scope = "password_reset_redeem"
	ScopeEmailVerification Scope = "email_verification"
	ScopeTwoFactor         Scope = "two_factor"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeLogin, ScopePasswordReset, ScopeResetRedemption, ScopeEmailVerification, ScopeTwoFactor:
		return true
	}
	return false
}

// AttemptRecord is an append-only audit entry for one attempt.
type AttemptRecord struct {
	ID        string
	Scope     Scope
	UserID    *string // nil when the subject could not be resolved
	SourceIP  string
	Succeeded bool
	CreatedAt time.Time
}

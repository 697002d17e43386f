package domain

import "time"

// TokenPurpose binds an ephemeral token to the single action it authorizes.
type TokenPurpose string

const (
	PurposeEmailVerify   TokenPurpose = "email_verify"
	PurposePasswordReset TokenPurpose = "password_reset"
)

func (p TokenPurpose) Valid() bool {
	switch p {
	case PurposeEmailVerify, PurposePasswordReset:
		return true
	}
	return false
}

// EphemeralToken is the stored record of a single-use token. Only the
// fingerprint of the value is persisted; at most one live token exists per
// (UserID, Purpose).
type EphemeralToken struct {
	UserID    string
	Purpose   TokenPurpose
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (t EphemeralToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Session is what a completed login returns: a signed access token and the
// opaque refresh token that renews it.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenType    string   `json:"token_type"` // always "Bearer"
	ExpiresIn    int64    `json:"expires_in"` // seconds
	AMR          []string `json:"amr,omitempty"`
}

// RefreshToken is the stored side of a refresh token. ID is the fingerprint
// of the value handed to the client. Each use replaces the row with a new
// one carrying the same SessionID, so a value works once.
type RefreshToken struct {
	ID        string
	UserID    string
	SessionID string
	AMR       []string // methods proven at sign in
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

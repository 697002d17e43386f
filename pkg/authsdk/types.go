package authsdk

// RegisterRequest is the body of POST /v1/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse describes an account.
type UserResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	EmailVerified    bool   `json:"email_verified"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// LoginRequest is the body of POST /v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SecondFactorRequest is the body of POST /v1/login/2fa.
type SecondFactorRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

// TokenResponse is a completed login.
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	AMR          []string `json:"amr,omitempty"`
}

// RefreshRequest is the body of POST /v1/token/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TwoFactorSetupRequest is the body of POST /v1/2fa/setup.
type TwoFactorSetupRequest struct {
	Label string `json:"label,omitempty"`
}

// TwoFactorSetupResponse is shown once; the secret cannot be read back.
type TwoFactorSetupResponse struct {
	DeviceID        string `json:"device_id"`
	Label           string `json:"label"`
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code,omitempty"`
}

// TwoFactorVerifyRequest is the body of POST /v1/2fa/verify.
type TwoFactorVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFactorDisableRequest is the body of POST /v1/2fa/disable.
type TwoFactorDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// PasswordResetRequest is the body of POST /v1/password/reset-request.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest is the body of POST /v1/password/reset.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeRequest is the body of POST /v1/password/change.
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// EmailVerifyRequest is the body of POST /v1/email/verify.
type EmailVerifyRequest struct {
	Token string `json:"token"`
}

// StatusResponse acknowledges requests that return no data.
type StatusResponse struct {
	Status string `json:"status"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Throttle string `json:"throttle"`

	// AttemptLogFailures counts attempts that could not be recorded.
	AttemptLogFailures int64 `json:"attempt_log_failures"`
}

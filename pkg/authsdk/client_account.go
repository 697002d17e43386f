package authsdk

import (
	"context"
	"net/http"
)

// Register creates an account. A verification email is sent to the address.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	var u UserResponse
	if err := c.post(ctx, "/v1/register", "", req, &u, http.StatusCreated); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login signs in with a password. Accounts with two-factor enabled return
// *MFARequiredError; pass it to CompleteLogin with a code.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var tok TokenResponse
	err := c.post(ctx, "/v1/login", "", LoginRequest{Username: username, Password: password}, &tok, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// CompleteLogin answers a second-factor challenge.
func (c *SDKClient) CompleteLogin(ctx context.Context, challenge *MFARequiredError, code string) (*TokenResponse, error) {
	var tok TokenResponse
	req := SecondFactorRequest{ChallengeToken: challenge.ChallengeToken, Code: code}
	if err := c.post(ctx, "/v1/login/2fa", "", req, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// AuthenticateWithPassword logs in and wraps the result in a Session. When
// the account needs a second factor the *MFARequiredError is returned as is.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, username, password string) (*Session, error) {
	tok, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// RefreshSession exchanges a refresh token for a new access token. The
// response carries the replacement refresh token; the old one stops working.
func (c *SDKClient) RefreshSession(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var tok TokenResponse
	err := c.post(ctx, "/v1/token/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &tok, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// AuthenticateWithRefreshToken resumes a session from a stored refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tok, err := c.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// RequestPasswordReset asks for a reset link. It succeeds whether or not the
// address belongs to an account.
func (c *SDKClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/v1/password/reset-request", "", PasswordResetRequest{Email: email}, nil, http.StatusAccepted)
}

// ResetPassword redeems a reset token from the emailed link.
func (c *SDKClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	req := PasswordResetConfirmRequest{Token: token, NewPassword: newPassword}
	return c.post(ctx, "/v1/password/reset", "", req, nil, http.StatusOK)
}

// VerifyEmail redeems a verification token from the emailed link.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) error {
	return c.post(ctx, "/v1/email/verify", "", EmailVerifyRequest{Token: token}, nil, http.StatusOK)
}

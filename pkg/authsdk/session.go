package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrSessionExpired is returned when the access token has run out and the
// session holds no refresh token; sign in again.
var ErrSessionExpired = errors.New("authsdk: session expired")

// Session performs operations on behalf of a signed-in user. An expired
// access token is refreshed before the next request when a refresh token is
// held.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	amr          []string
	expiresAt    time.Time
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	s := &Session{client: client}
	s.apply(tok)
	return s
}

// apply stores tok. Callers hold the write lock or own s exclusively.
func (s *Session) apply(tok *TokenResponse) {
	// 30 second buffer so a request is not sent with a token about to expire
	s.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).Add(-30 * time.Second)
	s.accessToken = tok.AccessToken
	s.refreshToken = tok.RefreshToken
	s.amr = tok.AMR
}

// AccessToken returns the bearer token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// AMR lists the authentication methods behind the session.
func (s *Session) AMR() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.amr...)
}

// RefreshToken returns the current refresh token. It changes after every
// refresh.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// token returns a usable access token, refreshing an expired one first.
func (s *Session) token(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed while we waited
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrSessionExpired
	}

	tok, err := s.client.RefreshSession(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: refresh failed: %w", ErrSessionExpired, err)
	}
	s.apply(tok)
	return s.accessToken, nil
}

// Refresh rotates the refresh token now, whether or not the access token
// has expired.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshToken == "" {
		return ErrSessionExpired
	}
	tok, err := s.client.RefreshSession(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.apply(tok)
	return nil
}

func (s *Session) post(ctx context.Context, path string, payload, target any, expectedStatus int) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	return s.client.post(ctx, path, token, payload, target, expectedStatus)
}

// SetupTwoFactor starts enrolling an authenticator. The secret in the
// response is shown only once.
func (s *Session) SetupTwoFactor(ctx context.Context, label string) (*TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	if err := s.post(ctx, "/v1/2fa/setup", TwoFactorSetupRequest{Label: label}, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTwoFactor confirms the pending authenticator with a current code.
func (s *Session) VerifyTwoFactor(ctx context.Context, code string) error {
	return s.post(ctx, "/v1/2fa/verify", TwoFactorVerifyRequest{Code: code}, nil, http.StatusOK)
}

// DisableTwoFactor removes the authenticator. Both factors are required.
func (s *Session) DisableTwoFactor(ctx context.Context, password, code string) error {
	return s.post(ctx, "/v1/2fa/disable", TwoFactorDisableRequest{Password: password, Code: code}, nil, http.StatusOK)
}

// ChangePassword replaces the password after checking the current one.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := PasswordChangeRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return s.post(ctx, "/v1/password/change", req, nil, http.StatusOK)
}

// ResendVerification mails a fresh email verification link.
func (s *Session) ResendVerification(ctx context.Context) error {
	return s.post(ctx, "/v1/email/resend", nil, nil, http.StatusAccepted)
}

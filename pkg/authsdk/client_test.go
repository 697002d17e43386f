package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *SDKClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL + "/")
}

func TestNewSDKClient_TrimsSlash(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("https://auth.example.com/")
	require.Equal(t, "https://auth.example.com/v1/login", c.url("/v1/login"))
}

func TestLogin_Session(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "alice", req.Username)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 900, AMR: []string{"pwd"}})
	})

	s, err := c.AuthenticateWithPassword(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "tok", s.AccessToken())
	require.Equal(t, []string{"pwd"}, s.AMR())
}

func TestLogin_MFARequired(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/login":
			(&MFARequiredError{ChallengeToken: "chal", ExpiresIn: 300, Methods: []string{"totp"}}).WriteError(w)
		case "/v1/login/2fa":
			var req SecondFactorRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "chal", req.ChallengeToken)
			require.Equal(t, "123456", req.Code)
			_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 900})
		}
	})

	_, err := c.Login(context.Background(), "alice", "correct horse")
	var challenge *MFARequiredError
	require.ErrorAs(t, err, &challenge)
	require.Equal(t, []string{"totp"}, challenge.Methods)
	require.Equal(t, int64(300), challenge.ExpiresIn)

	tok, err := c.CompleteLogin(context.Background(), challenge, "123456")
	require.NoError(t, err)
	require.Equal(t, "tok", tok.AccessToken)
}

func TestAPIError_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *APIError
	}{
		{"invalid token", ErrInvalidToken},
		{"credentials", ErrInvalidCredentials},
		{"validation", &APIError{StatusCode: http.StatusBadRequest, Code: ErrorCodeValidation, Description: "is required", Field: "email"}},
		{"throttled", &APIError{StatusCode: http.StatusTooManyRequests, Code: ErrorCodeThrottled, Description: "slow down", RetryAfter: 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				tt.err.WriteError(w)
			})

			err := c.VerifyEmail(context.Background(), "whatever")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, *tt.err, *apiErr)
		})
	}
}

func TestAPIError_UnknownBody(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	err := c.RequestPasswordReset(context.Background(), "a@example.com")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}

func TestSession_SendsBearer(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.Equal(t, "/v1/2fa/setup", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(TwoFactorSetupResponse{DeviceID: "d1", Secret: "JBSWY3DPEHPK3PXP"})
	})

	setup, err := c.NewSession("tok", 900).SetupTwoFactor(context.Background(), "phone")
	require.NoError(t, err)
	require.Equal(t, "d1", setup.DeviceID)
}

func TestSession_Expired(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("http://unused.invalid")
	err := c.NewSession("tok", 10).VerifyTwoFactor(context.Background(), "123456")
	require.True(t, errors.Is(err, ErrSessionExpired))
}

func TestGetReadiness(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/readyz", r.URL.Path)
			_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok", Checks: &HealthChecks{Database: "ok", Throttle: "ok"}})
		})

		health, err := c.GetReadiness(context.Background())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
	})

	t.Run("degraded", func(t *testing.T) {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{Status: "degraded", Checks: &HealthChecks{Database: "ok", Throttle: "error: dial tcp"}})
		})

		health, err := c.GetReadiness(context.Background())
		require.ErrorIs(t, err, ErrNotReady)
		require.NotNil(t, health)
		require.Equal(t, "error: dial tcp", health.Checks.Throttle)
	})
}

func TestWithForwardedFor(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "203.0.113.9", r.Header.Get("X-Forwarded-For"))
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
	}))
	t.Cleanup(srv.Close)

	c := NewSDKClient(srv.URL, WithForwardedFor("203.0.113.9"), WithHTTPClient(srv.Client()))
	health, err := c.GetLiveness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
}

func TestSession_RefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	var refreshes atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/token/refresh":
			refreshes.Add(1)
			var req RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "r1", req.RefreshToken)
			_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok2", TokenType: "Bearer", ExpiresIn: 900, RefreshToken: "r2"})
		case "/v1/2fa/verify":
			require.Equal(t, "Bearer tok2", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(StatusResponse{Status: "ok"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	// Inside the 30 second buffer, so already expired
	s := c.SessionFromToken(&TokenResponse{AccessToken: "tok1", ExpiresIn: 10, RefreshToken: "r1"})
	require.NoError(t, s.VerifyTwoFactor(context.Background(), "123456"))
	require.NoError(t, s.VerifyTwoFactor(context.Background(), "123456"))

	require.Equal(t, int32(1), refreshes.Load())
	require.Equal(t, "tok2", s.AccessToken())
	require.Equal(t, "r2", s.RefreshToken())
}

func TestSession_RefreshRejected(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/token/refresh", r.URL.Path)
		ErrInvalidToken.WriteError(w)
	})

	s := c.SessionFromToken(&TokenResponse{AccessToken: "tok1", ExpiresIn: 10, RefreshToken: "reused"})
	err := s.ChangePassword(context.Background(), "old", "new")
	require.ErrorIs(t, err, ErrSessionExpired)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeInvalidToken, apiErr.Code)
}

func TestAuthenticateWithRefreshToken(t *testing.T) {
	t.Parallel()

	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/token/refresh", r.URL.Path)
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", ExpiresIn: 900, RefreshToken: "next", AMR: []string{"pwd", "refresh"}})
	})

	s, err := c.AuthenticateWithRefreshToken(context.Background(), "stored")
	require.NoError(t, err)
	require.Equal(t, "next", s.RefreshToken())
	require.Contains(t, s.AMR(), "refresh")
}

package authsdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrNotReady is returned by GetReadiness when the service answers 503. The
// HealthResponse is still returned so callers can see which check failed.
var ErrNotReady = errors.New("authsdk: service not ready")

// SDKClient is a client for the authguard service. It performs the public
// operations and creates Sessions for the authenticated ones.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// ForwardedFor, when set, is sent as X-Forwarded-For so a trusted
	// frontend can attribute attempts to the end user's address.
	ForwardedFor string
}

// ClientOption configures an SDKClient.
type ClientOption func(*SDKClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *SDKClient) { c.HTTPClient = hc }
}

// WithForwardedFor attributes every request to ip.
func WithForwardedFor(ip string) ClientOption {
	return func(c *SDKClient) { c.ForwardedFor = ip }
}

// NewSDKClient creates a client for baseURL. Without options requests time
// out after 10 seconds.
func NewSDKClient(baseURL string, opts ...ClientOption) *SDKClient {
	c := &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSession wraps an access token obtained earlier. The session cannot
// refresh itself.
func (c *SDKClient) NewSession(accessToken string, expiresIn int64) *Session {
	return newSession(c, &TokenResponse{AccessToken: accessToken, TokenType: "Bearer", ExpiresIn: expiresIn})
}

// SessionFromToken wraps a token response, keeping its refresh token.
func (c *SDKClient) SessionFromToken(tok *TokenResponse) *Session {
	return newSession(c, tok)
}

// GetLiveness calls /livez.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", "", nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness calls /readyz. A degraded service yields the report together
// with ErrNotReady.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/readyz", "", nil)
	if err != nil {
		return nil, err
	}

	expected := http.StatusOK
	if resp.StatusCode == http.StatusServiceUnavailable {
		expected = http.StatusServiceUnavailable
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, expected); err != nil {
		return nil, err
	}
	if expected != http.StatusOK {
		return &health, ErrNotReady
	}
	return &health, nil
}

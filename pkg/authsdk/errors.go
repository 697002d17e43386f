package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/authguard/pkg/httpx"
)

// Error codes carried in the "error" member of every error body.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeValidation         = "validation_error"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeNotFound           = "not_found"
	ErrorCodeConflict           = "conflict"
	ErrorCodeThrottled          = "throttled"
	ErrorCodeServerError        = "server_error"
	ErrorCodeMFARequired        = "mfa_required"
)

// APIError is the error body returned by every endpoint. It is written by
// the server and decoded by the client.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`

	// Field names the offending request member of a validation error.
	Field string `json:"field,omitempty"`

	// RetryAfter is the throttle delay in seconds, sent as Retry-After.
	RetryAfter int `json:"retry_after,omitempty"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Description)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes e as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(e.RetryAfter))
	}
	httpx.WriteJSON(w, e.StatusCode, e)
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request body is malformed",
	}

	// ErrInvalidToken covers ephemeral tokens and login challenges that are
	// unknown, expired or already used.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidToken,
		Description: "invalid token",
	}

	ErrUnauthorized = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthorized,
		Description: "the access token is missing, invalid or expired",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid credentials",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewAPIError creates an error with a custom description.
func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// MFARequiredError is returned by a password login when the account has
// two-factor enabled. The challenge token completes the login.
type MFARequiredError struct {
	ChallengeToken string   `json:"challenge_token"`
	ExpiresIn      int64    `json:"expires_in"`
	Methods        []string `json:"methods"`
}

func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("second factor required: available methods=%v", e.Methods)
}

// WriteError writes the challenge as 409 Conflict: the credentials were
// right but the account state needs another step.
func (e *MFARequiredError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusConflict, map[string]any{
		"error":             ErrorCodeMFARequired,
		"error_description": "a second factor is required to complete sign in",
		"challenge_token":   e.ChallengeToken,
		"expires_in":        e.ExpiresIn,
		"methods":           e.Methods,
	})
}

// parseErrorResponse turns a non-success response into *MFARequiredError or
// *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusConflict {
		var mfa struct {
			Error string `json:"error"`
			MFARequiredError
		}
		if err := json.Unmarshal(body, &mfa); err == nil && mfa.Error == ErrorCodeMFARequired && mfa.ChallengeToken != "" {
			return &mfa.MFARequiredError
		}
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		if apiErr.RetryAfter == 0 {
			apiErr.RetryAfter, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		}
		return &apiErr
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

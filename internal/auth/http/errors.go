package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/pkg/authsdk"
	"github.com/aussiebroadwan/authguard/pkg/httpx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

// writeError maps a service error onto its HTTP status by kind.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *service.ValidationError
		te *service.ThrottledError
	)

	switch {
	case errors.As(err, &ve):
		(&authsdk.APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        authsdk.ErrorCodeValidation,
			Description: ve.Reason,
			Field:       ve.Field,
		}).WriteError(w)

	case errors.As(err, &te):
		secs, _ := strconv.Atoi(te.RetryAfterSeconds())
		(&authsdk.APIError{
			StatusCode:  http.StatusTooManyRequests,
			Code:        authsdk.ErrorCodeThrottled,
			Description: te.Error(),
			RetryAfter:  secs,
		}).WriteError(w)

	case errors.Is(err, service.ErrInvalidToken):
		authsdk.ErrInvalidToken.WriteError(w)

	case errors.Is(err, service.ErrNotFound):
		authsdk.NewAPIError(http.StatusNotFound, authsdk.ErrorCodeNotFound, describe(err, service.ErrNotFound)).WriteError(w)

	case errors.Is(err, service.ErrConflict):
		authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeConflict, describe(err, service.ErrConflict)).WriteError(w)

	case errors.Is(err, service.ErrAuthFailure):
		authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials, describe(err, service.ErrAuthFailure)).WriteError(w)

	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
		authsdk.ErrServerError.WriteError(w)
	}
}

// describe drops the kind prefix from err's message.
func describe(err, kind error) string {
	return strings.TrimPrefix(err.Error(), kind.Error()+": ")
}

// decode reads a JSON body into dst and answers 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		slogx.FromContext(r.Context()).Debug("rejected request body", slog.Any("error", err))
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

// currentUser returns the subject injected by AuthnMiddleware.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok || userID == "" {
		authsdk.ErrUnauthorized.WriteError(w)
		return "", false
	}
	return userID, true
}

var (
	statusOK       = authsdk.StatusResponse{Status: "ok"}
	statusAccepted = authsdk.StatusResponse{Status: "accepted"}
)

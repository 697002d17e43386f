package http

import (
	"net/http"

	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/pkg/authsdk"
	"github.com/aussiebroadwan/authguard/pkg/httpx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

// TwoFactorHandler serves authenticator enrollment and removal for the
// signed-in user.
type TwoFactorHandler struct {
	Auth *service.AuthService
}

// HandleSetup handles POST /v1/2fa/setup. The body is optional.
//
//	@Summary		Start authenticator enrollment
//	@Description	Returns the secret, a provisioning URI and a QR code. The secret is shown once.
//	@Tags			TwoFactor
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorSetupRequest	false	"Device label"
//	@Success		201		{object}	authsdk.TwoFactorSetupResponse
//	@Failure		401		{object}	authsdk.APIError	"Unauthorized"
//	@Failure		409		{object}	authsdk.APIError	"Two-factor already enabled"
//	@Security		BearerAuth
//	@Router			/v1/2fa/setup [post]
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorSetupRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	e, err := h.Auth.SetupTwoFactor(r.Context(), userID, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Debug("two-factor enrollment started", "user_id", userID)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.TwoFactorSetupResponse{
		DeviceID:        e.Device.ID,
		Label:           e.Device.Label,
		Secret:          e.Secret,
		ProvisioningURI: e.ProvisioningURI,
		QRCode:          e.QRCode,
	})
}

// HandleVerify handles POST /v1/2fa/verify.
//
//	@Summary		Confirm the pending authenticator
//	@Tags			TwoFactor
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorVerifyRequest	true	"Current code"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		401		{object}	authsdk.APIError	"Wrong code"
//	@Failure		404		{object}	authsdk.APIError	"No pending device"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Security		BearerAuth
//	@Router			/v1/2fa/verify [post]
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Auth.VerifyTwoFactor(r.Context(), service.VerifyTwoFactorRequest{
		UserID:   userID,
		Code:     req.Code,
		SourceIP: httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusOK)
}

// HandleDisable handles POST /v1/2fa/disable.
//
//	@Summary		Disable two-factor
//	@Description	Requires the password and a current code. Every refresh token of the account is revoked.
//	@Tags			TwoFactor
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorDisableRequest	true	"Both factors"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		401		{object}	authsdk.APIError	"Wrong password or code"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Security		BearerAuth
//	@Router			/v1/2fa/disable [post]
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorDisableRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Auth.DisableTwoFactor(r.Context(), service.DisableTwoFactorRequest{
		UserID:   userID,
		Password: req.Password,
		Code:     req.Code,
		SourceIP: httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusOK)
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/pkg/authsdk"
	"github.com/aussiebroadwan/authguard/pkg/httpx"
)

// AccountHandler serves registration, sign in, password and email flows.
type AccountHandler struct {
	Auth *service.AuthService
}

func tokenResponse(s domain.Session) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		RefreshToken: s.RefreshToken,
		AMR:          s.AMR,
	}
}

// HandleRegister handles POST /v1/register.
//
//	@Summary		Register an account
//	@Description	Create an account and email a verification link
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.APIError	"Validation error"
//	@Failure		409		{object}	authsdk.APIError	"Username or email taken"
//	@Failure		500		{object}	authsdk.APIError
//	@Router			/v1/register [post]
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.Auth.Register(r.Context(), service.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		SourceIP: httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		EmailVerified:    u.EmailVerified,
		TwoFactorEnabled: u.TwoFactorEnabled,
	})
}

// HandleLogin handles POST /v1/login. Accounts with two-factor enabled get
// a 409 mfa_required body carrying the challenge token.
//
//	@Summary		Sign in with a password
//	@Description	Returns a session, or 409 mfa_required with a challenge token when two-factor is enabled
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		401		{object}	authsdk.APIError			"Invalid credentials"
//	@Failure		409		{object}	authsdk.MFARequiredError	"Second factor required"
//	@Failure		429		{object}	authsdk.APIError			"Throttled"
//	@Router			/v1/login [post]
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.Auth.Login(r.Context(), service.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		SourceIP: httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if res.Challenge != nil {
		(&authsdk.MFARequiredError{
			ChallengeToken: res.Challenge.Token,
			ExpiresIn:      res.Challenge.ExpiresIn,
			Methods:        res.Challenge.Methods,
		}).WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(*res.Session))
}

// HandleLoginSecondFactor handles POST /v1/login/2fa.
//
//	@Summary		Complete a two-factor sign in
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SecondFactorRequest	true	"Challenge and code"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"Unknown or expired challenge"
//	@Failure		401		{object}	authsdk.APIError	"Wrong code"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Router			/v1/login/2fa [post]
func (h *AccountHandler) HandleLoginSecondFactor(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SecondFactorRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.Auth.CompleteLogin(r.Context(), service.SecondFactorRequest{
		ChallengeToken: req.ChallengeToken,
		Code:           req.Code,
		SourceIP:       httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(sess))
}

// HandlePasswordResetRequest handles POST /v1/password/reset-request. The
// answer is the same for known and unknown addresses.
//
//	@Summary		Request a password reset link
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordResetRequest	true	"Account email"
//	@Success		202		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.APIError	"Validation error"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Router			/v1/password/reset-request [post]
func (h *AccountHandler) HandlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordResetRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Auth.RequestPasswordReset(r.Context(), service.PasswordResetRequest{
		Email:    req.Email,
		SourceIP: httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, statusAccepted)
}

// HandlePasswordReset handles POST /v1/password/reset.
//
//	@Summary		Reset a password
//	@Description	Redeem a reset token. Every refresh token of the account is revoked.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordResetConfirmRequest	true	"Token and new password"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.APIError	"Invalid token or password"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Router			/v1/password/reset [post]
func (h *AccountHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordResetConfirmRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Auth.ResetPassword(r.Context(), service.ResetPasswordRequest{
		Token:       req.Token,
		NewPassword: req.NewPassword,
		SourceIP:    httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusOK)
}

// HandlePasswordChange handles POST /v1/password/change.
//
//	@Summary		Change the password
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordChangeRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.APIError	"Validation error"
//	@Failure		401		{object}	authsdk.APIError	"Wrong current password"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Security		BearerAuth
//	@Router			/v1/password/change [post]
func (h *AccountHandler) HandlePasswordChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.PasswordChangeRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Auth.ChangePassword(r.Context(), service.ChangePasswordRequest{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
		SourceIP:    httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusOK)
}

// HandleEmailVerify handles POST /v1/email/verify.
//
//	@Summary		Verify an email address
//	@Tags			Email
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailVerifyRequest	true	"Token from the emailed link"
//	@Success		200		{object}	authsdk.StatusResponse
//	@Failure		400		{object}	authsdk.APIError	"Invalid token"
//	@Failure		429		{object}	authsdk.APIError	"Throttled"
//	@Router			/v1/email/verify [post]
func (h *AccountHandler) HandleEmailVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.Auth.VerifyEmail(r.Context(), service.VerifyEmailRequest{
		Token:    req.Token,
		SourceIP: httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, statusOK)
}

// HandleEmailResend handles POST /v1/email/resend.
//
//	@Summary		Resend the verification email
//	@Tags			Email
//	@Produce		json
//	@Success		202	{object}	authsdk.StatusResponse
//	@Failure		401	{object}	authsdk.APIError	"Unauthorized"
//	@Failure		409	{object}	authsdk.APIError	"Already verified"
//	@Failure		429	{object}	authsdk.APIError	"Throttled"
//	@Security		BearerAuth
//	@Router			/v1/email/resend [post]
func (h *AccountHandler) HandleEmailResend(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.Auth.RequestEmailVerification(r.Context(), userID, httpx.ClientIP(r)); err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, statusAccepted)
}

// HandleTokenRefresh handles POST /v1/token/refresh.
//
//	@Summary		Refresh a session
//	@Description	Exchange a refresh token for a new access token. The refresh token rotates; the presented value stops working.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Current refresh token"
//	@Success		200		{object}	authsdk.TokenResponse
//	@Failure		400		{object}	authsdk.APIError	"Unknown, reused or expired refresh token"
//	@Router			/v1/token/refresh [post]
func (h *AccountHandler) HandleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := h.Auth.RefreshSession(r.Context(), service.RefreshRequest{
		RefreshToken: req.RefreshToken,
		SourceIP:     httpx.ClientIP(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(sess))
}

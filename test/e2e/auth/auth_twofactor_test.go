//go:build e2e

package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/authguard/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestTwoFactorLifecycle(t *testing.T) {
	baseURL := setupAuthContainer(t, nil)
	client := newClient(baseURL, "198.51.100.10")

	session := registerAndLogin(t, client, "alice")
	require.Contains(t, session.AMR(), "pwd")

	setup, err := session.SetupTwoFactor(t.Context(), "phone")
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	require.Contains(t, setup.QRCode, "data:image/png;base64,")

	require.NoError(t, session.VerifyTwoFactor(t.Context(), currentCode(t, setup.Secret)))

	// A second enrollment is refused while a device is confirmed
	_, err = session.SetupTwoFactor(t.Context(), "tablet")
	requireAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeConflict)

	// Password alone no longer yields a session
	_, err = client.Login(t.Context(), "alice", testPassword)
	var challenge *authsdk.MFARequiredError
	require.True(t, errors.As(err, &challenge), "expected MFA challenge, got %v", err)
	require.Contains(t, challenge.Methods, "totp")

	tok, err := client.CompleteLogin(t.Context(), challenge, currentCode(t, setup.Secret))
	require.NoError(t, err)
	require.Contains(t, tok.AMR, "mfa")

	// Disabling needs both factors
	mfaSession := client.SessionFromToken(tok)
	err = mfaSession.DisableTwoFactor(t.Context(), "wrong password", currentCode(t, setup.Secret))
	requireAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	require.NoError(t, mfaSession.DisableTwoFactor(t.Context(), testPassword, currentCode(t, setup.Secret)))

	_, err = client.Login(t.Context(), "alice", testPassword)
	require.NoError(t, err)
}

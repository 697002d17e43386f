/*
Package authsdk provides a client SDK for the authguard authentication
service, along with the wire types and error bodies the server writes.

# SDKClient vs Session

  - SDKClient: public operations (register, login, password reset, email
    verification, token refresh, health) and the factory for Sessions
  - Session: operations on behalf of a signed-in user (two-factor setup and
    removal, password change, verification resend)

Sign in:

	client := authsdk.NewSDKClient("https://auth.example.com")

	session, err := client.AuthenticateWithPassword(ctx, "alice", password)
	var challenge *authsdk.MFARequiredError
	if errors.As(err, &challenge) {
		tok, err := client.CompleteLogin(ctx, challenge, code)
		if err != nil {
			return err
		}
		session = client.SessionFromToken(tok)
	}

Sessions refresh an expired access token on their own. The refresh token
rotates on every use, so persist session.RefreshToken() after requests and
resume later with:

	session, err := client.AuthenticateWithRefreshToken(ctx, refreshToken)

Enroll an authenticator:

	setup, err := session.SetupTwoFactor(ctx, "phone")
	// show setup.QRCode, then confirm with the first code from the app
	err = session.VerifyTwoFactor(ctx, code)

# Errors

Failed requests return *APIError. Throttled requests carry the delay in
RetryAfter:

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeThrottled {
		time.Sleep(time.Duration(apiErr.RetryAfter) * time.Second)
	}
*/
package authsdk

package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/mail"
	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func login(h *harness, username, password, ip string) (service.LoginResult, error) {
	return h.auth.Login(context.Background(), service.LoginRequest{
		Username: username,
		Password: password,
		SourceIP: ip,
	})
}

func TestRegister(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	u := h.register(t, "alice", "correct horse")
	require.Equal(t, "alice@example.com", u.Email)
	require.False(t, u.EmailVerified)
	require.True(t, strings.HasPrefix(u.PasswordHash, "$argon2id$"))

	sent := h.mailer.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, mail.TagEmailVerification, sent[0].Tag)
	require.Contains(t, sent[0].Text, "https://app.test/verify-email?token=")

	activities, err := h.store.Activities().ListUserActivities(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.Equal(t, domain.ActivityRegistration, activities[0].Kind)

	_, err = h.auth.Register(ctx, service.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "correct horse", SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrAccountExists)
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestRegister_MailFailureKeepsAccount(t *testing.T) {
	h := newHarness(t, nil)
	h.mailer.err = errors.New("smtp down")

	u := h.register(t, "alice", "correct horse")

	_, err := h.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   service.RegisterRequest
		field string
	}{
		{"short username", service.RegisterRequest{Username: "al", Email: "a@example.com", Password: "correct horse"}, "username"},
		{"bad username chars", service.RegisterRequest{Username: "alice smith", Email: "a@example.com", Password: "correct horse"}, "username"},
		{"missing email", service.RegisterRequest{Username: "alice", Password: "correct horse"}, "email"},
		{"bad email", service.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "correct horse"}, "email"},
		{"short password", service.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "short"}, "password"},
		{"numeric password", service.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "1234567890"}, "password"},
		{"long password", service.RegisterRequest{Username: "alice", Email: "a@example.com", Password: strings.Repeat("a", 257)}, "password"},
	}

	h := newHarness(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.auth.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, service.ErrValidation)

			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLogin_PasswordOnly(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")

	res, err := login(h, "alice", "correct horse", testIP)
	require.NoError(t, err)
	require.Nil(t, res.Challenge)
	require.NotNil(t, res.Session)
	require.Equal(t, "Bearer", res.Session.TokenType)
	require.Equal(t, int64(jwtx.DefaultSessionTTL/time.Second), res.Session.ExpiresIn)

	claims, err := h.verifier.Verify(res.Session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.True(t, claims.HasAMR(jwtx.AMRPassword))
	require.False(t, claims.HasAMR(jwtx.AMRMFA))

	stored, err := h.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, testIP, stored.LastLoginIP)
}

func TestLogin_Failures(t *testing.T) {
	h := newHarness(t, nil)
	h.register(t, "alice", "correct horse")

	_, err := login(h, "alice", "wrong horse", testIP)
	require.ErrorIs(t, err, service.ErrAuthFailure)

	_, err = login(h, "mallory", "correct horse", testIP)
	require.ErrorIs(t, err, service.ErrAuthFailure)
	require.Equal(t, service.ErrInvalidCredentials.Error(), err.Error())
}

func TestLogin_Throttle(t *testing.T) {
	h := newHarness(t, nil)
	h.register(t, "alice", "correct horse")

	for i := range 5 {
		_, err := login(h, "alice", "wrong horse", testIP)
		require.ErrorIs(t, err, service.ErrAuthFailure, "attempt %d", i+1)
	}

	// the right password does not help once the source is throttled
	_, err := login(h, "alice", "correct horse", testIP)
	require.ErrorIs(t, err, service.ErrThrottled)
	var te *service.ThrottledError
	require.ErrorAs(t, err, &te)
	require.Equal(t, time.Hour, te.RetryAfter)

	res, err := login(h, "alice", "correct horse", "198.51.100.1")
	require.NoError(t, err)
	require.NotNil(t, res.Session)
}

func TestLogin_ValidationNotRecorded(t *testing.T) {
	h := newHarness(t, nil)

	for range 10 {
		_, err := login(h, "alice", "", testIP)
		require.ErrorIs(t, err, service.ErrValidation)
	}

	d, err := h.attempts.Check(context.Background(), domain.ScopeLogin, testIP)
	require.NoError(t, err)
	require.Zero(t, d.Count)
}

func TestTwoFactor_LoginRequiresChallenge(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")
	secret := h.enableTwoFactor(t, u)

	stored, err := h.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.TwoFactorEnabled)

	res, err := login(h, "alice", "correct horse", testIP)
	require.NoError(t, err)
	require.Nil(t, res.Session)
	require.NotNil(t, res.Challenge)
	require.Equal(t, []string{service.MethodTOTP}, res.Challenge.Methods)
	require.Equal(t, int64(300), res.Challenge.ExpiresIn)

	_, err = h.auth.CompleteLogin(ctx, service.SecondFactorRequest{
		ChallengeToken: res.Challenge.Token, Code: h.wrongCode(t, secret), SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrInvalidCode)

	sess, err := h.auth.CompleteLogin(ctx, service.SecondFactorRequest{
		ChallengeToken: res.Challenge.Token, Code: h.code(t, secret), SourceIP: testIP,
	})
	require.NoError(t, err)

	claims, err := h.verifier.Verify(sess.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.HasAMR(jwtx.AMRMFA))

	// a completed challenge cannot be replayed
	_, err = h.auth.CompleteLogin(ctx, service.SecondFactorRequest{
		ChallengeToken: res.Challenge.Token, Code: h.code(t, secret), SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTwoFactor_ChallengeExhausted(t *testing.T) {
	limits := throttle.DefaultLimits()
	limits[domain.ScopeTwoFactor] = throttle.Limit{Max: 100, Window: 15 * time.Minute}
	h := newHarness(t, limits)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")
	secret := h.enableTwoFactor(t, u)

	res, err := login(h, "alice", "correct horse", testIP)
	require.NoError(t, err)

	for range service.DefaultMaxChallengeAttempts {
		_, err := h.auth.CompleteLogin(ctx, service.SecondFactorRequest{
			ChallengeToken: res.Challenge.Token, Code: h.wrongCode(t, secret), SourceIP: testIP,
		})
		require.ErrorIs(t, err, service.ErrInvalidCode)
	}

	_, err = h.auth.CompleteLogin(ctx, service.SecondFactorRequest{
		ChallengeToken: res.Challenge.Token, Code: h.code(t, secret), SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTwoFactor_ChallengeExpires(t *testing.T) {
	h := newHarness(t, nil)
	u := h.register(t, "alice", "correct horse")
	secret := h.enableTwoFactor(t, u)

	res, err := login(h, "alice", "correct horse", testIP)
	require.NoError(t, err)

	h.clock.Advance(service.DefaultChallengeTTL)

	_, err = h.auth.CompleteLogin(context.Background(), service.SecondFactorRequest{
		ChallengeToken: res.Challenge.Token, Code: h.code(t, secret), SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTwoFactor_Verify(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")
	h.clock.Advance(time.Second)

	err := h.auth.VerifyTwoFactor(ctx, service.VerifyTwoFactorRequest{UserID: u.ID, Code: "123456", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrNoPendingEnrollment)

	e, err := h.auth.SetupTwoFactor(ctx, u.ID, "phone")
	require.NoError(t, err)

	err = h.auth.VerifyTwoFactor(ctx, service.VerifyTwoFactorRequest{UserID: u.ID, Code: "12 34", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrValidation)

	err = h.auth.VerifyTwoFactor(ctx, service.VerifyTwoFactorRequest{UserID: u.ID, Code: h.wrongCode(t, e.Secret), SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrInvalidCode)

	// authenticator apps show codes in two groups
	code := h.code(t, e.Secret)
	require.NoError(t, h.auth.VerifyTwoFactor(ctx, service.VerifyTwoFactorRequest{
		UserID: u.ID, Code: code[:3] + " " + code[3:], SourceIP: testIP,
	}))

	err = h.auth.VerifyTwoFactor(ctx, service.VerifyTwoFactorRequest{UserID: u.ID, Code: code, SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrTwoFactorAlreadyEnabled)

	_, err = h.auth.SetupTwoFactor(ctx, u.ID, "tablet")
	require.ErrorIs(t, err, service.ErrTwoFactorAlreadyEnabled)

	activities, err := h.store.Activities().ListUserActivities(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Equal(t, domain.ActivityTwoFactorEnabled, activities[0].Kind)
}

func TestTwoFactor_DisableRequiresBothFactors(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")
	secret := h.enableTwoFactor(t, u)

	tests := []struct {
		name     string
		password string
		code     func() string
	}{
		{"wrong password", "wrong horse", func() string { return h.code(t, secret) }},
		{"wrong code", "correct horse", func() string { return h.wrongCode(t, secret) }},
		{"both wrong", "wrong horse", func() string { return h.wrongCode(t, secret) }},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.auth.DisableTwoFactor(ctx, service.DisableTwoFactorRequest{
				UserID: u.ID, Password: tt.password, Code: tt.code(), SourceIP: testIP,
			})
			require.ErrorIs(t, err, service.ErrAuthFailure)
			messages = append(messages, err.Error())

			_, err = h.devices.ConfirmedDevice(ctx, u.ID)
			require.NoError(t, err)
			stored, err := h.store.Users().GetUserByID(ctx, u.ID)
			require.NoError(t, err)
			require.True(t, stored.TwoFactorEnabled)
		})
	}
	// no hint about which factor was wrong
	require.Equal(t, messages[0], messages[1])

	h.clock.Advance(15*time.Minute + time.Second)
	require.NoError(t, h.auth.DisableTwoFactor(ctx, service.DisableTwoFactorRequest{
		UserID: u.ID, Password: "correct horse", Code: h.code(t, secret), SourceIP: testIP,
	}))

	_, err := h.devices.ConfirmedDevice(ctx, u.ID)
	require.ErrorIs(t, err, service.ErrDeviceNotFound)
	stored, err := h.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, stored.TwoFactorEnabled)

	res, err := login(h, "alice", "correct horse", testIP)
	require.NoError(t, err)
	require.NotNil(t, res.Session)

	err = h.auth.DisableTwoFactor(ctx, service.DisableTwoFactorRequest{
		UserID: u.ID, Password: "correct horse", Code: "123456", SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrTwoFactorNotEnabled)
}

func TestPasswordReset(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")

	t.Run("unknown email is silent", func(t *testing.T) {
		before := len(h.mailer.Sent())
		require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{
			Email: "nobody@example.com", SourceIP: "198.51.100.1",
		}))
		require.Len(t, h.mailer.Sent(), before)
	})

	require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: u.Email, SourceIP: testIP}))
	stale := h.mailer.lastToken(t, mail.TagPasswordReset)
	require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: u.Email, SourceIP: testIP}))
	token := h.mailer.lastToken(t, mail.TagPasswordReset)

	err := h.auth.ResetPassword(ctx, service.ResetPasswordRequest{Token: stale, NewPassword: "battery staple", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrInvalidToken)

	err = h.auth.ResetPassword(ctx, service.ResetPasswordRequest{Token: token, NewPassword: "short", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, h.auth.ResetPassword(ctx, service.ResetPasswordRequest{
		Token: token, NewPassword: "battery staple", SourceIP: testIP,
	}))

	err = h.auth.ResetPassword(ctx, service.ResetPasswordRequest{Token: token, NewPassword: "battery staple", SourceIP: "198.51.100.1"})
	require.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = login(h, "alice", "correct horse", "192.0.2.10")
	require.ErrorIs(t, err, service.ErrAuthFailure)
	res, err := login(h, "alice", "battery staple", "192.0.2.10")
	require.NoError(t, err)
	require.NotNil(t, res.Session)
}

func TestPasswordReset_Throttle(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: "x@example.com", SourceIP: testIP}))
	}
	err := h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: "x@example.com", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrThrottled)
}

func TestPasswordReset_RedeemAfterRequestBudgetSpent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")

	require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: u.Email, SourceIP: testIP}))
	stale := h.mailer.lastToken(t, mail.TagPasswordReset)
	require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: u.Email, SourceIP: testIP}))
	require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: u.Email, SourceIP: testIP}))
	token := h.mailer.lastToken(t, mail.TagPasswordReset)

	err := h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: u.Email, SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrThrottled)

	err = h.auth.ResetPassword(ctx, service.ResetPasswordRequest{Token: stale, NewPassword: "battery staple", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrInvalidToken)

	require.NoError(t, h.auth.ResetPassword(ctx, service.ResetPasswordRequest{
		Token: token, NewPassword: "battery staple", SourceIP: testIP,
	}))
}

func TestPasswordReset_RedemptionThrottle(t *testing.T) {
	h := newHarness(t, throttle.Limits{
		domain.ScopePasswordReset:   {Max: 3, Window: time.Hour},
		domain.ScopeResetRedemption: {Max: 2, Window: time.Hour},
	})
	ctx := context.Background()

	for range 2 {
		err := h.auth.ResetPassword(ctx, service.ResetPasswordRequest{Token: "guess", NewPassword: "battery staple", SourceIP: testIP})
		require.ErrorIs(t, err, service.ErrInvalidToken)
	}
	err := h.auth.ResetPassword(ctx, service.ResetPasswordRequest{Token: "guess", NewPassword: "battery staple", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrThrottled)

	// requesting a link is still possible
	require.NoError(t, h.auth.RequestPasswordReset(ctx, service.PasswordResetRequest{Email: "x@example.com", SourceIP: testIP}))
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")

	err := h.auth.ChangePassword(ctx, service.ChangePasswordRequest{
		UserID: u.ID, OldPassword: "correct horse", NewPassword: "correct horse", SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrValidation)

	err = h.auth.ChangePassword(ctx, service.ChangePasswordRequest{
		UserID: u.ID, OldPassword: "wrong horse", NewPassword: "battery staple", SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrAuthFailure)

	require.NoError(t, h.auth.ChangePassword(ctx, service.ChangePasswordRequest{
		UserID: u.ID, OldPassword: "correct horse", NewPassword: "battery staple", SourceIP: testIP,
	}))

	res, err := login(h, "alice", "battery staple", testIP)
	require.NoError(t, err)
	require.NotNil(t, res.Session)
}

func TestChangePassword_UnknownUserCountsAsFailure(t *testing.T) {
	h := newHarness(t, throttle.Limits{domain.ScopeLogin: {Max: 1, Window: time.Hour}})
	ctx := context.Background()

	err := h.auth.ChangePassword(ctx, service.ChangePasswordRequest{
		UserID: "01JDELETEDUSER0000000000000", OldPassword: "correct horse", NewPassword: "battery staple", SourceIP: testIP,
	})
	require.ErrorIs(t, err, service.ErrUserNotFound)

	n, _, err := h.store.Attempts().CountAttemptsSince(ctx, domain.ScopeLogin, testIP, h.clock.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// the failure spent the source's login budget
	h.register(t, "alice", "correct horse")
	_, err = login(h, "alice", "correct horse", testIP)
	require.ErrorIs(t, err, service.ErrThrottled)
}

func TestEmailVerification(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	u := h.register(t, "alice", "correct horse")
	first := h.mailer.lastToken(t, mail.TagEmailVerification)

	require.NoError(t, h.auth.RequestEmailVerification(ctx, u.ID, testIP))
	second := h.mailer.lastToken(t, mail.TagEmailVerification)

	err := h.auth.VerifyEmail(ctx, service.VerifyEmailRequest{Token: first, SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrInvalidToken)

	require.NoError(t, h.auth.VerifyEmail(ctx, service.VerifyEmailRequest{Token: second, SourceIP: testIP}))

	stored, err := h.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.EmailVerified)

	err = h.auth.VerifyEmail(ctx, service.VerifyEmailRequest{Token: second, SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrInvalidToken)

	err = h.auth.RequestEmailVerification(ctx, u.ID, testIP)
	require.ErrorIs(t, err, service.ErrEmailAlreadyVerified)

	err = h.auth.VerifyEmail(ctx, service.VerifyEmailRequest{Token: "", SourceIP: testIP})
	require.ErrorIs(t, err, service.ErrValidation)
}

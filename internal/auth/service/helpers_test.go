package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/mail"
	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/aussiebroadwan/authguard/pkg/cryptox"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
	"github.com/aussiebroadwan/authguard/pkg/otpx"
	"github.com/stretchr/testify/require"
)

const testIP = "203.0.113.7"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

var tokenParam = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

// lastToken pulls the token out of the most recent message with tag.
func (m *fakeMailer) lastToken(t *testing.T, tag string) string {
	t.Helper()
	sent := m.Sent()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].Tag != tag {
			continue
		}
		match := tokenParam.FindStringSubmatch(sent[i].Text)
		require.Len(t, match, 2, "no token in %q", sent[i].Text)
		return match[1]
	}
	t.Fatalf("no %s message sent", tag)
	return ""
}

// failingWindow counts from the attempt log but cannot observe.
type failingWindow struct {
	throttle.Window
}

func (failingWindow) Observe(context.Context, domain.Scope, string, time.Time) error {
	return errors.New("window unavailable")
}

type harness struct {
	store    *sqlite.Store
	clock    *fakeClock
	mailer   *fakeMailer
	verifier jwtx.Verifier
	devices  *service.DeviceRegistry
	tokens   *service.TokenStore
	attempts *service.AttemptTracker
	auth     *service.AuthService
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newHarness(t *testing.T, limits throttle.Limits) *harness {
	t.Helper()

	s := newTestStore(t)
	clk := newFakeClock()

	keyPEM, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	key, err := cryptox.ParseEd25519Key(keyPEM)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test", key)
	require.NoError(t, err)

	devices := &service.DeviceRegistry{Store: s, Engine: otpx.Engine{}, Issuer: "AuthGuard", Now: clk.Now}
	tokens := &service.TokenStore{Store: s, Now: clk.Now}
	attempts := service.NewAttemptTracker(s, nil, limits)
	attempts.Now = clk.Now
	mailer := &fakeMailer{}

	return &harness{
		store:    s,
		clock:    clk,
		mailer:   mailer,
		verifier: jwtx.NewVerifierEdDSA("test", signer.PublicKey(), "https://auth.test", time.Minute),
		devices:  devices,
		tokens:   tokens,
		attempts: attempts,
		auth: &service.AuthService{
			Store:    s,
			Devices:  devices,
			Tokens:   tokens,
			Attempts: attempts,
			Hasher: &cryptox.Argon2Hasher{
				Params: cryptox.Argon2Params{Memory: 64, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16},
			},
			Mailer:      mailer,
			Sessions:    &service.JWTSessionIssuer{Signer: signer, Issuer: "https://auth.test"},
			FrontendURL: "https://app.test",
			Now:         clk.Now,
		},
	}
}

func (h *harness) register(t *testing.T, username, password string) domain.User {
	t.Helper()

	u, err := h.auth.Register(context.Background(), service.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		SourceIP: testIP,
	})
	require.NoError(t, err)
	return u
}

// code returns the current TOTP for secret on the harness clock.
func (h *harness) code(t *testing.T, secret string) string {
	t.Helper()

	c, err := otpx.Engine{}.TOTP(secret, h.clock.Now())
	require.NoError(t, err)
	return otpx.FormatCode(c)
}

// wrongCode returns a well-formed code that is not accepted at the
// current time.
func (h *harness) wrongCode(t *testing.T, secret string) string {
	t.Helper()

	e := otpx.Engine{}
	for candidate := uint32(0); ; candidate++ {
		code := otpx.FormatCode(candidate)
		ok, err := e.Verify(secret, code, h.clock.Now())
		require.NoError(t, err)
		if !ok {
			return code
		}
	}
}

// enableTwoFactor enrolls and confirms a device, returning its secret.
func (h *harness) enableTwoFactor(t *testing.T, u domain.User) string {
	t.Helper()
	ctx := context.Background()

	enrollment, err := h.auth.SetupTwoFactor(ctx, u.ID, "phone")
	require.NoError(t, err)
	require.NoError(t, h.auth.VerifyTwoFactor(ctx, service.VerifyTwoFactorRequest{
		UserID:   u.ID,
		Code:     h.code(t, enrollment.Secret),
		SourceIP: testIP,
	}))
	return enrollment.Secret
}

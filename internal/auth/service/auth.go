package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/cryptox"
	"github.com/aussiebroadwan/authguard/pkg/idx"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
)

const (
	DefaultChallengeTTL         = 5 * time.Minute
	DefaultMaxChallengeAttempts = 5

	// MethodTOTP is the only second factor offered to a challenged login.
	MethodTOTP = "totp"
)

var (
	// ErrInvalidCredentials is returned for every rejected password or
	// second factor, whichever part was wrong.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthFailure)
	ErrInvalidCode        = fmt.Errorf("%w: invalid code", ErrAuthFailure)
)

// AuthService runs the account flows. Each flow validates its input, checks
// the throttle for its scope, performs the transition and records the
// attempt before returning.
type AuthService struct {
	Store    store.Store
	Devices  *DeviceRegistry
	Tokens   *TokenStore
	Attempts *AttemptTracker
	Hasher   PasswordHasher
	Mailer   Mailer
	Sessions SessionIssuer

	// FrontendURL is the base for links sent by email.
	FrontendURL string

	ChallengeTTL         time.Duration
	MaxChallengeAttempts int

	// RefreshTTL is the lifetime of each refresh token. Zero means
	// DefaultRefreshTTL.
	RefreshTTL time.Duration

	Now func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func (s *AuthService) now() time.Time { return clock(s.Now) }

func (s *AuthService) challengeTTL() time.Duration {
	if s.ChallengeTTL > 0 {
		return s.ChallengeTTL
	}
	return DefaultChallengeTTL
}

func (s *AuthService) maxChallengeAttempts() int {
	if s.MaxChallengeAttempts > 0 {
		return s.MaxChallengeAttempts
	}
	return DefaultMaxChallengeAttempts
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	SourceIP string
}

// Register creates an account and mails an email verification link.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	l := slogx.FromContext(ctx)

	req.Username = strings.TrimSpace(req.Username)
	if err := validateUsername(req.Username); err != nil {
		return domain.User{}, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.User{}, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, fatal("hash password", err)
	}

	now := s.now()
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrAccountExists
		}
		return domain.User{}, fatal("create user", err)
	}

	l.Info("user registered", slog.String("user_id", u.ID))
	s.activity(ctx, u.ID, domain.ActivityRegistration, req.SourceIP, "")

	// The account exists at this point; a failed mail can be retried
	// through the resend flow.
	if err := s.sendVerification(ctx, u); err != nil {
		l.Error("failed to send verification email", slog.String("user_id", u.ID), slog.Any("error", err))
	}
	return u, nil
}

// LoginRequest is a username and password sign-in.
type LoginRequest struct {
	Username string
	Password string
	SourceIP string
}

// SecondFactorChallenge is handed back instead of a session when the user
// has a confirmed device. Token is shown to the client exactly once.
type SecondFactorChallenge struct {
	Token     string   `json:"challenge_token"`
	ExpiresIn int64    `json:"expires_in"`
	Methods   []string `json:"methods"`
}

// LoginResult holds exactly one of Session or Challenge.
type LoginResult struct {
	Session   *domain.Session
	Challenge *SecondFactorChallenge
}

// Login checks a password. Users with two-factor enabled get a challenge
// that must be completed with CompleteLogin before any session exists.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	req.Username = strings.TrimSpace(req.Username)
	if err := required("username", req.Username); err != nil {
		return LoginResult{}, err
	}
	if err := required("password", req.Password); err != nil {
		return LoginResult{}, err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeLogin, req.SourceIP); err != nil {
		return LoginResult{}, err
	}

	u, err := s.Store.Users().GetUserByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, fatal("get user", err)
		}
		// Spend the same hashing time as a real check
		s.burnHash(req.Password)
		s.Attempts.Record(ctx, domain.ScopeLogin, req.SourceIP, nil, false)
		l.Info("login failed", slog.String("reason", "unknown user"))
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := s.checkPassword(ctx, u, req.Password); err != nil {
		s.Attempts.Record(ctx, domain.ScopeLogin, req.SourceIP, &u.ID, false)
		return LoginResult{}, err
	}
	s.Attempts.Record(ctx, domain.ScopeLogin, req.SourceIP, &u.ID, true)

	_, err = s.Devices.ConfirmedDevice(ctx, u.ID)
	switch {
	case err == nil:
		ch, err := s.openChallenge(ctx, u, req.SourceIP)
		if err != nil {
			return LoginResult{}, err
		}
		l.Info("login requires second factor", slog.String("user_id", u.ID))
		return LoginResult{Challenge: ch}, nil
	case !errors.Is(err, ErrDeviceNotFound):
		return LoginResult{}, err
	}

	sess, err := s.startSession(ctx, u, req.SourceIP, []string{jwtx.AMRPassword})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Session: &sess}, nil
}

func (s *AuthService) openChallenge(ctx context.Context, u domain.User, sourceIP string) (*SecondFactorChallenge, error) {
	token, err := cryptox.NewOpaqueToken()
	if err != nil {
		return nil, fatal("generate challenge", err)
	}

	now := s.now()
	ttl := s.challengeTTL()
	err = s.Store.MFAChallenges().CreateMFAChallenge(ctx, domain.MFAChallenge{
		ID:        token.Fingerprint,
		UserID:    u.ID,
		SourceIP:  sourceIP,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return nil, fatal("create challenge", err)
	}

	return &SecondFactorChallenge{
		Token:     token.Value,
		ExpiresIn: int64(ttl / time.Second),
		Methods:   []string{MethodTOTP},
	}, nil
}

// SecondFactorRequest completes a challenged login.
type SecondFactorRequest struct {
	ChallengeToken string
	Code           string
	SourceIP       string
}

// CompleteLogin redeems a login challenge with a code from the user's
// confirmed device. A challenge survives a limited number of wrong codes.
func (s *AuthService) CompleteLogin(ctx context.Context, req SecondFactorRequest) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	if err := required("challenge_token", req.ChallengeToken); err != nil {
		return domain.Session{}, err
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return domain.Session{}, err
	}

	if err := s.Attempts.Allow(ctx, domain.ScopeTwoFactor, req.SourceIP); err != nil {
		return domain.Session{}, err
	}

	id := cryptox.FingerprintToken(strings.TrimSpace(req.ChallengeToken))
	c, err := s.Store.MFAChallenges().GetMFAChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, nil, false)
			return domain.Session{}, ErrInvalidToken
		}
		return domain.Session{}, fatal("get challenge", err)
	}

	if c.Expired(s.now()) || c.Attempts >= s.maxChallengeAttempts() {
		s.dropChallenge(ctx, c.ID)
		s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &c.UserID, false)
		return domain.Session{}, ErrInvalidToken
	}

	d, err := s.Devices.ConfirmedDevice(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			// Two-factor was disabled while the challenge was open
			s.dropChallenge(ctx, c.ID)
			s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &c.UserID, false)
			return domain.Session{}, ErrInvalidToken
		}
		return domain.Session{}, err
	}

	ok, err := s.Devices.Engine.Verify(d.Secret, code, s.now())
	if err != nil {
		return domain.Session{}, fatal("verify code", err)
	}
	if !ok {
		updated, err := s.Store.MFAChallenges().IncrementMFAChallengeAttempts(ctx, c.ID)
		if err != nil {
			l.Error("failed to count challenge attempt", slog.Any("error", err))
		} else if updated.Attempts >= s.maxChallengeAttempts() {
			l.Warn("challenge exhausted", slog.String("user_id", c.UserID), slog.Int("attempts", updated.Attempts))
			s.dropChallenge(ctx, c.ID)
		}
		s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &c.UserID, false)
		return domain.Session{}, ErrInvalidCode
	}

	// Deleting the challenge is what makes it single-use
	if err := s.Store.MFAChallenges().DeleteMFAChallenge(ctx, c.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &c.UserID, false)
			return domain.Session{}, ErrInvalidToken
		}
		return domain.Session{}, fatal("delete challenge", err)
	}
	s.Attempts.Record(ctx, domain.ScopeTwoFactor, req.SourceIP, &c.UserID, true)

	if err := s.Devices.Touch(ctx, d.ID); err != nil {
		l.Warn("failed to touch device", slog.String("device_id", d.ID), slog.Any("error", err))
	}

	u, err := s.user(ctx, c.UserID)
	if err != nil {
		return domain.Session{}, err
	}
	return s.startSession(ctx, u, req.SourceIP, []string{jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA})
}

func (s *AuthService) dropChallenge(ctx context.Context, id string) {
	if err := s.Store.MFAChallenges().DeleteMFAChallenge(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to delete challenge", slog.Any("error", err))
	}
}

func (s *AuthService) startSession(ctx context.Context, u domain.User, sourceIP string, amr []string) (domain.Session, error) {
	l := slogx.FromContext(ctx)

	now := s.now()
	sess, err := s.Sessions.Issue(u, amr, now)
	if err != nil {
		return domain.Session{}, fatal("issue session", err)
	}
	sess.RefreshToken, err = s.mintRefresh(ctx, s.Store.RefreshTokens(), u.ID, newSessionID(now), amr)
	if err != nil {
		return domain.Session{}, err
	}

	if sourceIP != "" {
		if err := s.Store.Users().UpdateLastLoginIP(ctx, u.ID, sourceIP); err != nil {
			l.Error("failed to update last login ip", slog.String("user_id", u.ID), slog.Any("error", err))
		}
	}
	s.activity(ctx, u.ID, domain.ActivityLogin, sourceIP, strings.Join(amr, " "))

	l.Info("session issued", slog.String("user_id", u.ID), slog.Any("amr", amr))
	return sess, nil
}

func (s *AuthService) checkPassword(ctx context.Context, u domain.User, password string) error {
	err := s.Hasher.Verify(password, u.PasswordHash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, cryptox.ErrPasswordMismatch) {
		slogx.FromContext(ctx).Error("stored password hash unusable",
			slog.String("user_id", u.ID),
			slog.Any("error", err),
		)
	}
	return ErrInvalidCredentials
}

func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash("authguard-timing-equalizer")
	})
	if s.dummyHash != "" {
		_ = s.Hasher.Verify(password, s.dummyHash)
	}
}

func (s *AuthService) user(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fatal("get user", err)
	}
	return u, nil
}

// activity appends to the user's audit trail. The transition it describes
// has already happened, so a failed write is only logged.
func (s *AuthService) activity(ctx context.Context, userID string, kind domain.ActivityKind, sourceIP, detail string) {
	now := s.now()
	err := s.Store.Activities().AppendActivity(ctx, domain.Activity{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		Kind:      kind,
		SourceIP:  sourceIP,
		Detail:    detail,
		CreatedAt: now,
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to record activity",
			slog.String("user_id", userID),
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}

// link builds a frontend URL carrying token as a query parameter.
func (s *AuthService) link(route, token string) string {
	u, err := url.Parse(s.FrontendURL)
	if err != nil || s.FrontendURL == "" {
		u = &url.URL{Path: "/"}
	}
	u.Path = path.Join("/", u.Path, route)
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/domain"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/aussiebroadwan/authguard/pkg/otpx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	ThrottleBackendStore = "store"
	ThrottleBackendRedis = "redis"

	MailDriverLog      = "log"
	MailDriverPostmark = "postmark"
)

type Config struct {
	// Issuer is the iss claim of session tokens.
	Issuer       string `env:"AUTH_ISSUER" envDefault:"authguard"`
	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"auth.db"`
	// PepperFile and SigningKeyFile are created on first start.
	PepperFile     string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`
	SigningKeyFile string `env:"AUTH_SIGNING_KEY_FILE" envDefault:"signing.pem"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// FrontendURL is the base of links sent by email.
	FrontendURL    string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"15m"`
	RefreshTTL     time.Duration `env:"REFRESH_TTL" envDefault:"24h"`
	TOTPIssuer     string        `env:"TOTP_ISSUER" envDefault:"AuthGuard"`
	TOTPStep       time.Duration `env:"TOTP_STEP" envDefault:"30s"`
	TOTPTolerance  int           `env:"TOTP_TOLERANCE" envDefault:"1"`
	ResetTokenTTL  time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	VerifyTokenTTL time.Duration `env:"VERIFY_TOKEN_TTL" envDefault:"24h"`

	// ThrottleBackend is store or redis. RedisURL is required for redis.
	ThrottleBackend string `env:"THROTTLE_BACKEND" envDefault:"store"`
	RedisURL        string `env:"REDIS_URL"`

	LoginLimit      int           `env:"THROTTLE_LOGIN_LIMIT" envDefault:"5"`
	LoginWindow     time.Duration `env:"THROTTLE_LOGIN_WINDOW" envDefault:"1h"`
	ResetLimit      int           `env:"THROTTLE_RESET_LIMIT" envDefault:"3"`
	ResetWindow     time.Duration `env:"THROTTLE_RESET_WINDOW" envDefault:"1h"`
	RedeemLimit     int           `env:"THROTTLE_RESET_REDEEM_LIMIT" envDefault:"10"`
	RedeemWindow    time.Duration `env:"THROTTLE_RESET_REDEEM_WINDOW" envDefault:"1h"`
	VerifyLimit     int           `env:"THROTTLE_VERIFY_LIMIT" envDefault:"10"`
	VerifyWindow    time.Duration `env:"THROTTLE_VERIFY_WINDOW" envDefault:"1h"`
	TwoFactorLimit  int           `env:"THROTTLE_2FA_LIMIT" envDefault:"5"`
	TwoFactorWindow time.Duration `env:"THROTTLE_2FA_WINDOW" envDefault:"15m"`

	// MailDriver is log or postmark.
	MailDriver           string `env:"MAIL_DRIVER" envDefault:"log"`
	MailFrom             string `env:"MAIL_FROM" envDefault:"no-reply@authguard.local"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
}

// LoadConfig reads the environment, after loading .env when one exists.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return ParseConfig(env.Options{})
}

// ParseConfig parses and validates a Config. Tests pass opts.Environment to
// avoid touching the process environment.
func ParseConfig(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if u, err := url.Parse(c.FrontendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("FRONTEND_URL must be an absolute URL, got %q", c.FrontendURL)
	}
	if c.TOTPStep < time.Second {
		return invalid("TOTP_STEP must be at least 1s")
	}
	if c.TOTPTolerance < 0 {
		return invalid("TOTP_TOLERANCE must not be negative")
	}
	if c.SessionTTL <= 0 || c.RefreshTTL <= 0 || c.ResetTokenTTL <= 0 || c.VerifyTokenTTL <= 0 {
		return invalid("token lifetimes must be positive")
	}

	switch c.ThrottleBackend {
	case ThrottleBackendStore:
	case ThrottleBackendRedis:
		if c.RedisURL == "" {
			return invalid("REDIS_URL is required when THROTTLE_BACKEND=redis")
		}
	default:
		return invalid("unknown THROTTLE_BACKEND %q", c.ThrottleBackend)
	}

	for scope, lim := range c.Limits() {
		if lim.Max < 1 || lim.Window <= 0 {
			return invalid("throttle limit for %s must be positive", scope)
		}
	}

	switch c.MailDriver {
	case MailDriverLog:
	case MailDriverPostmark:
		if c.PostmarkServerToken == "" {
			return invalid("POSTMARK_SERVER_TOKEN is required when MAIL_DRIVER=postmark")
		}
	default:
		return invalid("unknown MAIL_DRIVER %q", c.MailDriver)
	}

	return nil
}

// Engine returns the TOTP engine. A tolerance of zero accepts the current
// step only.
func (c Config) Engine() otpx.Engine {
	tol := c.TOTPTolerance
	if tol == 0 {
		tol = -1
	}
	return otpx.Engine{Step: c.TOTPStep, Tolerance: tol}
}

// Limits returns the per-scope throttle bounds.
func (c Config) Limits() throttle.Limits {
	return throttle.Limits{
		domain.ScopeLogin:             {Max: c.LoginLimit, Window: c.LoginWindow},
		domain.ScopePasswordReset:     {Max: c.ResetLimit, Window: c.ResetWindow},
		domain.ScopeResetRedemption:   {Max: c.RedeemLimit, Window: c.RedeemWindow},
		domain.ScopeEmailVerification: {Max: c.VerifyLimit, Window: c.VerifyWindow},
		domain.ScopeTwoFactor:         {Max: c.TwoFactorLimit, Window: c.TwoFactorWindow},
	}
}

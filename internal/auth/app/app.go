package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/authguard/internal/auth/http"
	"github.com/aussiebroadwan/authguard/internal/auth/mail"
	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/aussiebroadwan/authguard/pkg/cryptox"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	signingKeyID = "authguard-1"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	redis  *redis.Client // nil unless THROTTLE_BACKEND=redis
	signer *jwtx.EdDSASigner

	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authguard",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.closeBackends()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("authguard starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests then releases the backends.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authguard...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("authguard stopped")
	return nil
}

func (app *Application) closeBackends() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initWindow selects where throttle counts are kept.
func (app *Application) initWindow(limits throttle.Limits) (throttle.Window, error) {
	if app.cfg.ThrottleBackend != ThrottleBackendRedis {
		return throttle.NewStoreWindow(app.db), nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: REDIS_URL: %w", ErrInvalidConfig, err)
	}
	app.redis = redis.NewClient(opts)

	w := throttle.NewRedisWindow(app.redis, limits.Longest())

	// Not fatal at startup; /readyz reports it until redis comes up
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Ping(ctx); err != nil {
		app.logger.Warn("throttle backend unreachable", "backend", ThrottleBackendRedis, "error", err)
	}

	app.logger.Info("throttle backend configured", "backend", ThrottleBackendRedis, "addr", opts.Addr)
	return w, nil
}

func (app *Application) initMailer() (service.Mailer, error) {
	if app.cfg.MailDriver != MailDriverPostmark {
		app.logger.Warn("mail driver is log, messages are not delivered")
		return &mail.LogMailer{Logger: app.logger}, nil
	}

	m, err := mail.NewPostmarkMailer(mail.PostmarkConfig{
		ServerToken:  app.cfg.PostmarkServerToken,
		AccountToken: app.cfg.PostmarkAccountToken,
		From:         app.cfg.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	return m, nil
}

// initServices builds the credential primitives and the orchestrator.
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	key, err := cryptox.LoadOrCreateEd25519Key(app.cfg.SigningKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}
	app.signer, err = jwtx.NewSignerEdDSA(signingKeyID, key)
	if err != nil {
		return fmt.Errorf("failed to initialize signer: %w", err)
	}

	limits := app.cfg.Limits()
	window, err := app.initWindow(limits)
	if err != nil {
		return err
	}

	mailer, err := app.initMailer()
	if err != nil {
		return err
	}

	app.authService = &service.AuthService{
		Store: app.db,
		Devices: &service.DeviceRegistry{
			Store:  app.db,
			Engine: app.cfg.Engine(),
			Issuer: app.cfg.TOTPIssuer,
		},
		Tokens: &service.TokenStore{
			Store:     app.db,
			ResetTTL:  app.cfg.ResetTokenTTL,
			VerifyTTL: app.cfg.VerifyTokenTTL,
		},
		Attempts: service.NewAttemptTracker(app.db, window, limits),
		Hasher:   cryptox.NewArgon2Hasher(pepper),
		Mailer:   mailer,
		Sessions: &service.JWTSessionIssuer{
			Signer: app.signer,
			Issuer: app.cfg.Issuer,
			TTL:    app.cfg.SessionTTL,
		},
		FrontendURL: app.cfg.FrontendURL,
		RefreshTTL:  app.cfg.RefreshTTL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	verifier := jwtx.NewVerifierEdDSA(signingKeyID, app.signer.PublicKey(), app.cfg.Issuer, 30*time.Second)

	router := httpapi.NewRouter(verifier, BuildVersion, app.db, app.logger)
	router.Auth = app.authService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

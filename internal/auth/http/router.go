package http

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/aussiebroadwan/authguard/api/auth"
	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/pkg/httpx"
	"github.com/aussiebroadwan/authguard/pkg/jwtx"
	"github.com/aussiebroadwan/authguard/pkg/slogx"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate swag init -g router.go -d .,../../../pkg/authsdk -o ../../../api/auth --outputTypes go

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	Auth  *service.AuthService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			AuthGuard Authentication Service API
//	@version		0.1.0
//	@description	Account registration, password and TOTP two-factor sign in, session refresh and recovery flows.
//	@description
//	@description	Access tokens are EdDSA signed JWTs. Refresh tokens are opaque and rotate on every use.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/authguard
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) public(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h, httpx.RateLimitByIP(httpx.StrictLimit))
}

func (r *Router) secured(h http.HandlerFunc) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(httpx.StrictLimit),
	)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{Auth: r.Auth}

	// Credential endpoints: coarse per-IP flood guard in front of the
	// per-scope attempt throttle
	r.Mux.Handle("POST /v1/register", r.public(h.HandleRegister))
	r.Mux.Handle("POST /v1/login", r.public(h.HandleLogin))
	r.Mux.Handle("POST /v1/login/2fa", r.public(h.HandleLoginSecondFactor))
	r.Mux.Handle("POST /v1/password/reset-request", r.public(h.HandlePasswordResetRequest))
	r.Mux.Handle("POST /v1/password/reset", r.public(h.HandlePasswordReset))
	r.Mux.Handle("POST /v1/email/verify", r.public(h.HandleEmailVerify))
	r.Mux.Handle("POST /v1/token/refresh", r.public(h.HandleTokenRefresh))

	r.Mux.Handle("POST /v1/password/change", r.secured(h.HandlePasswordChange))
	r.Mux.Handle("POST /v1/email/resend", r.secured(h.HandleEmailResend))
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{Auth: r.Auth}

	r.Mux.Handle("POST /v1/2fa/setup", r.secured(h.HandleSetup))
	r.Mux.Handle("POST /v1/2fa/verify", r.secured(h.HandleVerify))
	r.Mux.Handle("POST /v1/2fa/disable", r.secured(h.HandleDisable))
}

func (r *Router) registerSystem() {
	h := &HealthHandler{Started: r.startTime, Version: r.buildVersion, Store: r.store}
	if r.Auth != nil {
		h.Tracker = r.Auth.Attempts
	}

	// Monitoring systems may poll frequently
	probes := httpx.RateLimitByIP(httpx.PublicLimit)
	r.Mux.Handle("GET /livez", httpx.Chain(http.HandlerFunc(h.HandleLive), probes))
	r.Mux.Handle("GET /readyz", httpx.Chain(http.HandlerFunc(h.HandleReady), probes))
}

package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authguard/internal/auth/service"
	"github.com/aussiebroadwan/authguard/internal/auth/store"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/aussiebroadwan/authguard/pkg/authsdk"
	"github.com/aussiebroadwan/authguard/pkg/httpx"
)

const readinessTimeout = 2 * time.Second

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	Started time.Time
	Version string
	Store   store.Store

	// Tracker is optional. Without it the throttle check always passes.
	Tracker *service.AttemptTracker
}

func (h *HealthHandler) report(status string) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.Started).Truncate(time.Second).String(),
		Version: h.Version,
	}
}

// HandleLive answers 200 while the process is serving.
//
//	@Summary		Liveness
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func (h *HealthHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.report("ok"))
}

// HandleReady answers 503 when the database or the throttle backend cannot be
// reached. Attempts that failed to record are reported without failing the
// probe.
//
//	@Summary		Readiness
//	@Description	Checks the database and the throttle backend
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse
//	@Failure		503	{object}	authsdk.HealthResponse	"A dependency is unreachable"
//	@Router			/readyz [get]
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := &authsdk.HealthChecks{
		Database: probe(ctx, h.Store.Ping),
		Throttle: "ok",
	}
	if h.Tracker != nil {
		checks.AttemptLogFailures = h.Tracker.RecordFailures()
		if p, ok := h.Tracker.Window.(throttle.Pinger); ok {
			checks.Throttle = probe(ctx, p.Ping)
		}
	}

	resp := h.report("ok")
	resp.Checks = checks
	code := http.StatusOK
	if checks.Database != "ok" || checks.Throttle != "ok" {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, code, resp)
}

func probe(ctx context.Context, ping func(context.Context) error) string {
	if err := ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

package httpx

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/authguard/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket expressed per window.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Profiles for the HTTP surface. These guard against request floods before
// any work is done; the per-scope attempt throttle still applies behind them.
var (
	// StrictLimit for credential endpoints (login, reset, verification).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 10}

	// PublicLimit for health probes.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func (c RateLimitConfig) perSecond() rate.Limit {
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// refill is how long an untouched bucket takes to become full again.
func (c RateLimitConfig) refill() time.Duration {
	return time.Duration(float64(c.Burst) / float64(c.perSecond()) * float64(time.Second))
}

// KeyFunc groups requests into buckets. An empty key is not limited.
type KeyFunc func(*http.Request) string

// ByIP keys requests by ClientIP.
func ByIP(r *http.Request) string {
	if ip := ClientIP(r); ip != "" {
		return "ip:" + ip
	}
	return ""
}

// ByUser keys requests by the authenticated subject, falling back to ByIP
// before authentication has run.
func ByUser(r *http.Request) string {
	if id, ok := UserIDFromContext(r.Context()); ok && id != "" {
		return "user:" + id
	}
	return ByIP(r)
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// buckets holds one limiter per key. Buckets idle for longer than a full
// refill are dropped; they would be full on return anyway.
type buckets struct {
	mu        sync.Mutex
	byKey     map[string]*bucket
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{
		byKey: make(map[string]*bucket),
		limit: cfg.perSecond(),
		burst: cfg.Burst,
		idle:  max(cfg.refill(), cfg.Window),
	}
}

// take spends one token for key, or reports how long until one is free.
func (b *buckets) take(key string, now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= b.idle {
		for k, bk := range b.byKey {
			if now.Sub(bk.seen) >= b.idle {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		b.byKey[key] = bk
	}
	bk.seen = now

	res := bk.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, b.idle
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (b *buckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byKey)
}

// RateLimitMiddleware answers 429 with Retry-After once a key exhausts its
// bucket.
func RateLimitMiddleware(cfg RateLimitConfig, key KeyFunc) Middleware {
	set := newBuckets(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, allowing")
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := set.take(k, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(math.Ceil(wait.Seconds())), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)

			WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "throttled",
				"error_description": "too many requests",
			})
		})
	}
}

// RateLimitByIP limits by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, ByIP)
}

// RateLimitByUser limits by authenticated user. It must run after
// AuthnMiddleware to see the subject.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, ByUser)
}

package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/authguard/internal/auth/throttle"
	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, overrides map[string]string) Config {
	t.Helper()

	dir := t.TempDir()
	vars := map[string]string{
		"AUTH_DATABASE_FILE":    filepath.Join(dir, "auth.db"),
		"AUTH_PEPPER_FILE":      filepath.Join(dir, "pepper"),
		"AUTH_SIGNING_KEY_FILE": filepath.Join(dir, "signing.pem"),
		"LOG_LEVEL":             "error",
	}
	for k, v := range overrides {
		vars[k] = v
	}

	cfg, err := ParseConfig(env.Options{Environment: vars})
	require.NoError(t, err)
	return cfg
}

func TestNew_StoreBackend(t *testing.T) {
	cfg := testConfig(t, nil)

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.closeBackends() })

	require.Nil(t, a.redis)
	require.IsType(t, &throttle.StoreWindow{}, a.authService.Attempts.Window)

	// Key material is persisted for the next start
	require.FileExists(t, cfg.PepperFile)
	require.FileExists(t, cfg.SigningKeyFile)

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_ReusesSigningKey(t *testing.T) {
	cfg := testConfig(t, nil)

	first, err := New(cfg)
	require.NoError(t, err)
	pub := first.signer.PublicKey()
	require.NoError(t, first.closeBackends())

	second, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.closeBackends() })

	require.Equal(t, pub, second.signer.PublicKey())
}

func TestNew_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, map[string]string{
		"THROTTLE_BACKEND": ThrottleBackendRedis,
		"REDIS_URL":        "redis://" + mr.Addr() + "/0",
	})

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.closeBackends() })

	require.NotNil(t, a.redis)
	require.IsType(t, &throttle.RedisWindow{}, a.authService.Attempts.Window)

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	mr.Close()
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNew_UnwritableKeyDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	cfg := testConfig(t, map[string]string{
		"AUTH_PEPPER_FILE": filepath.Join(dir, "sub", "pepper"),
	})

	_, err := New(cfg)
	require.Error(t, err)
}

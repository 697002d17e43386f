package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/authguard/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, slogx.ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "authguard", Version: "test", Env: "prod", Level: "info", Output: &buf})
	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "authguard", entry["service"])
	require.Equal(t, "hello", entry["msg"])
}

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "authguard", Level: "debug", Output: &buf})
	logger.Info("login",
		slog.String("username", "alice"),
		slog.String("Password", "hunter2"),
		slog.Group("req", slog.String("code", "123456")),
	)

	out := buf.String()
	require.NotContains(t, out, "hunter2")
	require.NotContains(t, out, "123456")
	require.Contains(t, out, "alice")
	require.Contains(t, out, slogx.Redacted)
}

func TestFromContext_Default(t *testing.T) {
	require.Equal(t, slog.Default(), slogx.FromContext(context.Background()))
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = slogx.FromContext(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set(slogx.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.True(t, sawLogger)
	require.Equal(t, "req-123", rec.Header().Get(slogx.RequestIDHeader))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, float64(http.StatusTeapot), entry["status"])
	require.Equal(t, "req-123", entry["req_id"])
}

func TestHTTPMiddleware_GeneratesRequestID(t *testing.T) {
	h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader))
}

func TestHTTPMiddleware_ReplacesUnusableRequestID(t *testing.T) {
	h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for name, id := range map[string]string{
		"too long":   strings.Repeat("a", 65),
		"whitespace": "req 123",
		"control":    "req\x01",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(slogx.RequestIDHeader, id)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(slogx.RequestIDHeader)
			require.NotEmpty(t, got)
			require.NotEqual(t, id, got)
		})
	}
}

func TestHTTPMiddleware_LogsBytes(t *testing.T) {
	var buf bytes.Buffer
	h := slogx.HTTPMiddleware(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "INFO", entry["level"])
	require.Equal(t, float64(5), entry["bytes"])
}

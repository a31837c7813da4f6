package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddlewareBlocksAfterBurst(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	for i := range 2 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimitMiddlewareKeysAreIndependent(t *testing.T) {
	cfg := RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	h := Chain(okHandler(), RateLimitByIP(cfg))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second IP has its own bucket.
	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFormFieldKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login?email=a%40b.c", nil)
	req.RemoteAddr = "10.0.0.9:1234"

	key := FormFieldKeyExtractor("email")(req)
	require.Equal(t, "10.0.0.9:a@b.c", key)
}

func TestBearerCredential(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	require.Equal(t, "tok-123", BearerCredential(req))

	req = httptest.NewRequest(http.MethodGet, "/?access_token=tok-456", nil)
	require.Equal(t, "tok-456", BearerCredential(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	require.Empty(t, BearerCredential(req))
}

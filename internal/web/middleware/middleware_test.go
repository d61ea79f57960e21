package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalog/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}
	h := APIKeyAuth(cfg)(okHandler())

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"invalid", "nope", http.StatusForbidden},
		{"first key", "k1", http.StatusOK},
		{"second key", "k2", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAPIKeyAuth_BearerToken(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}
	h := APIKeyAuth(cfg)(okHandler())

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"bearer", "Bearer k1", http.StatusOK},
		{"lowercase scheme", "bearer k1", http.StatusOK},
		{"wrong token", "Bearer k2", http.StatusForbidden},
		{"basic scheme", "Basic k1", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAPIKeyAuth_NoKeysConfigured(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{RequireAPIKey: true})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/api/kinds", nil)
	req.Header.Set(APIKeyHeader, "anything")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "AUTH_INVALID_KEY")
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{})(okHandler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrustedRealIP(t *testing.T) {
	h := TrustedRealIP([]string{"10.0.0.0/8", "127.0.0.1", "bogus"})(okHandler())

	tests := []struct {
		name   string
		remote string
		header string
		value  string
		want   string
	}{
		{"trusted real ip", "10.1.2.3:5000", "X-Real-IP", "203.0.113.7", "203.0.113.7"},
		{"trusted forwarded for", "127.0.0.1:5000", "X-Forwarded-For", "198.51.100.1, 10.0.0.1", "198.51.100.1"},
		{"untrusted keeps addr", "192.0.2.1:5000", "X-Real-IP", "203.0.113.7", "192.0.2.1:5000"},
		{"trusted invalid header", "10.1.2.3:5000", "X-Real-IP", "not-an-ip", "10.1.2.3:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set(tt.header, tt.value)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2)(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/import/variants", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("192.0.2.1:1000"))
	assert.Equal(t, http.StatusOK, send("192.0.2.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:1002"))
	assert.Equal(t, http.StatusOK, send("192.0.2.2:1000"), "other clients have their own bucket")
}

func TestRateLimit_Response(t *testing.T) {
	h := RateLimit(1)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestVisitorStore_EvictsIdle(t *testing.T) {
	now := time.Now()
	s := newVisitorStore(10, time.Minute)
	s.now = func() time.Time { return now }

	s.get("a")
	s.get("b")
	require.Equal(t, 2, s.len())

	now = now.Add(2 * time.Minute)
	s.get("b")
	assert.Equal(t, 1, s.len())
}

func TestLogger_CapturesStatus(t *testing.T) {
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestWrapResponseWriter_Reuses(t *testing.T) {
	rec := httptest.NewRecorder()
	first := wrapResponseWriter(rec)
	assert.Same(t, first, wrapResponseWriter(first))

	first.Write([]byte("abc"))
	assert.Equal(t, 3, first.bytes)
	assert.Equal(t, http.StatusOK, first.status)
}

func TestMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	var pattern string
	r.Get("/api/products/{productID}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/widgets", func(w http.ResponseWriter, req *http.Request) {
		pattern = routePattern(req)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/p1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/widgets", nil))
	assert.Equal(t, "/widgets", pattern)
	assert.Equal(t, "unknown", routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))
}

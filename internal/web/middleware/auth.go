package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/catalog/internal/config"
)

// APIKeyHeader carries the catalog API key. A bearer token in Authorization
// is accepted as well.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth rejects requests without a configured API key when
// cfg.RequireAPIKey is set. An empty key list rejects every request.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	keys := make([][]byte, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		keys[i] = []byte(k)
	}

	return func(next http.Handler) http.Handler {
		if !cfg.RequireAPIKey {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestAPIKey(r)
			switch {
			case key == "":
				denyRequest(w, r, http.StatusUnauthorized, "missing API key", "AUTH_MISSING_KEY")
			case !matchesAny(key, keys):
				denyRequest(w, r, http.StatusForbidden, "invalid API key", "AUTH_INVALID_KEY")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// requestAPIKey returns the key from APIKeyHeader or an Authorization bearer token.
func requestAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(APIKeyHeader)); key != "" {
		return key
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// matchesAny compares key with every configured key in constant time.
func matchesAny(key string, keys [][]byte) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), k)
	}
	return match == 1
}

func denyRequest(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	slog.Warn("api key rejected",
		"code", code,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)
	writeJSONError(w, status, message, code)
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "message": message, "code": code})
}

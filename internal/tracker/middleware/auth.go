package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valkaylee/wildlifetracker/internal/tracker/auth"
	"github.com/valkaylee/wildlifetracker/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "auth.claims"

// Auth verifies bearer tokens on every request except the configured skip
// paths and path prefixes.
type Auth struct {
	tokens       *auth.Issuer
	log          *logger.Logger
	skipPaths    map[string]bool
	skipPrefixes []string
}

// NewAuth builds the authentication middleware. Entries in skipPaths ending
// with "/" are treated as prefixes.
func NewAuth(tokens *auth.Issuer, skipPaths []string, log *logger.Logger) *Auth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	skip := make(map[string]bool)
	var prefixes []string
	for _, path := range skipPaths {
		if strings.HasSuffix(path, "/") {
			prefixes = append(prefixes, path)
			continue
		}
		skip[path] = true
	}
	return &Auth{tokens: tokens, log: log, skipPaths: skip, skipPrefixes: prefixes}
}

// Handler returns the middleware handler.
func (m *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			m.unauthorized(w, "missing Authorization header")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			m.unauthorized(w, "invalid Authorization header format")
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			m.log.WithError(err).WithField("path", r.URL.Path).Warn("token rejected")
			m.unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Auth) skipped(path string) bool {
	if m.skipPaths[path] {
		return true
	}
	for _, prefix := range m.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *Auth) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ClaimsFrom extracts the verified token claims placed by Auth, if any.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

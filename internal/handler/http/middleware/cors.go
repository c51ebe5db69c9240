// Package middleware holds the browser-facing HTTP middleware: CORS for the
// dashboard frontend and Content-Security-Policy headers.
package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware. An empty AllowedOrigins list
// disables cross-origin access entirely.
type CORSConfig struct {
	// AllowedOrigins are exact origins such as "https://news.example.com" or
	// single-label wildcards such as "https://*.example.com".
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int // seconds
	Logger         *slog.Logger
}

// DefaultCORSConfig returns the methods and headers the dashboard API uses.
func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}
}

// OriginMatcher decides whether an Origin header value is allowed.
type OriginMatcher struct {
	exact     []string
	wildcards []wildcard
}

type wildcard struct {
	scheme string
	suffix string // ".example.com"
}

// NewOriginMatcher normalises origins: lower case, no trailing slash, blanks dropped.
func NewOriginMatcher(origins []string) *OriginMatcher {
	m := &OriginMatcher{}
	for _, o := range origins {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		scheme, host, ok := strings.Cut(o, "://")
		if ok && strings.HasPrefix(host, "*.") {
			m.wildcards = append(m.wildcards, wildcard{scheme: scheme, suffix: host[1:]})
			continue
		}
		m.exact = append(m.exact, o)
	}
	return m
}

// IsAllowed reports whether origin matches an exact or wildcard entry. A
// wildcard matches exactly one extra label.
func (m *OriginMatcher) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	if slices.Contains(m.exact, origin) {
		return true
	}
	scheme, host, ok := strings.Cut(origin, "://")
	if !ok {
		return false
	}
	for _, w := range m.wildcards {
		if scheme != w.scheme || !strings.HasSuffix(host, w.suffix) {
			continue
		}
		label := strings.TrimSuffix(host, w.suffix)
		if label != "" && !strings.Contains(label, ".") {
			return true
		}
	}
	return false
}

// Empty reports whether no origin is allowed.
func (m *OriginMatcher) Empty() bool {
	return len(m.exact) == 0 && len(m.wildcards) == 0
}

func normalizeOrigin(o string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(o)), "/")
}

// CORS echoes allowed origins with credentials enabled, so the session cookie
// travels with cross-origin requests. Preflights from allowed origins are
// answered with 204; disallowed origins get no CORS headers and the browser
// blocks the response.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	matcher := NewOriginMatcher(cfg.AllowedOrigins)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || matcher.Empty() {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if !matcher.IsAllowed(origin) {
				logger.Warn("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path),
					slog.String("method", r.Method))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

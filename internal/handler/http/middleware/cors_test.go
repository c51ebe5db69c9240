package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOriginMatcher(t *testing.T) {
	m := NewOriginMatcher([]string{" https://News.Example.com/ ", "https://*.einvoice.dev", ""})

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://news.example.com", true},
		{"HTTPS://NEWS.EXAMPLE.COM/", true},
		{"http://news.example.com", false},
		{"https://app.einvoice.dev", true},
		{"https://einvoice.dev", false},
		{"https://a.b.einvoice.dev", false},
		{"http://app.einvoice.dev", false},
		{"https://evil-einvoice.dev", false},
		{"", false},
		{"null", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsAllowed(tt.origin))
		})
	}
}

func newCORSHandler(origins ...string) (http.Handler, *bool) {
	called := false
	cfg := DefaultCORSConfig(origins)
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	h := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	return h, &called
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h, called := newCORSHandler("https://news.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://news.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.True(t, *called)
	assert.Equal(t, "https://news.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
}

func TestCORS_Preflight(t *testing.T) {
	h, called := newCORSHandler("https://news.example.com")

	req := httptest.NewRequest(http.MethodOptions, "/api/refresh", nil)
	req.Header.Set("Origin", "https://news.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, X-Request-ID", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rr.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	h, called := newCORSHandler("https://news.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.True(t, *called)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	h, called := newCORSHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	req.Header.Set("Origin", "https://news.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.True(t, *called)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Vary"))
}

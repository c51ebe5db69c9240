package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"einvoice-news/internal/handler/http/requestid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newTestLimiter(limit int, window time.Duration, now *time.Time) *RateLimiter {
	rl := NewRateLimiter(limit, window)
	rl.now = func() time.Time { return *now }
	rl.lastClean = *now
	return rl
}

func loginRequest(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remote
	return req
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler(), mw("outer"), mw("middle"), mw("inner")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "middle", "inner"}, order)
}

func TestRateLimiter_Limit(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(3, time.Minute, &now)
	h := rl.Limit(okHandler())

	var codes []int
	for range 5 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, loginRequest("192.168.1.1:1234"))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, loginRequest("192.168.1.1:1234"))
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(2, time.Minute, &now)
	h := rl.Limit(okHandler())

	serve := func() int {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, loginRequest("10.0.0.1:80"))
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, serve())
	now = now.Add(30 * time.Second)
	assert.Equal(t, http.StatusOK, serve())
	assert.Equal(t, http.StatusTooManyRequests, serve())

	// First request leaves the window.
	now = now.Add(31 * time.Second)
	assert.Equal(t, http.StatusOK, serve())
	assert.Equal(t, http.StatusTooManyRequests, serve())
}

func TestRateLimiter_PerClient(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := newTestLimiter(1, time.Minute, &now).Limit(okHandler())

	for _, remote := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.3:1"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, loginRequest(remote))
		assert.Equal(t, http.StatusOK, rr.Code, remote)
	}
}

func TestRateLimiter_IgnoresProxyHeadersByDefault(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := newTestLimiter(1, time.Minute, &now).Limit(okHandler())

	for i, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		req := loginRequest("10.0.0.1:1")
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, rr.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		}
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	h := rl.Limit(okHandler())

	var (
		mu      sync.Mutex
		allowed int
		wg      sync.WaitGroup
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, loginRequest("172.16.0.1:9"))
			if rr.Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(5, time.Minute, &now)
	h := rl.Limit(okHandler())

	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1:1"))
	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.2:1"))
	require.Equal(t, 2, rl.Clients())

	rl.Cleanup(now.Add(90 * time.Second))
	assert.Equal(t, 2, rl.Clients())

	rl.Cleanup(now.Add(3 * time.Minute))
	assert.Zero(t, rl.Clients())
}

func TestRateLimiter_PeriodicCleanup(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(5, time.Minute, &now)
	h := rl.Limit(okHandler())

	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1:1"))
	now = now.Add(11 * time.Minute)
	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.2:1"))

	assert.Equal(t, 1, rl.Clients())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "192.168.1.1:1234", want: "192.168.1.1"},
		{name: "remote without port", remote: "192.168.1.1", want: "192.168.1.1"},
		{name: "ipv6", remote: "[::1]:8080", want: "::1"},
		{name: "xff ignored", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, want: "10.0.0.1"},
		{name: "xff trusted", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, trustProxy: true, want: "1.2.3.4"},
		{name: "x-real-ip trusted", remote: "10.0.0.1:1", headers: map[string]string{"X-Real-IP": " 5.6.7.8 "}, trustProxy: true, want: "5.6.7.8"},
		{name: "bad xff falls back", remote: "10.0.0.1:1", headers: map[string]string{"X-Forwarded-For": "garbage"}, trustProxy: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trustProxy))
		})
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := requestid.Middleware(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/articles?q=vat", nil)
	req.Header.Set(requestid.RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request completed", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, "/api/articles", entry["path"])
	assert.Equal(t, "q=vat", entry["query"])
	assert.EqualValues(t, http.StatusCreated, entry["status"])
	assert.EqualValues(t, 5, entry["bytes"])
}

func TestLogging_ServerErrorsAtErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/views", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestRecover_RepanicsOnAbortHandler(t *testing.T) {
	h := Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.Panics(t, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLimitRequestBody(t *testing.T) {
	h := LimitRequestBody(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRecorder()
	h.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"password":"x"}`)))
	assert.Equal(t, http.StatusOK, small.Code)

	large := httptest.NewRecorder()
	h.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(strings.Repeat("a", 64))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, large.Code)
}

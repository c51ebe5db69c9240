// Package auth implements the dashboard's login gate.
//
// The gate compares a submitted password with one configured value and, on a
// match, records an opaque random session token with a fixed lifetime in the
// client's storage. It is a deterrent for casual visitors and is not an access
// control mechanism: anyone able to write the client's storage can forge a
// session.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/repository"
)

const (
	// DefaultSessionTTL is the lifetime of a session created by Login.
	DefaultSessionTTL = 24 * time.Hour

	tokenBytes = 32
)

// Gate validates the dashboard password and manages the session keys in a
// client's StorageRepository.
type Gate struct {
	password string
	ttl      time.Duration
	now      func() time.Time
	random   io.Reader
	logger   *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithTTL overrides the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		if ttl > 0 {
			g.ttl = ttl
		}
	}
}

// WithRandom overrides the token entropy source.
func WithRandom(r io.Reader) Option {
	return func(g *Gate) { g.random = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate returns a gate for the configured password. An empty password
// disables login entirely.
func NewGate(password string, opts ...Option) *Gate {
	g := &Gate{
		password: password,
		ttl:      DefaultSessionTTL,
		now:      time.Now,
		random:   rand.Reader,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login compares password with the configured value. On a match it persists
// a new session and returns true. On a mismatch it returns false and leaves
// the store untouched.
func (g *Gate) Login(ctx context.Context, store repository.StorageRepository, password string) (bool, error) {
	if g.password == "" || password != g.password {
		recordLogin(false)
		g.logger.InfoContext(ctx, "login rejected")
		return false, nil
	}

	token, err := g.newToken()
	if err != nil {
		return false, err
	}
	expiresAt := g.now().Add(g.ttl)

	if err := store.Set(ctx, repository.KeySessionToken, token); err != nil {
		return false, fmt.Errorf("store session token: %w", err)
	}
	if err := store.Set(ctx, repository.KeySessionExpiry, strconv.FormatInt(expiresAt.UnixMilli(), 10)); err != nil {
		return false, fmt.Errorf("store session expiry: %w", err)
	}

	recordLogin(true)
	g.logger.InfoContext(ctx, "login accepted", slog.Time("expires_at", expiresAt))
	return true, nil
}

// CheckAuth reports whether the store holds a live session. A missing,
// malformed or expired session is cleared and reported as false; the caller
// is expected to send the user to the login entry point.
func (g *Gate) CheckAuth(ctx context.Context, store repository.StorageRepository) (bool, error) {
	session, ok, err := g.Session(ctx, store)
	if err != nil {
		return false, err
	}
	if ok && !session.Expired(g.now().Truncate(time.Millisecond)) {
		recordCheck("valid")
		return true, nil
	}

	if err := store.Delete(ctx, repository.KeySessionToken, repository.KeySessionExpiry); err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	if ok {
		recordCheck("expired")
	} else {
		recordCheck("missing")
	}
	return false, nil
}

// Session reads the stored session without judging its expiry. ok is false
// when either key is missing or the expiry cannot be parsed.
func (g *Gate) Session(ctx context.Context, store repository.StorageRepository) (entity.Session, bool, error) {
	token, hasToken, err := store.Get(ctx, repository.KeySessionToken)
	if err != nil {
		return entity.Session{}, false, fmt.Errorf("read session token: %w", err)
	}
	rawExpiry, hasExpiry, err := store.Get(ctx, repository.KeySessionExpiry)
	if err != nil {
		return entity.Session{}, false, fmt.Errorf("read session expiry: %w", err)
	}
	if !hasToken || !hasExpiry || token == "" {
		return entity.Session{}, false, nil
	}
	ms, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		g.logger.WarnContext(ctx, "malformed session expiry", slog.String("value", rawExpiry))
		return entity.Session{}, false, nil
	}
	return entity.Session{Token: token, ExpiresAt: time.UnixMilli(ms)}, true, nil
}

// Logout clears the stored session.
func (g *Gate) Logout(ctx context.Context, store repository.StorageRepository) error {
	if err := store.Delete(ctx, repository.KeySessionToken, repository.KeySessionExpiry); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	g.logger.InfoContext(ctx, "logged out")
	return nil
}

func (g *Gate) newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

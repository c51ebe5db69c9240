// Package auth serves the login gate over HTTP. Each browser profile gets its
// own storage namespace, keyed by a random profile cookie, which plays the
// role of the browser's local storage.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"einvoice-news/internal/repository"
)

// ProfileCookie names the cookie carrying the profile id.
const ProfileCookie = "einvoice_profile"

const profileMaxAge = 365 * 24 * time.Hour

type ctxKey int

const (
	ctxStore ctxKey = iota
	ctxProfile
)

// Profile resolves the caller's profile from the cookie, issuing a new one
// when it is missing or malformed, and puts the profile's store on the
// request context.
func Profile(stores repository.StorageNamespaces, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(ProfileCookie); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(profileMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), ctxProfile, id)
			ctx = context.WithValue(ctx, ctxStore, stores.Namespace(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StoreFromContext returns the profile store set by Profile.
func StoreFromContext(ctx context.Context) (repository.StorageRepository, bool) {
	s, ok := ctx.Value(ctxStore).(repository.StorageRepository)
	return s, ok
}

// ProfileID returns the profile id set by Profile, or "".
func ProfileID(ctx context.Context) string {
	id, _ := ctx.Value(ctxProfile).(string)
	return id
}

// WithStore returns ctx carrying store, for callers that bypass Profile.
func WithStore(ctx context.Context, store repository.StorageRepository) context.Context {
	return context.WithValue(ctx, ctxStore, store)
}

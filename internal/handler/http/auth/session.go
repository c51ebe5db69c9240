package auth

import (
	"context"
	"errors"
	"net/http"

	"einvoice-news/internal/domain/entity"
	"einvoice-news/internal/handler/http/respond"
	"einvoice-news/internal/repository"
)

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/login"

var errNoProfile = errors.New("profile store missing from request context")

// Gate is the login gate as the handlers use it.
type Gate interface {
	Login(ctx context.Context, store repository.StorageRepository, password string) (bool, error)
	CheckAuth(ctx context.Context, store repository.StorageRepository) (bool, error)
	Session(ctx context.Context, store repository.StorageRepository) (entity.Session, bool, error)
	Logout(ctx context.Context, store repository.StorageRepository) error
}

// RequireSession answers 401 with a redirect hint unless the profile holds a
// live session. It must run inside Profile.
func RequireSession(gate Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, ok := StoreFromContext(r.Context())
			if !ok {
				respond.SafeError(w, http.StatusInternalServerError, errNoProfile)
				return
			}
			authed, err := gate.CheckAuth(r.Context(), store)
			if err != nil {
				respond.SafeError(w, http.StatusInternalServerError, err)
				return
			}
			if !authed {
				respond.Redirect(w, http.StatusUnauthorized, "login required", LoginPath)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"einvoice-news/internal/handler/http/respond"
	"einvoice-news/internal/observability/logging"
)

type loginRequest struct {
	Password string `json:"password" example:"your_password"`
}

// SessionResponse reports the caller's session state.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// LoginHandler checks the password and opens a session for the profile.
type LoginHandler struct {
	Gate   Gate
	Logger *slog.Logger
}

// ServeHTTP logs in.
// @Summary      Log in
// @Description  Compares the password with the configured dashboard password and opens a 24 hour session for the browser profile.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Password"
// @Success      200 {object} SessionResponse
// @Failure      400 {object} respond.ErrorBody "Malformed body"
// @Failure      401 {object} respond.ErrorBody "Invalid password"
// @Failure      429 {object} respond.ErrorBody "Rate limit exceeded"
// @Router       /auth/login [post]
func (h LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithRequestID(ctx, logger)

	store, ok := StoreFromContext(ctx)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errNoProfile)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	ok, err := h.Gate.Login(ctx, store, req.Password)
	if err != nil {
		logger.Error("login failed", slog.Any("error", err))
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		respond.SafeError(w, http.StatusUnauthorized, errors.New("invalid password"))
		return
	}

	writeSession(w, h.Gate, r)
}

// LogoutHandler clears the profile's session.
type LogoutHandler struct {
	Gate Gate
}

// ServeHTTP logs out.
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200 {object} SessionResponse
// @Router       /auth/logout [post]
func (h LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	store, ok := StoreFromContext(r.Context())
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errNoProfile)
		return
	}
	if err := h.Gate.Logout(r.Context(), store); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, SessionResponse{})
}

// SessionHandler reports whether the profile is logged in. Expired sessions
// are cleared as a side effect.
type SessionHandler struct {
	Gate Gate
}

// ServeHTTP reports the session.
// @Summary      Session state
// @Tags         auth
// @Produce      json
// @Success      200 {object} SessionResponse
// @Router       /auth/session [get]
func (h SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeSession(w, h.Gate, r)
}

func writeSession(w http.ResponseWriter, gate Gate, r *http.Request) {
	ctx := r.Context()
	store, ok := StoreFromContext(ctx)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errNoProfile)
		return
	}

	authed, err := gate.CheckAuth(ctx, store)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	if !authed {
		respond.JSON(w, http.StatusOK, SessionResponse{})
		return
	}

	session, _, err := gate.Session(ctx, store)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	expires := session.ExpiresAt.UTC()
	respond.JSON(w, http.StatusOK, SessionResponse{Authenticated: true, ExpiresAt: &expires})
}

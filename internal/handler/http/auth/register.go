package auth

import (
	"log/slog"
	"net/http"
)

// Register mounts the auth endpoints. limit wraps the login handler; pass nil
// to leave it unlimited.
func Register(mux *http.ServeMux, gate Gate, limit func(http.Handler) http.Handler, logger *slog.Logger) {
	var login http.Handler = LoginHandler{Gate: gate, Logger: logger}
	if limit != nil {
		login = limit(login)
	}
	mux.Handle("POST /auth/login", login)
	mux.Handle("POST /auth/logout", LogoutHandler{Gate: gate})
	mux.Handle("GET /auth/session", SessionHandler{Gate: gate})
}

package refresh

import "net/http"

// Register mounts the refresh endpoints behind protect.
func Register(mux *http.ServeMux, h Handler, protect func(http.Handler) http.Handler) {
	mux.Handle("POST /api/refresh", protect(http.HandlerFunc(h.Start)))
	mux.Handle("GET /api/refresh", protect(http.HandlerFunc(h.Status)))
	mux.Handle("DELETE /api/refresh/credential", protect(http.HandlerFunc(h.Forget)))
}

package dashboard

import "net/http"

// Register mounts the dashboard endpoints behind protect, which is expected
// to enforce the login session.
func Register(mux *http.ServeMux, h Handler, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/articles", protect(http.HandlerFunc(h.Articles)))
	mux.Handle("GET /api/views", protect(http.HandlerFunc(h.Views)))
	mux.Handle("GET /api/views/countries/{code}", protect(http.HandlerFunc(h.Country)))
	mux.Handle("POST /api/filters/clear", protect(http.HandlerFunc(h.ClearFilters)))
	mux.Handle("GET /api/meta", protect(http.HandlerFunc(h.Meta)))
}

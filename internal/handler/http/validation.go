package http

import (
	"net/http"

	"einvoice-news/internal/handler/http/respond"
)

// Input limits applied before routing.
const (
	MaxCookieHeaderBytes = 4096
	MaxQueryBytes        = 4096
	MaxPathBytes         = 2048
)

// InputValidation rejects requests whose cookie header, query string or path
// exceed the limits above. Filter criteria travel in the query string, so it
// is bounded here before any parsing happens.
func InputValidation() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case len(r.Header.Get("Cookie")) > MaxCookieHeaderBytes:
				respond.JSON(w, http.StatusRequestHeaderFieldsTooLarge, respond.ErrorBody{Error: "cookie header too large"})
				return
			case len(r.URL.Path) > MaxPathBytes:
				respond.JSON(w, http.StatusRequestURITooLong, respond.ErrorBody{Error: "URI too long"})
				return
			case len(r.URL.RawQuery) > MaxQueryBytes:
				respond.JSON(w, http.StatusRequestURITooLong, respond.ErrorBody{Error: "query string too long"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

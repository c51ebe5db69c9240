package http

import (
	"net/http"
	"strconv"
	"time"

	"einvoice-news/internal/handler/http/pathutil"
	"einvoice-news/internal/handler/http/responsewriter"
	"einvoice-news/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records request count, duration and response size per
// route. The route label comes from the matched ServeMux pattern, falling back
// to pathutil.NormalizePath, so label cardinality stays bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		rw := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(
			r.Method,
			routeLabel(r),
			strconv.Itoa(rw.StatusCode()),
			time.Since(start),
			rw.BytesWritten(),
		)
	})
}

// routeLabel prefers the pattern ServeMux recorded on r while routing.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		return pathutil.FromPattern(r.Pattern)
	}
	return pathutil.NormalizePath(r.URL.Path)
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

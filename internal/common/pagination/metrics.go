package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestsTotal counts paginated responses by page bucket.
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "articles_pagination_requests_total",
		Help: "Total number of paginated article responses",
	},
	[]string{"page_range"},
)

// RecordRequest counts one page served.
func RecordRequest(page int) {
	RequestsTotal.WithLabelValues(pageRangeBucket(page)).Inc()
}

func pageRangeBucket(page int) string {
	switch {
	case page <= 10:
		return "1-10"
	case page <= 50:
		return "11-50"
	case page <= 100:
		return "51-100"
	default:
		return "100+"
	}
}

package dashboard

import (
	"net/http"
	"strconv"
	"strings"

	"einvoice-news/internal/domain/entity"
)

// ParseCriteria reads the filter query parameters. region, source and
// category may repeat or carry comma-separated values; days is a positive
// number of days; q is the free-text search.
func ParseCriteria(r *http.Request) (entity.FilterCriteria, error) {
	q := r.URL.Query()
	c := entity.FilterCriteria{}.
		WithRegions(multi(q["region"])...).
		WithSources(multi(q["source"])...).
		WithCategories(multi(q["category"])...).
		WithSearch(q.Get("q"))

	if s := strings.TrimSpace(q.Get("days")); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days < 0 {
			return c, &entity.ValidationError{Field: "days", Message: "must be a positive number of days"}
		}
		c = c.WithTimeRange(days)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func multi(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

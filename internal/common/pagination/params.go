package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params is a 1-based page request.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads page and limit from the query string. Absent values
// take the configured defaults; malformed or out-of-range values are errors.
func ParseQueryParams(r *http.Request, cfg Config) (Params, error) {
	p := Params{Page: 1, Limit: cfg.DefaultLimit}
	q := r.URL.Query()

	if s := q.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return p, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		p.Page = page
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > cfg.MaxLimit {
			return p, fmt.Errorf("invalid query parameter: limit must be between 1 and %d", cfg.MaxLimit)
		}
		p.Limit = limit
	}

	return p, nil
}

// Offset returns the index of the first item of the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

package entity

import (
	"slices"
	"strings"
	"time"
)

// FilterCriteria holds the user's current selection.
// It is a value type: every With* method returns an updated copy and leaves the
// receiver untouched.
type FilterCriteria struct {
	Regions       []string `json:"regions,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	TimeRangeDays int      `json:"timeRangeDays,omitempty"` // 0 means no time range
	SearchQuery   string   `json:"searchQuery,omitempty"`
}

// HasActiveFilters reports whether any criterion differs from its default.
func (c FilterCriteria) HasActiveFilters() bool {
	return len(c.Regions) > 0 ||
		len(c.Sources) > 0 ||
		len(c.Categories) > 0 ||
		c.TimeRangeDays > 0 ||
		c.NormalizedQuery() != ""
}

// NormalizedQuery returns the trimmed, lower-cased search query.
func (c FilterCriteria) NormalizedQuery() string {
	return strings.ToLower(strings.TrimSpace(c.SearchQuery))
}

// maxTimeRangeDays keeps days*24h within time.Duration. Longer ranges are
// clamped; the cutoff is then centuries before any article.
const maxTimeRangeDays = 100_000

// Since returns the inclusive lower bound for publishedAt, relative to now.
// ok is false when no time range is selected.
func (c FilterCriteria) Since(now time.Time) (since time.Time, ok bool) {
	if c.TimeRangeDays <= 0 {
		return time.Time{}, false
	}
	days := min(c.TimeRangeDays, maxTimeRangeDays)
	return now.Add(-time.Duration(days) * 24 * time.Hour), true
}

// Clear returns the all-empty criteria.
func (c FilterCriteria) Clear() FilterCriteria {
	return FilterCriteria{}
}

// WithRegions returns a copy with the region selection replaced.
func (c FilterCriteria) WithRegions(codes ...string) FilterCriteria {
	c.Regions = slices.Clone(codes)
	return c
}

// WithSources returns a copy with the source selection replaced.
func (c FilterCriteria) WithSources(ids ...string) FilterCriteria {
	c.Sources = slices.Clone(ids)
	return c
}

// WithCategories returns a copy with the category selection replaced.
func (c FilterCriteria) WithCategories(ids ...string) FilterCriteria {
	c.Categories = slices.Clone(ids)
	return c
}

// WithTimeRange returns a copy with the time range in days. Zero or negative clears it.
func (c FilterCriteria) WithTimeRange(days int) FilterCriteria {
	if days < 0 {
		days = 0
	}
	c.TimeRangeDays = days
	return c
}

// WithSearch returns a copy with the search query replaced.
func (c FilterCriteria) WithSearch(q string) FilterCriteria {
	c.SearchQuery = q
	return c
}

// Validate checks the criteria for values no filter pass can honour.
func (c FilterCriteria) Validate() error {
	if c.TimeRangeDays < 0 {
		return &ValidationError{Field: "days", Message: "must be a positive number of days"}
	}
	if len(c.SearchQuery) > MaxSearchQueryLength {
		return &ValidationError{Field: "q", Message: "search query is too long"}
	}
	return nil
}

// MaxSearchQueryLength bounds the accepted search query size in bytes.
const MaxSearchQueryLength = 256

// Session is proof of a prior successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the session has expired at now. A session whose
// expiry equals now is still valid.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

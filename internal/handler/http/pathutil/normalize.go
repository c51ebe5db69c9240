// Package pathutil maps request paths to low-cardinality route labels and
// parses path parameters.
package pathutil

import (
	"regexp"
	"strings"
)

// Unmatched is the label for paths that belong to no known route.
const Unmatched = "unmatched"

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes, most specific first.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/api/views/countries/[^/]+$`), Template: "/api/views/countries/{code}"},
	{Pattern: regexp.MustCompile(`^/swagger/.*$`), Template: "/swagger/"},
}

// staticRoutes are the fixed paths served by the API.
var staticRoutes = map[string]struct{}{
	"/":                  {},
	"/health":            {},
	"/ready":             {},
	"/live":              {},
	"/metrics":           {},
	"/auth/login":        {},
	"/auth/logout":       {},
	"/auth/session":      {},
	"/api/articles":      {},
	"/api/filters/clear": {},
	"/api/views":         {},
	"/api/meta":          {},
	"/api/refresh":       {},
}

// NormalizePath returns the route label for path. Dynamic segments become
// their template and unknown paths collapse to Unmatched, so arbitrary
// client paths cannot grow the label set.
//
//	NormalizePath("/api/views/countries/DE") // "/api/views/countries/{code}"
//	NormalizePath("/api/articles?q=vat")     // "/api/articles"
//	NormalizePath("/wp-login.php")           // "unmatched"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' && path != "/swagger/" {
		path = path[:len(path)-1]
	}

	if _, ok := staticRoutes[path]; ok {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return Unmatched
}

// FromPattern turns a ServeMux pattern such as "GET /api/views/countries/{code}"
// into its path part. An empty pattern yields Unmatched.
func FromPattern(pattern string) string {
	if pattern == "" {
		return Unmatched
	}
	if _, rest, ok := strings.Cut(pattern, " "); ok {
		pattern = strings.TrimSpace(rest)
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		// host-qualified pattern
		pattern = pattern[i:]
	}
	return pattern
}

// ExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func ExpectedCardinality() int {
	return len(staticRoutes) + len(pathPatterns) + 1
}

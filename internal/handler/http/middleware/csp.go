package middleware

import (
	"net/http"
	"strings"

	"einvoice-news/pkg/security/csp"
)

// CSPConfig selects a policy by the longest matching path prefix, falling
// back to Default.
type CSPConfig struct {
	Enabled      bool
	Default      csp.Policy
	PathPolicies map[string]csp.Policy
	ReportOnly   bool
}

// DefaultCSPConfig uses the API policy everywhere except the Swagger UI.
func DefaultCSPConfig() CSPConfig {
	return CSPConfig{
		Enabled: true,
		Default: csp.APIPolicy(),
		PathPolicies: map[string]csp.Policy{
			"/swagger/": csp.SwaggerUIPolicy(),
		},
	}
}

// CSP sets the Content-Security-Policy header plus nosniff and frame options.
func CSP(cfg CSPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			policy := cfg.selectPolicy(r.URL.Path).ReportOnly(cfg.ReportOnly)
			if value := policy.Build(); value != "" {
				w.Header().Set(policy.HeaderName(), value)
			}
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			next.ServeHTTP(w, r)
		})
	}
}

func (c CSPConfig) selectPolicy(path string) csp.Policy {
	longest := ""
	policy := c.Default
	for prefix, p := range c.PathPolicies {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(longest) {
			longest = prefix
			policy = p
		}
	}
	return policy
}

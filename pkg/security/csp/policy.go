// Package csp builds Content-Security-Policy header values.
package csp

import (
	"maps"
	"slices"
	"strings"
)

// Directive names understood by Policy.Build, in output order.
const (
	DefaultSrc     = "default-src"
	ScriptSrc      = "script-src"
	StyleSrc       = "style-src"
	ImgSrc         = "img-src"
	FontSrc        = "font-src"
	ConnectSrc     = "connect-src"
	FrameAncestors = "frame-ancestors"
	FormAction     = "form-action"
	BaseURI        = "base-uri"
	ObjectSrc      = "object-src"
)

var directiveOrder = []string{
	DefaultSrc, ScriptSrc, StyleSrc, ImgSrc, FontSrc, ConnectSrc,
	FrameAncestors, FormAction, BaseURI, ObjectSrc,
}

// Policy is an immutable CSP policy. With returns a modified copy, so presets
// can be shared between goroutines and extended per route.
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// New returns an empty policy.
func New() Policy {
	return Policy{directives: map[string][]string{}}
}

// With returns a copy of p with directive set to sources. Unknown directive
// names are kept but never rendered.
func (p Policy) With(directive string, sources ...string) Policy {
	next := maps.Clone(p.directives)
	if next == nil {
		next = map[string][]string{}
	}
	next[directive] = slices.Clone(sources)
	p.directives = next
	return p
}

// ReportOnly returns a copy of p in report-only mode.
func (p Policy) ReportOnly(enabled bool) Policy {
	p.reportOnly = enabled
	return p
}

// Build renders the header value. An empty policy renders as "".
func (p Policy) Build() string {
	parts := make([]string, 0, len(p.directives))
	for _, d := range directiveOrder {
		if sources := p.directives[d]; len(sources) > 0 {
			parts = append(parts, d+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName returns the enforcing or the report-only header name.
func (p Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// APIPolicy suits JSON responses that are never rendered as documents.
func APIPolicy() Policy {
	return New().
		With(DefaultSrc, "'none'").
		With(FrameAncestors, "'none'").
		With(BaseURI, "'none'").
		With(FormAction, "'none'")
}

// SwaggerUIPolicy allows what the Swagger UI bundle needs: inline scripts and
// styles, data: images and fonts, and fetching the OpenAPI document from the same origin.
func SwaggerUIPolicy() Policy {
	return New().
		With(DefaultSrc, "'self'").
		With(ScriptSrc, "'self'", "'unsafe-inline'").
		With(StyleSrc, "'self'", "'unsafe-inline'").
		With(ImgSrc, "'self'", "data:").
		With(FontSrc, "'self'", "data:").
		With(ConnectSrc, "'self'").
		With(FrameAncestors, "'none'").
		With(BaseURI, "'self'").
		With(ObjectSrc, "'none'")
}

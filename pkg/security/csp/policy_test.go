package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Build(t *testing.T) {
	assert.Equal(t, "", New().Build())

	p := New().
		With(ConnectSrc, "'self'").
		With(DefaultSrc, "'none'").
		With("sandbox", "allow-forms")
	assert.Equal(t, "default-src 'none'; connect-src 'self'", p.Build())
}

func TestPolicy_WithDoesNotMutateReceiver(t *testing.T) {
	base := APIPolicy()
	extended := base.With(ConnectSrc, "'self'")

	assert.NotContains(t, base.Build(), "connect-src")
	assert.Contains(t, extended.Build(), "connect-src 'self'")
}

func TestPolicy_HeaderName(t *testing.T) {
	p := APIPolicy()
	assert.Equal(t, "Content-Security-Policy", p.HeaderName())
	assert.Equal(t, "Content-Security-Policy-Report-Only", p.ReportOnly(true).HeaderName())
	assert.Equal(t, "Content-Security-Policy", p.HeaderName())
}

func TestPresets(t *testing.T) {
	assert.Equal(t,
		"default-src 'none'; frame-ancestors 'none'; form-action 'none'; base-uri 'none'",
		APIPolicy().Build())

	swagger := SwaggerUIPolicy().Build()
	assert.Contains(t, swagger, "script-src 'self' 'unsafe-inline'")
	assert.Contains(t, swagger, "object-src 'none'")
}

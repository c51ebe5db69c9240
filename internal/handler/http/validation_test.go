package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		cookie   string
		wantCode int
	}{
		{name: "normal request", target: "/api/articles?region=EU&q=vat", cookie: "einvoice_profile=abc", wantCode: http.StatusOK},
		{name: "cookie at limit", target: "/api/articles", cookie: "a=" + strings.Repeat("x", MaxCookieHeaderBytes-2), wantCode: http.StatusOK},
		{name: "cookie too large", target: "/api/articles", cookie: "a=" + strings.Repeat("x", MaxCookieHeaderBytes), wantCode: http.StatusRequestHeaderFieldsTooLarge},
		{name: "path too long", target: "/" + strings.Repeat("p", MaxPathBytes), wantCode: http.StatusRequestURITooLong},
		{name: "query too long", target: "/api/articles?q=" + strings.Repeat("q", MaxQueryBytes), wantCode: http.StatusRequestURITooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", tt.cookie)
			}
			rr := httptest.NewRecorder()
			InputValidation()(okHandler()).ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code)
		})
	}
}

package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCountryCode(t *testing.T) {
	tests := []struct {
		segment string
		want    string
		wantErr bool
	}{
		{"_", "", false},
		{"FR", "FR", false},
		{"de", "DE", false},
		{"eu-west", "EU-WEST", false},
		{"F", "", true},
		{"F1", "", true},
		{"TOOLONGCODE", "", true},
		{"", "", true},
		{"__", "", true},
		{"EU-27", "", true},
		{"../etc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			got, err := ParseCountryCode(tt.segment)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCountryCode)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

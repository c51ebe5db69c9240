package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		message  string
		expected string
	}{
		{
			name:     "simple validation error",
			field:    "days",
			message:  "must be a positive number of days",
			expected: "validation error on field 'days': must be a positive number of days",
		},
		{
			name:     "empty field name",
			field:    "",
			message:  "test message",
			expected: "validation error on field '': test message",
		},
		{
			name:     "empty message",
			field:    "q",
			message:  "",
			expected: "validation error on field 'q': ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &ValidationError{Field: tt.field, Message: tt.message}
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	err := fmt.Errorf("parse filter: %w", &ValidationError{Field: "days", Message: "bad"})

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrNotFound))

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "days", validationErr.Field)
}

func TestSentinelErrors_Uniqueness(t *testing.T) {
	assert.NotEqual(t, ErrNotFound, ErrInvalidInput)
	assert.NotEqual(t, ErrNotFound, ErrNotLoaded)
	assert.NotEqual(t, ErrInvalidInput, ErrNotLoaded)
	assert.False(t, errors.Is(ErrNotLoaded, ErrInvalidInput))
}

package pathutil

import (
	"errors"
	"strings"
)

// NoCountry is the path segment that selects articles without a country.
const NoCountry = "_"

// ErrInvalidCountryCode is returned for a malformed country path segment.
var ErrInvalidCountryCode = errors.New("invalid country code")

// ParseCountryCode validates a country path segment and returns it upper-cased.
// NoCountry yields "" and a nil error.
func ParseCountryCode(segment string) (string, error) {
	if segment == NoCountry {
		return "", nil
	}
	if len(segment) < 2 || len(segment) > 8 {
		return "", ErrInvalidCountryCode
	}
	for _, c := range segment {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '-') {
			return "", ErrInvalidCountryCode
		}
	}
	return strings.ToUpper(segment), nil
}

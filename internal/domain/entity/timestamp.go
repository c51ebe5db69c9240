package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayouts are tried in order when decoding a dataset timestamp.
// The crawler writes naive ISO-8601 strings (no offset), which are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
	time.RFC1123Z,
	time.RFC1123,
}

// Timestamp is a time.Time that decodes the loose timestamp formats found in
// the published datasets. A JSON null or empty string decodes to the zero time.
// A string in no known layout also decodes to the zero time and is kept for
// Unparsed, so one bad value does not reject the whole document.
type Timestamp struct {
	time.Time
	unparsed string
}

// Unparsed returns the original text of a timestamp that matched no layout,
// or "" when decoding succeeded.
func (ts Timestamp) Unparsed() string {
	return ts.unparsed
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s using the dataset layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, &ValidationError{Field: "timestamp", Message: fmt.Sprintf("unrecognised timestamp %q", s)}
}

// MustTimestamp is like ParseTimestamp but panics on error. Intended for tests and fixtures.
func MustTimestamp(s string) Timestamp {
	ts, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	if s == "" {
		*ts = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		*ts = Timestamp{unparsed: s}
		return nil
	}
	*ts = parsed
	return nil
}

// MarshalJSON implements json.Marshaler. The zero time encodes as null.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}

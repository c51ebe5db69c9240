// Package dataset loads the published news, regions and sources documents and
// assembles them into one immutable entity.Dataset.
package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned when a fetched document has no content.
var ErrEmptyDocument = errors.New("document is empty")

// LoadError reports which document failed to fetch or decode. When Load
// returns a LoadError no part of the new dataset is published.
type LoadError struct {
	Document string
	Err      error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Document, e.Err)
}

// Unwrap returns the underlying fetch or decode error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

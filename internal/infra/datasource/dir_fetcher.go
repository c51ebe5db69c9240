package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidDocumentName is returned for names that would leave the directory.
var ErrInvalidDocumentName = errors.New("invalid document name")

// DirFetcher reads documents from a local directory, typically a checkout of
// the repository the crawler publishes to.
type DirFetcher struct {
	dir string
}

// NewDirFetcher returns a fetcher rooted at dir. The directory must exist.
func NewDirFetcher(dir string) (*DirFetcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset dir %s: not a directory", dir)
	}
	return &DirFetcher{dir: dir}, nil
}

// Dir returns the root directory.
func (f *DirFetcher) Dir() string {
	return f.dir
}

// Fetch reads dir/name.
func (f *DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDocumentName, name)
	}
	body, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return body, nil
}

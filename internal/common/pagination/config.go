// Package pagination windows in-memory result lists into pages for the HTTP
// API and reports page metadata alongside the data.
package pagination

// Config bounds page sizes.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns limit=20, max=100.
func DefaultConfig() Config {
	return Config{DefaultLimit: 20, MaxLimit: 100}
}

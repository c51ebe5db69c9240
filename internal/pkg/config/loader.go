// Package config provides fail-open environment loading. A value that is
// missing keeps its default silently; a value that is present but invalid is
// replaced by the default and reported as a warning instead of an error, so a
// typo in one variable never prevents the process from starting.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one environment variable.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnv reads key, parses it and validates it. validate may be nil.
func LoadEnv[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Warning:         fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", key, raw, err, def),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v}
}

// LoadEnvString returns the variable or def when unset. No validation.
func LoadEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// LoadEnvWithFallback loads a validated string.
func LoadEnvWithFallback(key, def string, validate func(string) error) Result[string] {
	return LoadEnv(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// LoadEnvDuration loads a duration in time.ParseDuration syntax.
func LoadEnvDuration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return LoadEnv(key, def, time.ParseDuration, validate)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(key string, def int, validate func(int) error) Result[int] {
	return LoadEnv(key, def, strconv.Atoi, validate)
}

// LoadEnvBool loads a boolean in strconv.ParseBool syntax.
func LoadEnvBool(key string, def bool) Result[bool] {
	return LoadEnv(key, def, strconv.ParseBool, nil)
}

// Loader applies a series of loads for one component, logging and counting
// every fallback. Metrics may be nil.
type Loader struct {
	logger    *slog.Logger
	metrics   *ConfigMetrics
	fallbacks []string
}

// NewLoader returns a Loader that reports to logger and metrics.
func NewLoader(logger *slog.Logger, metrics *ConfigMetrics) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, metrics: metrics}
}

// Track records r under field and returns its value.
func Track[T any](l *Loader, field string, r Result[T]) T {
	if !r.FallbackApplied {
		return r.Value
	}
	l.fallbacks = append(l.fallbacks, field)
	if l.metrics != nil {
		l.metrics.RecordValidationError(field)
		l.metrics.RecordFallback(field)
	}
	l.logger.Warn("configuration fallback applied",
		slog.String("field", field),
		slog.String("warning", r.Warning))
	return r.Value
}

// String loads a validated string under field.
func (l *Loader) String(field, key, def string, validate func(string) error) string {
	return Track(l, field, LoadEnvWithFallback(key, def, validate))
}

// Duration loads a validated duration under field.
func (l *Loader) Duration(field, key string, def time.Duration, validate func(time.Duration) error) time.Duration {
	return Track(l, field, LoadEnvDuration(key, def, validate))
}

// Int loads a validated integer under field.
func (l *Loader) Int(field, key string, def int, validate func(int) error) int {
	return Track(l, field, LoadEnvInt(key, def, validate))
}

// Bool loads a boolean under field.
func (l *Loader) Bool(field, key string, def bool) bool {
	return Track(l, field, LoadEnvBool(key, def))
}

// Fallbacks lists the fields that fell back to their defaults, in load order.
func (l *Loader) Fallbacks() []string {
	return l.fallbacks
}

// Finish publishes the load timestamp and the fallback gauge.
func (l *Loader) Finish() {
	if l.metrics == nil {
		return
	}
	l.metrics.SetFallbackActive(len(l.fallbacks) > 0)
	l.metrics.RecordLoadTimestamp()
}

// LoadEnvStringList splits a comma-separated variable, trimming entries and
// dropping blanks. An unset or all-blank variable yields def.
func LoadEnvStringList(key string, def []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

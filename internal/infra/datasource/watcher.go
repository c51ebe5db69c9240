package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce batches the writes of one publish into a single reload.
const DefaultDebounce = 500 * time.Millisecond

// Watcher calls OnChange after any of the watched documents in a directory is
// created, written or renamed into place, once the directory has been quiet
// for the debounce period.
type Watcher struct {
	dir       string
	documents []string
	debounce  time.Duration
	onChange  func(ctx context.Context)
	logger    *slog.Logger
}

// NewWatcher watches documents inside dir.
func NewWatcher(dir string, documents []string, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		dir:       dir,
		documents: slices.Clone(documents),
		debounce:  DefaultDebounce,
		onChange:  onChange,
		logger:    slog.Default(),
	}
}

// SetDebounce overrides DefaultDebounce.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// SetLogger overrides the default logger.
func (w *Watcher) SetLogger(l *slog.Logger) {
	w.logger = l
}

// Run watches until ctx is done. It watches the directory rather than the
// files so atomic rename-into-place publishes are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := fsw.Close(); err != nil {
			w.logger.Warn("dataset watcher: close failed", slog.Any("error", err))
		}
	}()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("dataset watcher started", slog.String("dir", w.dir))

	// Timers are synchronous since Go 1.23, so Stop and Reset never leave a
	// stale tick behind.
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("dataset document changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("dataset watcher error", slog.Any("error", err))

		case <-timer.C:
			w.onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	return slices.Contains(w.documents, filepath.Base(event.Name))
}

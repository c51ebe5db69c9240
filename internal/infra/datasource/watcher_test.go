package datasource

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_DebouncesRelevantWrites(t *testing.T) {
	dir := t.TempDir()
	var changes atomic.Int32
	fired := make(chan struct{}, 4)

	w := NewWatcher(dir, []string{"news.json"}, func(context.Context) {
		changes.Add(1)
		fired <- struct{}{}
	})
	w.SetDebounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	for i := range 3 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "news.json"), []byte{byte('0' + i)}, 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), changes.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var changes atomic.Int32

	w := NewWatcher(dir, []string{"news.json"}, func(context.Context) { changes.Add(1) })
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.json"), []byte("{}"), 0o600))
	time.Sleep(300 * time.Millisecond)

	assert.Zero(t, changes.Load())
}

func TestWatcher_MissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "nope"), []string{"news.json"}, func(context.Context) {})
	assert.Error(t, w.Run(context.Background()))
}

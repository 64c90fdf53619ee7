package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher runs a watcher on path and returns a counter of callbacks.
func startWatcher(t *testing.T, path string, delay time.Duration) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	w, err := New([]string{path}, func(context.Context) { calls.Add(1) },
		WithDelay(delay), WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	// Give fsnotify time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return &calls
}

func TestNewRequiresPaths(t *testing.T) {
	_, err := New(nil, func(context.Context) {})
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestWatcherCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	calls := startWatcher(t, path, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherSeesAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	calls := startWatcher(t, path, 20*time.Millisecond)

	tmp := filepath.Join(dir, ".jsonl-1.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("{}\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.jsonl")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	calls := startWatcher(t, path, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "orchard.db"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestRunFailsForMissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "absent", "items.jsonl")}, func(context.Context) {},
		WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}

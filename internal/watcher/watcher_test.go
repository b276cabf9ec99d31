package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_DebouncedCallbackOnChange(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan struct{}, 1)
	w := New(dir, func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	w.SetDebounce(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("callback did not fire after file change")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestRun_InvalidRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context) {})

	err := w.Run(context.Background())
	require.Error(t, err)
}

// Package watcher triggers rescans when files under a directory tree
// change. Events are debounced so bursts of writes collapse into one
// rescan.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 2 * time.Second

// Watcher observes a directory tree and invokes a callback after
// changes settle.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(ctx context.Context)
}

// New creates a watcher over root. onChange runs after each debounced
// burst of filesystem events.
func New(root string, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		onChange: onChange,
	}
}

// SetDebounce overrides the debounce interval. Useful in tests.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches until the context is cancelled. Subdirectories created
// while watching are added to the watch set.
func (w *Watcher) Run(ctx context.Context) error {
	if info, err := os.Stat(w.root); err != nil || !info.IsDir() {
		return fmt.Errorf("%q is not a watchable directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, w.root); err != nil {
		return err
	}
	logger.Info("Watching %s for changes", w.root)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			logger.Debug("Filesystem event: %s", event)

			if event.Op.Has(fsnotify.Create) {
				// New directories must be watched too; errors here are
				// non-fatal, the path may already be gone.
				if err := addRecursive(fsw, event.Name); err != nil {
					logger.Debug("Watching new path %s failed: %v", event.Name, err)
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange(ctx)
		}
	}
}

// addRecursive watches path and, when it is a directory, every
// directory below it.
func addRecursive(fsw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Unreadable entries are skipped.
		}
		if d.IsDir() {
			if err := fsw.Add(p); err != nil {
				return fmt.Errorf("watching %s: %w", p, err)
			}
		}
		return nil
	})
}

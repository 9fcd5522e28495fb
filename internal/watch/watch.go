// Package watch re-runs a callback whenever a file on disk changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a burst of events must settle before the
// callback runs again.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a single file. The parent directory is watched so editors
// that replace files by renaming are still noticed.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a Watcher for path
func New(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{path: abs, debounce: debounce, logger: logger}, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string { return w.path }

// Run calls fn once and then after every settled change to the file, until
// ctx is cancelled. Errors from fn are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	w.invoke(ctx, fn)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped", "path", w.path)
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || !relevant(event.Op) {
				continue
			}
			w.logger.Debug("change detected", "path", w.path, "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "path", w.path, "error", err)
		case <-timer.C:
			w.invoke(ctx, fn)
		}
	}
}

func (w *Watcher) invoke(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		w.logger.Error("regeneration failed", "path", w.path, "error", err)
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename)
}

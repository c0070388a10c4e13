package arix

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle coalesces the burst of events editors produce per save.
const watchSettle = 150 * time.Millisecond

// WatchConfig reloads the config file at path whenever it changes and
// passes the result to fn. It blocks until ctx is done. fn runs on the
// watcher goroutine; callers hand the result to their frame loop through a
// channel.
func WatchConfig(ctx context.Context, path string, fn func(Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	// Watch the directory so atomic rename-saves are seen.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config %s: %w", path, err)
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(watchSettle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(Config{}, fmt.Errorf("watch config: %w", err))
		case <-settle:
			settle = nil
			cfg, err := LoadConfig(path)
			fn(cfg, err)
		}
	}
}

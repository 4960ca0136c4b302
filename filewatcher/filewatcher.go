// Package filewatcher reloads a policy file into an engine.Engine
// whenever it changes on disk.
package filewatcher

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rulekit/rulekit/log"
)

// OnReload is called after every reload attempt, successful or not.
// elapsed measures the read+parse+Load duration.
type OnReload func(ctx context.Context, path string, elapsed time.Duration, err error)

// Loader is the subset of engine.Engine's API a FileWatcher needs,
// narrowed for testability.
type Loader interface {
	Load(src, filename string) error
}

// FileWatcher watches a single policy file and reloads it into loader
// on every Create/Write event, per §5's rule that KB loads between
// next_event calls are permitted and only affect subsequent queries.
type FileWatcher struct {
	path     string
	loader   Loader
	onReload OnReload
	logger   log.Logger
}

// New returns a FileWatcher for path, not yet started.
func New(path string, loader Loader, onReload OnReload, logger log.Logger) *FileWatcher {
	if logger == nil {
		logger = log.Global()
	}
	return &FileWatcher{path: path, loader: loader, onReload: onReload, logger: logger}
}

// Start begins watching in a background goroutine and returns once the
// watch is registered. It stops when ctx is canceled.
func (w *FileWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.path); err != nil {
		watcher.Close()
		return err
	}
	w.logger.WithField("path", w.path).Debug("watching policy file")
	go w.run(ctx, watcher)
	return nil
}

func (w *FileWatcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	const reloadMask = fsnotify.Create | fsnotify.Write
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if evt.Op&reloadMask != 0 {
				w.reload(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithField("path", w.path).Warn(err)
		}
	}
}

func (w *FileWatcher) reload(ctx context.Context) {
	t0 := time.Now()
	src, err := os.ReadFile(w.path)
	if err == nil {
		err = w.loader.Load(string(src), w.path)
	}
	elapsed := time.Since(t0)
	if err != nil {
		w.logger.WithField("path", w.path).Warn("reload failed: ", err)
	} else {
		w.logger.WithField("path", w.path).Debug("reloaded policy file")
	}
	if w.onReload != nil {
		w.onReload(ctx, w.path, elapsed, err)
	}
}

// Package configwatcher monitors the configuration file for changes. The
// pipeline's effective configuration is immutable once resolved, so the
// watcher only reports that a change happened; the callback decides what to
// do about it (typically: tell the operator a restart is needed).
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hatch-labs/mirrorship/pkg/log"
)

// defaultDebounce absorbs the bursts of events editors emit when saving.
const defaultDebounce = 100 * time.Millisecond

// Watcher watches a single configuration file and invokes a callback after
// changes settle.
type Watcher struct {
	path     string
	dir      string
	name     string
	debounce time.Duration
	logger   log.Logger

	fs     *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for the given configuration file. The parent
// directory is watched rather than the file itself: editors typically
// replace the file on save, which would drop a file-level watch.
func New(path string, logger log.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fs.Close()
		return nil, err
	}
	dir := filepath.Dir(abs)
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}

	return &Watcher{
		path:     abs,
		dir:      dir,
		name:     filepath.Base(abs),
		debounce: defaultDebounce,
		logger:   logger,
		fs:       fs,
	}, nil
}

// Start begins watching. onChange is invoked with the config path after a
// write or create settles; it runs on the watcher's goroutine schedule, not
// the caller's.
func (w *Watcher) Start(ctx context.Context, onChange func(path string)) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.loop(ctx, onChange)

	w.logger.Info("config watcher started", log.String("path", w.path))
}

// Close stops the watcher and releases the underlying file descriptor.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fs.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop(ctx context.Context, onChange func(string)) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(onChange)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

// schedule resets the debounce timer; onChange fires once the burst ends.
func (w *Watcher) schedule(onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		onChange(w.path)
	})
}

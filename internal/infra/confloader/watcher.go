// Package confloader provides configuration loading for relaychat.
package confloader

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/yndnr/relaychat-go/internal/telemetry/logger"
)

// Watcher watches configuration files for changes.
//
// relaychat uses it for live log-level changes: editing the config
// file takes effect without restarting the relay or dropping sessions.
type Watcher struct {
	watcher   *fsnotify.Watcher
	callbacks []func(string)
	mu        sync.RWMutex
	done      chan struct{}
	log       logger.Logger
}

// NewWatcher creates a new configuration file watcher.
func NewWatcher(log logger.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Default()
	}

	return &Watcher{
		watcher:   w,
		callbacks: make([]func(string), 0),
		done:      make(chan struct{}),
		log:       log,
	}, nil
}

// Watch adds a file to watch.
func (w *Watcher) Watch(path string) error {
	// Watch the directory, not the file, to catch vim-style renames.
	dir := filepath.Dir(path)
	if err := w.watcher.Add(dir); err != nil {
		w.log.Error("failed to watch directory", "path", dir, "error", err)
		return err
	}
	w.log.Debug("watching for config changes",
		"path", dir,
		"file", filepath.Base(path))
	return nil
}

// OnChange registers a callback invoked with the changed file's path.
func (w *Watcher) OnChange(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start starts watching for changes. Blocks until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.log.Debug("config file changed",
					"file", event.Name,
					"op", event.Op.String())
				w.notifyCallbacks(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}

// notifyCallbacks calls all registered callbacks.
func (w *Watcher) notifyCallbacks(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		cb(path)
	}
}

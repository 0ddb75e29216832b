package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// Watcher reloads the configuration when files in the config directory
// change and notifies registered callbacks. Invalid reloads are logged and
// dropped; the previous configuration stays current.
type Watcher struct {
	loader    *Loader
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// NewWatcher starts watching the loader's directory.
func NewWatcher(loader *Loader, initial *Config, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(loader.BasePath()); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", loader.BasePath(), err)
	}

	w := &Watcher{
		loader:  loader,
		config:  initial,
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("path", loader.BasePath()),
		zap.String("environment", string(initial.Environment)))
	return w, nil
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}
			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()))
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) reload() {
	next, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	if reflect.DeepEqual(withoutSources(w.config), withoutSources(next)) {
		w.mu.Unlock()
		return
	}
	w.config = next
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(next)
	}
	w.logger.Info("Configuration reloaded",
		zap.Strings("sources", next.LoadedFrom),
		zap.Int("callbacks_notified", len(callbacks)))
}

func withoutSources(c *Config) Config {
	cp := *c
	cp.LoadedFrom = nil
	return cp
}

// OnChange registers a callback run after every successful reload.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Current returns the latest valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop ends the watch loop.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

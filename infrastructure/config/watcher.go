package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher hot reloads the YAML overlay file when it changes. It is only
// active in development and only when an overlay file is configured;
// otherwise it is inert and Close is a no-op.
type Watcher struct {
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
}

// NewWatcher creates a configuration watcher around the initial config.
func NewWatcher(initial *Config, logger *zap.Logger) (*Watcher, error) {
	w := &Watcher{
		config: initial,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if !initial.IsDevelopment() || initial.ConfigFile == "" {
		logger.Debug("Configuration hot reloading disabled",
			zap.String("environment", initial.Environment),
		)
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(initial.ConfigFile); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file %s: %w", initial.ConfigFile, err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("file", initial.ConfigFile),
	)
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Close stops the watch loop.
func (w *Watcher) Close() error {
	close(w.stopCh)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	fresh, err := LoadConfig()
	if err != nil {
		w.logger.Warn("Config reload failed, keeping previous configuration",
			zap.Error(err),
		)
		return
	}

	w.mu.Lock()
	w.config = fresh
	callbacks := append([]func(*Config){}, w.callbacks...)
	w.mu.Unlock()

	w.logger.Info("Configuration reloaded",
		zap.String("file", fresh.ConfigFile),
	)
	for _, cb := range callbacks {
		cb(fresh)
	}
}

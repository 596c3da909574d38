package config

import (
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domaincfg "inklings-backend/domain/config"
)

// Watcher serves the current search tuning and hot-reloads it when the
// config file changes. Readers never block: the active configuration sits
// behind an atomic pointer swap.
type Watcher struct {
	path    string
	current atomic.Pointer[domaincfg.DomainConfig]
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
}

// NewWatcher creates a watcher seeded with the loaded configuration.
// With an empty path the watcher is static and Start is a no-op.
func NewWatcher(path string, initial domaincfg.DomainConfig, logger *zap.Logger) *Watcher {
	w := &Watcher{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}
	w.current.Store(&initial)
	return w
}

// Current returns the active search tuning
func (w *Watcher) Current() domaincfg.DomainConfig {
	return *w.current.Load()
}

// Start begins watching the config file's directory. Editors replace files
// rather than writing in place, so the directory is watched and events are
// filtered by name.
func (w *Watcher) Start() error {
	if w.path == "" {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = fsw
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}

	go w.loop()
	return nil
}

// Stop ends the watch loop
func (w *Watcher) Stop() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) loop() {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid config reload", zap.Error(err))
		return
	}
	tuning := cfg.Domain()
	w.current.Store(&tuning)
	w.logger.Info("search tuning reloaded",
		zap.Float64("similarity_threshold", tuning.SimilarityThreshold),
		zap.Int("default_limit", tuning.DefaultSearchLimit),
		zap.Int("max_limit", tuning.MaxSearchLimit),
	)
}

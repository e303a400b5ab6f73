package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-parses a config file whenever it changes and delivers the
// parsed result. Long rollout runs use it to reconfigure the environment
// between episodes. A config that fails to parse is logged and dropped,
// the previous one stays in effect.
type Watcher struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	updates chan *EnvConfig
	done    chan struct{}
}

// Watch starts watching the given config file.
func Watch(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	// watch the directory: editors typically replace the file on save
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		path:    abs,
		logger:  logger,
		watcher: fsw,
		updates: make(chan *EnvConfig, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Updates delivers each successfully re-parsed config. Only the latest
// config is kept if the consumer lags behind.
func (w *Watcher) Updates() <-chan *EnvConfig {
	return w.updates
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			cfg, err := Load(w.path, w.logger)
			if err != nil {
				w.logger.Warn("ignoring config update",
					zap.String("path", w.path), zap.Error(err))
				continue
			}
			if err := cfg.Validate(); err != nil {
				w.logger.Warn("ignoring invalid config update",
					zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.push(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return abs == w.path
}

func (w *Watcher) push(cfg *EnvConfig) {
	// drop the stale update before delivering the fresh one
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- cfg:
		w.logger.Info("config updated", zap.String("path", w.path))
	case <-w.done:
	}
}

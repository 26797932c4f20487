package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Watcher watches the mounted secret/config directory and invokes a reload
// callback on change, so the engine never re-reads secrets synchronously
// mid-request.
type Watcher struct {
	fsw *fsnotify.Watcher
	log logr.Logger
}

// NewWatcher starts watching dir and delivers a freshly-loaded, validated
// Config to onReload whenever a file under dir changes. Load errors during
// reload are logged and skipped; the previous Config remains in effect.
func NewWatcher(dir string, log logr.Logger, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, log: log.WithName("config-watcher")}

	go w.run(onReload)

	return w, nil
}

func (w *Watcher) run(onReload func(*Config)) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load()
			if err != nil {
				w.log.Error(err, "config reload failed, keeping previous configuration")
				continue
			}
			w.log.Info("configuration reloaded", "path", event.Name)
			onReload(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error(err, "config watcher error")
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

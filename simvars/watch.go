package simvars

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"instrument-panel/log"
)

// Watcher reloads the settings file into a Store whenever it changes on
// disk. The directory is watched rather than the file so that editors
// which replace the file are noticed too.
type Watcher struct {
	path     string
	store    *Store
	lg       *log.Logger
	onChange func(Config)
	fw       *fsnotify.Watcher
	done     chan struct{}
}

// Watch starts watching path. onChange, if not nil, runs on the watcher's
// goroutine after each successful reload.
func Watch(path string, store *Store, lg *log.Logger, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		store:    store,
		lg:       lg,
		onChange: onChange,
		fw:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.lg.Warn("settings watcher", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reload() {
	c, err := LoadConfig(w.path)
	if err != nil {
		// Keep the previous settings; the file is likely mid-edit
		w.lg.Warn("settings reload failed", slog.String("path", w.path), slog.Any("error", err))
		return
	}
	w.store.ApplyConfig(c)
	w.lg.Info("settings reloaded", slog.String("path", w.path))
	if w.onChange != nil {
		w.onChange(c)
	}
}

// Close stops watching and waits for the watcher goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	<-w.done
	return err
}

package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher pushes fsnotify write events for watched settings files to a
// per-path callback. This is the primary live-reload path; a caller (e.g.
// sandbox.Sandbox.TickSettingsReload) should additionally poll
// Settings.ReloadIfChanged on its own tick cadence as a fallback, since
// fsnotify delivery is platform-dependent and can miss events under
// network filesystems or rapid rewrite-via-rename saves.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu       sync.Mutex
	watchers map[string]func()
}

// NewWatcher starts an fsnotify watcher and its event-dispatch goroutine.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, watchers: make(map[string]func())}
	go w.run()
	return w, nil
}

// Watch registers onChange to fire whenever path is written to. fsnotify
// watches at directory granularity, so Watch adds path's parent directory
// and filters events down to path itself.
func (w *Watcher) Watch(path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.watchers[abs] = onChange
	w.mu.Unlock()
	return w.fsw.Add(filepath.Dir(abs))
}

// Unwatch stops notifying for path.
func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	delete(w.watchers, abs)
	w.mu.Unlock()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			cb, ok := w.watchers[abs]
			w.mu.Unlock()
			if ok {
				cb()
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher's goroutine and releases its fsnotify handle.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

package texpos

import (
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce drops repeated events for one file; editors often
// write a file several times when saving.
const reloadDebounce = 100 * time.Millisecond

// Watcher reports changed image files under the watched directories.
//
// Events are delivered on a channel so the host can call Manager.Reload
// from the thread that owns the rendering backend:
//
//	for {
//	    select {
//	    case path := <-w.Events:
//	        _ = m.Reload(path)
//	    default:
//	    }
//	    // draw frame
//	}
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dirs (non-recursively).
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// WatchDirs returns the directories holding the manifest's files,
// joined to root and de-duplicated.
func WatchDirs(root string, m Manifest) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, e := range m.Assets {
		dir := filepath.Join(root, filepath.FromSlash(path.Dir(cleanAssetPath(e.Path))))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var d debouncer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isImageFile(event.Name) {
				continue
			}
			if !d.allow(event.Name, time.Now()) {
				continue
			}
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// debouncer remembers when each file was last reported. Entries older
// than reloadDebounce are dropped, so the map only holds files changed
// within the window.
type debouncer struct {
	last map[string]time.Time
}

// allow reports whether an event for name at now should be delivered.
func (d *debouncer) allow(name string, now time.Time) bool {
	if d.last == nil {
		d.last = make(map[string]time.Time)
	}
	for n, t := range d.last {
		if now.Sub(t) >= reloadDebounce {
			delete(d.last, n)
		}
	}
	if _, ok := d.last[name]; ok {
		return false
	}
	d.last[name] = now
	return true
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".bmp", ".gif", ".jpg", ".jpeg", ".tif", ".tiff", ".webp":
		return true
	default:
		return false
	}
}

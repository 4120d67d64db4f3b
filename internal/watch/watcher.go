// Package watch reports changes to env files on disk.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// FileWatcher signals when any watched file is written, created or
// replaced. It watches the parent directories rather than the files, so a
// file replaced by rename, as an atomic save does, stays watched.
type FileWatcher struct {
	Debounce time.Duration

	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	onChange chan struct{}
	errs     chan error
	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	once     sync.Once
}

func NewFileWatcher() (*FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		Debounce: DefaultDebounce,
		watcher:  fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		onChange: make(chan struct{}, 1),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

// Add watches path, which does not need to exist yet.
func (w *FileWatcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if w.files[absPath] {
		return nil
	}

	dir := filepath.Dir(absPath)
	if !w.dirs[dir] {
		if _, err := os.Stat(dir); err != nil {
			return err
		}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[absPath] = true
	return nil
}

// Start begins delivering events. Bursts of events within Debounce are
// reported once.
func (w *FileWatcher) Start() <-chan struct{} {
	go w.run()
	return w.onChange
}

// Errors delivers watcher errors. Errors are dropped while one is pending.
func (w *FileWatcher) Errors() <-chan error {
	return w.errs
}

func (w *FileWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.mu.Lock()
			watched := w.files[filepath.Clean(event.Name)]
			w.mu.Unlock()
			if watched {
				w.trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *FileWatcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, func() {
		select {
		case w.onChange <- struct{}{}:
		default:
		}
	})
}

func (w *FileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}

func (w *FileWatcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

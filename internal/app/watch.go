package app

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a single file and calls back when it is written,
// created or replaced. Editors often save by renaming a temporary file over
// the original, so the parent directory is watched and events are filtered
// by name.
type FileWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	onChange func(path string) // Called from the watcher goroutine

	mu      sync.Mutex
	timer   *time.Timer
	stopped chan struct{}
}

// NewFileWatcher creates a watcher for path. Events arriving within
// debounce of each other are coalesced into one callback.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &FileWatcher{
		path:     abs,
		debounce: debounce,
		watcher:  w,
		stopped:  make(chan struct{}),
	}, nil
}

// OnChange sets the callback. It runs on a timer goroutine and must not
// touch UI or document state directly.
func (f *FileWatcher) OnChange(callback func(path string)) {
	f.onChange = callback
}

// Path returns the absolute path being watched.
func (f *FileWatcher) Path() string { return f.path }

// Start begins watching in a background goroutine.
func (f *FileWatcher) Start() {
	go f.watchLoop()
}

// Stop stops the watcher goroutine and releases the OS watch.
func (f *FileWatcher) Stop() {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.mu.Unlock()
	f.watcher.Close()
	<-f.stopped
}

func (f *FileWatcher) watchLoop() {
	defer close(f.stopped)
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				f.schedule()
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %s: %v", f.path, err)
		}
	}
}

func (f *FileWatcher) schedule() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		if f.onChange != nil {
			f.onChange(f.path)
		}
	})
}

// WatchDocument watches the current annotation file and signals on
// ExternalChanges when it changes on disk. It returns nil when the document
// has no file yet. The watcher never touches the document itself; the
// receiver calls CheckExternalChange from the goroutine that owns it.
func (s *State) WatchDocument(debounce time.Duration) (*FileWatcher, error) {
	path := s.Document.Path()
	if path == "" {
		return nil, nil
	}
	w, err := NewFileWatcher(path, debounce)
	if err != nil {
		return nil, err
	}
	w.OnChange(s.signalExternalChange)
	w.Start()
	return w, nil
}

// ExternalChanges returns the channel WatchDocument signals on. Pending
// signals are coalesced.
func (s *State) ExternalChanges() <-chan string { return s.externalChanges }

func (s *State) signalExternalChange(path string) {
	select {
	case s.externalChanges <- path:
	default:
	}
}

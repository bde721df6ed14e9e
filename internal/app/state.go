// Package app provides application state, events and file watching.
package app

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/internal/image"
)

// State holds the application state: the image being annotated and its
// annotation document.
type State struct {
	mu sync.RWMutex

	Image    *image.Layer
	Document *annotation.Document

	// Modification time of the annotation file when we last read or wrote
	// it, used to tell our own saves from external edits.
	fileModTime time.Time

	listeners map[EventType][]EventListener

	// externalChanges carries paths from the file watcher to the goroutine
	// that owns the document.
	externalChanges chan string
}

// EventType identifies different application events.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventDocumentLoaded
	EventDocumentSaved
	EventOverlaysChanged
	EventSelectionChanged
	EventStateChanged
	EventModified
	EventExternalChange
)

func (e EventType) String() string {
	switch e {
	case EventImageLoaded:
		return "ImageLoaded"
	case EventDocumentLoaded:
		return "DocumentLoaded"
	case EventDocumentSaved:
		return "DocumentSaved"
	case EventOverlaysChanged:
		return "OverlaysChanged"
	case EventSelectionChanged:
		return "SelectionChanged"
	case EventStateChanged:
		return "StateChanged"
	case EventModified:
		return "Modified"
	case EventExternalChange:
		return "ExternalChange"
	default:
		return fmt.Sprintf("EventType(%d)", int(e))
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state with an empty document.
func NewState() *State {
	s := &State{
		listeners:       make(map[EventType][]EventListener),
		externalChanges: make(chan string, 1),
	}
	s.setDocument(annotation.New())
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Modified reports whether the document has unsaved changes.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Document.Dirty()
}

// LoadImage loads the image to annotate. When annotationsPath is empty the
// annotation file next to the image is opened, or a new document is started
// if there is none.
func (s *State) LoadImage(path, annotationsPath string) error {
	layer, err := image.Load(path)
	if err != nil {
		return err
	}

	if annotationsPath == "" {
		annotationsPath = annotation.DefaultPath(path)
	}
	doc, err := annotation.LoadOrNew(annotationsPath)
	if err != nil {
		return err
	}
	if doc.ImagePath() == "" {
		doc.SetImagePath(path)
	}

	s.mu.Lock()
	s.Image = layer
	s.mu.Unlock()
	log.Printf("app: loaded image %s (%dx%d)", path, layer.Width(), layer.Height())
	s.Emit(EventImageLoaded, layer)

	s.setDocument(doc)
	s.Emit(EventDocumentLoaded, doc)
	return nil
}

// OpenAnnotations replaces the document with the contents of path and loads
// the image it refers to when that differs from the current one.
func (s *State) OpenAnnotations(path string) error {
	doc, err := annotation.Load(path)
	if err != nil {
		return err
	}

	if img := doc.ImagePath(); img != "" && (s.Image == nil || s.Image.Path != img) {
		layer, err := image.Load(img)
		if err != nil {
			return fmt.Errorf("annotations %s: %w", path, err)
		}
		s.mu.Lock()
		s.Image = layer
		s.mu.Unlock()
		s.Emit(EventImageLoaded, layer)
	}

	s.setDocument(doc)
	s.Emit(EventDocumentLoaded, doc)
	return nil
}

// SaveAnnotations writes the document to its file.
func (s *State) SaveAnnotations() error {
	return s.SaveAnnotationsAs(s.Document.Path())
}

// SaveAnnotationsAs writes the document to path.
func (s *State) SaveAnnotationsAs(path string) error {
	if path == "" {
		return annotation.ErrNoPath
	}
	if err := s.Document.SaveAs(path); err != nil {
		return err
	}
	s.recordModTime()
	s.Emit(EventDocumentSaved, path)
	s.Emit(EventModified, false)
	return nil
}

// CheckExternalChange reloads the document when its file was changed by
// someone else. It reports whether a reload happened.
func (s *State) CheckExternalChange() (bool, error) {
	path := s.Document.Path()
	if path == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, nil
	}

	s.mu.RLock()
	same := info.ModTime().Equal(s.fileModTime)
	s.mu.RUnlock()
	if same {
		return false, nil
	}

	if err := s.Document.Reload(); err != nil {
		return false, err
	}
	s.recordModTime()
	log.Printf("app: reloaded %s after external change", path)
	s.Emit(EventExternalChange, path)
	return true, nil
}

func (s *State) setDocument(doc *annotation.Document) {
	s.mu.Lock()
	s.Document = doc
	s.mu.Unlock()

	doc.OnChange(func() {
		s.Emit(EventOverlaysChanged, doc)
		s.Emit(EventModified, doc.Dirty())
	})
	s.recordModTime()
}

func (s *State) recordModTime() {
	var mod time.Time
	if path := s.Document.Path(); path != "" {
		if info, err := os.Stat(path); err == nil {
			mod = info.ModTime()
		}
	}
	s.mu.Lock()
	s.fileModTime = mod
	s.mu.Unlock()
}

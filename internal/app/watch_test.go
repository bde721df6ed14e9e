package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/geometry"
)

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewFileWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileWatcher: %v", err)
	}
	changes := make(chan string, 4)
	w.OnChange(func(p string) { changes <- p })
	w.Start()
	defer w.Stop()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"version":1}`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case got := <-changes:
		if got != w.Path() {
			t.Errorf("path: got %q, want %q", got, w.Path())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
}

// TestWatchDocument_ReloadsOnReceiver checks that the watcher only signals:
// the document and view change when the receiving goroutine asks, while it
// keeps hit-testing the view in between. Run with -race.
func TestWatchDocument_ReloadsOnReceiver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.annotations.json")
	s := NewState()
	s.Document.Add(geometry.NewRect(0, 0, 10, 10), "first")
	if err := s.SaveAnnotationsAs(path); err != nil {
		t.Fatal(err)
	}

	v := overlay.NewView()
	v.SetDataSource(s.Document)
	v.SetDelegate(s.Document)
	s.On(EventOverlaysChanged, func(interface{}) { v.ReloadData() })

	w, err := s.WatchDocument(20 * time.Millisecond)
	if err != nil || w == nil {
		t.Fatalf("WatchDocument: %v, %v", w, err)
	}
	defer w.Stop()

	other := annotation.New()
	other.Add(geometry.NewRect(0, 0, 10, 10), "first")
	other.Add(geometry.NewRect(20, 20, 10, 10), "second")
	if err := other.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-s.ExternalChanges():
			if got != w.Path() {
				t.Errorf("path: got %q, want %q", got, w.Path())
			}
			if v.NumberOfOverlays() != 1 {
				t.Fatalf("view changed before the receiver reloaded: %d overlays", v.NumberOfOverlays())
			}
			reloaded, err := s.CheckExternalChange()
			if err != nil || !reloaded {
				t.Fatalf("CheckExternalChange: %v, %v", reloaded, err)
			}
			if n := v.NumberOfOverlays(); n != 2 {
				t.Errorf("overlays after reload: got %d, want 2", n)
			}
			if hit := v.HitTest(geometry.Point2D{X: 25, Y: 25}, 0); hit.Index != 1 {
				t.Errorf("hit after reload: got %d, want 1", hit.Index)
			}
			return
		case <-deadline:
			t.Fatal("no change signal")
		default:
			v.HitTest(geometry.Point2D{X: 5, Y: 5}, 0)
			time.Sleep(time.Millisecond)
		}
	}
}

func TestSignalExternalChange_Coalesces(t *testing.T) {
	s := NewState()
	for i := 0; i < 3; i++ {
		s.signalExternalChange("a.json")
	}
	if got := len(s.ExternalChanges()); got != 1 {
		t.Errorf("pending signals: got %d, want 1", got)
	}
}

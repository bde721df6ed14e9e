package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileVersion is the current annotation file format version.
const FileVersion = 1

// ErrNoPath is returned by Save when the document has no file yet.
var ErrNoPath = errors.New("annotation: document has no file path")

// File is the JSON form of a document (.annotations.json).
type File struct {
	Version  int        `json:"version"`
	Created  time.Time  `json:"created"`
	Modified time.Time  `json:"modified"`
	Image    string     `json:"image,omitempty"` // relative to the annotation file
	Overlays []*Overlay `json:"overlays"`
}

// DefaultPath returns the annotation file that sits next to an image:
// photo.png becomes photo.annotations.json.
func DefaultPath(imagePath string) string {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	return base + ".annotations.json"
}

// Load reads a document from an annotation file.
func Load(path string) (*Document, error) {
	d := New()
	if err := d.read(path); err != nil {
		return nil, err
	}
	d.path = path
	return d, nil
}

// LoadOrNew loads the annotation file if it exists and otherwise returns an
// empty document bound to path.
func LoadOrNew(path string) (*Document, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		d := New()
		d.path = path
		return d, nil
	}
	return Load(path)
}

// Reload replaces the overlays with the current contents of the document's
// file and notifies change listeners.
func (d *Document) Reload() error {
	if d.path == "" {
		return ErrNoPath
	}
	if err := d.read(d.path); err != nil {
		return err
	}
	d.dirty = false
	d.changed(false)
	return nil
}

func (d *Document) read(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read annotations: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse annotations %s: %w", path, err)
	}
	if f.Version > FileVersion {
		return fmt.Errorf("annotations %s: unsupported version %d", path, f.Version)
	}

	overlays := make([]*Overlay, 0, len(f.Overlays))
	maxID := 0
	for _, o := range f.Overlays {
		if o == nil {
			continue
		}
		o.Rect = o.Rect.Normalize()
		if o.Rect.IsNaN() {
			return fmt.Errorf("annotations %s: overlay %d has an invalid rectangle", path, o.ID)
		}
		overlays = append(overlays, o)
		if o.ID > maxID {
			maxID = o.ID
		}
	}
	// Files written by hand may omit IDs.
	for _, o := range overlays {
		if o.ID <= 0 {
			maxID++
			o.ID = maxID
		}
	}

	d.overlays = overlays
	d.nextID = maxID + 1
	d.imagePath = ""
	if f.Image != "" {
		if filepath.IsAbs(f.Image) {
			d.imagePath = f.Image
		} else {
			d.imagePath = filepath.Join(filepath.Dir(path), f.Image)
		}
	}
	return nil
}

// Save writes the document to its file.
func (d *Document) Save() error {
	if d.path == "" {
		return ErrNoPath
	}
	return d.SaveAs(d.path)
}

// SaveAs writes the document to path and makes it the document's file.
func (d *Document) SaveAs(path string) error {
	now := time.Now()
	f := File{
		Version:  FileVersion,
		Created:  now,
		Modified: now,
		Overlays: d.overlays,
	}
	if f.Overlays == nil {
		f.Overlays = []*Overlay{}
	}
	if prev, err := readHeader(path); err == nil && !prev.Created.IsZero() {
		f.Created = prev.Created
	}
	if d.imagePath != "" {
		rel, err := filepath.Rel(filepath.Dir(path), d.imagePath)
		if err != nil {
			f.Image = d.imagePath
		} else {
			f.Image = rel
		}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotations: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write annotations: %w", err)
	}

	d.path = path
	d.dirty = false
	log.Printf("annotation: saved %d overlays to %s", len(d.overlays), path)
	return nil
}

func readHeader(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

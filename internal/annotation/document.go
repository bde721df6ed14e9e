// Package annotation holds the overlay list the application edits and its
// on-disk form. A Document is both the data source and the delegate of an
// overlay.View.
package annotation

import (
	"log"
	"sort"

	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/geometry"
)

// Overlay is one annotated region of the image.
type Overlay struct {
	ID    int           `json:"id"`
	Rect  geometry.Rect `json:"rect"`
	Label string        `json:"label,omitempty"`
}

// Document is an ordered, mutable list of overlays.
type Document struct {
	path      string
	imagePath string
	overlays  []*Overlay
	nextID    int
	dirty     bool

	permissions *overlay.Permission

	onChange []func()
	onClick  func(*Overlay, overlay.Click)
}

// New creates an empty document.
func New() *Document {
	return &Document{nextID: 1}
}

// Len returns the number of overlays.
func (d *Document) Len() int { return len(d.overlays) }

// Overlay returns the overlay at index i, or nil when out of range.
func (d *Document) Overlay(i int) *Overlay {
	if i < 0 || i >= len(d.overlays) {
		return nil
	}
	return d.overlays[i]
}

// Overlays returns a copy of the overlay list in display order.
func (d *Document) Overlays() []*Overlay {
	return append([]*Overlay(nil), d.overlays...)
}

// IndexOf returns the index of the overlay with the given ID, or -1.
func (d *Document) IndexOf(id int) int {
	for i, o := range d.overlays {
		if o.ID == id {
			return i
		}
	}
	return -1
}

// Dirty reports whether the document changed since it was loaded or saved.
func (d *Document) Dirty() bool { return d.dirty }

// Path returns the file the document was loaded from or last saved to.
func (d *Document) Path() string { return d.path }

// SetPath sets the file used by Save.
func (d *Document) SetPath(path string) { d.path = path }

// ImagePath returns the absolute path of the annotated image, if known.
func (d *Document) ImagePath() string { return d.imagePath }

// SetImagePath records the annotated image.
func (d *Document) SetImagePath(path string) { d.imagePath = path }

// OnChange registers a callback run after every mutation. Hosts use it to
// call ReloadData on their views.
func (d *Document) OnChange(fn func()) {
	d.onChange = append(d.onChange, fn)
}

// OnClick sets the callback for clicks routed from a view.
func (d *Document) OnClick(fn func(*Overlay, overlay.Click)) {
	d.onClick = fn
}

// SetPermissions makes the document answer permission queries with p.
// A nil p leaves the view defaults alone.
func (d *Document) SetPermissions(p *overlay.Permission) {
	d.permissions = p
	d.changed(false)
}

// Add appends a new overlay and returns it.
func (d *Document) Add(rect geometry.Rect, label string) *Overlay {
	o := &Overlay{ID: d.nextID, Rect: rect.Normalize(), Label: label}
	d.nextID++
	d.overlays = append(d.overlays, o)
	d.changed(true)
	return o
}

// Remove deletes the overlay with the given ID. It reports whether one was
// found.
func (d *Document) Remove(id int) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	d.overlays = append(d.overlays[:i], d.overlays[i+1:]...)
	d.changed(true)
	return true
}

// RemoveIndexes deletes the overlays at the given indexes.
func (d *Document) RemoveIndexes(indexes []int) int {
	sorted := append([]int(nil), indexes...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	removed := 0
	last := -1
	for _, i := range sorted {
		if i == last || i < 0 || i >= len(d.overlays) {
			continue
		}
		d.overlays = append(d.overlays[:i], d.overlays[i+1:]...)
		last = i
		removed++
	}
	if removed > 0 {
		d.changed(true)
	}
	return removed
}

// SetRect replaces the rectangle of an overlay.
func (d *Document) SetRect(id int, rect geometry.Rect) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	d.overlays[i].Rect = rect.Normalize()
	d.changed(true)
	return true
}

// SetLabel replaces the label of an overlay.
func (d *Document) SetLabel(id int, label string) bool {
	i := d.IndexOf(id)
	if i < 0 {
		return false
	}
	if d.overlays[i].Label == label {
		return true
	}
	d.overlays[i].Label = label
	d.changed(true)
	return true
}

// Log writes every overlay to the standard logger.
func (d *Document) Log() {
	log.Printf("annotation: %d overlays", len(d.overlays))
	for i, o := range d.overlays {
		if o.Label != "" {
			log.Printf("annotation: [%d] #%d %v %q", i, o.ID, o.Rect, o.Label)
		} else {
			log.Printf("annotation: [%d] #%d %v", i, o.ID, o.Rect)
		}
	}
}

func (d *Document) changed(dirty bool) {
	if dirty {
		d.dirty = true
	}
	for _, fn := range d.onChange {
		fn()
	}
}

// resolve finds the overlay a view reference points at. The object is
// preferred since indexes shift when overlays are removed.
func (d *Document) resolve(ref overlay.Ref) *Overlay {
	if o, ok := ref.Object.(*Overlay); ok && o != nil {
		if d.IndexOf(o.ID) >= 0 {
			return o
		}
		return nil
	}
	return d.Overlay(ref.Index)
}

// NumberOfOverlays implements overlay.DataSource.
func (d *Document) NumberOfOverlays() int { return len(d.overlays) }

// OverlayRect implements overlay.DataSource.
func (d *Document) OverlayRect(i int) geometry.Rect { return d.overlays[i].Rect }

// OverlayObject implements overlay.ObjectSource.
func (d *Document) OverlayObject(i int) any { return d.overlays[i] }

// OverlayPermissions implements overlay.PermissionProvider.
func (d *Document) OverlayPermissions(defaults overlay.Permission) overlay.Permission {
	if d.permissions != nil {
		return *d.permissions
	}
	return defaults
}

// OverlayCreated implements overlay.Creator.
func (d *Document) OverlayCreated(rect geometry.Rect) {
	o := d.Add(rect, "")
	log.Printf("annotation: created #%d %v", o.ID, o.Rect)
}

// OverlayModified implements overlay.Modifier.
func (d *Document) OverlayModified(ref overlay.Ref, rect geometry.Rect) {
	o := d.resolve(ref)
	if o == nil {
		log.Printf("annotation: modify of unknown overlay %d ignored", ref.Index)
		return
	}
	d.SetRect(o.ID, rect)
	log.Printf("annotation: modified #%d %v", o.ID, o.Rect)
}

// OverlayDeleted implements overlay.Deleter.
func (d *Document) OverlayDeleted(ref overlay.Ref) {
	o := d.resolve(ref)
	if o == nil {
		log.Printf("annotation: delete of unknown overlay %d ignored", ref.Index)
		return
	}
	d.Remove(o.ID)
	log.Printf("annotation: deleted #%d", o.ID)
}

// OverlayClicked implements overlay.Clicker.
func (d *Document) OverlayClicked(ref overlay.Ref, click overlay.Click) {
	o := d.resolve(ref)
	if o == nil || d.onClick == nil {
		return
	}
	d.onClick(o, click)
}

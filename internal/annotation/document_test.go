package annotation

import (
	"reflect"
	"testing"

	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/geometry"
)

func newViewOver(d *Document) *overlay.View {
	v := overlay.NewView()
	v.SetDataSource(d)
	v.SetDelegate(d)
	d.OnChange(v.ReloadData)
	return v
}

func press(x, y float64) overlay.Event {
	return overlay.Event{Point: geometry.Point2D{X: x, Y: y}, Scale: 1}
}

func drag(v *overlay.View, from, to overlay.Event) {
	v.PointerDown(from)
	v.PointerDragged(to)
	v.PointerUp(to)
}

func TestDocument_AddRemove(t *testing.T) {
	d := New()
	a := d.Add(geometry.NewRect(10, 10, -5, 5), "a")
	b := d.Add(geometry.NewRect(20, 20, 5, 5), "b")

	if a.ID == b.ID {
		t.Fatalf("IDs must be unique, got %d twice", a.ID)
	}
	if a.Rect != geometry.NewRect(5, 10, 5, 5) {
		t.Errorf("Add should normalize, got %v", a.Rect)
	}
	if !d.Dirty() {
		t.Error("document should be dirty after Add")
	}

	if !d.Remove(a.ID) || d.Len() != 1 || d.Overlay(0) != b {
		t.Errorf("Remove: len %d, first %+v", d.Len(), d.Overlay(0))
	}
	if d.Remove(a.ID) {
		t.Error("removing twice should report false")
	}
	if d.Overlay(5) != nil {
		t.Error("out of range Overlay should be nil")
	}
}

func TestDocument_RemoveIndexes(t *testing.T) {
	d := New()
	for i := 0; i < 5; i++ {
		d.Add(geometry.NewRect(float64(i*20), 0, 10, 10), "")
	}

	if n := d.RemoveIndexes([]int{3, 1, 1, 9}); n != 2 {
		t.Errorf("removed: got %d, want 2", n)
	}
	var ids []int
	for _, o := range d.Overlays() {
		ids = append(ids, o.ID)
	}
	if want := []int{1, 3, 5}; !reflect.DeepEqual(ids, want) {
		t.Errorf("remaining IDs: got %v, want %v", ids, want)
	}
}

func TestDocument_OnChange(t *testing.T) {
	d := New()
	calls := 0
	d.OnChange(func() { calls++ })

	o := d.Add(geometry.NewRect(0, 0, 1, 1), "")
	d.SetLabel(o.ID, "x")
	d.SetLabel(o.ID, "x")
	d.SetRect(o.ID, geometry.NewRect(0, 0, 2, 2))

	if calls != 3 {
		t.Errorf("change notifications: got %d, want 3", calls)
	}
}

func TestDocument_DrivesView(t *testing.T) {
	d := New()
	v := newViewOver(d)

	// Draw two overlays from idle.
	drag(v, press(0, 0), press(10, 10))
	drag(v, press(50, 50), press(70, 60))
	if d.Len() != 2 || v.NumberOfOverlays() != 2 {
		t.Fatalf("after create: document %d, view %d", d.Len(), v.NumberOfOverlays())
	}
	if got := d.Overlay(1).Rect; got != geometry.NewRect(50, 50, 20, 10) {
		t.Errorf("second overlay: got %v", got)
	}

	// Move the first one.
	drag(v, press(5, 5), press(25, 15))
	if got := d.Overlay(0).Rect; got != geometry.NewRect(20, 10, 10, 10) {
		t.Errorf("moved overlay: got %v", got)
	}

	// Delete the second one.
	second := d.Overlay(1).ID
	v.EnterState(overlay.StateDeleting)
	v.PointerDown(press(60, 55))
	v.PointerUp(press(60, 55))
	if d.Len() != 1 || d.IndexOf(second) != -1 {
		t.Errorf("delete: %d overlays left", d.Len())
	}
	if v.NumberOfOverlays() != 1 {
		t.Errorf("view not reloaded: %d", v.NumberOfOverlays())
	}
}

func TestDocument_ResolvesByObject(t *testing.T) {
	d := New()
	a := d.Add(geometry.NewRect(0, 0, 10, 10), "a")
	b := d.Add(geometry.NewRect(20, 0, 10, 10), "b")

	// A stale index with a live object still finds the right overlay.
	d.OverlayDeleted(overlay.Ref{Index: 0, Object: b})
	if d.Len() != 1 || d.Overlay(0) != a {
		t.Errorf("wrong overlay deleted, left %+v", d.Overlay(0))
	}

	// An object that is no longer in the document is ignored.
	d.OverlayModified(overlay.Ref{Index: 0, Object: b}, geometry.NewRect(1, 1, 1, 1))
	if a.Rect != geometry.NewRect(0, 0, 10, 10) {
		t.Errorf("stale object modified another overlay: %v", a.Rect)
	}
}

func TestDocument_ClickAndPermissions(t *testing.T) {
	d := New()
	d.Add(geometry.NewRect(0, 0, 10, 10), "a")

	var clicked []string
	d.OnClick(func(o *Overlay, c overlay.Click) {
		clicked = append(clicked, o.Label+":"+c.Kind.String())
	})

	v := newViewOver(d)
	ev := press(5, 5)
	ev.Clicks = 2
	v.PointerDown(ev)
	v.PointerUp(ev)
	if len(clicked) != 1 || clicked[0] != "a:"+overlay.DoubleClick.String() {
		t.Errorf("clicks: got %v", clicked)
	}

	readOnly := overlay.DefaultPermissions &^ (overlay.AllowsCreating | overlay.AllowsDeleting)
	d.SetPermissions(&readOnly)
	if v.Allows(overlay.AllowsCreating) || v.EnterState(overlay.StateDeleting) {
		t.Error("document permissions not applied to view")
	}
}

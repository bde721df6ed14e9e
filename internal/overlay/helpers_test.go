package overlay

import (
	"overlay-annotator/pkg/geometry"
)

// fakeSource is an in-memory data source that records queries.
type fakeSource struct {
	rects   []geometry.Rect
	objects []any
	count   int // overrides len(rects) when non-zero
}

func (s *fakeSource) NumberOfOverlays() int {
	if s.count != 0 {
		return s.count
	}
	return len(s.rects)
}

func (s *fakeSource) OverlayRect(index int) geometry.Rect { return s.rects[index] }

// objectSource adds stable objects.
type objectSource struct{ fakeSource }

func (s *objectSource) OverlayObject(index int) any { return s.objects[index] }

type modifyCall struct {
	ref  Ref
	rect geometry.Rect
}

// recorder is a delegate implementing every notification interface.
type recorder struct {
	created  []geometry.Rect
	modified []modifyCall
	deleted  []Ref
	clicks   []Click
	clickRef []Ref

	permissions *Permission
	style       *Style
}

func (r *recorder) OverlayCreated(rect geometry.Rect) { r.created = append(r.created, rect) }

func (r *recorder) OverlayModified(ref Ref, rect geometry.Rect) {
	r.modified = append(r.modified, modifyCall{ref, rect})
}

func (r *recorder) OverlayDeleted(ref Ref) { r.deleted = append(r.deleted, ref) }

func (r *recorder) OverlayClicked(ref Ref, click Click) {
	r.clicks = append(r.clicks, click)
	r.clickRef = append(r.clickRef, ref)
}

func (r *recorder) OverlayPermissions(defaults Permission) Permission {
	if r.permissions != nil {
		return *r.permissions
	}
	return defaults
}

func (r *recorder) OverlayStyle(defaults Style) Style {
	if r.style != nil {
		return *r.style
	}
	return defaults
}

// newTestView returns a view over the two rectangles used throughout the
// tests: R0=(0,0,10,10) and R1=(20,20,10,10).
func newTestView() (*View, *fakeSource, *recorder) {
	src := &fakeSource{rects: []geometry.Rect{
		geometry.NewRect(0, 0, 10, 10),
		geometry.NewRect(20, 20, 10, 10),
	}}
	rec := &recorder{}
	v := NewView()
	v.SetDataSource(src)
	v.SetDelegate(rec)
	return v, src, rec
}

func at(x, y float64) Event {
	return Event{Point: geometry.Point2D{X: x, Y: y}, Scale: 1}
}

// drag performs a full press-move-release gesture.
func drag(v *View, from, to Event) {
	v.PointerDown(from)
	v.PointerDragged(to)
	v.PointerUp(to)
}

func click(v *View, ev Event) {
	v.PointerDown(ev)
	v.PointerUp(ev)
}

package overlay

import (
	"overlay-annotator/pkg/geometry"
)

// Button identifies the pointer button of an event.
type Button int

const (
	PrimaryButton Button = iota
	SecondaryButton
)

// KeyModifier is a set of keyboard modifiers held during an event.
type KeyModifier uint8

const (
	ModShift KeyModifier = 1 << iota
	ModCommand
)

// Event is a pointer event already translated to image space by the host.
type Event struct {
	Point     geometry.Point2D // image coordinates
	Button    Button
	Modifiers KeyModifier
	Clicks    int     // 2 for the second press of a double click
	Scale     float64 // display units per image unit; 0 means 1
}

func (e Event) scale() float64 {
	if e.Scale <= 0 {
		return 1
	}
	return e.Scale
}

func (e Event) extending() bool {
	return e.Modifiers&(ModShift|ModCommand) != 0
}

// Hit is the result of a hit test.
type Hit struct {
	Index int           // -1 when nothing was hit
	Edges geometry.Edge // grabbed edges; EdgeNone for the body
}

type gestureKind int

const (
	gestureClick gestureKind = iota // may only become a click
	gestureCreate
	gestureModify
	gestureDelete
)

// gesture is the transient state between pointer down and pointer up.
type gesture struct {
	kind     gestureKind
	start    geometry.Point2D
	current  geometry.Point2D
	hit      int // overlay under the press, for click routing
	index    int // overlay being modified or deleted
	original geometry.Rect
	edges    geometry.Edge
	moved    bool
	implicit bool // started in Idle; the state is entered once the drag begins
}

// HitTest returns the topmost overlay whose rectangle, grown by tolerance
// image units, contains p.
func (v *View) HitTest(p geometry.Point2D, tolerance float64) Hit {
	for i := len(v.rects) - 1; i >= 0; i-- {
		r := v.rects[i]
		if r.Inset(-tolerance).Contains(p) {
			return Hit{Index: i, Edges: r.EdgesNear(p, tolerance)}
		}
	}
	return Hit{Index: -1}
}

// Dragging reports whether a pointer gesture is in progress.
func (v *View) Dragging() bool { return v.gesture != nil }

// PointerDown starts a gesture.
func (v *View) PointerDown(ev Event) {
	hit := v.HitTest(ev.Point, v.handleSize/ev.scale())
	g := &gesture{kind: gestureClick, start: ev.Point, current: ev.Point, hit: hit.Index, index: -1}
	v.gesture = g

	if ev.Button == SecondaryButton {
		return
	}

	switch v.state {
	case StateIdle:
		if hit.Index >= 0 {
			v.pressOverlay(hit.Index, ev.extending())
			v.beginModify(g, hit)
		} else {
			if !ev.extending() {
				v.DeselectAll()
			}
			g.kind = gestureCreate
		}
		g.implicit = true
	case StateCreating:
		g.kind = gestureCreate
	case StateModifying:
		if hit.Index >= 0 {
			v.beginModify(g, hit)
		}
	case StateDeleting:
		if hit.Index >= 0 {
			g.kind = gestureDelete
			g.index = hit.Index
		}
	}
}

func (v *View) beginModify(g *gesture, hit Hit) {
	g.kind = gestureModify
	g.index = hit.Index
	g.original = v.rects[hit.Index]
	g.edges = hit.Edges
}

// pressOverlay updates the selection for a press on overlay index.
func (v *View) pressOverlay(index int, extend bool) {
	switch {
	case extend && v.IsSelected(index):
		next := v.selection.clone()
		next.Remove(index)
		v.setSelection(next)
	case extend:
		v.SelectIndexes([]int{index}, true)
	case !v.IsSelected(index):
		v.SelectIndexes([]int{index}, false)
	}
}

// PointerDragged updates the gesture geometry.
func (v *View) PointerDragged(ev Event) {
	g := v.gesture
	if g == nil {
		return
	}
	g.current = ev.Point

	if !g.moved {
		if g.current.Distance(g.start)*ev.scale() < v.dragThreshold {
			return
		}
		g.moved = true
		if g.implicit {
			v.promote(g)
		}
	}
	if g.kind == gestureCreate || g.kind == gestureModify {
		v.invalidate()
	}
}

// promote enters the state matching a gesture that began in Idle.
// Without permission the gesture degrades to a click.
func (v *View) promote(g *gesture) {
	var target State
	switch g.kind {
	case gestureCreate:
		target = StateCreating
	case gestureModify:
		target = StateModifying
	default:
		return
	}
	if !v.EnterState(target) {
		g.kind = gestureClick
	}
	v.gesture = g
}

// PointerUp ends the gesture, committing it or routing a click.
func (v *View) PointerUp(ev Event) {
	g := v.gesture
	if g == nil {
		return
	}
	v.gesture = nil

	if !g.moved {
		v.routeClick(g, ev)
		if g.kind == gestureDelete {
			v.commitDelete(g, ev)
		}
		v.invalidate()
		return
	}

	g.current = ev.Point
	switch g.kind {
	case gestureCreate:
		v.commitCreate(g)
	case gestureModify:
		v.commitModify(g)
	case gestureDelete:
		v.commitDelete(g, ev)
	}
	v.invalidate()
}

// GestureRect returns the provisional rectangle of a create or modify drag.
func (v *View) GestureRect() (geometry.Rect, bool) {
	g := v.gesture
	if g == nil || !g.moved {
		return geometry.Rect{}, false
	}
	switch g.kind {
	case gestureCreate:
		return geometry.RectFromPoints(g.start, g.current), true
	case gestureModify:
		return g.modified(), true
	}
	return geometry.Rect{}, false
}

func (g *gesture) modified() geometry.Rect {
	delta := g.current.Sub(g.start)
	if g.edges == geometry.EdgeNone {
		return g.original.Offset(delta)
	}
	return g.original.MoveEdges(g.edges, delta).Normalize()
}

// overlaps reports whether r intersects any overlay other than skip.
func (v *View) overlaps(r geometry.Rect, skip int) bool {
	for i, other := range v.rects {
		if i != skip && r.Intersects(other) {
			return true
		}
	}
	return false
}

func (v *View) commitCreate(g *gesture) {
	rect := geometry.RectFromPoints(g.start, g.current)
	v.setState(StateIdle)
	if rect.Empty() {
		return
	}
	if !v.Allows(AllowsOverlapping) && v.overlaps(rect, -1) {
		return
	}
	if c, ok := v.delegate.(Creator); ok {
		c.OverlayCreated(rect)
	}
}

func (v *View) commitModify(g *gesture) {
	rect := g.modified()
	v.setState(StateIdle)
	if g.index >= len(v.rects) || rect.Empty() || rect == g.original {
		return
	}
	if !v.Allows(AllowsOverlapping) && v.overlaps(rect, g.index) {
		return
	}
	if m, ok := v.delegate.(Modifier); ok {
		m.OverlayModified(v.Ref(g.index), rect)
	}
}

// commitDelete reports a deletion when the release lands on the pressed
// overlay. Releasing elsewhere keeps the Deleting state.
func (v *View) commitDelete(g *gesture, ev Event) {
	if g.index >= len(v.rects) {
		return
	}
	if v.HitTest(ev.Point, v.handleSize/ev.scale()).Index != g.index {
		return
	}
	ref := v.Ref(g.index)
	v.setState(StateIdle)
	if d, ok := v.delegate.(Deleter); ok {
		d.OverlayDeleted(ref)
	}
}

// routeClick notifies a Clicker of a click on the pressed overlay.
func (v *View) routeClick(g *gesture, ev Event) {
	if g.hit < 0 || g.hit >= len(v.rects) {
		return
	}
	c, ok := v.delegate.(Clicker)
	if !ok {
		return
	}

	kind, want := SingleClick, WantsSingleClick
	switch {
	case ev.Button == SecondaryButton:
		kind, want = RightClick, WantsRightClick
	case ev.Clicks >= 2:
		kind, want = DoubleClick, WantsDoubleClick
	}
	if v.Allows(want) {
		c.OverlayClicked(v.Ref(g.hit), Click{Kind: kind, Event: ev})
	}
}

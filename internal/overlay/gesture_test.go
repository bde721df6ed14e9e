package overlay

import (
	"reflect"
	"testing"

	"overlay-annotator/pkg/geometry"
)

func TestCreate_EndToEnd(t *testing.T) {
	v, _, rec := newTestView()

	if !v.EnterState(StateCreating) {
		t.Fatal("EnterState(Creating) refused")
	}
	drag(v, at(30, 30), at(40, 40))

	want := []geometry.Rect{geometry.NewRect(30, 30, 10, 10)}
	if !reflect.DeepEqual(rec.created, want) {
		t.Errorf("created: got %v, want %v", rec.created, want)
	}
	if v.State() != StateIdle {
		t.Errorf("state after commit: got %v, want Idle", v.State())
	}

	v.EnterState(StateCreating)
	drag(v, at(5, 5), at(15, 15))
	if len(rec.created) != 1 {
		t.Errorf("overlapping create notified delegate: %v", rec.created)
	}
	if v.State() != StateIdle {
		t.Errorf("state after rejected create: got %v, want Idle", v.State())
	}
}

func TestCreate_NormalizesReverseDrag(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateCreating)
	drag(v, at(80, 90), at(50, 60))

	want := []geometry.Rect{geometry.NewRect(50, 60, 30, 30)}
	if !reflect.DeepEqual(rec.created, want) {
		t.Errorf("got %v, want %v", rec.created, want)
	}
}

func TestCreate_OverlapAllowed(t *testing.T) {
	v, _, rec := newTestView()
	v.SetPermission(AllowsOverlapping, true)
	v.EnterState(StateCreating)
	drag(v, at(5, 5), at(15, 15))

	if len(rec.created) != 1 {
		t.Errorf("create with overlap allowed: got %v", rec.created)
	}
}

func TestCreate_ImplicitFromIdle(t *testing.T) {
	v, _, rec := newTestView()

	var states []State
	v.OnStateChange(func(s State) { states = append(states, s) })
	drag(v, at(50, 50), at(60, 70))

	if want := []geometry.Rect{geometry.NewRect(50, 50, 10, 20)}; !reflect.DeepEqual(rec.created, want) {
		t.Errorf("created: got %v, want %v", rec.created, want)
	}
	if want := []State{StateCreating, StateIdle}; !reflect.DeepEqual(states, want) {
		t.Errorf("states: got %v, want %v", states, want)
	}
}

func TestCreate_ImplicitRequiresPermission(t *testing.T) {
	v, _, rec := newTestView()
	v.SetPermission(AllowsCreating, false)
	drag(v, at(50, 50), at(60, 70))

	if len(rec.created) != 0 {
		t.Errorf("created without permission: %v", rec.created)
	}
	if v.State() != StateIdle {
		t.Errorf("state: got %v", v.State())
	}
}

func TestCreate_BelowThresholdIsNotADrag(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateCreating)
	drag(v, at(50, 50), at(51, 51))

	if len(rec.created) != 0 {
		t.Errorf("tiny drag created overlay: %v", rec.created)
	}
	if v.State() != StateCreating {
		t.Errorf("a click should leave Creating active, got %v", v.State())
	}
}

func TestCreate_ThresholdScalesWithZoom(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateCreating)

	// 2 image units at zoom 4 is 8 display units, past the 3 unit threshold.
	from, to := at(50, 50), at(52, 52)
	from.Scale, to.Scale = 4, 4
	drag(v, from, to)

	if len(rec.created) != 1 {
		t.Errorf("zoomed drag should create, got %v", rec.created)
	}
}

func TestModify_MoveBody(t *testing.T) {
	v, _, rec := newTestView()
	drag(v, at(25, 25), at(45, 35))

	want := []modifyCall{{Ref{Index: 1}, geometry.NewRect(40, 30, 10, 10)}}
	if !reflect.DeepEqual(rec.modified, want) {
		t.Errorf("modified: got %+v, want %+v", rec.modified, want)
	}
	if !v.IsSelected(1) {
		t.Error("pressing an overlay should select it")
	}
	if v.State() != StateIdle {
		t.Errorf("state: got %v", v.State())
	}
}

func TestModify_ResizeCorner(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateModifying)
	drag(v, at(30, 30), at(40, 45))

	want := []modifyCall{{Ref{Index: 1}, geometry.NewRect(20, 20, 20, 25)}}
	if !reflect.DeepEqual(rec.modified, want) {
		t.Errorf("modified: got %+v, want %+v", rec.modified, want)
	}
}

func TestModify_ResizeEdgeOnly(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateModifying)
	drag(v, at(20, 25), at(15, 40))

	want := []modifyCall{{Ref{Index: 1}, geometry.NewRect(15, 20, 15, 10)}}
	if !reflect.DeepEqual(rec.modified, want) {
		t.Errorf("modified: got %+v, want %+v", rec.modified, want)
	}
}

func TestModify_OverlapRejectedExceptSelf(t *testing.T) {
	v, _, rec := newTestView()

	// Moving R1 slightly still overlaps its own old position; that is fine.
	drag(v, at(25, 25), at(29, 25))
	if len(rec.modified) != 1 {
		t.Fatalf("self overlap should be ignored, got %+v", rec.modified)
	}

	// Moving R1 onto R0 is refused.
	drag(v, at(25, 25), at(8, 8))
	if len(rec.modified) != 1 {
		t.Errorf("overlapping modify notified delegate: %+v", rec.modified)
	}
	if v.State() != StateIdle {
		t.Errorf("state: got %v", v.State())
	}
}

func TestModify_RequiresPermission(t *testing.T) {
	v, _, rec := newTestView()
	v.SetPermission(AllowsModifying, false)
	drag(v, at(25, 25), at(45, 35))

	if len(rec.modified) != 0 {
		t.Errorf("modified without permission: %+v", rec.modified)
	}
}

func TestModify_InModifyingStateIgnoresEmptySpace(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateModifying)
	drag(v, at(100, 100), at(120, 120))

	if len(rec.modified) != 0 || len(rec.created) != 0 {
		t.Errorf("unexpected notifications: %+v %+v", rec.modified, rec.created)
	}
	if v.State() != StateModifying {
		t.Errorf("state: got %v, want Modifying", v.State())
	}
}

func TestModify_CarriesObject(t *testing.T) {
	src := &objectSource{fakeSource{
		rects:   []geometry.Rect{geometry.NewRect(0, 0, 10, 10)},
		objects: []any{"r0"},
	}}
	rec := &recorder{}
	v := NewView()
	v.SetDataSource(src)
	v.SetDelegate(rec)

	drag(v, at(5, 5), at(50, 50))
	if len(rec.modified) != 1 || rec.modified[0].ref.Object != "r0" {
		t.Errorf("got %+v", rec.modified)
	}
}

func TestDelete(t *testing.T) {
	v, _, rec := newTestView()
	if !v.EnterState(StateDeleting) {
		t.Fatal("EnterState(Deleting) refused")
	}

	click(v, at(100, 100))
	if len(rec.deleted) != 0 || v.State() != StateDeleting {
		t.Fatalf("click on nothing: deleted %v, state %v", rec.deleted, v.State())
	}

	click(v, at(5, 5))
	if want := []Ref{{Index: 0}}; !reflect.DeepEqual(rec.deleted, want) {
		t.Errorf("deleted: got %v, want %v", rec.deleted, want)
	}
	if v.State() != StateIdle {
		t.Errorf("state: got %v", v.State())
	}
	if v.NumberOfOverlays() != 2 {
		t.Error("view must not remove overlays itself")
	}
}

func TestDelete_ReleaseElsewhereCancels(t *testing.T) {
	v, _, rec := newTestView()
	v.EnterState(StateDeleting)
	drag(v, at(5, 5), at(60, 60))

	if len(rec.deleted) != 0 {
		t.Errorf("deleted: %v", rec.deleted)
	}
	if v.State() != StateDeleting {
		t.Errorf("state: got %v", v.State())
	}
}

func TestDelegateMayReloadDuringCommit(t *testing.T) {
	src := &fakeSource{}
	v := NewView()
	var seen State = -1
	d := &reloadingDelegate{src: src, view: v, state: &seen}
	v.SetDataSource(src)
	v.SetDelegate(d)

	drag(v, at(0, 0), at(10, 10))
	if v.NumberOfOverlays() != 1 {
		t.Errorf("overlays after reload: got %d, want 1", v.NumberOfOverlays())
	}
	if seen != StateIdle {
		t.Errorf("delegate saw state %v, want Idle", seen)
	}
}

type reloadingDelegate struct {
	src   *fakeSource
	view  *View
	state *State
}

func (d *reloadingDelegate) OverlayCreated(rect geometry.Rect) {
	*d.state = d.view.State()
	d.src.rects = append(d.src.rects, rect)
	d.view.ReloadData()
}

func TestIdlePress_Selection(t *testing.T) {
	v, _, _ := newTestView()

	click(v, at(5, 5))
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("click R0: got %v", got)
	}

	shift := at(25, 25)
	shift.Modifiers = ModShift
	click(v, shift)
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("shift-click R1: got %v", got)
	}

	// Plain click on a selected member keeps the group.
	click(v, at(5, 5))
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Fatalf("click selected member: got %v", got)
	}

	// Shift-click on a member toggles it off.
	shift.Point = geometry.Point2D{X: 5, Y: 5}
	click(v, shift)
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("shift-click toggle: got %v", got)
	}

	click(v, at(100, 100))
	if v.NumberOfSelected() != 0 {
		t.Errorf("click on empty space should deselect, got %v", v.SelectedIndexes())
	}
}

func TestIdlePress_EmptySpaceRespectsEmptyPolicy(t *testing.T) {
	v, _, _ := newTestView()
	v.SetPermission(AllowsEmptySelection, false)

	click(v, at(5, 5))
	click(v, at(100, 100))
	if got := v.SelectedIndexes(); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("got %v, want [0]", got)
	}
}

func TestClickRouting(t *testing.T) {
	tests := []struct {
		name   string
		button Button
		clicks int
		want   ClickKind
		flag   Permission
	}{
		{"single", PrimaryButton, 1, SingleClick, WantsSingleClick},
		{"double", PrimaryButton, 2, DoubleClick, WantsDoubleClick},
		{"right", SecondaryButton, 1, RightClick, WantsRightClick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, rec := newTestView()
			ev := at(25, 25)
			ev.Button, ev.Clicks = tt.button, tt.clicks

			click(v, ev)
			if len(rec.clicks) != 1 || rec.clicks[0].Kind != tt.want {
				t.Fatalf("clicks: got %+v", rec.clicks)
			}
			if rec.clickRef[0].Index != 1 {
				t.Errorf("clicked ref: got %+v", rec.clickRef[0])
			}

			v.SetPermission(tt.flag, false)
			click(v, ev)
			if len(rec.clicks) != 1 {
				t.Errorf("click fired with %v disabled", tt.flag)
			}
		})
	}
}

func TestClickRouting_NotOnDragOrEmptySpace(t *testing.T) {
	v, _, rec := newTestView()
	drag(v, at(25, 25), at(45, 45))
	click(v, at(100, 100))

	if len(rec.clicks) != 0 {
		t.Errorf("unexpected clicks: %+v", rec.clicks)
	}
}

func TestRightPressDoesNotStartGesture(t *testing.T) {
	v, _, rec := newTestView()
	from, to := at(50, 50), at(80, 80)
	from.Button, to.Button = SecondaryButton, SecondaryButton
	drag(v, from, to)

	if len(rec.created) != 0 {
		t.Errorf("right drag created: %v", rec.created)
	}
}

func TestHitTest_TopmostWins(t *testing.T) {
	src := &fakeSource{rects: []geometry.Rect{
		geometry.NewRect(0, 0, 50, 50),
		geometry.NewRect(20, 20, 10, 10),
	}}
	v := NewView()
	v.SetDataSource(src)

	if hit := v.HitTest(geometry.Point2D{X: 25, Y: 25}, 0); hit.Index != 1 || hit.Edges != geometry.EdgeNone {
		t.Errorf("got %+v, want overlay 1 body", hit)
	}
	if hit := v.HitTest(geometry.Point2D{X: 1, Y: 25}, 2); hit.Index != 0 || hit.Edges != geometry.EdgeLeft {
		t.Errorf("got %+v, want overlay 0 left edge", hit)
	}
	if hit := v.HitTest(geometry.Point2D{X: 60, Y: 60}, 2); hit.Index != -1 {
		t.Errorf("got %+v, want miss", hit)
	}
}

func TestGestureRect(t *testing.T) {
	v, _, _ := newTestView()
	if _, ok := v.GestureRect(); ok {
		t.Error("no gesture yet")
	}

	v.EnterState(StateCreating)
	v.PointerDown(at(50, 50))
	v.PointerDragged(at(40, 70))
	r, ok := v.GestureRect()
	if !ok || r != geometry.NewRect(40, 50, 10, 20) {
		t.Errorf("got %v, %v", r, ok)
	}
	v.PointerUp(at(40, 70))
	if _, ok := v.GestureRect(); ok {
		t.Error("gesture rect after commit")
	}
}

// removingDelegate deletes overlays from its source and reloads the view,
// as a document would.
type removingDelegate struct {
	src  *objectSource
	view *View
}

func (d *removingDelegate) OverlayDeleted(ref Ref) {
	i := ref.Index
	d.src.rects = append(d.src.rects[:i], d.src.rects[i+1:]...)
	d.src.objects = append(d.src.objects[:i], d.src.objects[i+1:]...)
	d.view.ReloadData()
}

type item struct{ id int }

func newRemovingView(n int) (*View, *objectSource) {
	src := &objectSource{}
	for i := 0; i < n; i++ {
		src.rects = append(src.rects, geometry.NewRect(float64(i*20), 0, 10, 10))
		src.objects = append(src.objects, &item{id: i + 1})
	}
	v := NewView()
	v.SetDataSource(src)
	v.SetDelegate(&removingDelegate{src: src, view: v})
	return v, src
}

func TestDelete_SelectionFollowsObjects(t *testing.T) {
	v, src := newRemovingView(4)
	v.SetPermission(AllowsMultipleSelection, true)
	v.SelectIndexes([]int{2, 3}, false)
	changes := 0
	v.OnSelectionChange(func() { changes++ })

	v.EnterState(StateDeleting)
	click(v, at(5, 5)) // overlay #1

	if got, want := v.SelectedIndexes(), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("selected indexes: got %v, want %v", got, want)
	}
	for _, i := range v.SelectedIndexes() {
		if id := src.objects[i].(*item).id; id != 3 && id != 4 {
			t.Errorf("index %d now selects #%d", i, id)
		}
	}
	if v.SelectedIndex() != 2 || src.objects[2].(*item).id != 4 {
		t.Errorf("last selected: got index %d", v.SelectedIndex())
	}
	if changes != 1 {
		t.Errorf("selection change callbacks: got %d, want 1", changes)
	}
}

func TestDelete_SelectedOverlayLeavesSelection(t *testing.T) {
	v, src := newRemovingView(3)
	v.SelectIndexes([]int{1}, false)

	v.EnterState(StateDeleting)
	click(v, at(25, 5)) // overlay #2, the selected one

	if n := v.NumberOfSelected(); n != 0 {
		t.Errorf("selected after deleting it: %v (objects %v)", v.SelectedIndexes(), src.objects)
	}
}

func TestReload_WithoutObjectsPrunesByIndex(t *testing.T) {
	v, src, _ := newTestView()
	v.SelectIndexes([]int{1}, false)

	src.rects = src.rects[:1]
	v.ReloadData()
	if n := v.NumberOfSelected(); n != 0 {
		t.Errorf("selection past the count kept: %v", v.SelectedIndexes())
	}
}

func TestSelectionRemap(t *testing.T) {
	s := Selection{order: []int{4, 1, 3}}
	s.Remap(func(i int) int {
		switch i {
		case 4:
			return 2
		case 3:
			return 2
		}
		return -1
	})
	if !reflect.DeepEqual(s.order, []int{2}) {
		t.Errorf("order: got %v, want [2]", s.order)
	}
}

package overlay

import (
	"fmt"
	"image/color"
	"reflect"

	"overlay-annotator/pkg/geometry"
)

const (
	// DefaultDragThreshold is how far, in display units, the pointer must
	// travel before a press becomes a drag.
	DefaultDragThreshold = 3.0
	// DefaultHandleSize is the grab distance around overlay borders, in
	// display units.
	DefaultHandleSize = 6.0
)

// View is the overlay interaction layer: state machine, selection, hit
// testing and rendering over a DataSource.
type View struct {
	source   DataSource
	delegate any

	// Display cache, refreshed by ReloadData. objects is nil unless the
	// source is an ObjectSource.
	rects   []geometry.Rect
	objects []any

	granted      Permission // defaults as answered by the delegate
	overrideMask Permission
	overrideBits Permission

	baseStyle     Style
	styleOverride styleOverride

	state     State
	selection Selection
	gesture   *gesture

	dragThreshold float64
	handleSize    float64

	// Callbacks
	onInvalidate      func()
	onSelectionChange func()
	onStateChange     func(State)
}

// NewView creates a view with no data source and default settings.
func NewView() *View {
	return &View{
		granted:       DefaultPermissions,
		baseStyle:     DefaultStyle(),
		dragThreshold: DefaultDragThreshold,
		handleSize:    DefaultHandleSize,
	}
}

// SetDataSource replaces the data source and reloads. nil shows nothing.
func (v *View) SetDataSource(ds DataSource) {
	v.source = ds
	v.ReloadData()
}

// DataSource returns the current data source.
func (v *View) DataSource() DataSource { return v.source }

// SetDelegate replaces the delegate and reloads. The delegate may implement
// any of Creator, Modifier, Deleter, Clicker, StyleProvider and
// PermissionProvider; nil means defaults everywhere.
func (v *View) SetDelegate(d any) {
	v.delegate = d
	v.ReloadData()
}

// Delegate returns the current delegate.
func (v *View) Delegate() any { return v.delegate }

// OnInvalidate sets a callback invoked whenever the view needs redrawing.
func (v *View) OnInvalidate(callback func()) {
	v.onInvalidate = callback
}

// OnSelectionChange sets a callback invoked after the selection changes.
func (v *View) OnSelectionChange(callback func()) {
	v.onSelectionChange = callback
}

// OnStateChange sets a callback invoked after the state changes.
func (v *View) OnStateChange(callback func(State)) {
	v.onStateChange = callback
}

// SetDragThreshold sets the press-to-drag distance in display units.
func (v *View) SetDragThreshold(d float64) {
	if d >= 0 {
		v.dragThreshold = d
	}
}

// SetHandleSize sets the border grab distance in display units.
func (v *View) SetHandleSize(d float64) {
	if d >= 0 {
		v.handleSize = d
	}
}

// ReloadData re-reads every overlay rectangle from the data source and
// re-queries the delegate for style and permissions. With an ObjectSource
// the selection follows its objects to their new indexes and drops the ones
// that are gone; otherwise selected indexes past the new count are dropped.
func (v *View) ReloadData() {
	before := v.selection.clone()
	oldObjects := v.objects

	v.rects = v.rects[:0]
	v.objects = nil
	if v.source != nil {
		n := v.source.NumberOfOverlays()
		if n < 0 {
			panic(fmt.Sprintf("overlay: data source returned negative overlay count %d", n))
		}
		objs, _ := v.source.(ObjectSource)
		for i := 0; i < n; i++ {
			r := v.source.OverlayRect(i)
			if r.IsNaN() {
				panic(fmt.Sprintf("overlay: data source returned invalid rect %v for overlay %d", r, i))
			}
			v.rects = append(v.rects, r.Normalize())
			if objs != nil {
				v.objects = append(v.objects, objs.OverlayObject(i))
			}
		}
	}

	v.granted = DefaultPermissions
	if p, ok := v.delegate.(PermissionProvider); ok {
		v.granted = p.OverlayPermissions(DefaultPermissions)
	}
	v.baseStyle = DefaultStyle()
	if p, ok := v.delegate.(StyleProvider); ok {
		v.baseStyle = p.OverlayStyle(DefaultStyle()).fillGaps()
	}

	if oldObjects != nil && v.objects != nil {
		v.selection.Remap(remapByObject(oldObjects, v.objects))
	}
	v.selection.Prune(len(v.rects))
	v.enforceSelectionPolicy()
	v.leaveForbiddenState()
	if !sameOrder(before, v.selection) {
		v.selectionChanged()
	}
	v.invalidate()
}

// remapByObject returns a function mapping an old index to the new index of
// the same object, or -1 when the object is gone. Objects that cannot be
// compared keep their index.
func remapByObject(oldObjects, newObjects []any) func(int) int {
	index := make(map[any]int, len(newObjects))
	for i, o := range newObjects {
		if hashable(o) {
			if _, dup := index[o]; !dup {
				index[o] = i
			}
		}
	}
	return func(old int) int {
		if old < 0 || old >= len(oldObjects) {
			return -1
		}
		o := oldObjects[old]
		if !hashable(o) {
			return old
		}
		if i, ok := index[o]; ok {
			return i
		}
		return -1
	}
}

func hashable(o any) bool {
	return o != nil && reflect.TypeOf(o).Comparable()
}

// NumberOfOverlays returns the cached overlay count.
func (v *View) NumberOfOverlays() int { return len(v.rects) }

// OverlayRect returns the cached rectangle of overlay index.
func (v *View) OverlayRect(index int) (geometry.Rect, bool) {
	if index < 0 || index >= len(v.rects) {
		return geometry.Rect{}, false
	}
	return v.rects[index], true
}

// Ref returns the identity of overlay index as handed to delegates.
func (v *View) Ref(index int) Ref {
	ref := Ref{Index: index}
	if objs, ok := v.source.(ObjectSource); ok && index >= 0 && index < len(v.rects) {
		ref.Object = objs.OverlayObject(index)
	}
	return ref
}

// State returns the active state.
func (v *View) State() State { return v.state }

// EnterState attempts to switch to target. Creating, Modifying and Deleting
// require the matching permission; Idle always succeeds. On success any
// gesture in progress is discarded without notifying the delegate.
func (v *View) EnterState(target State) bool {
	need, known := target.requires()
	if !known || !v.Permissions().Has(need) {
		return false
	}
	v.gesture = nil
	v.setState(target)
	v.invalidate()
	return true
}

func (v *View) setState(s State) {
	if v.state == s {
		return
	}
	v.state = s
	if v.onStateChange != nil {
		v.onStateChange(s)
	}
}

// leaveForbiddenState drops back to Idle when the permission for the
// current state has been withdrawn.
func (v *View) leaveForbiddenState() {
	if need, _ := v.state.requires(); !v.Permissions().Has(need) {
		v.gesture = nil
		v.setState(StateIdle)
	}
}

// Permissions returns the effective permissions: defaults, then the
// delegate's answer, then explicit overrides.
func (v *View) Permissions() Permission {
	return v.granted&^v.overrideMask | v.overrideBits&v.overrideMask
}

// Allows reports whether every flag in p is effective.
func (v *View) Allows(p Permission) bool { return v.Permissions().Has(p) }

// SetPermission overrides the flags in p, taking precedence over the
// delegate. Selection and state are adjusted to the new rules.
func (v *View) SetPermission(p Permission, on bool) {
	v.overrideMask |= p
	v.overrideBits = v.overrideBits.With(p, on)
	v.applyPermissions()
}

// ClearPermissionOverrides returns every flag to the delegate's answer.
func (v *View) ClearPermissionOverrides() {
	v.overrideMask, v.overrideBits = 0, 0
	v.applyPermissions()
}

func (v *View) applyPermissions() {
	before := v.selection.clone()
	v.enforceSelectionPolicy()
	v.leaveForbiddenState()
	if !sameOrder(before, v.selection) {
		v.selectionChanged()
	}
	v.invalidate()
}

// Style returns the effective drawing style.
func (v *View) Style() Style {
	return v.baseStyle.merge(v.styleOverride)
}

// SetFillColor overrides the overlay fill. nil restores the delegate value.
func (v *View) SetFillColor(c color.Color) {
	v.styleOverride.Fill = c
	v.invalidate()
}

// SetBorderColor overrides the overlay border. nil restores the delegate value.
func (v *View) SetBorderColor(c color.Color) {
	v.styleOverride.Border = c
	v.invalidate()
}

// SetSelectionFillColor overrides the selected-overlay fill.
func (v *View) SetSelectionFillColor(c color.Color) {
	v.styleOverride.SelectedFill = c
	v.invalidate()
}

// SetSelectionBorderColor overrides the selected-overlay border.
func (v *View) SetSelectionBorderColor(c color.Color) {
	v.styleOverride.SelectedBorder = c
	v.invalidate()
}

// SetBorderWidth overrides the border width. A negative width restores
// the delegate value.
func (v *View) SetBorderWidth(w float64) {
	v.styleOverride.BorderWidth = w
	v.styleOverride.borderWidthSet = w >= 0
	v.invalidate()
}

func (v *View) invalidate() {
	if v.onInvalidate != nil {
		v.onInvalidate()
	}
}

func (v *View) selectionChanged() {
	if v.onSelectionChange != nil {
		v.onSelectionChange()
	}
}

// Package overlay implements an interactive layer of rectangular overlays
// drawn on top of an image.
//
// A View owns the interaction state machine, the selection set, hit-testing
// and rendering. The overlays themselves belong to a DataSource; every change
// a user makes is reported to a delegate, which decides whether to store it.
// The View only keeps a display cache that is refreshed by ReloadData.
//
// All coordinates handed to and received from collaborators are in image
// space. A View is not safe for concurrent use; drive it from the UI
// goroutine.
package overlay

import (
	"overlay-annotator/pkg/geometry"
)

// DataSource enumerates the overlays shown by a View. Both methods are called
// on every redraw and hit-test and must be cheap.
type DataSource interface {
	// NumberOfOverlays returns the overlay count. Negative counts panic.
	NumberOfOverlays() int
	// OverlayRect returns the image-space rectangle of overlay index.
	OverlayRect(index int) geometry.Rect
}

// ObjectSource is implemented by data sources that can hand out a stable
// object for an overlay. The object travels in Ref.Object so delegates do
// not depend on indexes that may shift after a reload.
type ObjectSource interface {
	OverlayObject(index int) any
}

// Creator is notified when the user finishes drawing a new overlay.
type Creator interface {
	OverlayCreated(rect geometry.Rect)
}

// Modifier is notified when the user moves or resizes an overlay. The
// delegate may store the new rectangle or discard it.
type Modifier interface {
	OverlayModified(ref Ref, rect geometry.Rect)
}

// Deleter is notified when the user deletes an overlay.
type Deleter interface {
	OverlayDeleted(ref Ref)
}

// Clicker is notified of single, double and right clicks on an overlay.
type Clicker interface {
	OverlayClicked(ref Ref, click Click)
}

// StyleProvider lets a delegate supply drawing colors. It receives the
// defaults and returns the style to use.
type StyleProvider interface {
	OverlayStyle(defaults Style) Style
}

// PermissionProvider lets a delegate restrict or extend what the user may do.
type PermissionProvider interface {
	OverlayPermissions(defaults Permission) Permission
}

// Ref identifies an overlay in a notification.
type Ref struct {
	Index  int
	Object any // nil unless the data source is an ObjectSource
}

// ClickKind classifies a click.
type ClickKind int

const (
	SingleClick ClickKind = iota
	DoubleClick
	RightClick
)

func (k ClickKind) String() string {
	switch k {
	case SingleClick:
		return "single"
	case DoubleClick:
		return "double"
	case RightClick:
		return "right"
	default:
		return "unknown"
	}
}

// Click describes a click on an overlay. Event is the raw event that
// completed the click.
type Click struct {
	Kind  ClickKind
	Event Event
}

package overlay

import (
	"image/color"
	"strings"

	"overlay-annotator/pkg/colorutil"
)

// Permission is a set of behaviour flags.
type Permission uint16

const (
	AllowsCreating Permission = 1 << iota
	AllowsModifying
	AllowsDeleting
	AllowsOverlapping
	AllowsSelection
	AllowsEmptySelection
	AllowsMultipleSelection
	WantsSingleClick
	WantsDoubleClick
	WantsRightClick

	permissionEnd
)

// AllPermissions has every flag set.
const AllPermissions = permissionEnd - 1

// DefaultPermissions allows everything except overlapping overlays.
const DefaultPermissions = AllPermissions &^ AllowsOverlapping

var permissionNames = []string{
	"creating", "modifying", "deleting", "overlapping",
	"selection", "empty-selection", "multiple-selection",
	"single-click", "double-click", "right-click",
}

// Has reports whether every flag in q is set.
func (p Permission) Has(q Permission) bool { return p&q == q }

// With returns p with q set or cleared.
func (p Permission) With(q Permission, on bool) Permission {
	if on {
		return p | q
	}
	return p &^ q
}

func (p Permission) String() string {
	var names []string
	for i, name := range permissionNames {
		if p&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParsePermission maps a flag name as printed by String back to its flag.
func ParsePermission(name string) (Permission, bool) {
	for i, n := range permissionNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}

// Style holds the colors used to draw overlays.
type Style struct {
	Fill           color.Color
	Border         color.Color
	SelectedFill   color.Color
	SelectedBorder color.Color
	BorderWidth    float64
}

// DefaultBorderWidth is the border width in display units.
const DefaultBorderWidth = 3.0

// DefaultStyle is translucent/opaque blue for overlays and translucent/opaque
// green for selected overlays.
func DefaultStyle() Style {
	return Style{
		Fill:           colorutil.BlueFill,
		Border:         colorutil.Blue,
		SelectedFill:   colorutil.GreenFill,
		SelectedBorder: colorutil.Green,
		BorderWidth:    DefaultBorderWidth,
	}
}

// merge returns s with every set field of o applied on top.
func (s Style) merge(o styleOverride) Style {
	if o.Fill != nil {
		s.Fill = o.Fill
	}
	if o.Border != nil {
		s.Border = o.Border
	}
	if o.SelectedFill != nil {
		s.SelectedFill = o.SelectedFill
	}
	if o.SelectedBorder != nil {
		s.SelectedBorder = o.SelectedBorder
	}
	if o.borderWidthSet {
		s.BorderWidth = o.BorderWidth
	}
	return s
}

// fillGaps replaces nil colors and negative widths with defaults, so a
// delegate returning a partial Style cannot break drawing.
func (s Style) fillGaps() Style {
	d := DefaultStyle()
	if s.Fill == nil {
		s.Fill = d.Fill
	}
	if s.Border == nil {
		s.Border = d.Border
	}
	if s.SelectedFill == nil {
		s.SelectedFill = d.SelectedFill
	}
	if s.SelectedBorder == nil {
		s.SelectedBorder = d.SelectedBorder
	}
	if s.BorderWidth < 0 {
		s.BorderWidth = d.BorderWidth
	}
	return s
}

type styleOverride struct {
	Style
	borderWidthSet bool
}

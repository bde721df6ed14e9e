// Package geometry provides the basic geometric types used by overlays and views.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Rect is an axis-aligned rectangle in floating-point coordinates.
// X and Y name the minimum corner once the rectangle is normalized.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromPoints returns the normalized rectangle spanned by two corners,
// regardless of which corner is which.
func RectFromPoints(a, b Point2D) Rect {
	return Rect{X: a.X, Y: a.Y, Width: b.X - a.X, Height: b.Y - a.Y}.Normalize()
}

// String formats the rectangle as (x,y,w,h).
func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g,%g,%g)", r.X, r.Y, r.Width, r.Height)
}

// Normalize returns an equivalent rectangle with non-negative width and height.
func (r Rect) Normalize() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// IsNaN reports whether any component is NaN.
func (r Rect) IsNaN() bool {
	return math.IsNaN(r.X) || math.IsNaN(r.Y) || math.IsNaN(r.Width) || math.IsNaN(r.Height)
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Contains returns true if the point is inside the rectangle (edges included).
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point2D {
	return Point2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// TopLeft returns the top-left corner.
func (r Rect) TopLeft() Point2D {
	return Point2D{X: r.X, Y: r.Y}
}

// BottomRight returns the bottom-right corner.
func (r Rect) BottomRight() Point2D {
	return Point2D{X: r.X + r.Width, Y: r.Y + r.Height}
}

// Intersects returns true if this rectangle overlaps another with a
// non-zero area. Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	x := math.Min(r.X, other.X)
	y := math.Min(r.Y, other.Y)
	x2 := math.Max(r.X+r.Width, other.X+other.Width)
	y2 := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Offset returns the rectangle translated by d.
func (r Rect) Offset(d Point2D) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, Width: r.Width, Height: r.Height}
}

// Inset returns the rectangle shrunk by d on every side. A negative d grows it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Bounds returns the integer rectangle covering r, for pixel operations.
func (r Rect) Bounds() image.Rectangle {
	n := r.Normalize()
	return image.Rect(
		int(math.Floor(n.X)), int(math.Floor(n.Y)),
		int(math.Ceil(n.MaxX())), int(math.Ceil(n.MaxY())),
	)
}

// Edge is a set of rectangle edges. The zero value means the body.
type Edge uint8

const (
	EdgeLeft Edge = 1 << iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// EdgeNone is the body of the rectangle.
const EdgeNone Edge = 0

// Has reports whether all edges in o are present in e.
func (e Edge) Has(o Edge) bool { return e&o == o && o != 0 }

// String returns a compact description such as "top|left".
func (e Edge) String() string {
	if e == EdgeNone {
		return "body"
	}
	s := ""
	for _, n := range []struct {
		e    Edge
		name string
	}{{EdgeTop, "top"}, {EdgeBottom, "bottom"}, {EdgeLeft, "left"}, {EdgeRight, "right"}} {
		if e&n.e != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// EdgesNear returns the edges of r grabbed by a pointer at p. Outside r the
// edges p lies beyond are returned. Inside r an edge counts when it is within
// tolerance, capped at a quarter of the rectangle's extent so that small
// rectangles keep a body; opposing edges are never both returned.
func (r Rect) EdgesNear(p Point2D, tolerance float64) Edge {
	var e Edge
	tx := math.Min(tolerance, r.Width/4)
	ty := math.Min(tolerance, r.Height/4)
	dl, dr := math.Abs(p.X-r.X), math.Abs(p.X-r.MaxX())
	dt, db := math.Abs(p.Y-r.Y), math.Abs(p.Y-r.MaxY())

	switch {
	case p.X < r.X:
		e |= EdgeLeft
	case p.X > r.MaxX():
		e |= EdgeRight
	case dl <= tx || dr <= tx:
		if dl <= dr {
			e |= EdgeLeft
		} else {
			e |= EdgeRight
		}
	}
	switch {
	case p.Y < r.Y:
		e |= EdgeTop
	case p.Y > r.MaxY():
		e |= EdgeBottom
	case dt <= ty || db <= ty:
		if dt <= db {
			e |= EdgeTop
		} else {
			e |= EdgeBottom
		}
	}
	return e
}

// MoveEdges returns r with the given edges displaced by d. The result may
// have negative extent and should be normalized by the caller.
func (r Rect) MoveEdges(edges Edge, d Point2D) Rect {
	x1, y1, x2, y2 := r.X, r.Y, r.MaxX(), r.MaxY()
	if edges&EdgeLeft != 0 {
		x1 += d.X
	}
	if edges&EdgeRight != 0 {
		x2 += d.X
	}
	if edges&EdgeTop != 0 {
		y1 += d.Y
	}
	if edges&EdgeBottom != 0 {
		y2 += d.Y
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Size represents a 2D size.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

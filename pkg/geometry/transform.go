package geometry

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the identity transform.
func Identity() AffineTransform {
	return AffineTransform{A: 1, D: 1}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// ZoomPan returns the image-to-display transform of a view showing the image
// at the given zoom, with the image origin drawn at offset (display units).
func ZoomPan(zoom float64, offset Point2D) AffineTransform {
	return Translation(offset.X, offset.Y).Compose(Scale(zoom, zoom))
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// ApplyRect maps both corners of r and returns the normalized bounding
// rectangle. Exact for transforms without rotation or shear.
func (t AffineTransform) ApplyRect(r Rect) Rect {
	return RectFromPoints(t.Apply(r.TopLeft()), t.Apply(r.BottomRight()))
}

// ScaleFactor returns the horizontal scale of the transform, the number of
// display units covered by one image unit.
func (t AffineTransform) ScaleFactor() float64 {
	return mat.Norm(mat.NewVecDense(2, []float64{t.A, t.C}), 2)
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	var out mat.Dense
	out.Mul(t.dense(), other.dense())
	return fromDense(&out)
}

// Inverse returns the inverse transform, if it exists. Ill-conditioned
// transforms, such as extreme zoom levels, still invert; only a zero or
// non-finite determinant fails.
func (t AffineTransform) Inverse() (AffineTransform, bool) {
	det := t.A*t.D - t.B*t.C
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return AffineTransform{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(t.dense()); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) {
			return AffineTransform{}, false
		}
	}
	out := fromDense(&inv)
	if !out.finite() {
		return AffineTransform{}, false
	}
	return out, true
}

func (t AffineTransform) finite() bool {
	for _, f := range []float64{t.A, t.B, t.TX, t.C, t.D, t.TY} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// dense returns the transform as a 3x3 homogeneous matrix.
func (t AffineTransform) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		t.A, t.B, t.TX,
		t.C, t.D, t.TY,
		0, 0, 1,
	})
}

func fromDense(m mat.Matrix) AffineTransform {
	return AffineTransform{
		A: m.At(0, 0), B: m.At(0, 1), TX: m.At(0, 2),
		C: m.At(1, 0), D: m.At(1, 1), TY: m.At(1, 2),
	}
}

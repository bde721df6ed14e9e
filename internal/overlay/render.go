package overlay

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"overlay-annotator/pkg/geometry"
)

// provisionalDash is the dash pattern of an in-progress gesture rectangle.
var provisionalDash = []float64{6, 4}

// Render draws every cached overlay onto dst. xf maps image coordinates to
// dst pixels. Selected overlays use the selection colors; the rectangle of
// an in-progress drag is drawn last in the normal colors with a dashed
// border.
func (v *View) Render(dst *image.RGBA, xf geometry.AffineTransform) {
	style := v.Style()
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	dasher := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)

	for i, r := range v.rects {
		fill, border := style.Fill, style.Border
		if v.selection.Contains(i) {
			fill, border = style.SelectedFill, style.SelectedBorder
		}
		drawOverlayRect(dst, dasher, xf.ApplyRect(r), fill, border, style.BorderWidth, nil)
	}

	if r, ok := v.GestureRect(); ok {
		drawOverlayRect(dst, dasher, xf.ApplyRect(r), style.Fill, style.Border, style.BorderWidth, provisionalDash)
	}
}

// drawOverlayRect fills r and strokes its border inside the rectangle.
func drawOverlayRect(dst *image.RGBA, dasher *rasterx.Dasher, r geometry.Rect, fill, border color.Color, width float64, dashes []float64) {
	area := r.Bounds().Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	draw.Draw(dst, area, image.NewUniform(fill), image.Point{}, draw.Over)

	if width <= 0 {
		return
	}
	// Keep the stroke within the rectangle, and never wider than it.
	half := width / 2
	if 2*half > r.Width || 2*half > r.Height {
		half = min(r.Width, r.Height) / 2
		width = 2 * half
	}

	dasher.Clear()
	dasher.SetStroke(fixed.Int26_6(width*64), fixed.Int26_6(4*64),
		rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter, dashes, 0)
	dasher.SetColor(border)
	rasterx.AddRect(r.X+half, r.Y+half, r.MaxX()-half, r.MaxY()-half, 0, dasher)
	dasher.Draw()
}

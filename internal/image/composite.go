package image

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"overlay-annotator/pkg/geometry"
)

// Quality selects the resampling used when the layer is scaled.
type Quality int

const (
	QualityFast Quality = iota // Nearest neighbour, used while dragging
	QualityGood                // Bilinear
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "Fast"
	case QualityGood:
		return "Good"
	default:
		return "Unknown"
	}
}

func (q Quality) interpolator() draw.Interpolator {
	if q == QualityGood {
		return draw.ApproxBiLinear
	}
	return draw.NearestNeighbor
}

// Composite renders a layer into a display-sized buffer through an
// image-to-display transform.
type Composite struct {
	Width     int
	Height    int
	BackColor color.Color
	Quality   Quality
}

// NewComposite creates a new Composite with the specified dimensions.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:     width,
		Height:    height,
		BackColor: color.RGBA{40, 40, 40, 255}, // Dark gray background
		Quality:   QualityGood,
	}
}

// Render draws the layer into a new buffer. A nil or hidden layer yields
// just the background.
func (c *Composite) Render(layer *Layer, xf geometry.AffineTransform) *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{c.BackColor}, image.Point{}, draw.Src)

	if layer == nil || layer.Image == nil || !layer.Visible {
		return result
	}
	c.drawLayer(result, layer, xf)
	return result
}

func (c *Composite) drawLayer(dst *image.RGBA, layer *Layer, xf geometry.AffineTransform) {
	src := layer.Image
	sb := src.Bounds()

	// Image coordinates start at the source's Min corner.
	m := xf.Compose(geometry.Translation(float64(-sb.Min.X), float64(-sb.Min.Y)))
	aff := f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}

	var opts *draw.Options
	if layer.Opacity < 1 {
		a := uint8(clamp(layer.Opacity, 0, 1) * 255)
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: a})}
	}
	c.Quality.interpolator().Transform(dst, aff, src, sb, draw.Over, opts)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

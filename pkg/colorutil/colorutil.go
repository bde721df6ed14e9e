// Package colorutil provides shared color utilities for overlay styling.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Common overlay colors used throughout the application.
var (
	Black  = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Blue   = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	Green  = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow = color.NRGBA{R: 255, G: 255, B: 0, A: 255}

	// Translucent variants used as overlay fills (alpha 0.5).
	BlueFill  = WithAlpha(Blue, 0.5)
	GreenFill = WithAlpha(Green, 0.5)
)

// WithAlpha returns c with its alpha replaced by a (0.0 - 1.0).
func WithAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(clamp01(a)*255 + 0.5)
	return n
}

// Parse reads "#rgb", "#rrggbb" or "#rrggbbaa" into a color.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// Hex formats c as "#rrggbbaa", or "#rrggbb" when opaque.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"overlay-annotator/pkg/colorutil"
)

// AnnotatorTheme follows the default theme but takes its accent colors from
// the overlay palette, so list selection matches selected overlays.
type AnnotatorTheme struct {
	// Overlay and Selected default to the overlay border colors.
	Overlay  color.Color
	Selected color.Color
}

var _ fyne.Theme = (*AnnotatorTheme)(nil)

func (t *AnnotatorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return t.overlay()
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(t.selected(), 0.35)
	case theme.ColorNameHyperlink:
		if variant == theme.VariantDark {
			return colorutil.WithAlpha(t.overlay(), 0.8)
		}
		return t.overlay()
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *AnnotatorTheme) overlay() color.Color {
	if t.Overlay != nil {
		return t.Overlay
	}
	return colorutil.Blue
}

func (t *AnnotatorTheme) selected() color.Color {
	if t.Selected != nil {
		return t.Selected
	}
	return colorutil.Green
}

func (t *AnnotatorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *AnnotatorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *AnnotatorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 16 // large images are panned with the scroll bars
	case theme.SizeNameScrollBarSmall:
		return 12
	default:
		return theme.DefaultTheme().Size(name)
	}
}

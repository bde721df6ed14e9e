package prefs

import (
	"fmt"
	"image/color"
	"log"

	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/colorutil"
)

// Preference keys.
const (
	KeyFillColor           = "overlay.fill"
	KeyBorderColor         = "overlay.border"
	KeySelectedFillColor   = "overlay.selectedFill"
	KeySelectedBorderColor = "overlay.selectedBorder"
	KeyBorderWidth         = "overlay.borderWidth"
	KeyPermissions         = "overlay.permissions"
	KeyLastDir             = "file.lastDir"
	KeyZoom                = "view.zoom"
)

// Color returns a color stored as hex, or fallback when unset or invalid.
func (p *Prefs) Color(key string, fallback color.Color) color.Color {
	s := p.String(key)
	if s == "" {
		return fallback
	}
	c, err := colorutil.Parse(s)
	if err != nil {
		log.Printf("prefs: %s: %v", key, err)
		return fallback
	}
	return c
}

// SetColor stores c as hex.
func (p *Prefs) SetColor(key string, c color.Color) {
	p.SetString(key, colorutil.Hex(c))
}

// Style returns the stored overlay style, falling back to the defaults.
func (p *Prefs) Style() overlay.Style {
	d := overlay.DefaultStyle()
	width := p.FloatWithFallback(KeyBorderWidth, d.BorderWidth)
	if width < 0 {
		width = d.BorderWidth
	}
	return overlay.Style{
		Fill:           p.Color(KeyFillColor, d.Fill),
		Border:         p.Color(KeyBorderColor, d.Border),
		SelectedFill:   p.Color(KeySelectedFillColor, d.SelectedFill),
		SelectedBorder: p.Color(KeySelectedBorderColor, d.SelectedBorder),
		BorderWidth:    width,
	}
}

// SetStyle stores every field of s.
func (p *Prefs) SetStyle(s overlay.Style) {
	p.SetColor(KeyFillColor, s.Fill)
	p.SetColor(KeyBorderColor, s.Border)
	p.SetColor(KeySelectedFillColor, s.SelectedFill)
	p.SetColor(KeySelectedBorderColor, s.SelectedBorder)
	p.SetFloat(KeyBorderWidth, s.BorderWidth)
}

// Permissions returns the stored permission set. ok is false when none is
// stored, in which case the data source decides.
func (p *Prefs) Permissions() (perm overlay.Permission, ok bool) {
	if !p.Has(KeyPermissions) {
		return 0, false
	}
	for _, name := range p.StringList(KeyPermissions) {
		if name == "none" {
			continue
		}
		flag, known := overlay.ParsePermission(name)
		if !known {
			log.Printf("prefs: unknown permission %q", name)
			continue
		}
		perm |= flag
	}
	return perm, true
}

// SetPermissions stores perm by flag name.
func (p *Prefs) SetPermissions(perm overlay.Permission) {
	p.SetString(KeyPermissions, perm.String())
}

// ApplyTo configures v with the stored style and permissions.
func (p *Prefs) ApplyTo(v *overlay.View) {
	s := p.Style()
	v.SetFillColor(s.Fill)
	v.SetBorderColor(s.Border)
	v.SetSelectionFillColor(s.SelectedFill)
	v.SetSelectionBorderColor(s.SelectedBorder)
	v.SetBorderWidth(s.BorderWidth)

	perm, ok := p.Permissions()
	if !ok {
		return
	}
	for flag := overlay.Permission(1); flag <= overlay.AllPermissions; flag <<= 1 {
		v.SetPermission(flag, perm.Has(flag))
	}
}

// Capture stores the current style and permissions of v.
func (p *Prefs) Capture(v *overlay.View) {
	p.SetStyle(v.Style())
	p.SetPermissions(v.Permissions())
}

// DescribeStyle formats s for logging.
func DescribeStyle(s overlay.Style) string {
	return fmt.Sprintf("fill=%s border=%s selectedFill=%s selectedBorder=%s width=%.1f",
		colorutil.Hex(s.Fill), colorutil.Hex(s.Border),
		colorutil.Hex(s.SelectedFill), colorutil.Hex(s.SelectedBorder), s.BorderWidth)
}

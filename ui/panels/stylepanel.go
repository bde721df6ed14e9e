package panels

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/colorutil"
)

// StylePanel edits the colors and border width the view draws with.
type StylePanel struct {
	view      *overlay.View
	container fyne.CanvasObject

	fill           *widget.Entry
	border         *widget.Entry
	selectedFill   *widget.Entry
	selectedBorder *widget.Entry
	width          *widget.Slider
	widthLabel     *widget.Label

	syncing bool
}

// NewStylePanel creates a style editor for v.
func NewStylePanel(v *overlay.View) *StylePanel {
	p := &StylePanel{view: v}

	p.fill = p.colorEntry(v.SetFillColor)
	p.border = p.colorEntry(v.SetBorderColor)
	p.selectedFill = p.colorEntry(v.SetSelectionFillColor)
	p.selectedBorder = p.colorEntry(v.SetSelectionBorderColor)

	p.widthLabel = widget.NewLabel("")
	p.width = widget.NewSlider(0, 10)
	p.width.Step = 0.5
	p.width.OnChanged = func(w float64) {
		p.widthLabel.SetText(fmt.Sprintf("%.1f", w))
		if !p.syncing {
			v.SetBorderWidth(w)
		}
	}

	reset := widget.NewButton("Defaults", func() {
		d := overlay.DefaultStyle()
		v.SetFillColor(d.Fill)
		v.SetBorderColor(d.Border)
		v.SetSelectionFillColor(d.SelectedFill)
		v.SetSelectionBorderColor(d.SelectedBorder)
		v.SetBorderWidth(d.BorderWidth)
		p.SyncStyle()
	})

	form := widget.NewForm(
		widget.NewFormItem("Fill", p.fill),
		widget.NewFormItem("Border", p.border),
		widget.NewFormItem("Selected fill", p.selectedFill),
		widget.NewFormItem("Selected border", p.selectedBorder),
		widget.NewFormItem("Border width", container.NewBorder(nil, nil, nil, p.widthLabel, p.width)),
	)
	p.container = container.NewVBox(
		form,
		widget.NewLabel("Colors are #rrggbb or #rrggbbaa."),
		reset,
	)

	p.SyncStyle()
	return p
}

// colorEntry returns an entry that applies valid hex colors through set.
func (p *StylePanel) colorEntry(set func(color.Color)) *widget.Entry {
	e := widget.NewEntry()
	e.Validator = func(s string) error {
		_, err := colorutil.Parse(s)
		return err
	}
	e.OnChanged = func(s string) {
		if p.syncing {
			return
		}
		if c, err := colorutil.Parse(s); err == nil {
			set(c)
		}
	}
	return e
}

// Container returns the panel container.
func (p *StylePanel) Container() fyne.CanvasObject {
	return p.container
}

// SyncStyle shows the view's current style.
func (p *StylePanel) SyncStyle() {
	p.syncing = true
	defer func() { p.syncing = false }()

	s := p.view.Style()
	p.fill.SetText(colorutil.Hex(s.Fill))
	p.border.SetText(colorutil.Hex(s.Border))
	p.selectedFill.SetText(colorutil.Hex(s.SelectedFill))
	p.selectedBorder.SetText(colorutil.Hex(s.SelectedBorder))
	p.width.SetValue(s.BorderWidth)
	p.widthLabel.SetText(fmt.Sprintf("%.1f", s.BorderWidth))
}

package panels

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"overlay-annotator/internal/app"
	annimage "overlay-annotator/internal/image"
	"overlay-annotator/ui/canvas"
)

// ImagePanel shows the loaded image's properties and its display settings.
type ImagePanel struct {
	state     *app.State
	canvas    *canvas.OverlayCanvas
	container fyne.CanvasObject

	fileLabel   *widget.Label
	sizeLabel   *widget.Label
	dpiLabel    *widget.Label
	docLabel    *widget.Label
	visible     *widget.Check
	opacity     *widget.Slider
	fastPreview *widget.Check

	syncing bool
}

// NewImagePanel creates an image panel. It follows image and document
// loads on its own.
func NewImagePanel(state *app.State, cvs *canvas.OverlayCanvas) *ImagePanel {
	p := &ImagePanel{state: state, canvas: cvs}

	p.fileLabel = widget.NewLabel("")
	p.fileLabel.Truncation = fyne.TextTruncateEllipsis
	p.sizeLabel = widget.NewLabel("")
	p.dpiLabel = widget.NewLabel("")
	p.docLabel = widget.NewLabel("")
	p.docLabel.Truncation = fyne.TextTruncateEllipsis

	p.visible = widget.NewCheck("Show image", func(on bool) {
		if layer := p.state.Image; layer != nil && !p.syncing {
			layer.Visible = on
			p.canvas.Refresh()
		}
	})
	p.opacity = widget.NewSlider(0, 1)
	p.opacity.Step = 0.05
	p.opacity.OnChanged = func(v float64) {
		if layer := p.state.Image; layer != nil && !p.syncing {
			layer.Opacity = v
			p.canvas.Refresh()
		}
	}
	p.fastPreview = widget.NewCheck("Fast scaling", func(on bool) {
		if on {
			p.canvas.SetQuality(annimage.QualityFast)
		} else {
			p.canvas.SetQuality(annimage.QualityGood)
		}
	})

	form := widget.NewForm(
		widget.NewFormItem("File", p.fileLabel),
		widget.NewFormItem("Size", p.sizeLabel),
		widget.NewFormItem("DPI", p.dpiLabel),
		widget.NewFormItem("Annotations", p.docLabel),
		widget.NewFormItem("Opacity", p.opacity),
	)
	p.container = container.NewVBox(form, p.visible, p.fastPreview)

	state.On(app.EventImageLoaded, func(interface{}) { p.Refresh() })
	state.On(app.EventDocumentLoaded, func(interface{}) { p.Refresh() })
	state.On(app.EventDocumentSaved, func(interface{}) { p.Refresh() })

	p.Refresh()
	return p
}

// Container returns the panel container.
func (p *ImagePanel) Container() fyne.CanvasObject {
	return p.container
}

// Refresh shows the current image and document.
func (p *ImagePanel) Refresh() {
	p.syncing = true
	defer func() { p.syncing = false }()

	if path := p.state.Document.Path(); path != "" {
		p.docLabel.SetText(filepath.Base(path))
	} else {
		p.docLabel.SetText("(unsaved)")
	}

	layer := p.state.Image
	if layer == nil {
		p.fileLabel.SetText("(none)")
		p.sizeLabel.SetText("")
		p.dpiLabel.SetText("")
		p.visible.Disable()
		return
	}
	p.fileLabel.SetText(filepath.Base(layer.Path))
	p.sizeLabel.SetText(fmt.Sprintf("%d x %d", layer.Width(), layer.Height()))
	if layer.DPI > 0 {
		p.dpiLabel.SetText(fmt.Sprintf("%.0f", layer.DPI))
	} else {
		p.dpiLabel.SetText("unknown")
	}
	p.visible.Enable()
	p.visible.SetChecked(layer.Visible)
	p.opacity.SetValue(layer.Opacity)
}

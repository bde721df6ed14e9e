// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/pkg/geometry"
)

// LabelDialog edits the label and rectangle of one overlay.
type LabelDialog struct {
	overlay *annotation.Overlay
	window  fyne.Window

	labelEntry  *widget.Entry
	xEntry      *widget.Entry
	yEntry      *widget.Entry
	widthEntry  *widget.Entry
	heightEntry *widget.Entry

	onSave func(label string, rect geometry.Rect)
}

// NewLabelDialog creates a dialog for o. onSave receives the edited values;
// it is not called when the dialog is cancelled or the input is invalid.
func NewLabelDialog(o *annotation.Overlay, window fyne.Window, onSave func(string, geometry.Rect)) *LabelDialog {
	d := &LabelDialog{
		overlay: o,
		window:  window,
		onSave:  onSave,
	}
	d.labelEntry = widget.NewEntry()
	d.labelEntry.SetText(o.Label)
	d.labelEntry.SetPlaceHolder("Label")
	d.xEntry = numberEntry(o.Rect.X)
	d.yEntry = numberEntry(o.Rect.Y)
	d.widthEntry = numberEntry(o.Rect.Width)
	d.heightEntry = numberEntry(o.Rect.Height)
	return d
}

func numberEntry(v float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(v, 'f', -1, 64))
	e.Validator = func(s string) error {
		_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return err
	}
	return e
}

// Show displays the dialog.
func (d *LabelDialog) Show() {
	items := []*widget.FormItem{
		widget.NewFormItem("Label", d.labelEntry),
		widget.NewFormItem("X", d.xEntry),
		widget.NewFormItem("Y", d.yEntry),
		widget.NewFormItem("Width", d.widthEntry),
		widget.NewFormItem("Height", d.heightEntry),
	}
	dlg := dialog.NewForm(fmt.Sprintf("Overlay #%d", d.overlay.ID), "Save", "Cancel", items, func(save bool) {
		if save {
			d.apply()
		}
	}, d.window)
	dlg.Resize(fyne.NewSize(360, 0))
	dlg.Show()
	d.window.Canvas().Focus(d.labelEntry)
}

func (d *LabelDialog) apply() {
	rect, err := ParseRect(d.xEntry.Text, d.yEntry.Text, d.widthEntry.Text, d.heightEntry.Text)
	if err != nil {
		dialog.ShowError(err, d.window)
		return
	}
	if d.onSave != nil {
		d.onSave(strings.TrimSpace(d.labelEntry.Text), rect)
	}
}

// ParseRect parses the four text fields of a rectangle. The result is
// normalized; a rectangle without area is rejected.
func ParseRect(x, y, w, h string) (geometry.Rect, error) {
	var vals [4]float64
	for i, s := range []string{x, y, w, h} {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("invalid number %q", s)
		}
		vals[i] = v
	}
	r := geometry.NewRect(vals[0], vals[1], vals[2], vals[3]).Normalize()
	if r.Empty() || r.IsNaN() {
		return geometry.Rect{}, fmt.Errorf("rectangle %v has no area", r)
	}
	return r, nil
}

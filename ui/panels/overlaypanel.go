// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/internal/app"
	"overlay-annotator/internal/overlay"
)

// OverlayPanel lists the document's overlays and keeps the list selection
// in step with the view selection. The owner calls SyncSelection when the
// view selection changes and Refresh when the document changes.
type OverlayPanel struct {
	state     *app.State
	view      *overlay.View
	container fyne.CanvasObject

	list       *widget.List
	labelEntry *widget.Entry
	infoLabel  *widget.Label
	deleteBtn  *widget.Button
	permChecks map[overlay.Permission]*widget.Check

	// syncing suppresses list callbacks while the list follows the view.
	syncing bool
}

// editablePermissions are the permissions offered as check boxes, in order.
var editablePermissions = []overlay.Permission{
	overlay.AllowsCreating,
	overlay.AllowsModifying,
	overlay.AllowsDeleting,
	overlay.AllowsOverlapping,
	overlay.AllowsSelection,
	overlay.AllowsEmptySelection,
	overlay.AllowsMultipleSelection,
	overlay.WantsSingleClick,
	overlay.WantsDoubleClick,
	overlay.WantsRightClick,
}

// NewOverlayPanel creates a new overlay panel.
func NewOverlayPanel(state *app.State, v *overlay.View) *OverlayPanel {
	p := &OverlayPanel{
		state:      state,
		view:       v,
		permChecks: make(map[overlay.Permission]*widget.Check),
	}

	p.list = widget.NewList(
		func() int {
			return p.state.Document.Len()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("#000 overlay label")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(ItemText(p.state.Document.Overlay(int(id))))
		},
	)
	p.list.OnSelected = func(id widget.ListItemID) {
		if p.syncing {
			return
		}
		p.view.SelectIndexes([]int{int(id)}, false)
	}

	p.labelEntry = widget.NewEntry()
	p.labelEntry.SetPlaceHolder("Label for the selected overlay")
	p.labelEntry.OnSubmitted = func(string) { p.applyLabel() }

	applyBtn := widget.NewButton("Set Label", p.applyLabel)
	p.deleteBtn = widget.NewButton("Delete Selected", p.DeleteSelected)
	p.infoLabel = widget.NewLabel("")

	permBox := container.NewVBox()
	for _, perm := range editablePermissions {
		perm := perm
		check := widget.NewCheck(perm.String(), func(on bool) {
			if p.syncing {
				return
			}
			p.view.SetPermission(perm, on)
		})
		p.permChecks[perm] = check
		permBox.Add(check)
	}

	detail := container.NewVBox(
		p.infoLabel,
		p.labelEntry,
		container.NewGridWithColumns(2, applyBtn, p.deleteBtn),
		widget.NewCard("Permissions", "", permBox),
	)
	p.container = container.NewBorder(nil, detail, nil, nil, p.list)

	p.SyncPermissions()
	p.SyncSelection()
	return p
}

// Container returns the panel container.
func (p *OverlayPanel) Container() fyne.CanvasObject {
	return p.container
}

// ItemText formats an overlay for the list.
func ItemText(o *annotation.Overlay) string {
	if o == nil {
		return ""
	}
	r := o.Rect
	if o.Label == "" {
		return fmt.Sprintf("#%d  %.0f,%.0f  %.0fx%.0f", o.ID, r.X, r.Y, r.Width, r.Height)
	}
	return fmt.Sprintf("#%d  %s  (%.0fx%.0f)", o.ID, o.Label, r.Width, r.Height)
}

// Refresh reloads the list after the document changed.
func (p *OverlayPanel) Refresh() {
	p.list.Refresh()
	p.SyncSelection()
}

// SyncSelection moves the list selection and the detail fields to the
// view's most recently selected overlay.
func (p *OverlayPanel) SyncSelection() {
	p.syncing = true
	defer func() { p.syncing = false }()

	last := p.view.SelectedIndex()
	if last < 0 {
		p.list.UnselectAll()
		p.labelEntry.SetText("")
		p.infoLabel.SetText(fmt.Sprintf("%d overlays", p.state.Document.Len()))
		p.deleteBtn.Disable()
		return
	}

	p.list.Select(widget.ListItemID(last))
	if o := p.state.Document.Overlay(last); o != nil {
		p.labelEntry.SetText(o.Label)
	}
	if n := p.view.NumberOfSelected(); n > 1 {
		p.infoLabel.SetText(fmt.Sprintf("%d of %d selected", n, p.state.Document.Len()))
	} else {
		p.infoLabel.SetText(ItemText(p.state.Document.Overlay(last)))
	}
	if p.view.Allows(overlay.AllowsDeleting) {
		p.deleteBtn.Enable()
	} else {
		p.deleteBtn.Disable()
	}
}

// SyncPermissions updates the check boxes from the view.
func (p *OverlayPanel) SyncPermissions() {
	p.syncing = true
	defer func() { p.syncing = false }()
	for perm, check := range p.permChecks {
		check.SetChecked(p.view.Allows(perm))
	}
}

// DeleteSelected removes every selected overlay from the document.
func (p *OverlayPanel) DeleteSelected() {
	if !p.view.Allows(overlay.AllowsDeleting) {
		return
	}
	indexes := p.view.SelectedIndexes()
	if len(indexes) == 0 {
		return
	}
	// Indexes shift after removal, so the selection must not survive it.
	for _, i := range indexes {
		p.view.Deselect(i)
	}
	p.state.Document.RemoveIndexes(indexes)
}

func (p *OverlayPanel) applyLabel() {
	o := p.state.Document.Overlay(p.view.SelectedIndex())
	if o == nil {
		return
	}
	p.state.Document.SetLabel(o.ID, p.labelEntry.Text)
}

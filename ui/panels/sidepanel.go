package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"overlay-annotator/internal/app"
	"overlay-annotator/internal/overlay"
	"overlay-annotator/ui/canvas"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	overlayPanel *OverlayPanel
	stylePanel   *StylePanel
	imagePanel   *ImagePanel
}

// NewSidePanel creates a new side panel for the view shown on cvs.
func NewSidePanel(state *app.State, v *overlay.View, cvs *canvas.OverlayCanvas) *SidePanel {
	sp := &SidePanel{state: state}

	sp.overlayPanel = NewOverlayPanel(state, v)
	sp.stylePanel = NewStylePanel(v)
	sp.imagePanel = NewImagePanel(state, cvs)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Overlays", sp.overlayPanel.Container()),
		container.NewTabItem("Style", sp.stylePanel.Container()),
		container.NewTabItem("Image", sp.imagePanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Overlays returns the overlay list tab.
func (sp *SidePanel) Overlays() *OverlayPanel { return sp.overlayPanel }

// Style returns the style tab.
func (sp *SidePanel) Style() *StylePanel { return sp.stylePanel }

// Image returns the image tab.
func (sp *SidePanel) Image() *ImagePanel { return sp.imagePanel }

// SyncView updates every tab after the view's rules or style changed.
func (sp *SidePanel) SyncView() {
	sp.overlayPanel.SyncPermissions()
	sp.overlayPanel.SyncSelection()
	sp.stylePanel.SyncStyle()
}

// Package canvas provides the image canvas that hosts an overlay view:
// zoom, fit to window, and pointer events translated into image space.
package canvas

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	annimage "overlay-annotator/internal/image"
	"overlay-annotator/internal/overlay"
	"overlay-annotator/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	doubleClickInterval = 400 * time.Millisecond
	doubleClickSlop     = 4 // display units
)

// LabelFunc returns the label drawn on overlay i, or "".
type LabelFunc func(i int) string

// OverlayCanvas displays an image with an overlay view on top of it.
type OverlayCanvas struct {
	widget.BaseWidget

	view   *overlay.View
	layer  *annimage.Layer
	labels LabelFunc

	// Display state
	raster  *fynecanvas.Raster
	zoom    float64
	quality annimage.Quality

	// Pointer state
	pressed bool
	button  overlay.Button
	mods    overlay.KeyModifier
	lastPos fyne.Position
	clicks  clickCounter

	// Container
	scroll  *zoomScroll
	content *overlayContent
	imgSize fyne.Size

	// Fit to window
	fitToWindow    bool
	lastScrollSize fyne.Size

	onZoomChange func(zoom float64)
}

// NewOverlayCanvas creates a canvas driving v.
func NewOverlayCanvas(v *overlay.View) *OverlayCanvas {
	oc := &OverlayCanvas{
		view:    v,
		zoom:    1.0,
		quality: annimage.QualityGood,
		imgSize: fyne.NewSize(400, 300),
		clicks:  clickCounter{interval: doubleClickInterval, slop: doubleClickSlop, now: time.Now},
	}

	oc.raster = fynecanvas.NewRaster(oc.draw)
	oc.raster.ScaleMode = fynecanvas.ImageScalePixels
	oc.raster.SetMinSize(oc.imgSize)

	oc.content = newOverlayContent(oc, oc.raster)
	oc.scroll = newZoomScroll(oc.content, oc)

	v.OnInvalidate(oc.Refresh)

	oc.ExtendBaseWidget(oc)
	return oc
}

// View returns the overlay view driven by this canvas.
func (oc *OverlayCanvas) View() *overlay.View { return oc.view }

// Container returns the canvas container for embedding in layouts.
func (oc *OverlayCanvas) Container() fyne.CanvasObject {
	return oc.scroll
}

// Content returns the object pointer positions are relative to.
func (oc *OverlayCanvas) Content() fyne.CanvasObject {
	return oc.content
}

// SetLayer sets the image to display.
func (oc *OverlayCanvas) SetLayer(layer *annimage.Layer) {
	oc.layer = layer
	oc.updateContentSize()
	if oc.fitToWindow {
		oc.FitToWindow()
	}
}

// Layer returns the displayed image.
func (oc *OverlayCanvas) Layer() *annimage.Layer { return oc.layer }

// SetQuality sets the image scaling quality used while idle.
func (oc *OverlayCanvas) SetQuality(q annimage.Quality) {
	oc.quality = q
	oc.Refresh()
}

// SetLabelFunc sets the source of overlay labels. nil draws no labels.
func (oc *OverlayCanvas) SetLabelFunc(fn LabelFunc) {
	oc.labels = fn
	oc.Refresh()
}

// SetZoom sets the zoom level.
func (oc *OverlayCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	oc.zoom = zoom
	oc.updateContentSize()

	if oc.onZoomChange != nil {
		oc.onZoomChange(zoom)
	}
}

// Zoom returns the current zoom level.
func (oc *OverlayCanvas) Zoom() float64 {
	return oc.zoom
}

// ZoomIn increases the zoom level.
func (oc *OverlayCanvas) ZoomIn() {
	oc.SetZoom(oc.zoom * zoomStep)
}

// ZoomOut decreases the zoom level.
func (oc *OverlayCanvas) ZoomOut() {
	oc.SetZoom(oc.zoom / zoomStep)
}

// FitToWindow adjusts zoom to fit the image in the visible area.
func (oc *OverlayCanvas) FitToWindow() {
	if oc.layer.Width() == 0 || oc.layer.Height() == 0 {
		return
	}
	viewSize := oc.scroll.Size()
	if viewSize.Width <= 0 || viewSize.Height <= 0 {
		return
	}

	zoomX := float64(viewSize.Width) / float64(oc.layer.Width())
	zoomY := float64(viewSize.Height) / float64(oc.layer.Height())
	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}
	oc.SetZoom(zoom * 0.95) // Leave a small margin
}

// SetFitToWindow enables or disables auto-fit on resize.
func (oc *OverlayCanvas) SetFitToWindow(fit bool) {
	oc.fitToWindow = fit
	if fit {
		oc.FitToWindow()
	}
}

// FitsToWindow returns the current fit-to-window state.
func (oc *OverlayCanvas) FitsToWindow() bool {
	return oc.fitToWindow
}

// checkResize auto-fits when the scroll container was resized.
func (oc *OverlayCanvas) checkResize(size fyne.Size) {
	if !oc.fitToWindow {
		return
	}
	if size.Width > 0 && size.Height > 0 && size != oc.lastScrollSize {
		oc.lastScrollSize = size
		oc.FitToWindow()
	}
}

// OnZoomChange sets a callback for zoom changes.
func (oc *OverlayCanvas) OnZoomChange(callback func(zoom float64)) {
	oc.onZoomChange = callback
}

// ImageToCanvas converts image coordinates to canvas coordinates.
func (oc *OverlayCanvas) ImageToCanvas(p geometry.Point2D) fyne.Position {
	d := oc.transform().Apply(p)
	return fyne.NewPos(float32(d.X), float32(d.Y))
}

// CanvasToImage converts canvas coordinates to image coordinates.
func (oc *OverlayCanvas) CanvasToImage(pos fyne.Position) geometry.Point2D {
	inv, ok := oc.transform().Inverse()
	if !ok {
		return geometry.Point2D{}
	}
	return inv.Apply(geometry.Point2D{X: float64(pos.X), Y: float64(pos.Y)})
}

// transform maps image coordinates to canvas coordinates.
func (oc *OverlayCanvas) transform() geometry.AffineTransform {
	return geometry.Scale(oc.zoom, oc.zoom)
}

// Refresh refreshes the canvas display.
func (oc *OverlayCanvas) Refresh() {
	oc.raster.Refresh()
}

// updateContentSize updates the content size based on image and zoom.
func (oc *OverlayCanvas) updateContentSize() {
	if oc.layer.Width() == 0 || oc.layer.Height() == 0 {
		oc.imgSize = fyne.NewSize(400, 300)
	} else {
		oc.imgSize = fyne.NewSize(
			float32(float64(oc.layer.Width())*oc.zoom),
			float32(float64(oc.layer.Height())*oc.zoom),
		)
	}

	oc.raster.SetMinSize(oc.imgSize)
	oc.raster.Resize(oc.imgSize)
	if oc.content != nil {
		oc.content.Resize(oc.imgSize)
		oc.content.Refresh()
	}
	oc.raster.Refresh()
	if oc.scroll != nil {
		oc.scroll.Refresh()
	}
}

// draw is the raster drawing function. w and h are in device pixels, which
// may differ from canvas units on high density displays.
func (oc *OverlayCanvas) draw(w, h int) image.Image {
	comp := annimage.NewComposite(w, h)
	comp.Quality = oc.quality
	if oc.view.Dragging() {
		comp.Quality = annimage.QualityFast
	}

	xf := geometry.Identity()
	if iw, ih := oc.layer.Width(), oc.layer.Height(); iw > 0 && ih > 0 {
		xf = geometry.Scale(float64(w)/float64(iw), float64(h)/float64(ih))
	}

	output := comp.Render(oc.layer, xf)
	oc.view.Render(output, xf)
	oc.drawLabels(output, xf)
	return output
}

var (
	labelText       = color.NRGBA{A: 0xFF}
	labelBackground = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xC0}
)

func (oc *OverlayCanvas) drawLabels(output *image.RGBA, xf geometry.AffineTransform) {
	if oc.labels == nil {
		return
	}
	scale := int(xf.ScaleFactor() * 2)
	pad := scale + 1
	for i := 0; i < oc.view.NumberOfOverlays(); i++ {
		label := oc.labels(i)
		if label == "" {
			continue
		}
		r, _ := oc.view.OverlayRect(i)
		tl := xf.Apply(r.TopLeft())
		at := image.Pt(int(tl.X)+pad+2, int(tl.Y)+pad+2)
		annimage.DrawLabel(output, label, at, labelText, labelBackground, scale)
	}
}

// pointerEvent converts a canvas position into an overlay event.
func (oc *OverlayCanvas) pointerEvent(pos fyne.Position, clicks int) overlay.Event {
	return overlay.Event{
		Point:     oc.CanvasToImage(pos),
		Button:    oc.button,
		Modifiers: oc.mods,
		Clicks:    clicks,
		Scale:     oc.zoom,
	}
}

func (oc *OverlayCanvas) mouseDown(ev *desktop.MouseEvent) {
	if oc.pressed {
		return
	}
	oc.pressed = true
	oc.lastPos = ev.Position
	oc.button = convertButton(ev.Button)
	oc.mods = convertModifiers(ev.Modifier)
	clicks := oc.clicks.press(ev.Position, oc.button)
	oc.view.PointerDown(oc.pointerEvent(ev.Position, clicks))
}

func (oc *OverlayCanvas) dragged(pos fyne.Position) {
	if !oc.pressed {
		return
	}
	oc.lastPos = pos
	oc.view.PointerDragged(oc.pointerEvent(pos, oc.clicks.count))
}

func (oc *OverlayCanvas) mouseUp(pos fyne.Position) {
	if !oc.pressed {
		return
	}
	oc.pressed = false
	oc.lastPos = pos
	oc.view.PointerUp(oc.pointerEvent(pos, oc.clicks.count))
}

func convertButton(b desktop.MouseButton) overlay.Button {
	if b&desktop.MouseButtonSecondary != 0 {
		return overlay.SecondaryButton
	}
	return overlay.PrimaryButton
}

func convertModifiers(m fyne.KeyModifier) overlay.KeyModifier {
	var mods overlay.KeyModifier
	if m&fyne.KeyModifierShift != 0 {
		mods |= overlay.ModShift
	}
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		mods |= overlay.ModCommand
	}
	return mods
}

// clickCounter turns successive presses into click counts.
type clickCounter struct {
	interval time.Duration
	slop     float32
	now      func() time.Time

	last   time.Time
	pos    fyne.Position
	button overlay.Button
	count  int
}

func (c *clickCounter) press(pos fyne.Position, button overlay.Button) int {
	t := c.now()
	dx, dy := pos.X-c.pos.X, pos.Y-c.pos.Y
	near := dx*dx+dy*dy <= c.slop*c.slop
	if c.count > 0 && button == c.button && near && t.Sub(c.last) <= c.interval {
		c.count++
	} else {
		c.count = 1
	}
	c.last, c.pos, c.button = t, pos, button
	return c.count
}

// zoomScroll is a widget that wraps a scroll container but intercepts wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *OverlayCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *OverlayCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Size returns the scroll container's size.
func (zs *zoomScroll) Size() fyne.Size {
	return zs.scroll.Size()
}

func (zs *zoomScroll) Refresh() {
	zs.scroll.Refresh()
	zs.BaseWidget.Refresh()
}

func (zs *zoomScroll) Resize(size fyne.Size) {
	zs.scroll.Resize(size)
	zs.BaseWidget.Resize(size)
}

// overlayContent wraps the raster to receive pointer events.
type overlayContent struct {
	widget.BaseWidget
	canvas *OverlayCanvas
	raster *fynecanvas.Raster
}

var (
	_ desktop.Mouseable = (*overlayContent)(nil)
	_ fyne.Draggable    = (*overlayContent)(nil)
	_ fyne.Scrollable   = (*overlayContent)(nil)
)

func newOverlayContent(oc *OverlayCanvas, raster *fynecanvas.Raster) *overlayContent {
	c := &overlayContent{canvas: oc, raster: raster}
	c.ExtendBaseWidget(c)
	return c
}

func (c *overlayContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

func (c *overlayContent) MinSize() fyne.Size {
	return c.raster.MinSize()
}

func (c *overlayContent) MouseDown(ev *desktop.MouseEvent) { c.canvas.mouseDown(ev) }

func (c *overlayContent) MouseUp(ev *desktop.MouseEvent) { c.canvas.mouseUp(ev.Position) }

func (c *overlayContent) Dragged(ev *fyne.DragEvent) { c.canvas.dragged(ev.Position) }

// DragEnd finishes a gesture whose MouseUp was not delivered, which happens
// when the pointer is released outside the widget.
func (c *overlayContent) DragEnd() { c.canvas.mouseUp(c.canvas.lastPos) }

func (c *overlayContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		c.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		c.canvas.ZoomOut()
	}
}

// CreateRenderer implements fyne.Widget.
func (oc *OverlayCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &overlayCanvasRenderer{canvas: oc}
}

type overlayCanvasRenderer struct {
	canvas *OverlayCanvas
}

func (r *overlayCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.scroll.Resize(size)
	r.canvas.checkResize(size)
}

func (r *overlayCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *overlayCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *overlayCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.scroll}
}

func (r *overlayCanvasRenderer) Destroy() {}

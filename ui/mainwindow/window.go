// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"overlay-annotator/internal/annotation"
	"overlay-annotator/internal/app"
	annimage "overlay-annotator/internal/image"
	"overlay-annotator/internal/ocr"
	"overlay-annotator/internal/overlay"
	"overlay-annotator/internal/version"
	"overlay-annotator/pkg/geometry"
	"overlay-annotator/ui/canvas"
	"overlay-annotator/ui/dialogs"
	"overlay-annotator/ui/panels"
	"overlay-annotator/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	appTitle = "Overlay Annotator"

	watchDebounce = 300 * time.Millisecond
)

// Options configures a MainWindow.
type Options struct {
	Prefs            *prefs.Prefs
	OCRLanguage      string
	WatchAnnotations bool
}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	opts  Options

	view      *overlay.View
	canvas    *canvas.OverlayCanvas
	sidePanel *panels.SidePanel
	panel     *panels.OverlayPanel
	statusBar *widget.Label
	stateBar  *widget.RadioGroup
	zoomLabel *widget.Label

	watcher *app.FileWatcher
	ocr     *ocr.Engine
	done    chan struct{} // closed by Close; stops forwardExternalChanges

	// syncing suppresses toolbar callbacks while it follows the view.
	syncing bool

	// Menu items that need state tracking
	fitToWindowItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, opts Options) *MainWindow {
	if opts.Prefs == nil {
		opts.Prefs = prefs.Load()
	}
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		opts:   opts,
		view:   overlay.NewView(),
		done:   make(chan struct{}),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()
	mw.attachDocument(state.Document)
	go mw.forwardExternalChanges()

	mw.SetCloseIntercept(mw.onClose)
	mw.Resize(fyne.NewSize(1200, 800))
	return mw
}

// View returns the overlay view shown in the window.
func (mw *MainWindow) View() *overlay.View { return mw.view }

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewOverlayCanvas(mw.view)
	mw.canvas.SetLabelFunc(func(i int) string {
		if o := mw.state.Document.Overlay(i); o != nil {
			return o.Label
		}
		return ""
	})
	mw.canvas.SetZoom(mw.opts.Prefs.FloatWithFallback(prefs.KeyZoom, 1))
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})

	mw.opts.Prefs.ApplyTo(mw.view)
	log.Printf("mainwindow: style %s, permissions %s", prefs.DescribeStyle(mw.view.Style()), mw.view.Permissions())
	mw.sidePanel = panels.NewSidePanel(mw.state, mw.view, mw.canvas)
	mw.panel = mw.sidePanel.Overlays()

	mw.statusBar = widget.NewLabel("Ready")
	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,               // top
		nil,                   // bottom
		nil,                   // left
		nil,                   // right
		mw.canvas.Container(), // center
	)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)
	mw.SetContent(content)
}

// createToolbar creates the interaction mode selector and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	names := make([]string, len(overlay.States))
	for i, s := range overlay.States {
		names[i] = s.String()
	}
	mw.stateBar = widget.NewRadioGroup(names, func(name string) {
		if mw.syncing {
			return
		}
		s, ok := overlay.ParseState(name)
		if !ok {
			// Deselecting the radio group means Idle.
			s = overlay.StateIdle
		}
		if !mw.view.EnterState(s) {
			mw.updateStatus(fmt.Sprintf("%s is not allowed", s))
			mw.syncState(mw.view.State())
		}
	})
	mw.stateBar.Horizontal = true
	mw.stateBar.Required = true
	mw.stateBar.SetSelected(mw.view.State().String())

	mw.zoomLabel = widget.NewLabel(fmt.Sprintf("%.0f%%", mw.canvas.Zoom()*100))

	return container.NewHBox(
		widget.NewLabel("Mode:"),
		mw.stateBar,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("Fit", mw.onToggleFitToWindow),
		widget.NewButton("1:1", mw.onActualSize),
		mw.zoomLabel,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Annotations...", mw.onOpenAnnotations),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Save As...", mw.onSaveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reload From Disk", mw.onReload),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Select All", mw.view.SelectAll),
		fyne.NewMenuItem("Deselect All", mw.view.DeselectAll),
		fyne.NewMenuItem("Delete Selected", mw.panel.DeleteSelected),
		fyne.NewMenuItem("Edit Selected...", mw.onEditSelected),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset Permissions", mw.onResetPermissions),
		fyne.NewMenuItem("Save Preferences", mw.savePreferences),
	)

	mw.fitToWindowItem = fyne.NewMenuItem("Fit to Window", mw.onToggleFitToWindow)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		mw.fitToWindowItem,
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Image", mw.onToggleImage),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Recognize Labels", mw.onRecognizeLabels),
		fyne.NewMenuItem("Log Overlays", func() { mw.state.Document.Log() }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers connects the view and the application state.
func (mw *MainWindow) setupEventHandlers() {
	// The view has one slot per callback; the window owns them and fans
	// out through application events.
	mw.view.OnSelectionChange(func() {
		mw.state.Emit(app.EventSelectionChanged, mw.view.SelectedIndexes())
	})
	mw.view.OnStateChange(func(s overlay.State) {
		mw.state.Emit(app.EventStateChanged, s)
	})

	mw.state.On(app.EventSelectionChanged, func(data interface{}) {
		mw.panel.SyncSelection()
		if n := mw.view.NumberOfSelected(); n > 0 {
			mw.updateStatus(fmt.Sprintf("%d selected", n))
		}
	})

	mw.state.On(app.EventStateChanged, func(data interface{}) {
		if s, ok := data.(overlay.State); ok {
			mw.syncState(s)
		}
	})

	mw.state.On(app.EventOverlaysChanged, func(data interface{}) {
		mw.view.ReloadData()
		mw.panel.Refresh()
		mw.panel.SyncPermissions()
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		if layer, ok := data.(*annimage.Layer); ok {
			mw.canvas.SetLayer(layer)
			mw.updateStatus(fmt.Sprintf("Image loaded: %s (%dx%d)",
				filepath.Base(layer.Path), layer.Width(), layer.Height()))
		}
	})

	mw.state.On(app.EventDocumentLoaded, func(data interface{}) {
		if doc, ok := data.(*annotation.Document); ok {
			mw.attachDocument(doc)
		}
	})

	mw.state.On(app.EventDocumentSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Saved " + path)
			mw.restartWatcher()
		}
		mw.updateTitle()
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventExternalChange, func(data interface{}) {
		mw.updateStatus(fmt.Sprintf("Reloaded %v after external change", data))
	})
}

// setupKeys binds keys that act on the canvas when no entry has focus.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			mw.view.EnterState(overlay.StateIdle)
		case fyne.KeyDelete, fyne.KeyBackspace:
			mw.panel.DeleteSelected()
		case fyne.KeyReturn:
			mw.onEditSelected()
		}
	})
}

// attachDocument makes doc the view's data source and delegate.
func (mw *MainWindow) attachDocument(doc *annotation.Document) {
	doc.OnClick(mw.onOverlayClicked)
	mw.view.DeselectAll()
	mw.view.SetDataSource(doc)
	mw.view.SetDelegate(doc)
	mw.panel.Refresh()
	mw.sidePanel.SyncView()
	mw.updateTitle()
	mw.restartWatcher()
	if path := doc.Path(); path != "" {
		mw.updateStatus(fmt.Sprintf("%d overlays in %s", doc.Len(), filepath.Base(path)))
	}
}

// forwardExternalChanges hands watcher signals to the UI goroutine, which
// owns the document and the view.
func (mw *MainWindow) forwardExternalChanges() {
	for {
		select {
		case <-mw.state.ExternalChanges():
			fyne.Do(mw.reloadExternalChange)
		case <-mw.done:
			return
		}
	}
}

func (mw *MainWindow) reloadExternalChange() {
	if _, err := mw.state.CheckExternalChange(); err != nil {
		log.Printf("mainwindow: reload failed: %v", err)
		mw.updateStatus(fmt.Sprintf("Reload failed: %v", err))
	}
}

// restartWatcher follows the current annotation file.
func (mw *MainWindow) restartWatcher() {
	if !mw.opts.WatchAnnotations {
		return
	}
	if mw.watcher != nil {
		if mw.watcher.Path() == mw.state.Document.Path() {
			return
		}
		mw.watcher.Stop()
		mw.watcher = nil
	}
	w, err := mw.state.WatchDocument(watchDebounce)
	if err != nil {
		log.Printf("mainwindow: cannot watch %s: %v", mw.state.Document.Path(), err)
		return
	}
	mw.watcher = w
}

func (mw *MainWindow) syncState(s overlay.State) {
	mw.syncing = true
	mw.stateBar.SetSelected(s.String())
	mw.syncing = false
}

func (mw *MainWindow) updateTitle() {
	title := appTitle
	if path := mw.state.Document.Path(); path != "" {
		title += " - " + filepath.Base(path)
	} else if mw.state.Image != nil {
		title += " - " + filepath.Base(mw.state.Image.Path)
	}
	if mw.state.Modified() {
		title += " *"
	}
	mw.SetTitle(title)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.opts.Prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.opts.Prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// LoadImage opens an image and its annotations, reporting failures in a
// dialog.
func (mw *MainWindow) LoadImage(path, annotationsPath string) {
	if err := mw.state.LoadImage(path, annotationsPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// Close stops background work and saves preferences.
func (mw *MainWindow) Close() {
	select {
	case <-mw.done:
	default:
		close(mw.done)
	}
	if mw.watcher != nil {
		mw.watcher.Stop()
		mw.watcher = nil
	}
	if mw.ocr != nil {
		mw.ocr.Close()
		mw.ocr = nil
	}
	mw.savePreferences()
	mw.Window.Close()
}

func (mw *MainWindow) savePreferences() {
	mw.opts.Prefs.Capture(mw.view)
	mw.opts.Prefs.SetFloat(prefs.KeyZoom, mw.canvas.Zoom())
	if err := mw.opts.Prefs.Save(); err != nil {
		log.Printf("mainwindow: saving preferences: %v", err)
	}
}

// Menu action handlers

func (mw *MainWindow) onClose() {
	if !mw.state.Modified() {
		mw.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"The annotations have unsaved changes. Quit anyway?",
		func(quit bool) {
			if quit {
				mw.Close()
			}
		}, mw.Window)
}

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		mw.LoadImage(path, "")
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(annimage.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenAnnotations() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.OpenAnnotations(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	if mw.state.Document.Path() == "" {
		mw.onSaveAs()
		return
	}
	if err := mw.state.SaveAnnotations(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.EqualFold(filepath.Ext(path), ".json") {
			path += ".json"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveAnnotationsAs(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	name := "annotations.json"
	if mw.state.Image != nil {
		name = filepath.Base(annotation.DefaultPath(mw.state.Image.Path))
	}
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onReload() {
	if mw.state.Document.Path() == "" {
		return
	}
	reload := func() {
		if err := mw.state.Document.Reload(); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}
	if !mw.state.Modified() {
		reload()
		return
	}
	dialog.ShowConfirm("Reload", "Discard unsaved changes?", func(ok bool) {
		if ok {
			reload()
		}
	}, mw.Window)
}

// onOverlayClicked receives clicks the document forwards from the view.
func (mw *MainWindow) onOverlayClicked(o *annotation.Overlay, click overlay.Click) {
	switch click.Kind {
	case overlay.DoubleClick:
		mw.editOverlay(o)
	case overlay.RightClick:
		mw.showOverlayMenu(o, click.Event.Point)
	default:
		mw.updateStatus(panels.ItemText(o))
	}
}

func (mw *MainWindow) showOverlayMenu(o *annotation.Overlay, at geometry.Point2D) {
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Edit...", func() { mw.editOverlay(o) }),
		fyne.NewMenuItem("Delete", func() {
			if i := mw.state.Document.IndexOf(o.ID); i >= 0 && mw.view.Allows(overlay.AllowsDeleting) {
				mw.view.Deselect(i)
				mw.state.Document.Remove(o.ID)
			}
		}),
	)
	widget.ShowPopUpMenuAtRelativePosition(menu, mw.Canvas(), mw.canvas.ImageToCanvas(at), mw.canvas.Content())
}

func (mw *MainWindow) onEditSelected() {
	if o := mw.state.Document.Overlay(mw.view.SelectedIndex()); o != nil {
		mw.editOverlay(o)
	}
}

func (mw *MainWindow) editOverlay(o *annotation.Overlay) {
	id := o.ID
	dialogs.NewLabelDialog(o, mw.Window, func(label string, rect geometry.Rect) {
		doc := mw.state.Document
		doc.SetLabel(id, label)
		if mw.view.Allows(overlay.AllowsModifying) {
			doc.SetRect(id, rect)
		}
	}).Show()
}

func (mw *MainWindow) onResetPermissions() {
	mw.view.ClearPermissionOverrides()
	mw.opts.Prefs.Delete(prefs.KeyPermissions)
	mw.sidePanel.SyncView()
}

func (mw *MainWindow) onRecognizeLabels() {
	layer := mw.state.Image
	if layer == nil || layer.Image == nil {
		mw.updateStatus("No image loaded")
		return
	}
	if mw.ocr == nil {
		engine, err := ocr.NewEngine(mw.opts.OCRLanguage)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.ocr = engine
	}

	// Selected overlays are relabelled; without a selection only the
	// unlabelled ones are.
	doc := mw.state.Document
	var targets []*annotation.Overlay
	if sel := mw.view.SelectedIndexes(); len(sel) > 0 {
		for _, i := range sel {
			if o := doc.Overlay(i); o != nil {
				targets = append(targets, o)
			}
		}
	} else {
		for _, o := range doc.Overlays() {
			if o.Label == "" {
				targets = append(targets, o)
			}
		}
	}
	if len(targets) == 0 {
		mw.updateStatus("Every overlay already has a label")
		return
	}
	rects := make([]geometry.Rect, len(targets))
	for i, o := range targets {
		rects[i] = o.Rect
	}

	texts, err := mw.ocr.RecognizeRegions(layer.Image, rects)
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	found := 0
	for i, text := range texts {
		if text != "" && doc.SetLabel(targets[i].ID, text) {
			found++
		}
	}
	mw.updateStatus(fmt.Sprintf("Recognized %d of %d labels", found, len(targets)))
}

func (mw *MainWindow) onZoomIn() {
	mw.disableFitToWindow()
	mw.canvas.ZoomIn()
}

func (mw *MainWindow) onZoomOut() {
	mw.disableFitToWindow()
	mw.canvas.ZoomOut()
}

func (mw *MainWindow) onToggleFitToWindow() {
	enabled := !mw.canvas.FitsToWindow()
	mw.canvas.SetFitToWindow(enabled)
	mw.fitToWindowItem.Checked = enabled
}

func (mw *MainWindow) onActualSize() {
	mw.disableFitToWindow()
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) disableFitToWindow() {
	if mw.canvas.FitsToWindow() {
		mw.canvas.SetFitToWindow(false)
		mw.fitToWindowItem.Checked = false
	}
}

func (mw *MainWindow) onToggleImage() {
	if layer := mw.state.Image; layer != nil {
		layer.Visible = !layer.Visible
		mw.canvas.Refresh()
		mw.sidePanel.Image().Refresh()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Draw, select and label rectangular regions on an image.\n\n"+
			"Built: %s",
			appTitle, version.String(), version.BuildTime),
		mw.Window)
}

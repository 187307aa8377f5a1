// Package mainwindow provides the main application window, a thin shell over
// the session in internal/app.
package mainwindow

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"

	"dotblot-quant/internal/app"
	"dotblot-quant/internal/export"
	"dotblot-quant/internal/grid"
	blotimage "dotblot-quant/internal/image"
	"dotblot-quant/internal/render"
	"dotblot-quant/internal/version"
	"dotblot-quant/ui/canvas"
	"dotblot-quant/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	canvas    *canvas.ImageCanvas
	imageList *widget.List
	table     *widget.Table
	statusBar *widget.Label
	magnifier *canvas.ImageCanvas

	defineButton *widget.Button

	// Display-adjusted view cached for the status readout and magnifier;
	// invalidated on image and saturation changes. The core itself never
	// caches.
	adjusted *blotimage.Intensity

	spacingIncrement float64
}

// New creates the main window wired to the session.
func New(fyneApp fyne.App, session *app.Session, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Quantify 96-well dotblot")

	mw := &MainWindow{
		Window:           win,
		app:              fyneApp,
		session:          session,
		prefs:            appPrefs,
		spacingIncrement: 1,
	}

	mw.applyPreferences()
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.Resize(fyne.NewSize(1400, 900))
	return mw
}

func (mw *MainWindow) applyPreferences() {
	mw.session.SetSaturation(mw.prefs.FloatWithFallback(prefs.KeySaturation, blotimage.DefaultSaturation))
	mw.session.SetROIRadius(mw.prefs.IntWithFallback(prefs.KeyROIRadius, grid.DefaultRadius))
	mw.session.SetROIColor(mw.prefs.ColorWithFallback(prefs.KeyROIColor, grid.DefaultColor))
	mw.session.SetGridShape(
		mw.prefs.IntWithFallback(prefs.KeyGridRows, grid.DefaultRows),
		mw.prefs.IntWithFallback(prefs.KeyGridCols, grid.DefaultCols),
	)
}

func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas()
	mw.canvas.OnLeftClick = mw.onCanvasClick
	mw.canvas.OnMove = mw.onCanvasMove
	mw.canvas.OnLeave = func() { mw.statusBar.SetText("") }

	mw.magnifier = canvas.NewImageCanvas()
	mw.statusBar = widget.NewLabel("")

	sidebar := container.NewVBox(
		widget.NewButton("Load Image", mw.openImageDialog),
		mw.buildImageList(),
		widget.NewLabel("Saturation"),
		mw.buildSaturationSlider(),
		widget.NewSeparator(),
		mw.buildGridControls(),
		widget.NewSeparator(),
		widget.NewButton("Measure Grid", mw.onMeasure),
		widget.NewButton("Save as CSV", mw.saveCSVDialog),
		widget.NewButton("Save Image", mw.saveImageDialog),
		widget.NewButton("Reset", mw.onReset),
	)

	mw.table = mw.buildMeasurementTable()

	content := container.NewBorder(
		nil, mw.statusBar,
		container.NewVScroll(sidebar), mw.table,
		container.NewScroll(mw.canvas),
	)
	mw.SetContent(content)
}

func (mw *MainWindow) buildImageList() fyne.CanvasObject {
	mw.imageList = widget.NewList(
		func() int { return len(mw.session.ImageNames()) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(mw.session.ImageNames()[i])
		},
	)
	mw.imageList.OnSelected = func(id widget.ListItemID) {
		if err := mw.session.SelectImage(id); err != nil {
			mw.setStatus(err.Error())
		}
	}
	return container.NewVScroll(mw.imageList)
}

func (mw *MainWindow) buildSaturationSlider() *widget.Slider {
	slider := widget.NewSlider(0, 1000)
	slider.SetValue(mw.session.Saturation() * 1000)
	slider.OnChanged = func(v float64) {
		mw.session.SetSaturation(v / 1000)
		mw.prefs.SetFloat(prefs.KeySaturation, v/1000)
	}
	return slider
}

func (mw *MainWindow) buildGridControls() fyne.CanvasObject {
	mw.defineButton = widget.NewButton("Define Grid", mw.onToggleDefine)

	radius := widget.NewSlider(15, 30)
	radius.SetValue(float64(mw.session.GridParams().Radius))
	radius.OnChanged = func(v float64) {
		mw.session.SetROIRadius(int(v))
		mw.prefs.SetInt(prefs.KeyROIRadius, int(v))
	}

	colorButton := widget.NewButton("Change ROI Color", func() {
		dialog.ShowColorPicker("ROI Color", "Pick the ROI overlay color", func(c color.Color) {
			r, g, b, a := c.RGBA()
			rgba := color.RGBA{
				R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8),
			}
			mw.session.SetROIColor(rgba)
			mw.prefs.SetColor(prefs.KeyROIColor, rgba)
		}, mw.Window)
	})

	// Translate cross.
	up := widget.NewButton("↑", func() { mw.session.TranslateGrid(0, -1) })
	down := widget.NewButton("↓", func() { mw.session.TranslateGrid(0, 1) })
	left := widget.NewButton("←", func() { mw.session.TranslateGrid(-1, 0) })
	right := widget.NewButton("→", func() { mw.session.TranslateGrid(1, 0) })
	cross := container.NewVBox(
		container.NewGridWithColumns(3, widget.NewLabel(""), up, widget.NewLabel("")),
		container.NewGridWithColumns(3, left, widget.NewLabel(""), right),
		container.NewGridWithColumns(3, widget.NewLabel(""), down, widget.NewLabel("")),
	)

	incrementLabel := widget.NewLabel("Spacing Increment: 1")
	increment := widget.NewSlider(1, 20)
	increment.SetValue(1)
	increment.OnChanged = func(v float64) {
		mw.spacingIncrement = v
		incrementLabel.SetText("Spacing Increment: " + strconv.Itoa(int(v)))
	}

	widthRow := container.NewHBox(
		widget.NewLabel("Width: "),
		widget.NewButton("+", func() { mw.session.AdjustSpacing(grid.AxisWidth, mw.spacingIncrement) }),
		widget.NewButton("−", func() { mw.session.AdjustSpacing(grid.AxisWidth, -mw.spacingIncrement) }),
	)
	heightRow := container.NewHBox(
		widget.NewLabel("Height: "),
		widget.NewButton("+", func() { mw.session.AdjustSpacing(grid.AxisHeight, mw.spacingIncrement) }),
		widget.NewButton("−", func() { mw.session.AdjustSpacing(grid.AxisHeight, -mw.spacingIncrement) }),
	)

	return container.NewVBox(
		mw.defineButton,
		widget.NewLabel("ROI Radius"),
		radius,
		colorButton,
		widget.NewLabel("Translate Grid"),
		cross,
		incrementLabel,
		increment,
		widthRow,
		heightRow,
		widget.NewLabel("Magnifier"),
		mw.magnifier,
	)
}

func (mw *MainWindow) buildMeasurementTable() *widget.Table {
	table := widget.NewTable(
		func() (int, int) {
			return len(mw.session.Measurements()) + 1, len(export.Header)
		},
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row == 0 {
				label.SetText(export.Header[id.Col])
				return
			}
			records := mw.session.Measurements()
			if id.Row-1 >= len(records) {
				label.SetText("")
				return
			}
			r := records[id.Row-1]
			cells := []string{
				r.Well,
				strconv.Itoa(r.X),
				strconv.Itoa(r.Y),
				strconv.Itoa(r.Median),
				strconv.FormatFloat(r.Mean, 'f', 1, 64),
				strconv.FormatFloat(r.Stdev, 'f', 1, 64),
				strconv.Itoa(r.Mode),
				strconv.Itoa(r.Min),
				strconv.Itoa(r.Max),
			}
			label.SetText(cells[id.Col])
		},
	)
	for col := 0; col < len(export.Header); col++ {
		table.SetColumnWidth(col, 72)
	}
	return table
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.openImageDialog),
		fyne.NewMenuItem("Save Image...", mw.saveImageDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Open Project...", mw.openProjectDialog),
		fyne.NewMenuItem("Save Project...", mw.saveProjectDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export CSV...", mw.saveCSVDialog),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("About",
				fmt.Sprintf("dotblot-quant %s (%s)", version.Version, version.GitCommit),
				mw.Window)
		}),
	)
	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (mw *MainWindow) setupEventHandlers() {
	refresh := func(interface{}) { mw.refreshScene() }

	mw.session.On(app.EventImageLoaded, func(interface{}) {
		mw.imageList.Refresh()
		mw.refreshScene()
	})
	mw.session.On(app.EventImageSelected, func(interface{}) {
		mw.adjusted = nil
		mw.refreshScene()
	})
	mw.session.On(app.EventSaturationChanged, func(interface{}) {
		mw.adjusted = nil
		mw.refreshScene()
	})
	mw.session.On(app.EventGridChanged, refresh)
	mw.session.On(app.EventGridDefined, func(interface{}) {
		mw.defineButton.SetText("Define Grid")
		mw.refreshScene()
	})
	mw.session.On(app.EventMeasured, func(data interface{}) {
		mw.table.Refresh()
		mw.setStatus(fmt.Sprintf("measured %v wells", data))
	})
	mw.session.On(app.EventProjectLoaded, refresh)
	mw.session.On(app.EventReset, func(interface{}) {
		mw.adjusted = nil
		mw.imageList.Refresh()
		mw.table.Refresh()
		mw.refreshScene()
		mw.setStatus("session reset")
	})
}

func (mw *MainWindow) refreshScene() {
	scene, err := mw.session.RenderScene()
	if err != nil {
		return
	}
	mw.canvas.SetImage(scene)
}

// adjustedView returns the cached display-adjusted image.
func (mw *MainWindow) adjustedView() *blotimage.Intensity {
	if mw.adjusted == nil {
		mw.adjusted = mw.session.AdjustedImage()
	}
	return mw.adjusted
}

func (mw *MainWindow) onCanvasClick(x, y float64) {
	mw.session.ClickCorner(x, y)
}

func (mw *MainWindow) onCanvasMove(x, y float64) {
	adjusted := mw.adjustedView()
	if adjusted == nil {
		return
	}
	xi, yi := int(x), int(y)
	if xi < 0 || xi >= adjusted.Width || yi < 0 || yi >= adjusted.Height {
		return
	}

	v := adjusted.At(xi, yi)
	relative := 0.0
	if max := adjusted.Max(); max > 0 {
		relative = float64(v) / float64(max) * 100
	}
	mw.setStatus(fmt.Sprintf("X: %d, Y: %d | Intensity: %d | Relative: %.2f%% | Percentile: %.2f%%",
		xi, yi, v, relative, float64(v)/blotimage.MaxSample*100))

	if mw.session.DefineState() == grid.StatePicking {
		if view, err := render.Magnify(adjusted, xi, yi); err == nil {
			mw.magnifier.SetImage(view)
		}
	}
}

func (mw *MainWindow) onToggleDefine() {
	if mw.session.DefineState() == grid.StatePicking {
		mw.session.CancelDefineGrid()
		mw.defineButton.SetText("Define Grid")
		return
	}
	if err := mw.session.StartDefineGrid(); err != nil {
		mw.setStatus(err.Error())
		return
	}
	mw.defineButton.SetText("Cancel Grid Definition")
	mw.setStatus("click the A01 corner, the A12 corner, then the H01 corner")
}

func (mw *MainWindow) onMeasure() {
	if err := mw.session.Measure(); err != nil {
		mw.setStatus(err.Error())
	}
}

func (mw *MainWindow) onReset() {
	mw.session.Reset()
	mw.defineButton.SetText("Define Grid")
}

func (mw *MainWindow) setStatus(msg string) {
	mw.statusBar.SetText(msg)
}

// startLocation resolves the last-used directory preference for file dialogs.
func (mw *MainWindow) startLocation() fyne.ListableURI {
	dir := mw.prefs.String(prefs.KeyLastDir)
	if dir == "" {
		return nil
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return lister
}

func (mw *MainWindow) openImageDialog() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		if err := mw.session.LoadImage(path); err != nil {
			mw.setStatus(err.Error())
			return
		}
		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
	}, mw.Window)
	d.SetFilter(storage.NewExtensionFileFilter(blotimage.SupportedFormats()))
	if loc := mw.startLocation(); loc != nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func (mw *MainWindow) saveImageDialog() {
	suggested := filepath.Base(render.DefaultSceneName(mw.session.CurrentPath()))
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := mw.session.SaveScene(path); err != nil {
			mw.setStatus(err.Error())
		}
	}, mw.Window)
	d.SetFileName(suggested)
	if loc := mw.startLocation(); loc != nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func (mw *MainWindow) saveCSVDialog() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := mw.session.ExportCSV(path); err != nil {
			mw.setStatus(err.Error())
		}
	}, mw.Window)
	if p := mw.session.CurrentPath(); p != "" {
		base := filepath.Base(p)
		d.SetFileName(base[:len(base)-len(filepath.Ext(base))] + ".csv")
	}
	if loc := mw.startLocation(); loc != nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func (mw *MainWindow) openProjectDialog() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		if err := mw.session.LoadProject(path); err != nil {
			mw.setStatus(err.Error())
		}
	}, mw.Window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	if loc := mw.startLocation(); loc != nil {
		d.SetLocation(loc)
	}
	d.Show()
}

func (mw *MainWindow) saveProjectDialog() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := mw.session.SaveProject(path); err != nil {
			mw.setStatus(err.Error())
		}
	}, mw.Window)
	d.SetFileName("dotblot.json")
	if loc := mw.startLocation(); loc != nil {
		d.SetLocation(loc)
	}
	d.Show()
}

// SavePreferences persists UI preferences to disk, recording the current grid
// shape as the next session's default.
func (mw *MainWindow) SavePreferences() {
	params := mw.session.GridParams()
	mw.prefs.SetInt(prefs.KeyGridRows, params.Rows)
	mw.prefs.SetInt(prefs.KeyGridCols, params.Cols)
	if err := mw.prefs.Save(); err != nil {
		mw.setStatus("failed to save preferences: " + err.Error())
	}
}

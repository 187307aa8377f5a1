// Package canvas provides the image display widget. It renders the scene
// produced by the core and reports clicks and cursor movement in scene
// coordinates; all interpretation of those events lives in the session.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// ImageCanvas displays the rendered scene at its natural pixel size.
type ImageCanvas struct {
	widget.BaseWidget

	raster *fynecanvas.Image
	width  int
	height int

	// Callbacks with positions in image (scene) coordinates.
	OnLeftClick func(x, y float64)
	OnMove      func(x, y float64)
	OnLeave     func()
}

// NewImageCanvas creates an empty image canvas.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		raster: fynecanvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
	}
	ic.raster.FillMode = fynecanvas.ImageFillContain
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.ExtendBaseWidget(ic)
	return ic
}

// SetImage replaces the displayed scene.
func (ic *ImageCanvas) SetImage(img image.Image) {
	if img == nil {
		return
	}
	bounds := img.Bounds()
	ic.width = bounds.Dx()
	ic.height = bounds.Dy()
	ic.raster.Image = img
	ic.raster.Refresh()
	ic.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ic.raster)
}

// MinSize keeps the widget at the image's natural size so widget positions
// map 1:1 onto scene coordinates inside a scroll container.
func (ic *ImageCanvas) MinSize() fyne.Size {
	if ic.width == 0 {
		return fyne.NewSize(320, 240)
	}
	return fyne.NewSize(float32(ic.width), float32(ic.height))
}

// Tapped forwards left clicks as scene coordinates.
func (ic *ImageCanvas) Tapped(ev *fyne.PointEvent) {
	if ic.OnLeftClick == nil {
		return
	}
	x, y := ic.toScene(ev.Position)
	ic.OnLeftClick(x, y)
}

// MouseIn implements desktop.Hoverable.
func (ic *ImageCanvas) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved forwards cursor movement for the status readout and magnifier.
func (ic *ImageCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if ic.OnMove == nil {
		return
	}
	x, y := ic.toScene(ev.Position)
	ic.OnMove(x, y)
}

// MouseOut implements desktop.Hoverable.
func (ic *ImageCanvas) MouseOut() {
	if ic.OnLeave != nil {
		ic.OnLeave()
	}
}

// toScene maps a widget position onto image coordinates. The widget is kept
// at the image's natural size, so the mapping is the identity as long as the
// layout doesn't stretch it.
func (ic *ImageCanvas) toScene(pos fyne.Position) (float64, float64) {
	return float64(pos.X), float64(pos.Y)
}

// Package render composes the display scene: the adjusted image with the
// grid overlay (orientation lines, corner markers, ROI circles, well labels).
// The core only produces pixels and geometry; widget chrome stays in ui/.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	blotimage "dotblot-quant/internal/image"
	"dotblot-quant/internal/grid"
	"dotblot-quant/pkg/geometry"
)

var (
	lineColor   = color.RGBA{R: 255, G: 255, A: 255} // orientation lines, yellow
	cornerColor = color.RGBA{R: 255, A: 255}         // corner markers, red
)

const cornerMarkerRadius = 5

// Scene renders the adjusted image with the grid overlay. Corners are drawn
// while picking; the full lattice and orientation lines once defined.
func Scene(adjusted *blotimage.Intensity, g grid.WellGrid, corners []geometry.Point2D, params grid.Params) (image.Image, error) {
	if adjusted == nil {
		return nil, fmt.Errorf("no image to render")
	}

	mat, err := matFromIntensity(adjusted)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, l := range g.Lines {
		gocv.Line(&mat, pt(l.From), pt(l.To), lineColor, 2)
	}
	for _, c := range corners {
		gocv.Circle(&mat, pt(c), cornerMarkerRadius, cornerColor, -1)
	}
	for _, w := range g.Wells {
		center := pt(w.Center)
		gocv.Circle(&mat, center, params.Radius, params.Color, 1)

		size := gocv.GetTextSize(w.Name, gocv.FontHersheySimplex, labelScale, 1)
		org := image.Pt(center.X-size.X/2, center.Y+size.Y/2)
		gocv.PutText(&mat, w.Name, org, gocv.FontHersheySimplex, labelScale, params.Color, 1)
	}

	return mat.ToImage()
}

const labelScale = 0.4

// Magnify returns a circular magnified view around (x, y) on the adjusted
// image, used by the UI while picking corners. regionSize pixels around the
// cursor are zoomed with nearest-neighbor interpolation and masked to a disk.
func Magnify(adjusted *blotimage.Intensity, x, y int) (image.Image, error) {
	const (
		regionSize = 30
		zoomFactor = 3
	)
	if adjusted == nil {
		return nil, fmt.Errorf("no image to magnify")
	}

	win := geometry.RectInt{
		X:      x - regionSize,
		Y:      y - regionSize,
		Width:  2 * regionSize,
		Height: 2 * regionSize,
	}.Clamp(adjusted.Width, adjusted.Height)
	if win.Empty() {
		return nil, fmt.Errorf("magnifier region outside image")
	}

	data := make([]byte, win.Width*win.Height)
	for row := 0; row < win.Height; row++ {
		for col := 0; col < win.Width; col++ {
			data[row*win.Width+col] = byte(adjusted.At(win.X+col, win.Y+row) >> 8)
		}
	}

	region, err := gocv.NewMatFromBytes(win.Height, win.Width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return nil, err
	}
	defer region.Close()

	zoomed := gocv.NewMat()
	defer zoomed.Close()
	gocv.Resize(region, &zoomed,
		image.Pt(win.Width*zoomFactor, win.Height*zoomFactor),
		0, 0, gocv.InterpolationNearestNeighbor)

	mask := gocv.NewMatWithSize(zoomed.Rows(), zoomed.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.Circle(&mask, image.Pt(zoomed.Cols()/2, zoomed.Rows()/2),
		regionSize*zoomFactor, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAnd(zoomed, mask, &masked)

	return masked.ToImage()
}

// matFromIntensity converts 16-bit samples to an 8-bit BGR drawing surface.
func matFromIntensity(m *blotimage.Intensity) (gocv.Mat, error) {
	data := make([]byte, m.Width*m.Height*3)
	for i, v := range m.Pix {
		b := byte(v >> 8)
		data[3*i] = b
		data[3*i+1] = b
		data[3*i+2] = b
	}
	return gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8UC3, data)
}

func pt(p geometry.Point2D) image.Point {
	return image.Pt(int(p.X), int(p.Y))
}

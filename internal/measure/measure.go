// Package measure computes per-well intensity statistics over circular-looking
// ROIs. The measurement window is the square bounding box of side 2r centered
// at the well center; the on-screen circle is cosmetic only.
package measure

import (
	"log"
	"math"

	blotimage "dotblot-quant/internal/image"
	"dotblot-quant/internal/grid"
	"dotblot-quant/pkg/geometry"
)

// Record holds the statistics for one well, computed over the raw
// (non-display-adjusted) image.
type Record struct {
	Well   string  `json:"well"`
	X      int     `json:"x_center"`
	Y      int     `json:"y_center"`
	Median int     `json:"median"`
	Mean   float64 `json:"mean"`  // rounded to 1 decimal
	Stdev  float64 `json:"stdev"` // population, rounded to 1 decimal
	Mode   int     `json:"mode"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// Grid measures every well of the lattice on the raw image and returns one
// record per well in row-major order. The pass is idempotent: it builds a
// fresh set and performs no incremental update. Wells whose clamped window is
// empty (center entirely outside the image) are skipped and logged.
func Grid(img *blotimage.Intensity, g grid.WellGrid, radius int) []Record {
	if img == nil || !g.Defined() {
		return nil
	}

	records := make([]Record, 0, len(g.Wells))
	for _, w := range g.Wells {
		rec, ok := Well(img, w, radius)
		if !ok {
			log.Printf("well %s: ROI window at (%d, %d) is outside the image, skipping",
				w.Name, int(w.Center.X), int(w.Center.Y))
			continue
		}
		records = append(records, rec)
	}
	return records
}

// Well measures a single well. The window [cx-r, cx+r) x [cy-r, cy+r) is
// clamped to the image bounds; partial windows are measured over whatever
// pixels remain. Returns false if no pixels remain.
func Well(img *blotimage.Intensity, w grid.Well, radius int) (Record, bool) {
	cx, cy := int(w.Center.X), int(w.Center.Y)

	win := geometry.RectInt{
		X:      cx - radius,
		Y:      cy - radius,
		Width:  2 * radius,
		Height: 2 * radius,
	}.Clamp(img.Width, img.Height)
	if win.Empty() {
		return Record{}, false
	}

	samples := make([]uint16, 0, win.Area())
	for y := win.Y; y < win.Y+win.Height; y++ {
		row := img.Pix[y*img.Width : (y+1)*img.Width]
		samples = append(samples, row[win.X:win.X+win.Width]...)
	}

	s := Describe(samples)
	return Record{
		Well:   w.Name,
		X:      cx,
		Y:      cy,
		Median: s.Median,
		Mean:   round1(s.Mean),
		Stdev:  round1(s.Stdev),
		Mode:   s.Mode,
		Min:    s.Min,
		Max:    s.Max,
	}, true
}

// round1 rounds to one decimal place, half to even, the precision and tie rule
// carried into the CSV.
func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

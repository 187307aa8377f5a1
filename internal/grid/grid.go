// Package grid derives a regular affine lattice of well centers from three
// user-picked reference corners and incremental offset/spacing adjustments.
package grid

import (
	"fmt"
	"image/color"

	"dotblot-quant/pkg/geometry"
)

// Default grid configuration for a 96-well plate.
const (
	DefaultRows   = 8
	DefaultCols   = 12
	DefaultRadius = 15
)

// DefaultColor is the default ROI rendering color.
var DefaultColor = color.RGBA{R: 255, A: 255}

// Axis selects which spacing adjustment an edit applies to.
type Axis int

const (
	AxisWidth  Axis = iota // column-to-column spacing (x)
	AxisHeight             // row-to-row spacing (y)
)

// Params holds the user-adjustable grid parameters. Parameters are created
// with defaults at session start and mutated only by explicit user actions,
// never derived from image content.
type Params struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Offset translates the whole lattice; it is applied once to the origin.
	OffsetX int `json:"offset_x"`
	OffsetY int `json:"offset_y"`

	// Per-axis spacing adjustment, added per step along each axis so it
	// compounds across rows/columns. At most one axis is non-zero at a time:
	// adjusting width resets height to zero and vice versa. This coupling is
	// deliberate and kept for numeric compatibility.
	SpacingX float64 `json:"spacing_x"`
	SpacingY float64 `json:"spacing_y"`

	Radius int        `json:"radius"`
	Color  color.RGBA `json:"color"`
}

// DefaultParams returns the standard 8x12 plate parameters.
func DefaultParams() Params {
	return Params{
		Rows:   DefaultRows,
		Cols:   DefaultCols,
		Radius: DefaultRadius,
		Color:  DefaultColor,
	}
}

// Well is one addressable spot position in the lattice.
type Well struct {
	Row    int
	Col    int
	Name   string
	Center geometry.Point2D
}

// WellGrid is the derived lattice: Rows*Cols well centers in row-major order
// plus the two orientation segments (origin to horizontal corner, origin to
// vertical corner) for external rendering. A grid with no wells means the
// corners are not (yet) defined.
type WellGrid struct {
	Rows  int
	Cols  int
	Wells []Well
	Lines []geometry.Line2D
}

// Defined reports whether the grid holds any centers.
func (g WellGrid) Defined() bool {
	return len(g.Wells) > 0
}

// At returns the well at (row, col). Row-major indexing.
func (g WellGrid) At(row, col int) Well {
	return g.Wells[row*g.Cols+col]
}

// WellName formats the canonical well name for a (row, col) position:
// row letter plus two-digit column number, e.g. (0,0) -> "A01", (7,11) -> "H12".
func WellName(row, col int) string {
	return fmt.Sprintf("%c%02d", 'A'+rune(row), col+1)
}

// Model computes well centers from the reference corners and parameters.
// Centers are recomputed from scratch on every query; nothing is cached, so
// the lattice can never go stale across corner or parameter edits.
type Model struct {
	corners []geometry.Point2D // 0..3, frozen once full until cleared
	params  Params
}

// NewModel creates a model with default parameters and no corners.
func NewModel() *Model {
	return &Model{params: DefaultParams()}
}

// Params returns a copy of the current parameters.
func (m *Model) Params() Params {
	return m.params
}

// Corners returns a copy of the reference corners picked so far.
func (m *Model) Corners() []geometry.Point2D {
	out := make([]geometry.Point2D, len(m.corners))
	copy(out, m.corners)
	return out
}

// SetCorners installs the three reference corners: origin (A01), the
// horizontal corner (same row, last column) and the vertical corner (last row,
// same column). Fewer than three corners leaves the grid undefined.
func (m *Model) SetCorners(corners []geometry.Point2D) {
	m.corners = make([]geometry.Point2D, len(corners))
	copy(m.corners, corners)
}

// ClearCorners drops the reference corners, leaving the grid undefined.
func (m *Model) ClearCorners() {
	m.corners = nil
}

// Reset restores default parameters and clears the corners.
func (m *Model) Reset() {
	m.corners = nil
	m.params = DefaultParams()
}

// Translate adds (dx, dy) to the cumulative grid offset.
func (m *Model) Translate(dx, dy int) {
	m.params.OffsetX += dx
	m.params.OffsetY += dy
}

// AdjustSpacing adds delta to the chosen axis's spacing adjustment and forces
// the other axis back to zero (documented coupling, see Params).
func (m *Model) AdjustSpacing(axis Axis, delta float64) {
	switch axis {
	case AxisWidth:
		m.params.SpacingX += delta
		m.params.SpacingY = 0
	case AxisHeight:
		m.params.SpacingX = 0
		m.params.SpacingY += delta
	}
}

// SetRadius sets the ROI radius in pixels. Values below 1 are ignored.
func (m *Model) SetRadius(r int) {
	if r < 1 {
		return
	}
	m.params.Radius = r
}

// SetColor sets the ROI rendering color.
func (m *Model) SetColor(c color.RGBA) {
	m.params.Color = c
}

// SetRowCount sets the number of rows. Values below 2 are ignored since the
// row vector divides by Rows-1.
func (m *Model) SetRowCount(rows int) {
	if rows < 2 {
		return
	}
	m.params.Rows = rows
}

// SetColCount sets the number of columns. Values below 2 are ignored.
func (m *Model) SetColCount(cols int) {
	if cols < 2 {
		return
	}
	m.params.Cols = cols
}

// SetParams replaces the parameters wholesale (project restore).
func (m *Model) SetParams(p Params) {
	if p.Rows < 2 || p.Cols < 2 || p.Radius < 1 {
		return
	}
	m.params = p
}

// Grid computes the well lattice from the current corners and parameters.
// With fewer than three corners it returns an empty grid.
//
// With corners a1 (origin), a12 (horizontal) and h1 (vertical):
//
//	rowVec = (h1 - a1) / (Rows-1)
//	colVec = (a12 - a1) / (Cols-1)
//	origin = a1 + offset
//	center(i, j) = origin + i*(rowVec + (0, SpacingY)) + j*(colVec + (SpacingX, 0))
//
// The spacing adjustment is added per step, so it compounds with i and j.
func (m *Model) Grid() WellGrid {
	g := WellGrid{Rows: m.params.Rows, Cols: m.params.Cols}
	if len(m.corners) != 3 {
		return g
	}

	a1, a12, h1 := m.corners[0], m.corners[1], m.corners[2]

	rowVec := h1.Sub(a1).Scale(1 / float64(m.params.Rows-1))
	colVec := a12.Sub(a1).Scale(1 / float64(m.params.Cols-1))

	rowStep := rowVec.Add(geometry.Point2D{Y: m.params.SpacingY})
	colStep := colVec.Add(geometry.Point2D{X: m.params.SpacingX})

	origin := a1.Add(geometry.Point2D{X: float64(m.params.OffsetX), Y: float64(m.params.OffsetY)})

	g.Wells = make([]Well, 0, m.params.Rows*m.params.Cols)
	for i := 0; i < m.params.Rows; i++ {
		for j := 0; j < m.params.Cols; j++ {
			center := origin.
				Add(rowStep.Scale(float64(i))).
				Add(colStep.Scale(float64(j)))
			g.Wells = append(g.Wells, Well{
				Row:    i,
				Col:    j,
				Name:   WellName(i, j),
				Center: center,
			})
		}
	}

	g.Lines = []geometry.Line2D{
		{From: a1, To: a12},
		{From: a1, To: h1},
	}
	return g
}

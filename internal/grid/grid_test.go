package grid

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"dotblot-quant/pkg/geometry"
)

// squareCorners defines an axis-aligned plate: A01 at (10,10), A12 at (90,10),
// H01 at (10,90).
func squareCorners() []geometry.Point2D {
	return []geometry.Point2D{
		{X: 10, Y: 10},
		{X: 90, Y: 10},
		{X: 10, Y: 90},
	}
}

func TestWellName(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{0, 0, "A01"},
		{0, 11, "A12"},
		{7, 0, "H01"},
		{7, 11, "H12"},
		{1, 8, "B09"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, WellName(tt.row, tt.col))
	}
}

func TestGridUndefinedWithoutCorners(t *testing.T) {
	m := NewModel()
	require.False(t, m.Grid().Defined())

	m.SetCorners(squareCorners()[:2])
	require.False(t, m.Grid().Defined())

	m.SetCorners(squareCorners())
	require.True(t, m.Grid().Defined())

	m.ClearCorners()
	require.False(t, m.Grid().Defined())
}

func TestGridCornersAnchorTheLattice(t *testing.T) {
	m := NewModel()
	m.SetCorners(squareCorners())

	g := m.Grid()
	require.Len(t, g.Wells, DefaultRows*DefaultCols)

	// The three picked corners are lattice points.
	require.Equal(t, geometry.Point2D{X: 10, Y: 10}, g.At(0, 0).Center)
	require.InDelta(t, 90, g.At(0, DefaultCols-1).Center.X, 1e-9)
	require.InDelta(t, 10, g.At(0, DefaultCols-1).Center.Y, 1e-9)
	require.InDelta(t, 10, g.At(DefaultRows-1, 0).Center.X, 1e-9)
	require.InDelta(t, 90, g.At(DefaultRows-1, 0).Center.Y, 1e-9)

	names := make(map[string]bool)
	for _, w := range g.Wells {
		names[w.Name] = true
	}
	require.Len(t, names, DefaultRows*DefaultCols)
	require.Equal(t, "A01", g.Wells[0].Name)
	require.Equal(t, "H12", g.Wells[len(g.Wells)-1].Name)
}

func TestGridTwoByTwo(t *testing.T) {
	m := NewModel()
	m.SetRowCount(2)
	m.SetColCount(2)
	m.SetCorners(squareCorners())

	g := m.Grid()
	require.Len(t, g.Wells, 4)
	require.Equal(t, geometry.Point2D{X: 10, Y: 10}, g.At(0, 0).Center)
	require.Equal(t, geometry.Point2D{X: 90, Y: 10}, g.At(0, 1).Center)
	require.Equal(t, geometry.Point2D{X: 10, Y: 90}, g.At(1, 0).Center)
	require.Equal(t, geometry.Point2D{X: 90, Y: 90}, g.At(1, 1).Center)
}

func TestGridOrientationLines(t *testing.T) {
	m := NewModel()
	m.SetCorners(squareCorners())

	g := m.Grid()
	require.Len(t, g.Lines, 2)
	require.Equal(t, geometry.Line2D{From: geometry.Point2D{X: 10, Y: 10}, To: geometry.Point2D{X: 90, Y: 10}}, g.Lines[0])
	require.Equal(t, geometry.Line2D{From: geometry.Point2D{X: 10, Y: 10}, To: geometry.Point2D{X: 10, Y: 90}}, g.Lines[1])
}

func TestTranslateShiftsEveryCenter(t *testing.T) {
	m := NewModel()
	m.SetCorners(squareCorners())
	before := m.Grid()

	m.Translate(3, -4)
	m.Translate(2, 1)
	after := m.Grid()

	for i := range before.Wells {
		require.InDelta(t, before.Wells[i].Center.X+5, after.Wells[i].Center.X, 1e-9)
		require.InDelta(t, before.Wells[i].Center.Y-3, after.Wells[i].Center.Y, 1e-9)
	}
}

func TestAdjustSpacingCompoundsPerStep(t *testing.T) {
	m := NewModel()
	m.SetRowCount(3)
	m.SetColCount(3)
	m.SetCorners(squareCorners())
	before := m.Grid()

	m.AdjustSpacing(AxisWidth, 2)
	after := m.Grid()

	// Column j moves by 2*j; rows are unaffected.
	for _, w := range after.Wells {
		b := before.At(w.Row, w.Col)
		require.InDelta(t, b.Center.X+2*float64(w.Col), w.Center.X, 1e-9, "well %s", w.Name)
		require.InDelta(t, b.Center.Y, w.Center.Y, 1e-9, "well %s", w.Name)
	}
}

func TestAdjustSpacingAxesAreExclusive(t *testing.T) {
	m := NewModel()

	m.AdjustSpacing(AxisWidth, 5)
	require.Equal(t, 5.0, m.Params().SpacingX)
	require.Equal(t, 0.0, m.Params().SpacingY)

	m.AdjustSpacing(AxisHeight, 3)
	require.Equal(t, 0.0, m.Params().SpacingX)
	require.Equal(t, 3.0, m.Params().SpacingY)

	m.AdjustSpacing(AxisHeight, 3)
	require.Equal(t, 6.0, m.Params().SpacingY)
}

func TestSetterGuards(t *testing.T) {
	m := NewModel()

	m.SetRadius(0)
	require.Equal(t, DefaultRadius, m.Params().Radius)
	m.SetRadius(20)
	require.Equal(t, 20, m.Params().Radius)

	m.SetRowCount(1)
	require.Equal(t, DefaultRows, m.Params().Rows)
	m.SetColCount(0)
	require.Equal(t, DefaultCols, m.Params().Cols)

	m.SetParams(Params{Rows: 1, Cols: 12, Radius: 15})
	require.Equal(t, DefaultRows, m.Params().Rows)

	valid := Params{Rows: 4, Cols: 6, Radius: 10, Color: color.RGBA{G: 255, A: 255}}
	m.SetParams(valid)
	require.Equal(t, valid, m.Params())
}

func TestResetRestoresDefaults(t *testing.T) {
	m := NewModel()
	m.SetCorners(squareCorners())
	m.Translate(5, 5)
	m.SetRadius(25)

	m.Reset()
	require.False(t, m.Grid().Defined())
	require.Equal(t, DefaultParams(), m.Params())
}

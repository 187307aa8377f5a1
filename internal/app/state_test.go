package app

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dotblot-quant/internal/export"
	"dotblot-quant/internal/grid"
	blotimage "dotblot-quant/internal/image"
)

// writeTestImage writes a constant-valued 16-bit grayscale PNG and returns its
// path.
func writeTestImage(t *testing.T, w, h int, value uint16) string {
	t.Helper()

	img := image.NewGray16(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[2*i] = uint8(value >> 8)
		img.Pix[2*i+1] = uint8(value)
	}

	path := filepath.Join(t.TempDir(), "blot.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func defineSquareGrid(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.StartDefineGrid())
	s.ClickCorner(10, 10)
	s.ClickCorner(90, 10)
	s.ClickCorner(10, 90)
	require.Equal(t, grid.StateDefined, s.DefineState())
}

func TestSessionGuardsWithoutImage(t *testing.T) {
	s := NewSession()

	require.ErrorIs(t, s.StartDefineGrid(), ErrNoImage)
	require.ErrorIs(t, s.Measure(), ErrNoImage)
	require.ErrorIs(t, s.ExportCSV("unused.csv"), ErrNoMeasurements)
	require.Nil(t, s.CurrentImage())
	require.Nil(t, s.AdjustedImage())
	require.Equal(t, "", s.CurrentPath())

	_, err := s.RenderScene()
	require.ErrorIs(t, err, ErrNoImage)
}

func TestSessionLoadAndSelect(t *testing.T) {
	s := NewSession()
	path := writeTestImage(t, 20, 20, 500)

	require.NoError(t, s.LoadImage(path))
	require.Equal(t, path, s.CurrentPath())
	require.Equal(t, []string{"blot.png"}, s.ImageNames())

	second := writeTestImage(t, 10, 10, 200)
	require.NoError(t, s.LoadImage(second))
	require.Equal(t, path, s.CurrentPath(), "loading keeps the current selection")

	require.NoError(t, s.SelectImage(1))
	require.Equal(t, second, s.CurrentPath())

	require.ErrorIs(t, s.SelectImage(5), ErrBadImageIndex)
	require.ErrorIs(t, s.SelectImage(-1), ErrBadImageIndex)
}

func TestSessionLoadMissingImageLeavesStateUnchanged(t *testing.T) {
	s := NewSession()
	require.Error(t, s.LoadImage(filepath.Join(t.TempDir(), "nope.png")))
	require.Empty(t, s.ImageNames())
	require.Nil(t, s.CurrentImage())
}

func TestSessionMeasureConstantPlate(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.LoadImage(writeTestImage(t, 100, 100, 1000)))

	require.ErrorIs(t, s.Measure(), ErrGridNotDefined)

	s.SetGridShape(2, 2)
	defineSquareGrid(t, s)

	require.NoError(t, s.Measure())
	records := s.Measurements()
	require.Len(t, records, 4)
	require.Equal(t, "A01", records[0].Well)
	require.Equal(t, "B02", records[3].Well)
	for _, r := range records {
		require.Equal(t, 1000, r.Median)
		require.Equal(t, 1000.0, r.Mean)
		require.Equal(t, 0.0, r.Stdev)
		require.Equal(t, 1000, r.Mode)
		require.Equal(t, 1000, r.Min)
		require.Equal(t, 1000, r.Max)
	}

	// The grid anchors at the picked corners.
	g := s.Grid()
	require.Equal(t, 10.0, g.At(0, 0).Center.X)
	require.Equal(t, 90.0, g.At(1, 1).Center.X)
	require.Equal(t, 90.0, g.At(1, 1).Center.Y)
}

func TestSessionClicksIgnoredOutsidePicking(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.LoadImage(writeTestImage(t, 50, 50, 100)))

	s.ClickCorner(5, 5)
	require.Empty(t, s.PickedCorners())
	require.False(t, s.Grid().Defined())
}

func TestSessionRedefineClearsOldGrid(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.LoadImage(writeTestImage(t, 100, 100, 100)))
	defineSquareGrid(t, s)

	require.NoError(t, s.StartDefineGrid())
	require.Equal(t, grid.StatePicking, s.DefineState())
	require.False(t, s.Grid().Defined())
	require.Empty(t, s.PickedCorners())

	s.CancelDefineGrid()
	require.Equal(t, grid.StateIdle, s.DefineState())
	require.False(t, s.Grid().Defined())
}

func TestSessionSaturationClamped(t *testing.T) {
	s := NewSession()
	require.Equal(t, blotimage.DefaultSaturation, s.Saturation())

	s.SetSaturation(-1)
	require.Equal(t, 0.0, s.Saturation())
	s.SetSaturation(2)
	require.Equal(t, 1.0, s.Saturation())
}

func TestSessionParameterEdits(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.LoadImage(writeTestImage(t, 100, 100, 100)))
	s.SetGridShape(2, 2)
	defineSquareGrid(t, s)
	before := s.Grid()

	s.TranslateGrid(5, 0)
	s.TranslateGrid(0, -2)
	after := s.Grid()
	require.InDelta(t, before.At(0, 0).Center.X+5, after.At(0, 0).Center.X, 1e-9)
	require.InDelta(t, before.At(0, 0).Center.Y-2, after.At(0, 0).Center.Y, 1e-9)

	s.AdjustSpacing(grid.AxisWidth, 3)
	require.Equal(t, 3.0, s.GridParams().SpacingX)
	s.AdjustSpacing(grid.AxisHeight, 2)
	require.Equal(t, 0.0, s.GridParams().SpacingX)
	require.Equal(t, 2.0, s.GridParams().SpacingY)

	s.SetROIRadius(25)
	require.Equal(t, 25, s.GridParams().Radius)
}

func TestSessionEvents(t *testing.T) {
	s := NewSession()

	var measured interface{}
	var defined bool
	s.On(EventMeasured, func(data interface{}) { measured = data })
	s.On(EventGridDefined, func(interface{}) { defined = true })

	require.NoError(t, s.LoadImage(writeTestImage(t, 100, 100, 1000)))
	s.SetGridShape(2, 2)
	defineSquareGrid(t, s)
	require.True(t, defined)

	require.NoError(t, s.Measure())
	require.Equal(t, 4, measured)
}

func TestSessionExportCSV(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.LoadImage(writeTestImage(t, 100, 100, 1000)))
	s.SetGridShape(2, 2)
	defineSquareGrid(t, s)
	require.NoError(t, s.Measure())

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, s.ExportCSV(path))

	records, err := export.ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Equal(t, s.Measurements(), records)
}

func TestSessionIntensityAt(t *testing.T) {
	s := NewSession()

	_, ok := s.IntensityAt(0, 0)
	require.False(t, ok)

	require.NoError(t, s.LoadImage(writeTestImage(t, 10, 10, 500)))
	info, ok := s.IntensityAt(3, 4)
	require.True(t, ok)
	require.Equal(t, 3, info.X)
	require.Equal(t, 4, info.Y)
	// A constant image is returned unchanged by the display stretch.
	require.Equal(t, uint16(500), info.Intensity)
	require.Equal(t, 100.0, info.Relative)

	_, ok = s.IntensityAt(10, 0)
	require.False(t, ok)
	_, ok = s.IntensityAt(0, -1)
	require.False(t, ok)
}

func TestSessionReset(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.LoadImage(writeTestImage(t, 100, 100, 1000)))
	s.SetSaturation(0.3)
	s.SetGridShape(2, 2)
	defineSquareGrid(t, s)
	require.NoError(t, s.Measure())

	s.Reset()
	require.Nil(t, s.CurrentImage())
	require.Empty(t, s.ImageNames())
	require.Empty(t, s.Measurements())
	require.False(t, s.Grid().Defined())
	require.Equal(t, grid.StateIdle, s.DefineState())
	require.Equal(t, blotimage.DefaultSaturation, s.Saturation())
	require.Equal(t, grid.DefaultParams(), s.GridParams())
}

func TestProjectRoundTrip(t *testing.T) {
	imgPath := writeTestImage(t, 100, 100, 1000)

	s := NewSession()
	require.NoError(t, s.LoadImage(imgPath))
	s.SetSaturation(0.2)
	s.SetGridShape(4, 6)
	s.SetROIRadius(10)
	defineSquareGrid(t, s)
	s.TranslateGrid(2, 3)

	projPath := filepath.Join(t.TempDir(), "plate.json")
	require.NoError(t, s.SaveProject(projPath))

	restored := NewSession()
	require.NoError(t, restored.LoadProject(projPath))

	require.Equal(t, imgPath, restored.CurrentPath())
	require.Equal(t, 0.2, restored.Saturation())
	require.Equal(t, s.GridParams(), restored.GridParams())
	require.Equal(t, grid.StateDefined, restored.DefineState())

	want := s.Grid()
	got := restored.Grid()
	require.Equal(t, want.Wells, got.Wells)

	// Measurements reproduce on the restored session.
	require.NoError(t, restored.Measure())
	require.Len(t, restored.Measurements(), 4*6)
}

func TestProjectLoadMissingImageFails(t *testing.T) {
	imgPath := writeTestImage(t, 20, 20, 100)
	s := NewSession()
	require.NoError(t, s.LoadImage(imgPath))

	projPath := filepath.Join(t.TempDir(), "plate.json")
	require.NoError(t, s.SaveProject(projPath))

	require.NoError(t, os.Remove(imgPath))
	restored := NewSession()
	require.Error(t, restored.LoadProject(projPath))
}

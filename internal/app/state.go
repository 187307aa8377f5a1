// Package app provides the application session: explicit state, events, and
// the operations the UI shell calls into.
package app

import (
	"errors"
	"image"
	"image/color"
	"log"
	"path/filepath"
	"sync"

	"dotblot-quant/internal/export"
	"dotblot-quant/internal/grid"
	blotimage "dotblot-quant/internal/image"
	"dotblot-quant/internal/measure"
	"dotblot-quant/internal/render"
	"dotblot-quant/pkg/geometry"
)

// Errors surfaced across the UI boundary. All are locally recoverable; the
// calling layer turns them into status messages, never crashes.
var (
	ErrNoImage        = errors.New("no image loaded")
	ErrGridNotDefined = errors.New("grid not defined")
	ErrNoMeasurements = errors.New("no measurements to export")
	ErrBadImageIndex  = errors.New("image index out of range")
)

// EventType identifies session events the UI can subscribe to.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventImageSelected
	EventSaturationChanged
	EventGridChanged
	EventGridDefined
	EventMeasured
	EventProjectLoaded
	EventProjectSaved
	EventReset
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Session holds all mutable state: the loaded images, the grid model and
// definition machine, and the current measurement set. All operations run
// synchronously on the interaction thread; the mutex only guards against
// stray reads from rendering callbacks.
type Session struct {
	mu sync.RWMutex

	images []*blotimage.Intensity
	paths  []string
	// current indexes images; -1 means none loaded.
	current int

	saturation float64

	grid *grid.Model
	def  *grid.Definition

	measurements []measure.Record

	listeners map[EventType][]EventListener
}

// NewSession creates a session with default parameters and no images.
func NewSession() *Session {
	return &Session{
		current:    -1,
		saturation: blotimage.DefaultSaturation,
		grid:       grid.NewModel(),
		def:        grid.NewDefinition(),
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadImage decodes an image file into the session. The first loaded image
// becomes current. In-memory state is left unchanged on failure.
func (s *Session) LoadImage(path string) error {
	img, err := blotimage.Load(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.images = append(s.images, img)
	s.paths = append(s.paths, path)
	first := s.current < 0
	if first {
		s.current = 0
	}
	s.mu.Unlock()

	log.Printf("loaded %s (%dx%d)", filepath.Base(path), img.Width, img.Height)
	s.Emit(EventImageLoaded, path)
	if first {
		s.Emit(EventImageSelected, 0)
	}
	return nil
}

// SelectImage switches the current image. The grid and measurements are kept:
// the lattice stays consistent across image switches and reloads.
func (s *Session) SelectImage(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.images) {
		s.mu.Unlock()
		return ErrBadImageIndex
	}
	s.current = i
	s.mu.Unlock()

	s.Emit(EventImageSelected, i)
	return nil
}

// CurrentImage returns the raw current image, or nil if none is loaded.
func (s *Session) CurrentImage() *blotimage.Intensity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 {
		return nil
	}
	return s.images[s.current]
}

// CurrentPath returns the file path of the current image, or "".
func (s *Session) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current < 0 {
		return ""
	}
	return s.paths[s.current]
}

// ImageNames returns the base names of all loaded images, in load order.
func (s *Session) ImageNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.paths))
	for i, p := range s.paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// SetSaturation sets the display saturation fraction, clamped to [0, 1].
func (s *Session) SetSaturation(f float64) {
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	s.mu.Lock()
	s.saturation = f
	s.mu.Unlock()
	s.Emit(EventSaturationChanged, f)
}

// Saturation returns the current saturation fraction.
func (s *Session) Saturation() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saturation
}

// AdjustedImage returns the display-stretched view of the current image,
// recomputed on every call. Returns nil if no image is loaded.
func (s *Session) AdjustedImage() *blotimage.Intensity {
	img := s.CurrentImage()
	if img == nil {
		return nil
	}
	return blotimage.AdjustContrast(img, s.Saturation())
}

// StartDefineGrid enters corner-picking mode, clearing any previous grid
// first. Requires a loaded image.
func (s *Session) StartDefineGrid() error {
	if s.CurrentImage() == nil {
		return ErrNoImage
	}
	s.mu.Lock()
	s.grid.ClearCorners()
	s.def.Start()
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
	return nil
}

// CancelDefineGrid leaves picking mode, dropping partial corners.
func (s *Session) CancelDefineGrid() {
	s.mu.Lock()
	s.def.Cancel()
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
}

// ClickCorner records a corner pick in scene coordinates. Clicks outside
// picking mode are ignored. The third corner freezes the set and derives the
// lattice.
func (s *Session) ClickCorner(x, y float64) {
	s.mu.Lock()
	done := s.def.Click(geometry.Point2D{X: x, Y: y})
	if done {
		s.grid.SetCorners(s.def.Corners())
	}
	s.mu.Unlock()

	if done {
		s.Emit(EventGridDefined, nil)
	} else {
		s.Emit(EventGridChanged, nil)
	}
}

// DefineState returns the corner-picking state.
func (s *Session) DefineState() grid.DefineState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def.State()
}

// PickedCorners returns the corners collected so far, for rendering.
func (s *Session) PickedCorners() []geometry.Point2D {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def.Corners()
}

// Grid returns the current well lattice; empty when not defined.
func (s *Session) Grid() grid.WellGrid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Grid()
}

// GridParams returns the current grid parameters.
func (s *Session) GridParams() grid.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Params()
}

// TranslateGrid moves the whole lattice by (dx, dy) pixels.
func (s *Session) TranslateGrid(dx, dy int) {
	s.mu.Lock()
	s.grid.Translate(dx, dy)
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
}

// AdjustSpacing perturbs the spacing along one axis, zeroing the other.
func (s *Session) AdjustSpacing(axis grid.Axis, delta float64) {
	s.mu.Lock()
	s.grid.AdjustSpacing(axis, delta)
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
}

// SetROIRadius sets the ROI radius (>= 1).
func (s *Session) SetROIRadius(r int) {
	s.mu.Lock()
	s.grid.SetRadius(r)
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
}

// SetROIColor sets the ROI rendering color.
func (s *Session) SetROIColor(c color.RGBA) {
	s.mu.Lock()
	s.grid.SetColor(c)
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
}

// SetGridShape sets the row and column counts (each >= 2).
func (s *Session) SetGridShape(rows, cols int) {
	s.mu.Lock()
	s.grid.SetRowCount(rows)
	s.grid.SetColCount(cols)
	s.mu.Unlock()
	s.Emit(EventGridChanged, nil)
}

// Measure runs a measurement pass over every well of the current grid on the
// raw image, fully replacing the previous measurement set.
func (s *Session) Measure() error {
	img := s.CurrentImage()
	if img == nil {
		return ErrNoImage
	}

	s.mu.Lock()
	g := s.grid.Grid()
	radius := s.grid.Params().Radius
	s.mu.Unlock()

	if !g.Defined() {
		return ErrGridNotDefined
	}

	records := measure.Grid(img, g, radius)

	s.mu.Lock()
	s.measurements = records
	s.mu.Unlock()

	log.Printf("measured %d wells", len(records))
	s.Emit(EventMeasured, len(records))
	return nil
}

// Measurements returns a copy of the current measurement set.
func (s *Session) Measurements() []measure.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]measure.Record, len(s.measurements))
	copy(out, s.measurements)
	return out
}

// ExportCSV writes the measurement set to a CSV file.
func (s *Session) ExportCSV(path string) error {
	records := s.Measurements()
	if len(records) == 0 {
		return ErrNoMeasurements
	}
	if err := export.WriteCSV(path, records); err != nil {
		return err
	}
	log.Printf("measurements saved to %s", path)
	return nil
}

// RenderScene renders the adjusted image with the grid overlay.
func (s *Session) RenderScene() (image.Image, error) {
	adjusted := s.AdjustedImage()
	if adjusted == nil {
		return nil, ErrNoImage
	}
	return render.Scene(adjusted, s.Grid(), s.PickedCorners(), s.GridParams())
}

// SaveScene renders the scene and writes it to disk, format by suffix.
func (s *Session) SaveScene(path string) error {
	scene, err := s.RenderScene()
	if err != nil {
		return err
	}
	if err := render.SaveScene(path, scene); err != nil {
		return err
	}
	log.Printf("scene saved to %s", path)
	return nil
}

// StatusInfo describes the pixel under the cursor on the adjusted image.
type StatusInfo struct {
	X, Y       int
	Intensity  uint16
	Relative   float64 // percent of the adjusted image maximum
	Percentile float64 // percent of the full 16-bit range
}

// IntensityAt reports the adjusted intensity under the cursor for the status
// bar. Returns false when no image is loaded or the point is out of bounds.
func (s *Session) IntensityAt(x, y int) (StatusInfo, bool) {
	adjusted := s.AdjustedImage()
	if adjusted == nil || x < 0 || x >= adjusted.Width || y < 0 || y >= adjusted.Height {
		return StatusInfo{}, false
	}
	v := adjusted.At(x, y)
	info := StatusInfo{
		X:          x,
		Y:          y,
		Intensity:  v,
		Percentile: float64(v) / blotimage.MaxSample * 100,
	}
	if max := adjusted.Max(); max > 0 {
		info.Relative = float64(v) / float64(max) * 100
	}
	return info, true
}

// Reset returns the session to its initial state: images, grid, parameters
// and measurements are all cleared.
func (s *Session) Reset() {
	s.mu.Lock()
	s.images = nil
	s.paths = nil
	s.current = -1
	s.saturation = blotimage.DefaultSaturation
	s.grid.Reset()
	s.def.Reset()
	s.measurements = nil
	s.mu.Unlock()

	log.Printf("session reset")
	s.Emit(EventReset, nil)
}

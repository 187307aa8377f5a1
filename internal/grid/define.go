package grid

import (
	"dotblot-quant/pkg/geometry"
)

// DefineState is the corner-picking interaction state.
type DefineState int

const (
	// StateIdle: no corners collected, clicks ignored.
	StateIdle DefineState = iota
	// StatePicking: collecting corner clicks (0, 1 or 2 so far).
	StatePicking
	// StateDefined: three corners collected and frozen, clicks ignored.
	StateDefined
)

func (s DefineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePicking:
		return "picking"
	case StateDefined:
		return "defined"
	default:
		return "unknown"
	}
}

// cornerCount is the number of reference points that define a grid.
const cornerCount = 3

// Definition is the grid definition state machine. It replaces event-filter
// mouse dispatch with discrete transitions: Start, Click, Cancel, Reset.
// Pointer-event translation to scene coordinates stays in the UI layer.
type Definition struct {
	state   DefineState
	corners []geometry.Point2D
}

// NewDefinition creates a definition machine in the idle state.
func NewDefinition() *Definition {
	return &Definition{}
}

// State returns the current interaction state.
func (d *Definition) State() DefineState {
	return d.state
}

// Corners returns a copy of the corners collected so far. Pick order is
// fixed: origin (A01), then the horizontal corner, then the vertical corner.
func (d *Definition) Corners() []geometry.Point2D {
	out := make([]geometry.Point2D, len(d.corners))
	copy(out, d.corners)
	return out
}

// Start enters picking mode. From Defined it clears the previous corners
// first: redefinition always starts from a clean slate. The caller is
// responsible for checking an image is loaded before starting.
func (d *Definition) Start() {
	d.corners = nil
	d.state = StatePicking
}

// Click records a corner pick. Clicks outside picking mode are ignored, not
// errors. The third click freezes the corner set and returns true so the
// caller can derive the grid and orientation lines.
func (d *Definition) Click(p geometry.Point2D) bool {
	if d.state != StatePicking {
		return false
	}
	d.corners = append(d.corners, p)
	if len(d.corners) == cornerCount {
		d.state = StateDefined
		return true
	}
	return false
}

// Cancel leaves picking mode, dropping any partially collected corners.
func (d *Definition) Cancel() {
	if d.state != StatePicking {
		return
	}
	d.corners = nil
	d.state = StateIdle
}

// Reset returns to idle from any state, clearing the corners.
func (d *Definition) Reset() {
	d.corners = nil
	d.state = StateIdle
}

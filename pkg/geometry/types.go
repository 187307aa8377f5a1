// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// ToInt converts to PointInt, truncating toward zero.
func (p Point2D) ToInt() PointInt {
	return PointInt{X: int(p.X), Y: int(p.Y)}
}

// PointInt represents a 2D point with integer coordinates.
type PointInt struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ToFloat converts to Point2D.
func (p PointInt) ToFloat() Point2D {
	return Point2D{X: float64(p.X), Y: float64(p.Y)}
}

// Line2D represents a line segment between two points.
type Line2D struct {
	From Point2D `json:"from"`
	To   Point2D `json:"to"`
}

// Length returns the length of the segment.
func (l Line2D) Length() float64 {
	return l.From.Distance(l.To)
}

// RectInt represents a rectangle with integer coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty returns true if the rectangle covers no pixels.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns the number of pixels covered by the rectangle.
func (r RectInt) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Clamp restricts the rectangle to [0, w) x [0, h). A rectangle entirely
// outside those bounds collapses to an empty one on the nearest edge.
func (r RectInt) Clamp(w, h int) RectInt {
	x1 := clampInt(r.X, 0, w)
	y1 := clampInt(r.Y, 0, h)
	x2 := clampInt(r.X+r.Width, 0, w)
	y2 := clampInt(r.Y+r.Height, 0, h)
	return RectInt{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

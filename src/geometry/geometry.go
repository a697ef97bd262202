package geometry

import "fmt"

// Point is a position in points. Which origin it is relative to depends on
// the caller: surfaces report bottom-left-origin display-local points, while
// window bounds and display bounds use the global top-left-origin space.
type Point struct {
	X float64
	Y float64
}

type Size struct {
	Width  float64
	Height float64
}

type Rect struct {
	Origin Point
	Size   Size
}

// NewRect is shorthand for Rect{Origin: Point{x, y}, Size: Size{w, h}}.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

// Display is an immutable snapshot of one physical monitor.
type Display struct {
	ID     int
	Bounds Rect
}

// ToGlobal converts a bottom-left-origin point inside a frame of height
// frameHeight on display d into the global top-left-origin space used by the
// capture primitive and the window list.
func ToGlobal(p Point, frameHeight float64, d Display) Point {
	return Point{
		X: d.Bounds.Origin.X + p.X,
		Y: d.Bounds.Origin.Y + (frameHeight - p.Y),
	}
}

// ToLocal is the inverse of ToGlobal.
func ToLocal(p Point, frameHeight float64, d Display) Point {
	return Point{
		X: p.X - d.Bounds.Origin.X,
		Y: frameHeight - (p.Y - d.Bounds.Origin.Y),
	}
}

// PointInRect is a half-open containment test: [min, min+size) on each axis.
func PointInRect(p Point, r Rect) bool {
	return p.X >= r.Origin.X && p.X < r.MaxX() &&
		p.Y >= r.Origin.Y && p.Y < r.MaxY()
}

// FindDisplayContaining returns the first display, in enumeration order,
// whose bounds contain p.
func FindDisplayContaining(p Point, displays []Display) (Display, bool) {
	for _, d := range displays {
		if PointInRect(p, d.Bounds) {
			return d, true
		}
	}
	return Display{}, false
}

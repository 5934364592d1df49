// Package geom provides the vector and bounding box types used by the
// physics core. Y grows upward: boxes are anchored at their bottom-left corner.
package geom

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float32
}

// Common vectors.
var (
	Zero  = Vec2{}
	One   = Vec2{1, 1}
	UnitX = Vec2{1, 0}
	UnitY = Vec2{0, 1}
)

// V is shorthand for Vec2{x, y}.
func V(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Mul returns the componentwise product.
func (v Vec2) Mul(o Vec2) Vec2 {
	return Vec2{v.X * o.X, v.Y * o.Y}
}

// Div returns v / s. Division by zero yields infinities, which callers are
// expected to catch with IsFinite.
func (v Vec2) Div(s float32) Vec2 {
	return Vec2{v.X / s, v.Y / s}
}

// Lerp returns the point a fraction t of the way from v to o.
func (v Vec2) Lerp(o Vec2, t float32) Vec2 {
	return v.Add(o.Sub(v).Scale(t))
}

// Neg returns -v.
func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// Sign returns the componentwise sign (-1, 0 or 1).
func (v Vec2) Sign() Vec2 {
	return Vec2{Sign(v.X), Sign(v.Y)}
}

// Abs returns the componentwise absolute value.
func (v Vec2) Abs() Vec2 {
	return Vec2{abs(v.X), abs(v.Y)}
}

// Min returns the componentwise minimum.
func (v Vec2) Min(o Vec2) Vec2 {
	return Vec2{min(v.X, o.X), min(v.Y, o.Y)}
}

// Max returns the componentwise maximum.
func (v Vec2) Max(o Vec2) Vec2 {
	return Vec2{max(v.X, o.X), max(v.Y, o.Y)}
}

// Dot returns the dot product.
func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// Len returns the vector magnitude.
func (v Vec2) Len() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// String formats the vector as (x, y). NaN and infinities print as text.
func (v Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", v.X, v.Y)
}

// IsFinite reports whether neither component is NaN or infinite.
func (v Vec2) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float32) bool {
	f64 := float64(f)
	return !math.IsNaN(f64) && !math.IsInf(f64, 0)
}

// Sign returns -1, 0 or 1.
func Sign(f float32) float32 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

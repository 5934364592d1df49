package components

import (
	"math"

	"github.com/pthm-cable/tilephys/geom"
)

// Gravity overrides the global gravitational acceleration for one body.
type Gravity struct {
	geom.Vec2
}

// Drag is the quadratic drag coefficient b in F = -b*v*|v|.
type Drag struct {
	Value float32 `inspect:"label,fmt:%.4f"`
}

// DragFromTerminalVelocity returns the coefficient at which a body of the
// given mass falling under gravity g settles at terminal velocity vt:
// b = m*g/vt^2. Non-positive vt yields zero drag.
func DragFromTerminalVelocity(vt, mass, g float32) Drag {
	if vt <= 0 {
		return Drag{}
	}
	return Drag{Value: mass * g / (vt * vt)}
}

// TerminalVelocity inverts DragFromTerminalVelocity. Zero drag reports +Inf.
func (d Drag) TerminalVelocity(mass, g float32) float32 {
	if d.Value <= 0 {
		return float32(math.Inf(1))
	}
	return float32(math.Sqrt(float64(mass * g / d.Value)))
}

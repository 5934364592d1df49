// Package components defines the ECS components attached to physics bodies.
package components

import (
	"fmt"

	"github.com/pthm-cable/tilephys/geom"
)

// BodyType classifies how a body takes part in the simulation.
type BodyType uint8

const (
	Kinematic BodyType = iota // integrated, swept against tiles, initiates collisions
	Static                    // never moves but can be hit
)

// String returns the display name for a BodyType.
func (t BodyType) String() string {
	switch t {
	case Kinematic:
		return "kinematic"
	case Static:
		return "static"
	default:
		return "unknown"
	}
}

// ParseBodyType is the inverse of BodyType.String.
func ParseBodyType(name string) (BodyType, error) {
	switch name {
	case "kinematic":
		return Kinematic, nil
	case "static":
		return Static, nil
	default:
		return 0, fmt.Errorf("unknown body type %q", name)
	}
}

// Mass is the body's mass in kilograms. It must be positive.
type Mass struct {
	Value float32 `inspect:"label,fmt:%.1f kg"`
}

// Velocity persists across steps.
type Velocity struct {
	geom.Vec2
}

// Acceleration accumulates F/m during a step and is reset once the step's
// collision phase has run.
type Acceleration struct {
	geom.Vec2
}

// Forces holds forces queued for the next application.
type Forces struct {
	List []geom.Vec2 `inspect:"skip"`
}

// Push queues a force.
func (f *Forces) Push(force geom.Vec2) {
	f.List = append(f.List, force)
}

// Drain returns the sum of all queued forces and clears the list while
// keeping its capacity.
func (f *Forces) Drain() geom.Vec2 {
	var sum geom.Vec2
	for _, force := range f.List {
		sum = sum.Add(force)
	}
	f.List = f.List[:0]
	return sum
}

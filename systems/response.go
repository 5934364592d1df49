package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
)

// ErrUnknownResponse is returned by NewResponsePolicy for unrecognised names.
var ErrUnknownResponse = errors.New("systems: unknown collision response")

// BodyState is the part of a body a response policy reads.
type BodyState struct {
	Type     components.BodyType
	Mass     float32
	Velocity geom.Vec2
	Bounds   geom.AABB
}

// Bodies gives a response policy access to body state.
type Bodies interface {
	Body(e ecs.Entity) (BodyState, bool)
	SetVelocity(e ecs.Entity, v geom.Vec2)
}

// ResponsePolicy reacts to an entity collision. It runs on the coordinating
// goroutine after the parallel phase of a step.
type ResponsePolicy interface {
	Resolve(bodies Bodies, c EntityCollision)
}

// NewResponsePolicy builds the policy named "detect" or "momentum".
func NewResponsePolicy(name string, restitution float32) (ResponsePolicy, error) {
	switch name {
	case "", "detect":
		return DetectOnly{}, nil
	case "momentum":
		return MomentumExchange{Restitution: restitution}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownResponse, name)
	}
}

// DetectOnly reports collisions and leaves bodies untouched.
type DetectOnly struct{}

// Resolve implements ResponsePolicy.
func (DetectOnly) Resolve(Bodies, EntityCollision) {}

// MomentumExchange exchanges momentum along the collision normal.
// Restitution 1 is elastic, 0 perfectly inelastic. A static partner acts
// as infinite mass.
type MomentumExchange struct {
	Restitution float32
}

// Resolve implements ResponsePolicy.
func (m MomentumExchange) Resolve(bodies Bodies, c EntityCollision) {
	ea, eb := c.Entities[0], c.Entities[1]
	a, ok := bodies.Body(ea)
	if !ok {
		return
	}
	b, ok := bodies.Body(eb)
	if !ok {
		return
	}

	aMoves := a.Type == components.Kinematic
	bMoves := b.Type == components.Kinematic
	if !aMoves && !bMoves {
		return
	}

	axis := CollisionAxis(a.Bounds, b.Bounds)
	// Positive when b lies in the positive direction from a.
	dir := geom.Sign(component(b.Bounds.Center().Sub(a.Bounds.Center()), axis))
	if dir == 0 {
		dir = 1
	}

	v1 := component(a.Velocity, axis)
	v2 := component(b.Velocity, axis)
	if (v1-v2)*dir <= 0 {
		// Separating or at rest along the normal.
		return
	}

	e := m.Restitution
	switch {
	case aMoves && bMoves:
		n1, n2 := ExchangeMomentum(a.Mass, v1, b.Mass, v2, e)
		bodies.SetVelocity(ea, withComponent(a.Velocity, axis, n1))
		bodies.SetVelocity(eb, withComponent(b.Velocity, axis, n2))
	case aMoves:
		bodies.SetVelocity(ea, withComponent(a.Velocity, axis, -e*v1))
	default:
		bodies.SetVelocity(eb, withComponent(b.Velocity, axis, -e*v2))
	}
}

// ExchangeMomentum returns the velocities of two bodies after a 1D
// collision with restitution e. Total momentum is conserved.
func ExchangeMomentum(m1, v1, m2, v2, e float32) (float32, float32) {
	p := m1*v1 + m2*v2
	total := m1 + m2
	return (p + e*m2*(v2-v1)) / total, (p + e*m1*(v1-v2)) / total
}

// CollisionAxis returns the axis of least penetration between two boxes.
// Boxes that do not overlap fall back to the axis with the larger center
// distance.
func CollisionAxis(a, b geom.AABB) Axis {
	if overlap, ok := a.Intersection(b, 0); ok {
		if overlap.Width() < overlap.Height() {
			return AxisX
		}
		return AxisY
	}
	d := b.Center().Sub(a.Center()).Abs()
	if d.X >= d.Y {
		return AxisX
	}
	return AxisY
}

func component(v geom.Vec2, axis Axis) float32 {
	if axis == AxisX {
		return v.X
	}
	return v.Y
}

func withComponent(v geom.Vec2, axis Axis, f float32) geom.Vec2 {
	if axis == AxisX {
		v.X = f
	} else {
		v.Y = f
	}
	return v
}

// Package systems contains the per-step physics passes: forces, integration,
// tile sweeps, entity contacts and collision response.
package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
)

// Environment holds the global defaults that per-body Gravity and Drag
// components override.
type Environment struct {
	Gravity geom.Vec2 // acceleration, m/s^2
	Drag    float32
}

// WeightForce returns gravity * mass.
func WeightForce(gravity geom.Vec2, mass float32) geom.Vec2 {
	return gravity.Scale(mass)
}

// DragForce returns the simplified quadratic drag drag*v^2*-sign(v),
// computed per component. It ignores shape and density.
func DragForce(drag float32, v geom.Vec2) geom.Vec2 {
	return v.Mul(v).Mul(v.Sign().Neg()).Scale(drag)
}

// Accelerate adds force/mass to a. A non-finite result is replaced by zero
// and reported as false.
func Accelerate(a, force geom.Vec2, mass float32) (geom.Vec2, bool) {
	next := a.Add(force.Div(mass))
	if !next.IsFinite() {
		return geom.Zero, false
	}
	return next, true
}

// Integrate returns v + a*dt.
func Integrate(v, a geom.Vec2, dt float32) geom.Vec2 {
	return v.Add(a.Scale(dt))
}

// ForceSystem queues weight and drag on every kinematic body.
type ForceSystem struct {
	filter     ecs.Filter4[components.BodyType, components.Mass, components.Velocity, components.Forces]
	gravityMap *ecs.Map[components.Gravity]
	dragMap    *ecs.Map[components.Drag]
}

// NewForceSystem creates a new force system.
func NewForceSystem(w *ecs.World) *ForceSystem {
	return &ForceSystem{
		filter:     *ecs.NewFilter4[components.BodyType, components.Mass, components.Velocity, components.Forces](w),
		gravityMap: ecs.NewMap[components.Gravity](w),
		dragMap:    ecs.NewMap[components.Drag](w),
	}
}

// Update pushes weight and drag forces for the current velocities.
func (s *ForceSystem) Update(env Environment) {
	query := s.filter.Query()
	for query.Next() {
		entity := query.Entity()
		bodyType, mass, vel, forces := query.Get()
		if *bodyType != components.Kinematic {
			continue
		}

		gravity := env.Gravity
		if s.gravityMap.Has(entity) {
			gravity = s.gravityMap.Get(entity).Vec2
		}
		drag := env.Drag
		if s.dragMap.Has(entity) {
			drag = s.dragMap.Get(entity).Value
		}

		forces.Push(WeightForce(gravity, mass.Value))
		forces.Push(DragForce(drag, vel.Vec2))
	}
}

// IntegrateSystem turns queued forces into acceleration and acceleration
// into velocity.
type IntegrateSystem struct {
	filter      ecs.Filter5[components.BodyType, components.Mass, components.Forces, components.Acceleration, components.Velocity]
	resetFilter ecs.Filter1[components.Acceleration]
}

// NewIntegrateSystem creates a new integration system.
func NewIntegrateSystem(w *ecs.World) *IntegrateSystem {
	return &IntegrateSystem{
		filter:      *ecs.NewFilter5[components.BodyType, components.Mass, components.Forces, components.Acceleration, components.Velocity](w),
		resetFilter: *ecs.NewFilter1[components.Acceleration](w),
	}
}

// Update drains every kinematic body's forces into its acceleration and
// integrates velocity over dt. It returns how many bodies had a non-finite
// acceleration reset to zero.
func (s *IntegrateSystem) Update(dt float32) int {
	resets := 0
	query := s.filter.Query()
	for query.Next() {
		bodyType, mass, forces, acc, vel := query.Get()
		if *bodyType != components.Kinematic {
			forces.Drain()
			continue
		}

		force := forces.Drain()
		next, ok := Accelerate(acc.Vec2, force, mass.Value)
		if !ok {
			slog.Error("acceleration is not finite",
				"entity", query.Entity().ID(),
				"mass", mass.Value,
				"force", force.String(),
				"acceleration", acc.Vec2.Add(force.Div(mass.Value)).String(),
			)
			resets++
		}
		acc.Vec2 = next
		vel.Vec2 = Integrate(vel.Vec2, acc.Vec2, dt)
	}
	return resets
}

// ResetAccelerations zeroes every body's acceleration. It runs after the
// collision phase of each step.
func (s *IntegrateSystem) ResetAccelerations() {
	query := s.resetFilter.Query()
	for query.Next() {
		acc := query.Get()
		acc.Vec2 = geom.Zero
	}
}

package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/sim"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/telemetry"
)

// interpolator keeps the body bounds of the last two steps so frames drawn
// between steps can blend them by the accumulator's lerp factor.
type interpolator struct {
	prev, cur map[ecs.Entity]geom.AABB
}

func newInterpolator() *interpolator {
	return &interpolator{
		prev: make(map[ecs.Entity]geom.AABB),
		cur:  make(map[ecs.Entity]geom.AABB),
	}
}

// capture is a sim.StepHook.
func (ip *interpolator) capture(s *sim.Simulation, _ telemetry.StepSample) {
	ip.prev, ip.cur = ip.cur, ip.prev
	clear(ip.cur)
	s.EachBody(func(e ecs.Entity, b systems.BodyState) bool {
		ip.cur[e] = b.Bounds
		return true
	})
}

// reset drops history so the next frame draws bodies where they are.
func (ip *interpolator) reset(s *sim.Simulation) {
	ip.capture(s, telemetry.StepSample{})
	clear(ip.prev)
}

// bounds returns where to draw a body with the given current bounds.
// Bodies without a previous step are drawn unblended.
func (ip *interpolator) bounds(e ecs.Entity, current geom.AABB, t float32) geom.AABB {
	prev, ok := ip.prev[e]
	if !ok {
		return current
	}
	return prev.Lerp(current, t)
}

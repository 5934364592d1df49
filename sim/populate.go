package sim

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/config"
	"github.com/pthm-cable/tilephys/geom"
)

// platformSize is the size of the static platforms spawned by Populate.
var platformSize = geom.V(8, 1)

// Populate spawns the configured initial bodies inside spawn.Area.
// Static platforms are spread evenly along the bottom of the area; kinematic
// bodies get random positions and velocities up to spawn.MaxSpeed.
func (s *Simulation) Populate(rng *rand.Rand, spawn config.SpawnConfig) []ecs.Entity {
	area := spawn.Area.AABB()
	size := spawn.Size.Vec()
	mass := float32(spawn.Mass)
	maxSpeed := float32(spawn.MaxSpeed)

	out := make([]ecs.Entity, 0, spawn.Static+spawn.Kinematic)

	for i := range spawn.Static {
		slot := area.Width() / float32(spawn.Static)
		x := area.Left() + slot*(float32(i)+0.5) - platformSize.X/2
		out = append(out, s.Spawn(BodyDef{
			Type:   components.Static,
			Bounds: geom.NewAABB(geom.V(x, area.Bottom()), platformSize),
			Mass:   mass * 10,
		}))
	}

	for range spawn.Kinematic {
		x := area.Left() + rng.Float32()*max(area.Width()-size.X, 0)
		y := area.Bottom() + platformSize.Y + rng.Float32()*max(area.Height()-size.Y-platformSize.Y, 0)
		vel := geom.V(
			(rng.Float32()*2-1)*maxSpeed,
			(rng.Float32()*2-1)*maxSpeed,
		)
		out = append(out, s.Spawn(BodyDef{
			Type:     components.Kinematic,
			Bounds:   geom.NewAABB(geom.V(x, y), size),
			Mass:     mass,
			Velocity: vel,
		}))
	}
	return out
}

package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/tiles"
)

// Axis identifies the sweep axis a tile collision happened on.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

// String returns "x" or "y".
func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// TileCollision is emitted when a body's sweep is stopped by a solid tile.
type TileCollision struct {
	Entity         ecs.Entity
	EntityVelocity geom.Vec2 // velocity before the collision
	Axis           Axis
	Tile           tiles.Tile
	TilePosition   tiles.Pos
}

// EntityCollision is emitted once per overlapping pair of bodies per step.
type EntityCollision struct {
	Entities [2]ecs.Entity
}

// Normalized returns the pair ordered by entity ID so that (a, b) and (b, a)
// compare equal.
func (c EntityCollision) Normalized() EntityCollision {
	if c.Entities[1].ID() < c.Entities[0].ID() {
		c.Entities[0], c.Entities[1] = c.Entities[1], c.Entities[0]
	}
	return c
}

package components

import (
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/quadtree"
)

// Bounds is the body's current axis-aligned box in world units.
type Bounds struct {
	geom.AABB
}

// IndexEntry is the body's handle in the broad-phase quadtree. Bodies without
// one are inserted before the next broad phase.
type IndexEntry struct {
	Entry quadtree.Entry `inspect:"label"`
}

// Grounded records whether the body landed on a tile during the last step.
type Grounded struct {
	OnGround bool `inspect:"bool"`
}

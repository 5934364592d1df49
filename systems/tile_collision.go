package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/tiles"
)

// TileSource is the read side of the tile world. A missing region reports
// an error; the sweep treats it as empty space.
type TileSource interface {
	Tile(p tiles.Pos) (tiles.Tile, bool, error)
}

// cellEpsilon keeps a box whose edge sits exactly on a tile boundary from
// counting the cell on the far side of that boundary.
const cellEpsilon = 1e-4

// SweepParams configures one tile sweep.
type SweepParams struct {
	DT       float32 // fixed step, seconds
	MaxStep  float32 // longest sub-step, world units
	Friction float32 // v.x multiplier on landing
}

// SweepResult is the outcome of sweeping one body through the tile grid.
type SweepResult struct {
	Bounds   geom.AABB
	Velocity geom.Vec2
	Grounded bool

	hits [2]TileCollision
	n    int
}

// Collisions returns the tile collisions of the sweep, at most one per axis.
func (r *SweepResult) Collisions() []TileCollision {
	return r.hits[:r.n]
}

// SweepTiles moves box by vel*dt through src, X axis first and then Y, in
// sub-steps of at most p.MaxStep, capped at one tile so no wall is skipped.
// On the first solid tile along an axis the box is clamped flush against
// it, that velocity component is zeroed and a TileCollision carrying vel is
// recorded. Landing on a tile while moving down scales v.x by p.Friction.
func SweepTiles(src TileSource, entity ecs.Entity, box geom.AABB, vel geom.Vec2, p SweepParams) SweepResult {
	res := SweepResult{Bounds: box, Velocity: vel}
	if p.DT <= 0 {
		return res
	}
	maxStep := p.MaxStep
	if maxStep <= 0 || maxStep > 1 {
		maxStep = 1
	}

	target := vel.Scale(p.DT)

	if hit, ok := sweepAxis(src, &res.Bounds, AxisX, target.X, maxStep); ok {
		hit.Entity = entity
		hit.EntityVelocity = vel
		res.Velocity.X = 0
		res.record(hit)
	}

	if hit, ok := sweepAxis(src, &res.Bounds, AxisY, target.Y, maxStep); ok {
		hit.Entity = entity
		hit.EntityVelocity = vel
		if res.Velocity.Y < 0 {
			res.Velocity.X *= p.Friction
			res.Grounded = true
		}
		res.Velocity.Y = 0
		res.record(hit)
	}

	return res
}

func (r *SweepResult) record(c TileCollision) {
	r.hits[r.n] = c
	r.n++
}

// sweepAxis advances box along one axis by distance and reports the first
// solid tile met on the way. The box is left flush against that tile.
func sweepAxis(src TileSource, box *geom.AABB, axis Axis, distance, maxStep float32) (TileCollision, bool) {
	if distance == 0 || !geom.IsFinite(distance) {
		return TileCollision{}, false
	}

	dir := geom.Sign(distance)
	remaining := float32(math.Abs(float64(distance)))
	start := *box

	for remaining > 0 {
		step := min(remaining, maxStep)
		remaining -= step

		moved := *box
		if axis == AxisX {
			moved.Min.X += dir * step
		} else {
			moved.Min.Y += dir * step
		}

		if tile, pos, ok := leadingTile(src, moved, axis, dir); ok {
			clamp(box, start, axis, dir, pos)
			return TileCollision{Axis: axis, Tile: tile, TilePosition: pos}, true
		}
		*box = moved
	}
	return TileCollision{}, false
}

// leadingTile scans the column (X) or row (Y) of cells under the leading
// edge of moved and returns the first solid one.
func leadingTile(src TileSource, moved geom.AABB, axis Axis, dir float32) (tiles.Tile, tiles.Pos, bool) {
	x0, x1 := cellSpan(moved.Left(), moved.Right())
	y0, y1 := cellSpan(moved.Bottom(), moved.Top())

	if axis == AxisX {
		col := x0
		if dir > 0 {
			col = x1 - 1
		}
		for y := y0; y < y1; y++ {
			if t, ok := solid(src, tiles.P(col, y)); ok {
				return t, tiles.P(col, y), true
			}
		}
		return 0, tiles.Pos{}, false
	}

	row := y0
	if dir > 0 {
		row = y1 - 1
	}
	for x := x0; x < x1; x++ {
		if t, ok := solid(src, tiles.P(x, row)); ok {
			return t, tiles.P(x, row), true
		}
	}
	return 0, tiles.Pos{}, false
}

// clamp puts box flush against the tile at pos without moving it behind
// where the axis sweep started.
func clamp(box *geom.AABB, start geom.AABB, axis Axis, dir float32, pos tiles.Pos) {
	if axis == AxisX {
		if dir > 0 {
			box.Min.X = max(float32(pos.X)-box.Width(), start.Left())
		} else {
			box.Min.X = min(float32(pos.X+1), start.Left())
		}
		return
	}
	if dir > 0 {
		box.Min.Y = max(float32(pos.Y)-box.Height(), start.Bottom())
	} else {
		box.Min.Y = min(float32(pos.Y+1), start.Bottom())
	}
}

// cellSpan returns the half-open range of cells overlapped by [lo, hi].
// Degenerate spans still cover one cell.
func cellSpan(lo, hi float32) (int32, int32) {
	first := int32(math.Floor(float64(lo + cellEpsilon)))
	last := int32(math.Ceil(float64(hi - cellEpsilon)))
	if last <= first {
		last = first + 1
	}
	return first, last
}

func solid(src TileSource, p tiles.Pos) (tiles.Tile, bool) {
	t, ok, err := src.Tile(p)
	if err != nil {
		return 0, false
	}
	return t, ok
}

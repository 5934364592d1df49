package sim

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/telemetry"
)

// Snapshot captures every body. Records are ordered by entity ID so two
// snapshots of the same state compare equal.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:   telemetry.SnapshotVersion,
		Seed:      s.cfg.World.Seed,
		Generator: s.cfg.World.Generator,
		Step:      s.steps,
	}

	query := s.bodyFilter.Query()
	for query.Next() {
		e := query.Entity()
		bounds, vel, bodyType := query.Get()
		rec := telemetry.BodyRecord{
			ID:       e.ID(),
			Type:     bodyType.String(),
			X:        bounds.Min.X,
			Y:        bounds.Min.Y,
			Width:    bounds.Size.X,
			Height:   bounds.Size.Y,
			VelX:     vel.X,
			VelY:     vel.Y,
			Mass:     s.massMap.Get(e).Value,
			Grounded: s.groundedMap.Get(e).OnGround,
		}
		if s.gravityMap.Has(e) {
			g := s.gravityMap.Get(e).Vec2
			rec.Gravity = &[2]float32{g.X, g.Y}
		}
		if s.dragMap.Has(e) {
			d := s.dragMap.Get(e).Value
			rec.Drag = &d
		}
		snap.Bodies = append(snap.Bodies, rec)
	}

	slices.SortFunc(snap.Bodies, func(a, b telemetry.BodyRecord) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return snap
}

// Restore removes every body and spawns the snapshot's bodies in record
// order. The step counter is restored; the accumulator is reset.
func (s *Simulation) Restore(snap *telemetry.Snapshot) error {
	if snap == nil {
		return errors.New("restore: nil snapshot")
	}
	if snap.Version != telemetry.SnapshotVersion {
		return fmt.Errorf("restore: snapshot version %d, want %d", snap.Version, telemetry.SnapshotVersion)
	}

	defs := make([]BodyDef, 0, len(snap.Bodies))
	grounded := make([]bool, 0, len(snap.Bodies))
	for i, rec := range snap.Bodies {
		bodyType, err := components.ParseBodyType(rec.Type)
		if err != nil {
			return fmt.Errorf("restore: body %d: %w", i, err)
		}
		if rec.Mass <= 0 {
			return fmt.Errorf("restore: body %d: mass must be positive, got %v", i, rec.Mass)
		}
		def := BodyDef{
			Type:     bodyType,
			Bounds:   geom.NewAABB(geom.V(rec.X, rec.Y), geom.V(rec.Width, rec.Height)),
			Mass:     rec.Mass,
			Velocity: geom.V(rec.VelX, rec.VelY),
			Drag:     rec.Drag,
		}
		if rec.Gravity != nil {
			g := geom.V(rec.Gravity[0], rec.Gravity[1])
			def.Gravity = &g
		}
		defs = append(defs, def)
		grounded = append(grounded, rec.Grounded)
	}

	s.Clear()
	for i, def := range defs {
		e := s.Spawn(def)
		s.groundedMap.Get(e).OnGround = grounded[i]
	}
	s.steps = snap.Step
	s.stepper.Reset()
	return nil
}

// Clear removes every body.
func (s *Simulation) Clear() {
	var all []ecs.Entity
	query := s.bodyFilter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		s.Despawn(e)
	}
}

package sim

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/config"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/telemetry"
	"github.com/pthm-cable/tilephys/tiles"
)

// weightless returns the default config with gravity and drag disabled.
func weightless() *config.Config {
	cfg := config.Default()
	cfg.Physics.Gravity = config.Vec2Config{}
	cfg.Physics.Drag = 0
	cfg.Physics.TerminalVelocity = 0
	cfg.ComputeDerived()
	return cfg
}

func floorWorld(height int32) *tiles.World {
	return tiles.NewWorld(tiles.FlatGenerator{Fill: tiles.Stone, Height: &height})
}

func newSim(t *testing.T, cfg *config.Config, world *tiles.World) *Simulation {
	t.Helper()
	s, err := New(cfg, world)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func box(x, y, w, h float32) geom.AABB {
	return geom.NewAABB(geom.V(x, y), geom.V(w, h))
}

func TestNewRejectsBadResponse(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.Response = "bounce"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected an error for an unknown response policy")
	}
}

func TestSpawnDespawn(t *testing.T) {
	s := newSim(t, weightless(), nil)

	a := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 0, 1, 1), Mass: 1})
	b := s.Spawn(BodyDef{Type: components.Static, Bounds: box(4, 0, 2, 1), Mass: 5})
	s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(8, 0, 1, 1), Mass: 1})

	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	state, ok := s.Body(b)
	if !ok || state.Type != components.Static || state.Mass != 5 || state.Bounds != box(4, 0, 2, 1) {
		t.Errorf("Body(b) = %+v, %v", state, ok)
	}

	if !s.Despawn(a) {
		t.Fatal("Despawn(a) = false")
	}
	if s.Despawn(a) {
		t.Error("second Despawn(a) = true")
	}
	if s.Len() != 2 {
		t.Errorf("Len after despawn = %d, want 2", s.Len())
	}
	if _, ok := s.Body(a); ok {
		t.Error("despawned body still reported")
	}
	if _, ok := s.BodyAt(geom.V(0.5, 0.5)); ok {
		t.Error("despawned body still indexed")
	}
	if e, ok := s.BodyAt(geom.V(5, 0.5)); !ok || e != b {
		t.Errorf("BodyAt(5, 0.5) = %v, %v; want %v", e, ok, b)
	}
}

func TestIndexSyncInsertsUnindexedBodies(t *testing.T) {
	s := newSim(t, weightless(), nil)

	// Bodies created directly in the world have no index entry.
	mapper := ecs.NewMap7[
		components.Bounds,
		components.Velocity,
		components.Acceleration,
		components.Forces,
		components.Mass,
		components.BodyType,
		components.Grounded,
	](s.World())
	bounds := components.Bounds{AABB: box(2, 2, 1, 1)}
	bodyType := components.Kinematic
	e := mapper.NewEntity(&bounds, &components.Velocity{}, &components.Acceleration{},
		&components.Forces{}, &components.Mass{Value: 1}, &bodyType, &components.Grounded{})

	if s.Len() != 0 {
		t.Fatalf("Len = %d before step, want 0", s.Len())
	}
	s.Step()
	if s.Len() != 1 {
		t.Fatalf("Len = %d after step, want 1", s.Len())
	}
	if got, ok := s.BodyAt(geom.V(2.5, 2.5)); !ok || got != e {
		t.Errorf("BodyAt = %v, %v; want %v", got, ok, e)
	}
}

func TestIndexSyncDropsRemovedBodies(t *testing.T) {
	s := newSim(t, weightless(), nil)

	a := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 0, 2, 2), Mass: 1})
	b := s.Spawn(BodyDef{Type: components.Static, Bounds: box(1, 1, 2, 2), Mass: 1})
	c := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(10, 10, 1, 1), Mass: 1})

	// Removed behind the simulation's back.
	s.World().RemoveEntity(b)
	ecs.NewMap[components.Bounds](s.World()).Remove(c)

	s.Step()

	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if events := s.EntityCollisions(); len(events) != 0 {
		t.Errorf("entity collisions = %+v, want none", events)
	}
	if e, ok := s.BodyAt(geom.V(2.5, 2.5)); ok {
		t.Errorf("BodyAt(2.5, 2.5) = %v, want no body", e)
	}
	if e, ok := s.BodyAt(geom.V(10.5, 10.5)); ok {
		t.Errorf("BodyAt(10.5, 10.5) = %v, want no body", e)
	}
	if ecs.NewMap[components.IndexEntry](s.World()).Has(c) {
		t.Error("body without bounds kept its index entry")
	}
	if got, ok := s.BodyAt(geom.V(0.5, 0.5)); !ok || got != a {
		t.Errorf("BodyAt(0.5, 0.5) = %v, %v; want %v", got, ok, a)
	}
}

func TestBodyLandsOnFloor(t *testing.T) {
	s := newSim(t, config.Default(), floorWorld(64))

	e := s.Spawn(BodyDef{
		Type:     components.Kinematic,
		Bounds:   box(0.25, 70, 1, 2),
		Mass:     62,
		Velocity: geom.V(3, 0),
	})

	var landed bool
	for range 300 {
		s.Step()
		for _, c := range s.TileCollisions() {
			if c.Entity == e && c.Axis == systems.AxisY && c.Tile == tiles.Stone {
				landed = true
			}
		}
	}
	if !landed {
		t.Fatal("no vertical tile collision reported")
	}

	state, _ := s.Body(e)
	if state.Bounds.Bottom() != 64 {
		t.Errorf("bottom = %v, want 64", state.Bounds.Bottom())
	}
	if state.Velocity.Y != 0 {
		t.Errorf("velocity.y = %v, want 0", state.Velocity.Y)
	}
	if !s.Grounded(e) {
		t.Error("body not grounded")
	}
	if state.Velocity.X >= 3 {
		t.Errorf("velocity.x = %v, want friction to slow it", state.Velocity.X)
	}

	// The index follows the body.
	if got, ok := s.BodyAt(state.Bounds.Center()); !ok || got != e {
		t.Errorf("BodyAt(center) = %v, %v", got, ok)
	}
}

func TestEntityCollisionEvents(t *testing.T) {
	s := newSim(t, weightless(), nil)

	a := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 0, 1, 1), Mass: 1})
	b := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0.5, 0, 1, 1), Mass: 1})
	// Static bodies never initiate, so the overlapping statics below yield
	// nothing on their own.
	s.Spawn(BodyDef{Type: components.Static, Bounds: box(10, 0, 2, 1), Mass: 1})
	s.Spawn(BodyDef{Type: components.Static, Bounds: box(11, 0, 2, 1), Mass: 1})
	// Touching is not overlapping.
	s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(-1, 0, 1, 1), Mass: 1})

	s.Step()

	events := s.EntityCollisions()
	if len(events) != 1 {
		t.Fatalf("entity collisions = %d, want 1: %+v", len(events), events)
	}
	want := [2]ecs.Entity{a, b}
	if a.ID() > b.ID() {
		want = [2]ecs.Entity{b, a}
	}
	if events[0].Entities != want {
		t.Errorf("pair = %v, want %v", events[0].Entities, want)
	}

	// Detection alone never changes velocities.
	for _, e := range []ecs.Entity{a, b} {
		if state, _ := s.Body(e); state.Velocity != geom.Zero {
			t.Errorf("velocity of %v = %v", e, state.Velocity)
		}
	}
}

func TestMomentumResponse(t *testing.T) {
	cfg := weightless()
	cfg.Physics.Response = "momentum"
	cfg.Physics.Restitution = 1
	s := newSim(t, cfg, nil)

	a := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 0, 1, 1), Mass: 62, Velocity: geom.V(1, 0)})
	b := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0.9, 0, 1, 1), Mass: 62, Velocity: geom.V(-1, 0)})

	s.Step()

	if got, _ := s.Body(a); got.Velocity != geom.V(-1, 0) {
		t.Errorf("a velocity = %v, want (-1, 0)", got.Velocity)
	}
	if got, _ := s.Body(b); got.Velocity != geom.V(1, 0) {
		t.Errorf("b velocity = %v, want (1, 0)", got.Velocity)
	}
}

func TestUpdateRunsWholeSteps(t *testing.T) {
	cfg := weightless()
	s := newSim(t, cfg, nil)
	s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 0, 1, 1), Mass: 1, Velocity: geom.V(1, 0)})

	var samples []telemetry.StepSample
	s.OnStep(func(_ *Simulation, sample telemetry.StepSample) {
		samples = append(samples, sample)
	})

	if n := s.Update(cfg.Derived.Interval * 7 / 2); n != 3 {
		t.Fatalf("Update ran %d steps, want 3", n)
	}
	if s.Steps() != 3 || len(samples) != 3 {
		t.Fatalf("steps = %d, hooks = %d; want 3, 3", s.Steps(), len(samples))
	}
	if s.State() != Idle {
		t.Errorf("state = %v, want idle", s.State())
	}
	if l := s.Lerp(); l <= 0 || l >= 1 {
		t.Errorf("lerp = %v, want within (0, 1)", l)
	}

	last := samples[2]
	if last.Step != 3 || last.Bodies != 1 || last.Kinematic != 1 || len(last.Speeds) != 1 {
		t.Errorf("sample = %+v", last)
	}
	if n := s.Update(0); n != 0 {
		t.Errorf("Update(0) ran %d steps", n)
	}
}

func TestParallelMatchesInline(t *testing.T) {
	run := func(threshold int) *telemetry.Snapshot {
		cfg := config.Default()
		cfg.Parallel.Workers = 4
		cfg.Parallel.Threshold = threshold
		cfg.Parallel.EventBuffer = 4
		cfg.Spawn.Kinematic = 120
		cfg.ComputeDerived()

		s := newSim(t, cfg, floorWorld(64))
		s.Populate(rand.New(rand.NewSource(7)), cfg.Spawn)
		for range 150 {
			s.Step()
		}
		return s.Snapshot()
	}

	inline := run(1 << 20)
	parallel := run(1)
	if !reflect.DeepEqual(inline, parallel) {
		t.Error("parallel run diverged from inline run")
	}
}

func TestParallelEventsComplete(t *testing.T) {
	cfg := weightless()
	cfg.Parallel.Workers = 3
	cfg.Parallel.Threshold = 1
	cfg.Parallel.EventBuffer = 1
	s := newSim(t, cfg, nil)

	// A row of overlapping bodies: each neighbour pair overlaps once.
	const n = 40
	for i := range n {
		s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(float32(i)*0.5, 0, 1, 1), Mass: 1})
	}
	s.Step()

	if got := len(s.EntityCollisions()); got != n-1 {
		t.Errorf("entity collisions = %d, want %d", got, n-1)
	}
}

func TestSnapshotRestore(t *testing.T) {
	cfg := config.Default()
	s := newSim(t, cfg, floorWorld(64))

	g := geom.V(0, -1.62)
	drag := float32(0.1)
	s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 70, 1, 2), Mass: 62, Velocity: geom.V(2, 0)})
	s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(5, 80, 1, 1), Mass: 10, Gravity: &g, Drag: &drag})
	s.Spawn(BodyDef{Type: components.Static, Bounds: box(-10, 64, 8, 1), Mass: 1000})
	for range 20 {
		s.Step()
	}

	snap := s.Snapshot()
	if snap.Step != 20 || len(snap.Bodies) != 3 {
		t.Fatalf("snapshot step = %d, bodies = %d", snap.Step, len(snap.Bodies))
	}

	restored := newSim(t, cfg, floorWorld(64))
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.Steps() != 20 || restored.Len() != 3 {
		t.Fatalf("restored steps = %d, len = %d", restored.Steps(), restored.Len())
	}

	for range 30 {
		s.Step()
		restored.Step()
	}
	if !reflect.DeepEqual(s.Snapshot(), restored.Snapshot()) {
		t.Error("restored simulation diverged")
	}

	bad := *snap
	bad.Bodies = []telemetry.BodyRecord{{Type: "floating", Mass: 1}}
	if err := restored.Restore(&bad); err == nil {
		t.Error("expected an error for an unknown body type")
	}
	if restored.Len() != 3 {
		t.Errorf("failed restore changed the body count to %d", restored.Len())
	}
}

func TestPopulate(t *testing.T) {
	cfg := config.Default()
	cfg.Spawn.Kinematic = 20
	cfg.Spawn.Static = 3
	s := newSim(t, cfg, nil)

	bodies := s.Populate(rand.New(rand.NewSource(1)), cfg.Spawn)
	if len(bodies) != 23 || s.Len() != 23 {
		t.Fatalf("spawned %d, indexed %d; want 23", len(bodies), s.Len())
	}

	area := cfg.Spawn.Area.AABB()
	statics := 0
	s.EachBody(func(_ ecs.Entity, b systems.BodyState) bool {
		if !area.Contains(b.Bounds) {
			t.Errorf("body %+v outside spawn area", b)
		}
		if b.Type == components.Static {
			statics++
		}
		return true
	})
	if statics != 3 {
		t.Errorf("statics = %d, want 3", statics)
	}
}

func TestRetune(t *testing.T) {
	cfg := weightless()
	s := newSim(t, cfg, nil)
	e := s.Spawn(BodyDef{Type: components.Kinematic, Bounds: box(0, 0, 1, 1), Mass: 1})

	cfg.Physics.Gravity = config.Vec2Config{Y: -3}
	if err := s.Retune(); err != nil {
		t.Fatalf("Retune: %v", err)
	}
	s.Step()
	if got, _ := s.Body(e); got.Velocity.Y >= 0 {
		t.Errorf("velocity.y = %v after retuning gravity, want negative", got.Velocity.Y)
	}

	before := cfg.Derived
	cfg.Physics.Gravity = config.Vec2Config{Y: -50}
	cfg.Physics.Drag = 0.5
	cfg.Physics.Friction = 2
	if err := s.Retune(); err == nil {
		t.Error("expected an error for friction above 1")
	}
	if cfg.Derived.Gravity != before.Gravity || cfg.Derived.Drag != before.Drag {
		t.Errorf("rejected retune changed derived values: gravity %v drag %v, want %v %v",
			cfg.Derived.Gravity, cfg.Derived.Drag, before.Gravity, before.Drag)
	}
}

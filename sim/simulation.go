// Package sim owns a running physics simulation: the body store, the
// broad-phase index, the fixed-step accumulator and the per-step pipeline.
package sim

import (
	"fmt"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/config"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/quadtree"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/telemetry"
	"github.com/pthm-cable/tilephys/tiles"
)

// StepHook runs on the coordinating goroutine after every physics step.
// Event slices returned by the simulation are valid for the duration of
// the hook.
type StepHook func(s *Simulation, sample telemetry.StepSample)

// BodyDef describes a body to spawn.
type BodyDef struct {
	Type     components.BodyType
	Bounds   geom.AABB
	Mass     float32
	Velocity geom.Vec2
	Gravity  *geom.Vec2 // nil uses the global gravity
	Drag     *float32   // nil uses the global drag
}

// Simulation is the physics context. It is created by New, advanced by
// Update and torn down by Close. All methods must be called from one
// goroutine; the simulation fans work out to its own workers internally.
type Simulation struct {
	cfg   *config.Config
	world *ecs.World
	tiles *tiles.World
	index *quadtree.QuadTree[ecs.Entity]

	stepper  *Stepper
	env      systems.Environment
	sweep    systems.SweepParams
	response systems.ResponsePolicy
	margin   float32

	// Component access
	bodyMapper *ecs.Map7[
		components.Bounds,
		components.Velocity,
		components.Acceleration,
		components.Forces,
		components.Mass,
		components.BodyType,
		components.Grounded,
	]
	boundsMap   *ecs.Map[components.Bounds]
	velMap      *ecs.Map[components.Velocity]
	forcesMap   *ecs.Map[components.Forces]
	massMap     *ecs.Map[components.Mass]
	typeMap     *ecs.Map[components.BodyType]
	groundedMap *ecs.Map[components.Grounded]
	entryMap    *ecs.Map[components.IndexEntry]
	gravityMap  *ecs.Map[components.Gravity]
	dragMap     *ecs.Map[components.Drag]

	bodyFilter ecs.Filter3[components.Bounds, components.Velocity, components.BodyType]

	forces    *systems.ForceSystem
	integrate *systems.IntegrateSystem

	parallel *parallelState

	// Events of the most recent step
	tileEvents []systems.TileCollision
	pairs      *systems.PairSet

	perf    *telemetry.PerfCollector
	hooks   []StepHook
	steps   int64
	speeds  []float64
	pending []ecs.Entity
	stale   []quadtree.Entry
}

var _ systems.Bodies = (*Simulation)(nil)

// New creates a simulation over the given tile world. A nil world is
// replaced by an empty one with no generator.
func New(cfg *config.Config, world *tiles.World) (*Simulation, error) {
	if world == nil {
		world = tiles.NewWorld(nil)
	}

	params := quadtree.Params{
		MinEntries: cfg.Index.MinEntries,
		MaxEntries: cfg.Index.MaxEntries,
		MaxDepth:   cfg.Index.MaxDepth,
	}
	index, err := quadtree.New[ecs.Entity](cfg.Derived.IndexBounds, params)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	response, err := systems.NewResponsePolicy(cfg.Physics.Response, float32(cfg.Physics.Restitution))
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	s := &Simulation{
		cfg:      cfg,
		world:    w,
		tiles:    world,
		index:    index,
		stepper:  NewStepper(cfg.Derived.Interval, cfg.Physics.MaxQueuedSteps),
		env:      systems.Environment{Gravity: cfg.Derived.Gravity, Drag: cfg.Derived.Drag},
		response: response,
		margin:   float32(cfg.World.GenerateMargin),
		sweep: systems.SweepParams{
			DT:       cfg.Derived.DT32,
			MaxStep:  float32(cfg.Physics.MaxSweepStep),
			Friction: float32(cfg.Physics.Friction),
		},

		bodyMapper: ecs.NewMap7[
			components.Bounds,
			components.Velocity,
			components.Acceleration,
			components.Forces,
			components.Mass,
			components.BodyType,
			components.Grounded,
		](w),
		boundsMap:   ecs.NewMap[components.Bounds](w),
		velMap:      ecs.NewMap[components.Velocity](w),
		forcesMap:   ecs.NewMap[components.Forces](w),
		massMap:     ecs.NewMap[components.Mass](w),
		typeMap:     ecs.NewMap[components.BodyType](w),
		groundedMap: ecs.NewMap[components.Grounded](w),
		entryMap:    ecs.NewMap[components.IndexEntry](w),
		gravityMap:  ecs.NewMap[components.Gravity](w),
		dragMap:     ecs.NewMap[components.Drag](w),

		bodyFilter: *ecs.NewFilter3[components.Bounds, components.Velocity, components.BodyType](w),

		forces:    systems.NewForceSystem(w),
		integrate: systems.NewIntegrateSystem(w),

		parallel: newParallelState(cfg.Parallel.Workers, cfg.Parallel.Threshold, cfg.Parallel.EventBuffer),
		pairs:    systems.NewPairSet(),
	}
	return s, nil
}

// Retune re-reads the physics parameters from the configuration after it
// was changed at runtime. Index and worker settings are fixed at creation.
// A rejected edit leaves the derived values untouched.
func (s *Simulation) Retune() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	response, err := systems.NewResponsePolicy(s.cfg.Physics.Response, float32(s.cfg.Physics.Restitution))
	if err != nil {
		return err
	}
	s.cfg.ComputeDerived()
	s.response = response
	s.env = systems.Environment{Gravity: s.cfg.Derived.Gravity, Drag: s.cfg.Derived.Drag}
	s.sweep = systems.SweepParams{
		DT:       s.cfg.Derived.DT32,
		MaxStep:  float32(s.cfg.Physics.MaxSweepStep),
		Friction: float32(s.cfg.Physics.Friction),
	}
	s.margin = float32(s.cfg.World.GenerateMargin)
	s.stepper.Interval = s.cfg.Derived.Interval
	return nil
}

// Close stops the worker pool. The simulation must not be used afterwards.
func (s *Simulation) Close() {
	s.stopParallelWorkers()
}

// SetPerfCollector enables per-phase timing. nil disables it.
func (s *Simulation) SetPerfCollector(p *telemetry.PerfCollector) {
	s.perf = p
}

// OnStep registers a hook that runs after every step.
func (s *Simulation) OnStep(h StepHook) {
	s.hooks = append(s.hooks, h)
}

// Update feeds a wall-clock delta into the accumulator and runs every owed
// step, one fixed interval at a time. It returns the number of steps run.
func (s *Simulation) Update(delta time.Duration) int {
	s.stepper.Advance(delta)
	n := 0
	for s.stepper.Next() {
		s.step()
		n++
	}
	return n
}

// Step runs exactly one physics step regardless of the accumulator.
func (s *Simulation) Step() {
	s.step()
}

func (s *Simulation) step() {
	start := time.Now()
	s.perf.StartStep()

	s.tileEvents = s.tileEvents[:0]
	s.pairs.Reset()

	s.perf.StartPhase(systems.PhaseGenerate)
	s.generateTiles()

	s.perf.StartPhase(systems.PhaseIndexSync)
	s.syncIndex()

	s.perf.StartPhase(systems.PhaseForces)
	s.forces.Update(s.env)

	s.perf.StartPhase(systems.PhaseIntegrate)
	resets := s.integrate.Update(s.sweep.DT)

	s.perf.StartPhase(systems.PhaseSweep)
	s.sweepBodies()

	s.perf.StartPhase(systems.PhaseApply)
	grounded := s.applyIntents()

	s.perf.StartPhase(systems.PhaseResponse)
	for _, pair := range s.pairs.Pairs() {
		s.response.Resolve(s, pair)
	}
	s.integrate.ResetAccelerations()

	s.perf.EndStep()
	s.steps++

	if len(s.hooks) == 0 {
		return
	}
	sample := telemetry.StepSample{
		Step:             s.steps,
		Bodies:           s.index.Len(),
		Kinematic:        len(s.parallel.snapshots),
		Grounded:         grounded,
		TileCollisions:   len(s.tileEvents),
		EntityCollisions: s.pairs.Len(),
		Resets:           resets,
		Queued:           s.stepper.Queued,
		DurationUS:       float64(time.Since(start).Nanoseconds()) / 1e3,
		Speeds:           s.speeds,
	}
	for _, h := range s.hooks {
		h(s, sample)
	}
}

// generateTiles makes sure every region a kinematic body can reach this
// step exists before the parallel phase reads the tile world.
func (s *Simulation) generateTiles() {
	query := s.bodyFilter.Query()
	for query.Next() {
		bounds, vel, bodyType := query.Get()
		if *bodyType != components.Kinematic {
			continue
		}
		swept, _ := geom.Containing(bounds.AABB, bounds.Offset(vel.Scale(s.sweep.DT)))
		s.tiles.GenerateAround(swept, s.margin)
	}
}

// syncIndex reconciles the index with bodies changed directly in the
// world: entries of removed entities, or of entities that lost their
// Bounds, are dropped, and bodies without an index entry are inserted.
func (s *Simulation) syncIndex() {
	s.stale = s.stale[:0]
	s.index.Each(func(entry quadtree.Entry, e ecs.Entity, _ geom.AABB) bool {
		if !s.world.Alive(e) || !s.boundsMap.Has(e) {
			s.stale = append(s.stale, entry)
		}
		return true
	})
	for _, entry := range s.stale {
		e, _, _ := s.index.Remove(entry)
		if s.world.Alive(e) && s.entryMap.Has(e) {
			s.entryMap.Remove(e)
		}
	}

	s.pending = s.pending[:0]
	query := s.bodyFilter.Query()
	for query.Next() {
		if e := query.Entity(); !s.entryMap.Has(e) {
			s.pending = append(s.pending, e)
		}
	}
	for _, e := range s.pending {
		entry := s.index.Insert(e, s.boundsMap.Get(e).AABB)
		s.entryMap.Add(e, &components.IndexEntry{Entry: entry})
	}
}

// applyIntents writes the parallel phase results back to the components and
// the index. It returns the number of grounded bodies.
func (s *Simulation) applyIntents() int {
	grounded := 0
	s.speeds = s.speeds[:0]

	for i, snap := range s.parallel.snapshots {
		in := &s.parallel.intents[i]

		s.velMap.Get(snap.Entity).Vec2 = in.Velocity
		s.groundedMap.Get(snap.Entity).OnGround = in.Grounded
		if in.Grounded {
			grounded++
		}
		s.speeds = append(s.speeds, float64(in.Velocity.Len()))

		if in.Bounds == snap.Bounds {
			continue
		}
		s.boundsMap.Get(snap.Entity).AABB = in.Bounds
		if snap.Indexed {
			s.index.SetBounds(snap.Entry, in.Bounds)
		}
	}
	return grounded
}

// Spawn adds a body and inserts it into the index.
func (s *Simulation) Spawn(def BodyDef) ecs.Entity {
	bounds := components.Bounds{AABB: def.Bounds}
	vel := components.Velocity{Vec2: def.Velocity}
	acc := components.Acceleration{}
	forces := components.Forces{}
	mass := components.Mass{Value: def.Mass}
	bodyType := def.Type
	grounded := components.Grounded{}

	e := s.bodyMapper.NewEntity(&bounds, &vel, &acc, &forces, &mass, &bodyType, &grounded)
	if def.Gravity != nil {
		s.gravityMap.Add(e, &components.Gravity{Vec2: *def.Gravity})
	}
	if def.Drag != nil {
		s.dragMap.Add(e, &components.Drag{Value: *def.Drag})
	}
	s.entryMap.Add(e, &components.IndexEntry{Entry: s.index.Insert(e, def.Bounds)})
	return e
}

// Despawn removes a body from the index and the world. It reports false if
// the body was already gone.
func (s *Simulation) Despawn(e ecs.Entity) bool {
	if !s.world.Alive(e) {
		return false
	}
	if s.entryMap.Has(e) {
		s.index.Remove(s.entryMap.Get(e).Entry)
	}
	s.world.RemoveEntity(e)
	return true
}

// Body returns a body's state.
func (s *Simulation) Body(e ecs.Entity) (systems.BodyState, bool) {
	if !s.world.Alive(e) || !s.boundsMap.Has(e) {
		return systems.BodyState{}, false
	}
	return systems.BodyState{
		Type:     *s.typeMap.Get(e),
		Mass:     s.massMap.Get(e).Value,
		Velocity: s.velMap.Get(e).Vec2,
		Bounds:   s.boundsMap.Get(e).AABB,
	}, true
}

// SetVelocity overwrites a body's velocity.
func (s *Simulation) SetVelocity(e ecs.Entity, v geom.Vec2) {
	if s.world.Alive(e) && s.velMap.Has(e) {
		s.velMap.Get(e).Vec2 = v
	}
}

// SetBounds moves a body without sweeping it and updates the index.
func (s *Simulation) SetBounds(e ecs.Entity, b geom.AABB) {
	if !s.world.Alive(e) || !s.boundsMap.Has(e) {
		return
	}
	s.boundsMap.Get(e).AABB = b
	if s.entryMap.Has(e) {
		s.index.SetBounds(s.entryMap.Get(e).Entry, b)
	}
}

// ApplyForce queues a force for the next step. Forces do not persist.
func (s *Simulation) ApplyForce(e ecs.Entity, f geom.Vec2) {
	if s.world.Alive(e) && s.forcesMap.Has(e) {
		s.forcesMap.Get(e).Push(f)
	}
}

// Grounded reports whether the body landed on a tile in the last step.
func (s *Simulation) Grounded(e ecs.Entity) bool {
	return s.world.Alive(e) && s.groundedMap.Has(e) && s.groundedMap.Get(e).OnGround
}

// EachBody calls fn for every body until fn returns false. fn must not
// spawn or despawn bodies.
func (s *Simulation) EachBody(fn func(e ecs.Entity, b systems.BodyState) bool) {
	query := s.bodyFilter.Query()
	for query.Next() {
		e := query.Entity()
		bounds, vel, bodyType := query.Get()
		state := systems.BodyState{
			Type:     *bodyType,
			Mass:     s.massMap.Get(e).Value,
			Velocity: vel.Vec2,
			Bounds:   bounds.AABB,
		}
		if !fn(e, state) {
			query.Close()
			return
		}
	}
}

// BodyAt returns a body whose bounds contain p.
func (s *Simulation) BodyAt(p geom.Vec2) (ecs.Entity, bool) {
	for entry := range s.index.QueryPoint(p) {
		b, ok := s.index.Bounds(entry)
		if !ok || !b.ContainsPoint(p) {
			continue
		}
		if e, ok := s.index.Get(entry); ok {
			return e, true
		}
	}
	return ecs.Entity{}, false
}

// TileCollisions returns the tile collisions of the most recent step.
// The slice is reused by the next step.
func (s *Simulation) TileCollisions() []systems.TileCollision {
	return s.tileEvents
}

// EntityCollisions returns one event per overlapping pair of the most
// recent step. The slice is reused by the next step.
func (s *Simulation) EntityCollisions() []systems.EntityCollision {
	return s.pairs.Pairs()
}

// Lerp returns the accumulator's progress into the next step, in [0, 1).
func (s *Simulation) Lerp() float32 {
	return s.stepper.Lerp()
}

// State reports whether steps are owed.
func (s *Simulation) State() State {
	return s.stepper.State()
}

// Steps returns the number of steps run so far.
func (s *Simulation) Steps() int64 {
	return s.steps
}

// Len returns the number of indexed bodies.
func (s *Simulation) Len() int {
	return s.index.Len()
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// World returns the body store.
func (s *Simulation) World() *ecs.World {
	return s.world
}

// Tiles returns the tile world.
func (s *Simulation) Tiles() *tiles.World {
	return s.tiles
}

// Index returns the broad-phase index. It must not be modified directly.
func (s *Simulation) Index() *quadtree.QuadTree[ecs.Entity] {
	return s.index
}

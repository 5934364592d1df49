package sim

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/quadtree"
	"github.com/pthm-cable/tilephys/systems"
)

// parallelThreshold is the minimum kinematic body count to use the worker
// pool. Below this the sweep runs on the caller's goroutine.
const parallelThreshold = 64

// defaultEventBuffer is the capacity of each event channel.
const defaultEventBuffer = 1024

// bodySnapshot captures read-only body state for the parallel phase.
type bodySnapshot struct {
	Entity   ecs.Entity
	Entry    quadtree.Entry
	Indexed  bool
	Bounds   geom.AABB
	Velocity geom.Vec2
}

// intent captures a body's computed state to apply after the parallel phase.
type intent struct {
	Bounds   geom.AABB
	Velocity geom.Vec2
	Grounded bool
}

// workChunk represents a range of bodies for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the worker pool and per-step buffers.
type parallelState struct {
	snapshots  []bodySnapshot
	intents    []intent
	numWorkers int
	threshold  int

	// Event channels, written by workers and drained by the coordinator.
	tileEvents   chan systems.TileCollision
	entityEvents chan systems.EntityCollision
	sendTile     func(systems.TileCollision)
	sendEntity   func(systems.EntityCollision)

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState(workers, threshold, eventBuffer int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = parallelThreshold
	}
	if eventBuffer <= 0 {
		eventBuffer = defaultEventBuffer
	}

	p := &parallelState{
		numWorkers:   workers,
		threshold:    threshold,
		snapshots:    make([]bodySnapshot, 0, 512),
		intents:      make([]intent, 0, 512),
		tileEvents:   make(chan systems.TileCollision, eventBuffer),
		entityEvents: make(chan systems.EntityCollision, eventBuffer),
	}
	p.sendTile = func(c systems.TileCollision) { p.tileEvents <- c }
	p.sendEntity = func(c systems.EntityCollision) { p.entityEvents <- c }
	return p
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, p.sendTile, p.sendEntity)
			p.doneChan <- struct{}{}
		}
	}
}

// sweepBodies runs the tile sweep and the entity narrow phase for every
// kinematic body. The tile world and the quadtree are only read.
func (s *Simulation) sweepBodies() {
	p := s.parallel

	// Phase A: snapshot kinematic bodies (single-threaded)
	p.snapshots = p.snapshots[:0]
	query := s.bodyFilter.Query()
	for query.Next() {
		bounds, vel, bodyType := query.Get()
		if *bodyType != components.Kinematic {
			continue
		}
		entity := query.Entity()
		snap := bodySnapshot{
			Entity:   entity,
			Bounds:   bounds.AABB,
			Velocity: vel.Vec2,
		}
		if s.entryMap.Has(entity) {
			snap.Entry = s.entryMap.Get(entity).Entry
			snap.Indexed = true
		}
		p.snapshots = append(p.snapshots, snap)
	}

	n := len(p.snapshots)
	if n == 0 {
		return
	}
	if cap(p.intents) < n {
		p.intents = make([]intent, n)
	}
	p.intents = p.intents[:n]

	// Phase B: compute
	if n < p.threshold {
		s.computeChunk(0, n, s.appendTile, s.appendEntity)
	} else {
		s.computeParallel(n)
	}
}

// computeParallel dispatches work to the worker pool and collects events
// until every chunk has finished.
func (s *Simulation) computeParallel(n int) {
	p := s.parallel
	if !p.running {
		p.startWorkers(s)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	// Drain while waiting so a full event buffer never stalls a worker.
	for dispatched > 0 {
		select {
		case <-p.doneChan:
			dispatched--
		case c := <-p.tileEvents:
			s.appendTile(c)
		case c := <-p.entityEvents:
			s.appendEntity(c)
		}
	}

	for {
		select {
		case c := <-p.tileEvents:
			s.appendTile(c)
		case c := <-p.entityEvents:
			s.appendEntity(c)
		default:
			return
		}
	}
}

// computeChunk processes a range of bodies. It writes only intents[i0:i1].
func (s *Simulation) computeChunk(i0, i1 int, emitTile func(systems.TileCollision), emitEntity func(systems.EntityCollision)) {
	p := s.parallel
	for i := i0; i < i1; i++ {
		snap := &p.snapshots[i]

		res := systems.SweepTiles(s.tiles, snap.Entity, snap.Bounds, snap.Velocity, s.sweep)
		for _, c := range res.Collisions() {
			emitTile(c)
		}
		p.intents[i] = intent{Bounds: res.Bounds, Velocity: res.Velocity, Grounded: res.Grounded}

		if !snap.Indexed {
			continue
		}
		for other := range systems.Contacts(s.index, snap.Entry, res.Bounds) {
			emitEntity(systems.EntityCollision{Entities: [2]ecs.Entity{snap.Entity, other}})
		}
	}
}

func (s *Simulation) appendTile(c systems.TileCollision) {
	s.tileEvents = append(s.tileEvents, c)
}

func (s *Simulation) appendEntity(c systems.EntityCollision) {
	s.pairs.Add(c)
}

// stopParallelWorkers should be called when shutting down the simulation.
func (s *Simulation) stopParallelWorkers() {
	if s.parallel != nil {
		s.parallel.stopWorkers()
	}
}

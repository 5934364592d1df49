package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/config"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/sim"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/tiles"
)

// Experiments run on a flat stone floor whose top surface is at this height.
const floorTop = 64

// Slides end once horizontal speed drops below this.
const restSpeed = 0.01

// ExperimentKind selects what an experiment measures.
type ExperimentKind int

const (
	// Drop releases a body from rest and measures seconds until it lands.
	Drop ExperimentKind = iota
	// Slide starts a body on the floor moving sideways and measures the
	// distance covered before it stops.
	Slide
)

func (k ExperimentKind) String() string {
	if k == Slide {
		return "slide"
	}
	return "drop"
}

// Experiment is one measured behaviour the fit has to reproduce.
type Experiment struct {
	Name   string
	Kind   ExperimentKind
	Height float64 // drop height above the floor
	Speed  float64 // initial slide speed
	Target float64 // seconds for drops, world units for slides
}

// Measure runs the experiment on a fresh simulation built from cfg. Runs
// that never finish within maxTime report the value reached at maxTime.
func (ex Experiment) Measure(cfg *config.Config, maxTime float64) (float64, error) {
	floor := int32(floorTop)
	s, err := sim.New(cfg, tiles.NewWorld(tiles.FlatGenerator{Fill: tiles.Stone, Height: &floor}))
	if err != nil {
		return 0, err
	}
	defer s.Close()

	dt := float64(cfg.Derived.DT32)
	maxSteps := max(int(maxTime/dt), 1)
	mass := float32(cfg.Physics.ReferenceMass)

	switch ex.Kind {
	case Slide:
		start := geom.V(0, floorTop)
		e := s.Spawn(sim.BodyDef{
			Type:     components.Kinematic,
			Bounds:   geom.NewAABB(start, geom.V(1, 2)),
			Mass:     mass,
			Velocity: geom.V(float32(ex.Speed), 0),
		})
		for range maxSteps {
			s.Step()
			b, _ := s.Body(e)
			if math.Abs(float64(b.Velocity.X)) < restSpeed {
				break
			}
		}
		b, _ := s.Body(e)
		return float64(b.Bounds.Min.X - start.X), nil

	default:
		e := s.Spawn(sim.BodyDef{
			Type:   components.Kinematic,
			Bounds: geom.NewAABB(geom.V(0, float32(floorTop+ex.Height)), geom.V(1, 2)),
			Mass:   mass,
		})
		for step := range maxSteps {
			before, _ := s.Body(e)
			s.Step()
			if hit, ok := landing(s.TileCollisions(), e); ok {
				// Place the touchdown inside the step from the fall speed.
				gap := float64(before.Bounds.Bottom() - floorTop)
				frac := 1.0
				if v := -float64(hit.EntityVelocity.Y); v > 0 {
					frac = min(max(gap/(v*dt), 0), 1)
				}
				return (float64(step) + frac) * dt, nil
			}
		}
		return maxTime, nil
	}
}

// landing returns e's downward vertical tile collision, if any.
func landing(hits []systems.TileCollision, e ecs.Entity) (systems.TileCollision, bool) {
	for _, hit := range hits {
		if hit.Entity == e && hit.Axis == systems.AxisY && hit.EntityVelocity.Y < 0 {
			return hit, true
		}
	}
	return systems.TileCollision{}, false
}

// FitnessEvaluator runs every experiment headless and scores how far the
// measurements are from their targets.
type FitnessEvaluator struct {
	params      *ParamVector
	experiments []Experiment
	baseConfig  *config.Config
	maxTime     float64

	// Best run tracking
	mu           sync.Mutex
	bestFitness  float64
	lastMeasured []float64 // measurements from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, experiments []Experiment, baseCfg *config.Config, maxTime float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		experiments: experiments,
		baseConfig:  baseCfg,
		maxTime:     maxTime,
		bestFitness: math.Inf(1),
	}
}

// BestFitness returns the lowest fitness seen so far.
func (fe *FitnessEvaluator) BestFitness() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFitness
}

// LastMeasured returns the measurements from the most recent evaluation,
// in experiment order.
func (fe *FitnessEvaluator) LastMeasured() []float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeasured
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the mean squared relative error over all experiments; an
// experiment that fails to run scores 1.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	// Each experiment gets its own simulation, so they run in parallel.
	// All of them only read cfg.
	measured := make([]float64, len(fe.experiments))
	errs := make([]error, len(fe.experiments))
	var wg sync.WaitGroup
	for i, ex := range fe.experiments {
		wg.Go(func() {
			measured[i], errs[i] = ex.Measure(cfg, fe.maxTime)
		})
	}
	wg.Wait()

	var total float64
	for i, ex := range fe.experiments {
		if errs[i] != nil {
			total++
			continue
		}
		total += relativeError(measured[i], ex.Target)
	}
	fitness := total / float64(max(len(fe.experiments), 1))

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, fitness)
	fe.lastMeasured = measured
	fe.mu.Unlock()

	return fitness
}

// copyConfig returns a copy of the base config for parameters to be
// applied to.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// relativeError returns ((got-want)/want)^2, or got^2 for a zero target.
func relativeError(got, want float64) float64 {
	d := got - want
	if want != 0 {
		d /= want
	}
	return d * d
}

// describe formats measurements against their targets for progress output.
func describe(experiments []Experiment, measured []float64) string {
	var out string
	for i, ex := range experiments {
		if i >= len(measured) {
			break
		}
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.3f/%.3f", ex.Name, measured[i], ex.Target)
	}
	return out
}

package telemetry

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Collector accumulates step samples within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationSteps int64
	dt                  float32

	windowStartStep int64

	// Counters for the current window
	steps            int
	tileCollisions   int
	entityCollisions int
	resets           int
	maxQueued        int
	durations        []float64

	// Latest body state
	last   StepSample
	speeds []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per step (used for step-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	stepsPerWindow := int64(windowDurationSec / float64(dt))
	if stepsPerWindow < 1 {
		stepsPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationSteps: stepsPerWindow,
		dt:                  dt,
		durations:           make([]float64, 0, stepsPerWindow),
	}
}

// RecordStep adds one step to the current window.
func (c *Collector) RecordStep(s StepSample) {
	c.steps++
	c.tileCollisions += s.TileCollisions
	c.entityCollisions += s.EntityCollisions
	c.resets += s.Resets
	c.maxQueued = max(c.maxQueued, s.Queued)
	c.durations = append(c.durations, s.DurationUS)

	c.last = s
	c.speeds = append(c.speeds[:0], s.Speeds...)
	c.last.Speeds = nil
}

// ShouldFlush returns true if the current window is complete.
func (c *Collector) ShouldFlush(step int64) bool {
	return step-c.windowStartStep >= c.windowDurationSteps
}

// Flush produces stats for the current window and resets counters.
func (c *Collector) Flush(step int64) WindowStats {
	stats := WindowStats{
		WindowStartStep:  c.windowStartStep,
		WindowEndStep:    step,
		SimTimeSec:       float64(step) * float64(c.dt),
		Bodies:           c.last.Bodies,
		Kinematic:        c.last.Kinematic,
		Grounded:         c.last.Grounded,
		Steps:            c.steps,
		TileCollisions:   c.tileCollisions,
		EntityCollisions: c.entityCollisions,
		Resets:           c.resets,
		MaxQueued:        c.maxQueued,
	}

	if len(c.durations) > 0 {
		stats.StepMeanUS, stats.StepStdUS = stat.PopMeanStdDev(c.durations, nil)
		_, _, _, _, stats.StepP90US = Distribution(c.durations)
	}
	if len(c.speeds) > 0 {
		stats.SpeedMean, _, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = Distribution(c.speeds)
		stats.SpeedMax = floats.Max(c.speeds)
	}

	c.windowStartStep = step
	c.steps = 0
	c.tileCollisions = 0
	c.entityCollisions = 0
	c.resets = 0
	c.maxQueued = 0
	c.durations = c.durations[:0]

	return stats
}

// WindowDurationSteps returns the window size in steps.
func (c *Collector) WindowDurationSteps() int64 {
	return c.windowDurationSteps
}

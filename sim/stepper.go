package sim

import (
	"log/slog"
	"time"
)

// DefaultWarnThreshold is the queued-step count above which Advance warns.
const DefaultWarnThreshold = 10

// State is the accumulator state.
type State uint8

const (
	Idle    State = iota // no steps owed
	Lagging              // one or more fixed steps owed
)

// String returns "idle" or "lagging".
func (s State) String() string {
	if s == Lagging {
		return "lagging"
	}
	return "idle"
}

// Stepper turns variable wall-clock deltas into whole fixed-size steps.
// The remainder that does not fill an interval stays in Lag and is only
// used for render interpolation.
type Stepper struct {
	Interval      time.Duration
	Lag           time.Duration
	Queued        int
	WarnThreshold int
}

// NewStepper creates an idle stepper. A warnThreshold of zero or less uses
// DefaultWarnThreshold.
func NewStepper(interval time.Duration, warnThreshold int) *Stepper {
	if warnThreshold <= 0 {
		warnThreshold = DefaultWarnThreshold
	}
	return &Stepper{Interval: interval, WarnThreshold: warnThreshold}
}

// Advance adds delta to the accumulator and queues every whole interval it
// now holds. Non-positive deltas are ignored. It returns the number of
// steps owed. Falling behind is logged but no step is dropped.
func (s *Stepper) Advance(delta time.Duration) int {
	if delta <= 0 || s.Interval <= 0 {
		return s.Queued
	}

	s.Lag += delta
	if n := s.Lag / s.Interval; n > 0 {
		s.Queued += int(n)
		s.Lag -= n * s.Interval
	}

	if s.Queued > s.WarnThreshold {
		slog.Warn("physics simulation is behind", "steps", s.Queued)
	}
	return s.Queued
}

// Next consumes one queued step. It reports false once the stepper is idle.
func (s *Stepper) Next() bool {
	if s.Queued == 0 {
		return false
	}
	s.Queued--
	return true
}

// State reports whether steps are owed.
func (s *Stepper) State() State {
	if s.Queued > 0 {
		return Lagging
	}
	return Idle
}

// Lerp returns how far the accumulator is into the next interval, in [0, 1).
func (s *Stepper) Lerp() float32 {
	if s.Interval <= 0 {
		return 0
	}
	return float32(float64(s.Lag) / float64(s.Interval))
}

// Reset drops the accumulator and any queued steps.
func (s *Stepper) Reset() {
	s.Lag = 0
	s.Queued = 0
}

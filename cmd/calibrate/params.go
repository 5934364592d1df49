// Package main fits physics constants to measured fall and slide behaviour
// with CMA-ES.
package main

import (
	"github.com/pthm-cable/tilephys/config"
)

// ParamSpec defines a single fitted parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all fitted parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of fitted parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Gravity acts along -y; only its magnitude is fitted
			{Name: "gravity", Path: "physics.gravity.y", Min: 1, Max: 30, Default: 9.81},
			{Name: "terminal_velocity", Path: "physics.terminal_velocity", Min: 5, Max: 150, Default: 55.56},
			{Name: "friction", Path: "physics.friction", Min: 0, Max: 0.99, Default: 0.8},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and recomputes the
// derived values. Drag is reset so it follows the fitted terminal velocity.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	// Order must match Specs order
	cfg.Physics.Gravity = config.Vec2Config{X: 0, Y: -clamped[0]}
	cfg.Physics.TerminalVelocity = clamped[1]
	cfg.Physics.Friction = clamped[2]
	cfg.Physics.Drag = 0

	cfg.ComputeDerived()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		-cfg.Physics.Gravity.Y,
		cfg.Physics.TerminalVelocity,
		cfg.Physics.Friction,
	}
}

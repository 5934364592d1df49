// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/tilephys/geom"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Index     IndexConfig     `yaml:"index"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Spawn     SpawnConfig     `yaml:"spawn"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Vec2Config is a YAML-friendly 2D vector.
type Vec2Config struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec returns the vector as geom.Vec2.
func (v Vec2Config) Vec() geom.Vec2 {
	return geom.V(float32(v.X), float32(v.Y))
}

// RectConfig is a YAML-friendly box anchored at its bottom-left corner.
type RectConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// AABB returns the rect as geom.AABB.
func (r RectConfig) AABB() geom.AABB {
	return geom.NewAABB(
		geom.V(float32(r.X), float32(r.Y)),
		geom.V(float32(r.Width), float32(r.Height)),
	)
}

// ScreenConfig holds display settings for the debug window.
type ScreenConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	TargetFPS     int     `yaml:"target_fps"`
	PixelsPerUnit float64 `yaml:"pixels_per_unit"` // initial camera zoom
}

// WorldConfig selects and tunes the tile world generator.
type WorldConfig struct {
	Generator      string        `yaml:"generator"` // "flat" or "terrain"
	Seed           int64         `yaml:"seed"`
	GenerateMargin float64       `yaml:"generate_margin"` // world units generated around each body
	Flat           FlatConfig    `yaml:"flat"`
	Terrain        TerrainConfig `yaml:"terrain"`
}

// FlatConfig configures the flat generator.
type FlatConfig struct {
	Fill       string `yaml:"fill"`        // tile name
	FillHeight *int32 `yaml:"fill_height"` // nil fills every tile
}

// TerrainConfig configures the noise-based terrain generator.
type TerrainConfig struct {
	BaseHeight    float64 `yaml:"base_height"`
	Amplitude     float64 `yaml:"amplitude"`
	Wavelength    float64 `yaml:"wavelength"`
	Octaves       int     `yaml:"octaves"`
	DirtDepth     float64 `yaml:"dirt_depth"`
	DirtVariation float64 `yaml:"dirt_variation"`
	Grass         bool    `yaml:"grass"` // cap each column with a grass tile
}

// PhysicsConfig holds the fixed-step integrator and collision parameters.
type PhysicsConfig struct {
	Interval         float64    `yaml:"interval"`          // seconds per physics step
	MaxQueuedSteps   int        `yaml:"max_queued_steps"`  // warn when more steps than this are queued
	Gravity          Vec2Config `yaml:"gravity"`           // m/s^2
	Drag             float64    `yaml:"drag"`              // 0 derives drag from terminal_velocity
	TerminalVelocity float64    `yaml:"terminal_velocity"` // m/s for a body of reference_mass
	ReferenceMass    float64    `yaml:"reference_mass"`    // kg
	Friction         float64    `yaml:"friction"`          // horizontal velocity kept per landing
	MaxSweepStep     float64    `yaml:"max_sweep_step"`    // tiles per sweep sub-step
	Response         string     `yaml:"response"`          // "detect" or "momentum"
	Restitution      float64    `yaml:"restitution"`
}

// IndexConfig holds the broad-phase quadtree parameters.
type IndexConfig struct {
	MinEntries int        `yaml:"min_entries"`
	MaxEntries int        `yaml:"max_entries"`
	MaxDepth   int        `yaml:"max_depth"`
	Bounds     RectConfig `yaml:"bounds"`
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	Workers     int `yaml:"workers"`      // 0 uses GOMAXPROCS
	Threshold   int `yaml:"threshold"`    // bodies below this run on the caller's goroutine
	EventBuffer int `yaml:"event_buffer"` // per-step event channel capacity
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // seconds of simulated time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// SpawnConfig describes the initial body population.
type SpawnConfig struct {
	Kinematic int        `yaml:"kinematic"`
	Static    int        `yaml:"static"`
	Size      Vec2Config `yaml:"size"`
	Mass      float64    `yaml:"mass"`
	Area      RectConfig `yaml:"area"`
	MaxSpeed  float64    `yaml:"max_speed"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Interval    time.Duration // Physics.Interval as a duration
	DT32        float32       // Physics.Interval as float32 seconds
	Gravity     geom.Vec2
	Drag        float32
	IndexBounds geom.AABB
	ScreenW32   float32
	ScreenH32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they do not parse,
// which only happens when defaults.yaml itself is broken.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse merges data over the embedded defaults, computes derived values and
// validates the result.
func Parse(data []byte) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config. Call it again
// after changing fields programmatically.
func (c *Config) ComputeDerived() {
	c.Derived.Interval = time.Duration(c.Physics.Interval * float64(time.Second))
	c.Derived.DT32 = float32(c.Physics.Interval)
	c.Derived.Gravity = c.Physics.Gravity.Vec()
	c.Derived.IndexBounds = c.Index.Bounds.AABB()
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Drag defaults to the coefficient giving the configured terminal velocity
	// under the configured gravity: b = m*g/vt^2.
	c.Derived.Drag = float32(c.Physics.Drag)
	if c.Physics.Drag == 0 && c.Physics.TerminalVelocity > 0 {
		g := math.Hypot(c.Physics.Gravity.X, c.Physics.Gravity.Y)
		vt := c.Physics.TerminalVelocity
		c.Derived.Drag = float32(c.Physics.ReferenceMass * g / (vt * vt))
	}
}

// Validate rejects parameter combinations the simulation cannot run with.
func (c *Config) Validate() error {
	p := c.Physics
	switch {
	case p.Interval <= 0:
		return fmt.Errorf("%w: physics.interval must be positive, got %v", ErrInvalid, p.Interval)
	case p.MaxQueuedSteps < 0:
		return fmt.Errorf("%w: physics.max_queued_steps must not be negative", ErrInvalid)
	case p.MaxSweepStep <= 0 || p.MaxSweepStep > 1:
		return fmt.Errorf("%w: physics.max_sweep_step must be within (0, 1], got %v", ErrInvalid, p.MaxSweepStep)
	case p.Friction < 0 || p.Friction > 1:
		return fmt.Errorf("%w: physics.friction must be within [0, 1], got %v", ErrInvalid, p.Friction)
	case p.Drag < 0:
		return fmt.Errorf("%w: physics.drag must not be negative", ErrInvalid)
	case p.Response != "detect" && p.Response != "momentum":
		return fmt.Errorf("%w: physics.response must be detect or momentum, got %q", ErrInvalid, p.Response)
	case p.Restitution < 0 || p.Restitution > 1:
		return fmt.Errorf("%w: physics.restitution must be within [0, 1], got %v", ErrInvalid, p.Restitution)
	}

	ix := c.Index
	switch {
	case ix.MinEntries < 0 || ix.MaxDepth < 0:
		return fmt.Errorf("%w: index thresholds must not be negative", ErrInvalid)
	case ix.MinEntries >= ix.MaxEntries:
		return fmt.Errorf("%w: index.min_entries (%d) must be below index.max_entries (%d)",
			ErrInvalid, ix.MinEntries, ix.MaxEntries)
	case ix.Bounds.Width <= 0 || ix.Bounds.Height <= 0:
		return fmt.Errorf("%w: index.bounds must have a positive size", ErrInvalid)
	}

	if c.Parallel.Workers < 0 || c.Parallel.Threshold < 0 || c.Parallel.EventBuffer < 0 {
		return fmt.Errorf("%w: parallel settings must not be negative", ErrInvalid)
	}
	if c.Spawn.Mass <= 0 {
		return fmt.Errorf("%w: spawn.mass must be positive, got %v", ErrInvalid, c.Spawn.Mass)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

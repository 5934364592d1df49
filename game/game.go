package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tilephys/camera"
	"github.com/pthm-cable/tilephys/config"
	"github.com/pthm-cable/tilephys/inspector"
	"github.com/pthm-cable/tilephys/sim"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/telemetry"
	"github.com/pthm-cable/tilephys/tiles"
	"github.com/pthm-cable/tilephys/ui"
)

// Maximum speed multiplier selectable with < and >.
const maxSpeed = 10

// Game hosts a simulation: it drives the fixed-step loop from frame time,
// routes telemetry and, outside headless mode, renders the world and the
// debug UI.
type Game struct {
	cfg  *config.Config
	sim  *sim.Simulation
	rng  *rand.Rand
	seed int64

	// Rendering (nil in headless mode)
	camera    *camera.Camera
	inspector *inspector.Inspector
	interp    *interpolator

	// UI
	uiHUD            *ui.HUD
	uiControlsPanel  *ui.ControlsPanel
	uiTuningPanel    *ui.TuningPanel
	uiPerfPanel      *ui.PerfPanel
	uiStatsPanel     *ui.StatsPanel
	uiOverlays       *ui.OverlayRegistry
	uiSystemRegistry *systems.SystemRegistry
	panelRects       []rl.Rectangle // screen areas of last frame's panels
	showTuning       bool
	showPerf         bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	renderPerf    *PerfStats
	lastStats     *telemetry.WindowStats
	logStats      bool
	snapshotDir   string

	// State
	paused         bool
	headless       bool
	speed          int // wall-clock multiplier in graphics mode
	stepsPerUpdate int // steps per UpdateHeadless call
	stepsThisFrame int
	following      bool // camera follows the selected body

	screenWidth, screenHeight float32
}

// NewGameWithOptions builds the tile world and simulation from config.Cfg()
// and either restores opts.RestorePath or spawns the configured population.
// Graphics mode requires an open raylib window.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	var restore *telemetry.Snapshot
	if opts.RestorePath != "" {
		snap, err := telemetry.LoadSnapshot(opts.RestorePath)
		if err != nil {
			return nil, err
		}
		// The tile world is rebuilt from the snapshot's generator and seed.
		cfg.World.Seed = snap.Seed
		cfg.World.Generator = snap.Generator
		restore = snap
	}

	gen, err := tiles.NewGenerator(cfg.World)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}
	s, err := sim.New(cfg, tiles.NewWorld(gen))
	if err != nil {
		return nil, err
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	snapshotDir := opts.SnapshotDir
	if snapshotDir == "" && outputManager != nil {
		snapshotDir = outputManager.Dir()
	}

	g := &Game{
		cfg:              cfg,
		sim:              s,
		rng:              rand.New(rand.NewSource(opts.Seed)),
		seed:             opts.Seed,
		headless:         opts.Headless,
		speed:            1,
		stepsPerUpdate:   max(opts.StepsPerUpdate, 1),
		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager:    outputManager,
		renderPerf:       NewPerfStats(),
		logStats:         opts.LogStats,
		snapshotDir:      snapshotDir,
		uiSystemRegistry: systems.NewSystemRegistry(),
		screenWidth:      cfg.Derived.ScreenW32,
		screenHeight:     cfg.Derived.ScreenH32,
	}

	s.SetPerfCollector(g.perfCollector)
	s.OnStep(g.onStep)

	if restore != nil {
		if err := s.Restore(restore); err != nil {
			g.Unload()
			return nil, err
		}
		slog.Info("snapshot restored", "path", opts.RestorePath, "step", restore.Step, "bodies", len(restore.Bodies))
	} else {
		g.spawnInitialPopulation()
	}

	if !opts.Headless {
		g.initRendering()
	}
	return g, nil
}

// initRendering creates the camera, inspector and UI panels.
func (g *Game) initRendering() {
	home := g.cfg.Spawn.Area.AABB().Center()
	g.camera = camera.New(g.screenWidth, g.screenHeight, home, float32(g.cfg.Screen.PixelsPerUnit))
	g.inspector = inspector.NewInspector(g.sim, int32(g.screenWidth))
	g.interp = newInterpolator()
	g.sim.OnStep(g.interp.capture)
	g.interp.reset(g.sim)

	g.showTuning = true
	g.uiHUD = ui.NewHUD()
	g.uiOverlays = ui.NewOverlayRegistry()
	g.uiOverlays.SetEnabled(ui.OverlayInterpolation, true)
	g.uiControlsPanel = ui.NewControlsPanel(10, 100, 200)
	g.uiTuningPanel = ui.NewTuningPanel(10, 100, 220)
	g.uiPerfPanel = ui.NewPerfPanel(int32(g.screenWidth)-260, 10)
	g.uiStatsPanel = ui.NewStatsPanel(float32(g.cfg.Physics.TerminalVelocity))
}

// Unload releases the simulation's workers and closes output files.
func (g *Game) Unload() {
	g.sim.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Update handles input and advances the simulation by the last frame's
// duration scaled by the speed multiplier.
func (g *Game) Update() {
	g.handleInput()

	g.stepsThisFrame = 0
	if g.paused {
		return
	}
	delta := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second) * float64(g.speed))
	g.stepsThisFrame = g.sim.Update(delta)
}

// UpdateHeadless runs StepsPerUpdate fixed steps without consulting the
// clock.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.sim.Step()
	}
}

// Steps returns the number of physics steps run so far.
func (g *Game) Steps() int64 {
	return g.sim.Steps()
}

// Simulation returns the hosted simulation.
func (g *Game) Simulation() *sim.Simulation {
	return g.sim
}

// retune applies edited physics parameters. Invalid edits are logged and
// the simulation keeps its previous parameters.
func (g *Game) retune() {
	if err := g.sim.Retune(); err != nil {
		slog.Warn("rejected physics change", "error", err)
		return
	}
	slog.Info("physics retuned",
		"gravity_y", g.cfg.Physics.Gravity.Y,
		"terminal_velocity", g.cfg.Physics.TerminalVelocity,
		"friction", g.cfg.Physics.Friction,
		"response", g.cfg.Physics.Response,
	)
}

package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tilephys/config"
	"github.com/pthm-cable/tilephys/game"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files (empty = output dir)")
	restore := flag.String("restore", "", "Snapshot file to resume from")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed for the initial population (0 = time-based)")
	maxSteps := flag.Int64("max-steps", 0, "Stop after N physics steps (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Physics steps per update call in headless mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.DefaultOptions()
	opts.Seed = rngSeed
	opts.LogStats = *logStats
	opts.StatsWindowSec = *statsWindow
	opts.SnapshotDir = *snapshotDir
	opts.OutputDir = *outputDir
	opts.RestorePath = *restore
	opts.Headless = *headless
	opts.StepsPerUpdate = *stepsPerUpdate

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"world_seed", cfg.World.Seed,
			"generator", cfg.World.Generator,
			"max_steps", *maxSteps,
			"steps_per_update", *stepsPerUpdate,
		)

		start := time.Now()
		for *maxSteps <= 0 || g.Steps() < *maxSteps {
			g.UpdateHeadless()
		}
		elapsed := time.Since(start)
		slog.Info("max steps reached",
			"steps", g.Steps(),
			"elapsed", elapsed.Round(time.Millisecond).String(),
			"steps_per_sec", float64(g.Steps())/elapsed.Seconds(),
		)
		g.SaveFinalSnapshot()
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Tile Physics")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(0) // Escape deselects instead of quitting

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxSteps > 0 && g.Steps() >= *maxSteps {
			break
		}
	}
}

package game

// Options configures a Game. Physics, world and spawn settings come from
// config.Cfg(); Options only carries run-level switches from the command
// line.
type Options struct {
	Seed           int64   // RNG seed for the initial population
	LogStats       bool    // log every telemetry window via slog
	StatsWindowSec float64 // simulated seconds per telemetry window; 0 uses the config
	SnapshotDir    string  // where Snapshot actions write; empty uses OutputDir
	OutputDir      string  // CSV and config output; empty disables
	RestorePath    string  // snapshot to resume from instead of Populate
	Headless       bool
	StepsPerUpdate int // fixed steps per UpdateHeadless call
}

// DefaultOptions returns the options used when no flags are given.
func DefaultOptions() Options {
	return Options{
		Seed:           42,
		StepsPerUpdate: 1,
	}
}

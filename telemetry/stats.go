package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// StepSample describes one completed physics step.
type StepSample struct {
	Step             int64
	Bodies           int
	Kinematic        int
	Grounded         int
	TileCollisions   int
	EntityCollisions int
	Resets           int // non-finite accelerations reset to zero
	Queued           int // steps still owed after this one
	DurationUS       float64
	Speeds           []float64 // kinematic body speeds, m/s; only valid during the hook
}

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	WindowStartStep int64   `csv:"-"`
	WindowEndStep   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Body counts at window end
	Bodies    int `csv:"bodies"`
	Kinematic int `csv:"kinematic"`
	Grounded  int `csv:"grounded"`

	// Events during window
	Steps            int `csv:"steps"`
	TileCollisions   int `csv:"tile_collisions"`
	EntityCollisions int `csv:"entity_collisions"`
	Resets           int `csv:"resets"`
	MaxQueued        int `csv:"max_queued"`

	// Step cost
	StepMeanUS float64 `csv:"step_mean_us"`
	StepStdUS  float64 `csv:"step_std_us"`
	StepP90US  float64 `csv:"step_p90_us"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution returns the mean, standard deviation and 10th/50th/90th
// percentiles of values. values is not modified.
func Distribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartStep),
		slog.Int64("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("bodies", s.Bodies),
		slog.Int("kinematic", s.Kinematic),
		slog.Int("grounded", s.Grounded),
		slog.Int("steps", s.Steps),
		slog.Int("tile_collisions", s.TileCollisions),
		slog.Int("entity_collisions", s.EntityCollisions),
		slog.Int("resets", s.Resets),
		slog.Int("max_queued", s.MaxQueued),
		slog.Float64("step_mean_us", s.StepMeanUS),
		slog.Float64("step_std_us", s.StepStdUS),
		slog.Float64("step_p90_us", s.StepP90US),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_max", s.SpeedMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"bodies", s.Bodies,
		"grounded", s.Grounded,
		"tile_collisions", s.TileCollisions,
		"entity_collisions", s.EntityCollisions,
		"resets", s.Resets,
		"max_queued", s.MaxQueued,
		"step_mean_us", int(s.StepMeanUS),
		"speed_mean", s.SpeedMean,
	)
}

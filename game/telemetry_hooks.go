package game

import (
	"log/slog"

	"github.com/pthm-cable/tilephys/sim"
	"github.com/pthm-cable/tilephys/telemetry"
)

// onStep feeds every step into the stats collector and flushes completed
// windows.
func (g *Game) onStep(_ *sim.Simulation, sample telemetry.StepSample) {
	g.collector.RecordStep(sample)
	g.flushTelemetry(sample.Step)
}

// flushTelemetry checks if the stats window should be flushed.
func (g *Game) flushTelemetry(step int64) {
	if !g.collector.ShouldFlush(step) {
		return
	}

	stats := g.collector.Flush(step)
	perfStats := g.perfCollector.Stats()
	g.lastStats = &stats

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
		g.logIndexStats()
		if !g.headless {
			g.logRenderPerf()
		}
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// saveSnapshot writes the current bodies to the snapshot directory.
func (g *Game) saveSnapshot() {
	if g.snapshotDir == "" {
		slog.Warn("snapshot skipped: no snapshot or output directory")
		return
	}

	snapshot := g.sim.Snapshot()
	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "step", snapshot.Step, "bodies", len(snapshot.Bodies))
}

// SaveFinalSnapshot writes a snapshot when a run ends, if a directory is
// configured.
func (g *Game) SaveFinalSnapshot() {
	if g.snapshotDir != "" {
		g.saveSnapshot()
	}
}

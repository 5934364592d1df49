package game

import (
	"log/slog"
	"time"
)

// logIndexStats logs the broad-phase tree shape and tile world size.
func (g *Game) logIndexStats() {
	st := g.sim.Index().Stats()
	slog.Info("index",
		"step", g.sim.Steps(),
		"entries", st.Entries,
		"nodes", st.Nodes,
		"leaves", st.Leaves,
		"max_depth", st.MaxDepth,
		"straddling", st.Straddling,
		"uncontained", st.Uncontained,
		"regions", g.sim.Tiles().Len(),
	)
}

// logRenderPerf logs the render phase breakdown, slowest first.
func (g *Game) logRenderPerf() {
	total := g.renderPerf.Total()
	attrs := []any{"total_us", total.Microseconds()}
	for _, name := range g.renderPerf.SortedNames() {
		attrs = append(attrs, name+"_us", g.renderPerf.Avg(name).Round(time.Microsecond).Microseconds())
	}
	slog.Info("render", attrs...)
}

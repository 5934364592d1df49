package game

import (
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/tilephys/components"
)

// spawnInitialPopulation spawns the configured static platforms and
// kinematic bodies.
func (g *Game) spawnInitialPopulation() {
	spawned := g.sim.Populate(g.rng, g.cfg.Spawn)

	var kinematic int
	for _, e := range spawned {
		if b, ok := g.sim.Body(e); ok && b.Type == components.Kinematic {
			kinematic++
		}
	}
	slog.Info("population spawned",
		"bodies", len(spawned),
		"kinematic", kinematic,
		"static", len(spawned)-kinematic,
		"seed", g.seed,
	)
}

// respawn clears every body and spawns a fresh population from the
// original seed, so repeated respawns replay the same start.
func (g *Game) respawn() {
	g.sim.Clear()
	g.rng = rand.New(rand.NewSource(g.seed))
	g.spawnInitialPopulation()

	if g.inspector != nil {
		g.inspector.Deselect()
	}
	if g.interp != nil {
		g.interp.reset(g.sim)
	}
}

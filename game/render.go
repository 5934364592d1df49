package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/tiles"
	"github.com/pthm-cable/tilephys/ui"
)

// Below this zoom (pixels per tile) regions are drawn as single blocks.
const tileDetailZoom = 2

var (
	colorSky      = rl.Color{R: 24, G: 28, B: 38, A: 255}
	colorStatic   = rl.Color{R: 200, G: 130, B: 60, A: 255}
	colorAirborne = rl.Color{R: 90, G: 150, B: 230, A: 255}
	colorGrounded = rl.Color{R: 110, G: 200, B: 120, A: 255}
	colorOutline  = rl.Color{R: 230, G: 230, B: 230, A: 120}

	tileColors = map[tiles.Tile]rl.Color{
		tiles.Stone: {R: 110, G: 110, B: 118, A: 255},
		tiles.Dirt:  {R: 120, G: 84, B: 52, A: 255},
		tiles.Grass: {R: 70, G: 150, B: 60, A: 255},
	}
)

// frameCounts holds body counts gathered while drawing.
type frameCounts struct {
	bodies, kinematic, grounded int
}

// Draw renders the game state.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(colorSky)

	g.renderPerf.Time("tiles", g.drawTiles)

	var counts frameCounts
	g.renderPerf.Time("bodies", func() {
		counts = g.drawBodies()
	})

	g.renderPerf.Time("overlays", g.drawActiveOverlays)

	g.inspector.DrawSelectionHighlight(g.camera, g.sim)
	if _, ok := g.inspector.Selected(); !ok {
		g.drawTooltip()
	}

	g.renderPerf.Time("ui", func() {
		g.drawUI(counts)
	})

	rl.EndDrawing()
}

// drawTiles draws every generated tile on screen. Zoomed far out, each
// region becomes one block shaded by how full it is.
func (g *Game) drawTiles() {
	visible := g.camera.VisibleBounds()
	detailed := g.camera.Zoom >= tileDetailZoom

	g.sim.Tiles().EachRegion(func(rp tiles.Pos, r *tiles.Region) bool {
		if r.Len() == 0 {
			return true
		}
		area := tiles.RegionRect(rp).AABB()
		if !visible.Intersects(area) {
			return true
		}

		if !detailed {
			c := tileColors[tiles.Stone]
			c.A = uint8(255 * r.Len() / tiles.RegionTiles)
			g.fillBox(area, c)
			return true
		}

		origin := tiles.RegionOrigin(rp)
		r.Each(func(local tiles.Pos, t tiles.Tile) bool {
			g.fillBox(origin.Add(local).AABB(), tileColors[t])
			return true
		})
		return true
	})
}

// drawBodies draws every visible body at its interpolated position and
// returns the body counts.
func (g *Game) drawBodies() frameCounts {
	var counts frameCounts
	lerp := g.sim.Lerp()
	blend := g.uiOverlays.IsEnabled(ui.OverlayInterpolation)

	g.sim.EachBody(func(e ecs.Entity, b systems.BodyState) bool {
		counts.bodies++

		color := colorStatic
		if b.Type == components.Kinematic {
			counts.kinematic++
			color = colorAirborne
			if g.sim.Grounded(e) {
				counts.grounded++
				color = colorGrounded
			}
		}

		box := b.Bounds
		if blend {
			box = g.interp.bounds(e, b.Bounds, lerp)
		}
		if !g.camera.IsVisible(box) {
			return true
		}
		g.fillBox(box, color)
		g.outlineBox(box, 1, colorOutline)
		return true
	})
	return counts
}

// fillBox fills a world-space box.
func (g *Game) fillBox(b geom.AABB, c rl.Color) {
	x, y, w, h := g.camera.ScreenRect(b)
	rl.DrawRectangleRec(rl.Rectangle{X: x, Y: y, Width: max(w, 1), Height: max(h, 1)}, c)
}

// outlineBox outlines a world-space box.
func (g *Game) outlineBox(b geom.AABB, thick float32, c rl.Color) {
	x, y, w, h := g.camera.ScreenRect(b)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: w, Height: h}, thick, c)
}

// drawUI draws the HUD and every panel, recording panel areas so clicks on
// them are not treated as world clicks.
func (g *Game) drawUI(counts frameCounts) {
	sw, sh := int32(g.screenWidth), int32(g.screenHeight)
	mouse := rl.GetMousePosition()
	cx, cy := g.camera.ScreenToWorld(mouse.X, mouse.Y)

	g.uiHUD.Draw(ui.HUDData{
		Title:     "Tile Physics",
		Bodies:    counts.bodies,
		Kinematic: counts.kinematic,
		Grounded:  counts.grounded,
		Regions:   g.sim.Tiles().Len(),
		Step:      g.sim.Steps(),
		Queued:    g.stepsThisFrame,
		Lagging:   g.stepsThisFrame > g.cfg.Physics.MaxQueuedSteps,
		Speed:     g.speed,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Zoom:      g.camera.Zoom,
		CursorX:   cx,
		CursorY:   cy,
	})

	g.panelRects = g.panelRects[:0]

	// Left column: overlay toggles, then physics tuning below them
	y := int32(100)
	if g.uiControlsPanel.IsVisible() {
		bottom := g.uiControlsPanel.Draw(g.uiOverlays)
		g.panelRects = append(g.panelRects, rl.Rectangle{X: 10, Y: float32(y), Width: 200, Height: float32(bottom - y)})
		y = bottom + 10
	}
	if g.showTuning {
		g.uiTuningPanel.SetPosition(10, y)
		changed, action := g.uiTuningPanel.Draw(g.cfg, g.paused)
		g.panelRects = append(g.panelRects, rl.Rectangle{X: 10, Y: float32(y), Width: 220, Height: 300})
		if changed {
			g.retune()
		}
		g.applyAction(action)
	}

	if g.showPerf {
		perf := g.perfCollector.Stats()
		g.uiPerfPanel.Draw(ui.PerfPanelData{
			PhaseTimes: perf.PhaseAvg,
			Total:      perf.AvgStepDuration,
			Registry:   g.uiSystemRegistry,
		})
	}

	g.uiStatsPanel.Draw(g.lastStats, sw, sh)
	g.inspector.Draw(g.sim)

	g.uiHUD.DrawControls(sw, sh,
		"SPACE: Pause | N: Step | < >: Speed | Wheel: Zoom | Arrows/MMB: Pan | Click: Select | F: Follow | O: Overlays | Tab: Tuning | F3: Perf | F2: Snapshot | F5: Respawn")
}

package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/inspector"
	"github.com/pthm-cable/tilephys/quadtree"
	"github.com/pthm-cable/tilephys/systems"
	"github.com/pthm-cable/tilephys/tiles"
	"github.com/pthm-cable/tilephys/ui"
)

// Below this zoom the tile grid is too dense to draw.
const gridMinZoom = 6

var (
	colorGrid     = rl.Color{R: 255, G: 255, B: 255, A: 24}
	colorRegion   = rl.Color{R: 255, G: 220, B: 90, A: 110}
	colorIndexBox = rl.Color{R: 255, G: 90, B: 200, A: 200}
	colorHitX     = rl.Color{R: 255, G: 150, B: 40, A: 170}
	colorHitY     = rl.Color{R: 240, G: 60, B: 60, A: 170}
	colorContact  = rl.Color{R: 255, G: 255, B: 80, A: 220}
	colorOverlap  = rl.Color{R: 255, G: 255, B: 80, A: 90}
	colorRawBody  = rl.Color{R: 255, G: 255, B: 255, A: 60}
)

// drawActiveOverlays renders all currently enabled overlays.
func (g *Game) drawActiveOverlays() {
	for _, id := range g.uiOverlays.EnabledOverlays() {
		switch id {
		case ui.OverlayTileGrid:
			g.drawTileGrid()
		case ui.OverlayRegions:
			g.drawRegions()
		case ui.OverlayQuadTree:
			g.drawQuadTree()
		case ui.OverlayBodyBoxes:
			g.drawIndexBoxes()
		case ui.OverlayVelocities:
			g.drawVelocities()
		case ui.OverlayTileHits:
			g.drawTileHits()
		case ui.OverlayContacts:
			g.drawContacts()
		case ui.OverlayInterpolation:
			g.drawRawBodies()
		}
	}
}

// drawTileGrid draws the unit grid over the visible area.
func (g *Game) drawTileGrid() {
	if g.camera.Zoom < gridMinZoom {
		return
	}
	r := tiles.RectFromAABB(g.camera.VisibleBounds())
	hi := r.Max()
	for x := r.Min.X; x <= hi.X; x++ {
		sx, _ := g.camera.WorldToScreen(float32(x), 0)
		rl.DrawLineV(rl.Vector2{X: sx, Y: 0}, rl.Vector2{X: sx, Y: g.screenHeight}, colorGrid)
	}
	for y := r.Min.Y; y <= hi.Y; y++ {
		_, sy := g.camera.WorldToScreen(0, float32(y))
		rl.DrawLineV(rl.Vector2{X: 0, Y: sy}, rl.Vector2{X: g.screenWidth, Y: sy}, colorGrid)
	}
}

// drawRegions outlines every generated region with its solid tile count.
func (g *Game) drawRegions() {
	visible := g.camera.VisibleBounds()
	g.sim.Tiles().EachRegion(func(rp tiles.Pos, r *tiles.Region) bool {
		area := tiles.RegionRect(rp).AABB()
		if !visible.Intersects(area) {
			return true
		}
		g.outlineBox(area, 1, colorRegion)
		if g.camera.Zoom >= 4 {
			x, y, _, _ := g.camera.ScreenRect(area)
			rl.DrawText(fmt.Sprintf("%d,%d: %d", rp.X, rp.Y, r.Len()), int32(x)+3, int32(y)+3, 10, colorRegion)
		}
		return true
	})
}

// drawQuadTree outlines index nodes; deeper nodes are drawn brighter.
func (g *Game) drawQuadTree() {
	index := g.sim.Index()
	maxDepth := max(index.Params().MaxDepth, 1)
	index.EachNode(func(b geom.AABB, depth int, leaf bool) bool {
		if !g.camera.IsVisible(b) {
			// Children lie inside their parent, but siblings may not.
			return true
		}
		t := float32(depth) / float32(maxDepth)
		c := rl.Color{R: 80, G: uint8(120 + 135*t), B: 255, A: uint8(70 + 150*t)}
		if !leaf {
			c.A /= 2
		}
		g.outlineBox(b, 1, c)
		return true
	})
	root := index.RootBounds()
	g.outlineBox(root, 2, rl.SkyBlue)
}

// drawIndexBoxes outlines the bounds the index holds for each body.
func (g *Game) drawIndexBoxes() {
	g.sim.Index().Each(func(_ quadtree.Entry, _ ecs.Entity, b geom.AABB) bool {
		if g.camera.IsVisible(b) {
			g.outlineBox(b, 2, colorIndexBox)
		}
		return true
	})
}

// drawVelocities draws a velocity arrow from each kinematic body's center.
func (g *Game) drawVelocities() {
	scale := g.camera.Zoom / 4
	g.sim.EachBody(func(_ ecs.Entity, b systems.BodyState) bool {
		if b.Type != components.Kinematic || !g.camera.IsVisible(b.Bounds) {
			return true
		}
		c := b.Bounds.Center()
		sx, sy := g.camera.WorldToScreen(c.X, c.Y)
		inspector.DrawArrow(rl.Vector2{X: sx, Y: sy}, b.Velocity, scale, inspector.ColorVectorArrow)
		return true
	})
}

// drawTileHits highlights the tiles that stopped a sweep in the last step.
func (g *Game) drawTileHits() {
	for _, hit := range g.sim.TileCollisions() {
		c := colorHitY
		if hit.Axis == systems.AxisX {
			c = colorHitX
		}
		g.fillBox(hit.TilePosition.AABB(), c)
	}
}

// drawContacts links each colliding pair and shades their overlap.
func (g *Game) drawContacts() {
	for _, ev := range g.sim.EntityCollisions() {
		a, okA := g.sim.Body(ev.Entities[0])
		b, okB := g.sim.Body(ev.Entities[1])
		if !okA || !okB {
			continue
		}
		if overlap, ok := a.Bounds.Intersection(b.Bounds, 0); ok {
			g.fillBox(overlap, colorOverlap)
		}
		ca, cb := a.Bounds.Center(), b.Bounds.Center()
		ax, ay := g.camera.WorldToScreen(ca.X, ca.Y)
		bx, by := g.camera.WorldToScreen(cb.X, cb.Y)
		rl.DrawLineEx(rl.Vector2{X: ax, Y: ay}, rl.Vector2{X: bx, Y: by}, 2, colorContact)
	}
}

// drawRawBodies outlines each body at its last stepped position, showing
// how far the blended position lags behind.
func (g *Game) drawRawBodies() {
	g.sim.EachBody(func(_ ecs.Entity, b systems.BodyState) bool {
		if b.Type == components.Kinematic && g.camera.IsVisible(b.Bounds) {
			g.outlineBox(b.Bounds, 1, colorRawBody)
		}
		return true
	})
	rl.DrawText(fmt.Sprintf("lerp %.2f", g.sim.Lerp()), 10, 95, 12, colorRawBody)
}

// Package inspector draws a debug panel for the body under the cursor.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/tilephys/camera"
	"github.com/pthm-cable/tilephys/components"
	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/sim"
)

// Panel dimensions
const (
	PanelWidth   = 320
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
	ColorSelection   = rl.Yellow
)

// Inspector manages body selection and panel rendering.
type Inspector struct {
	selected    ecs.Entity
	hasSelected bool
	panelX      int32
	panelY      int32

	boundsMap   *ecs.Map[components.Bounds]
	velMap      *ecs.Map[components.Velocity]
	massMap     *ecs.Map[components.Mass]
	groundedMap *ecs.Map[components.Grounded]
	entryMap    *ecs.Map[components.IndexEntry]
	gravityMap  *ecs.Map[components.Gravity]
	dragMap     *ecs.Map[components.Drag]
}

// NewInspector creates an inspector for the bodies of s.
func NewInspector(s *sim.Simulation, screenWidth int32) *Inspector {
	w := s.World()
	return &Inspector{
		panelX:      screenWidth - PanelWidth - 10,
		panelY:      10,
		boundsMap:   ecs.NewMap[components.Bounds](w),
		velMap:      ecs.NewMap[components.Velocity](w),
		massMap:     ecs.NewMap[components.Mass](w),
		groundedMap: ecs.NewMap[components.Grounded](w),
		entryMap:    ecs.NewMap[components.IndexEntry](w),
		gravityMap:  ecs.NewMap[components.Gravity](w),
		dragMap:     ecs.NewMap[components.Drag](w),
	}
}

// Resize keeps the panel anchored to the right edge.
func (ins *Inspector) Resize(screenWidth int32) {
	ins.panelX = screenWidth - PanelWidth - 10
}

// HandleInput processes click detection for body selection.
// It reports whether the click was consumed.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, cam *camera.Camera, s *sim.Simulation) bool {
	// Right click or Escape to deselect
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return false
	}

	// Left click to select
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return false
	}

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
			int32(mouseY) >= closeY && int32(mouseY) <= closeY+20 {
			ins.Deselect()
			return true
		}

		// Clicks inside the panel are ignored
		if int32(mouseX) >= ins.panelX && int32(mouseX) <= ins.panelX+PanelWidth &&
			int32(mouseY) >= ins.panelY && int32(mouseY) <= ins.panelY+ins.panelHeight() {
			return true
		}
	}

	wx, wy := cam.ScreenToWorld(mouseX, mouseY)
	if e, ok := s.BodyAt(geom.V(wx, wy)); ok {
		ins.Select(e)
		return true
	}
	return false
}

// Select marks e as the inspected body.
func (ins *Inspector) Select(e ecs.Entity) {
	ins.selected = e
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected body.
func (ins *Inspector) Selected() (ecs.Entity, bool) {
	return ins.selected, ins.hasSelected
}

// Draw renders the inspector panel if a body is selected.
func (ins *Inspector) Draw(s *sim.Simulation) {
	if !ins.hasSelected {
		return
	}

	state, ok := s.Body(ins.selected)
	if !ok {
		// Despawned since selection
		ins.Deselect()
		return
	}

	panelHeight := ins.panelHeight()
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	// Header
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding

	rl.DrawText(fmt.Sprintf("ID: %d  Type: %s", ins.selected.ID(), state.Type), x, y, 14, ColorHeaderText)
	y += 22
	y = ins.separator(x, y)

	cfg := s.Config()
	g := cfg.Derived.Gravity.Len()
	drag := components.Drag{Value: cfg.Derived.Drag}
	if ins.dragMap.Has(ins.selected) {
		drag = *ins.dragMap.Get(ins.selected)
	}
	terminal := drag.TerminalVelocity(state.Mass, g)

	ins.drawSectionHeader(x, y, "BODY")
	y += 20
	for _, f := range ExtractFields(ins.boundsMap.Get(ins.selected)) {
		y += DrawField(x, y, f)
	}
	for _, f := range ExtractFields(ins.massMap.Get(ins.selected)) {
		f.Name = "Mass"
		y += DrawField(x, y, f)
	}
	if ins.entryMap.Has(ins.selected) {
		y += DrawLabel(x, y, "Index entry", ins.entryMap.Get(ins.selected).Entry, nil)
	}
	y = ins.separator(x, y)

	ins.drawSectionHeader(x, y, "MOTION")
	y += 20
	speedOpts := map[string]string{"max": fmt.Sprint(terminal)}
	for _, f := range ExtractFields(ins.velMap.Get(ins.selected)) {
		f.Options = speedOpts
		y += DrawField(x, y, f)
	}
	y += DrawBar(x, y, "Speed", state.Velocity.Len(), speedOpts)
	for _, f := range ExtractFields(ins.groundedMap.Get(ins.selected)) {
		f.Name = "Grounded"
		y += DrawField(x, y, f)
	}
	y += DrawLabel(x, y, "Terminal v", terminal, map[string]string{"fmt": "%.1f m/s"})
	y = ins.separator(x, y)

	ins.drawSectionHeader(x, y, "OVERRIDES")
	y += 20
	if ins.gravityMap.Has(ins.selected) {
		for _, f := range ExtractFields(ins.gravityMap.Get(ins.selected)) {
			y += DrawField(x, y, f)
		}
	} else {
		y += DrawLabel(x, y, "Gravity", "global", nil)
	}
	if ins.dragMap.Has(ins.selected) {
		y += DrawLabel(x, y, "Drag", drag.Value, map[string]string{"fmt": "%.4f"})
	} else {
		y += DrawLabel(x, y, "Drag", "global", nil)
	}
	y = ins.separator(x, y)

	ins.drawSectionHeader(x, y, "LAST STEP")
	y += 20
	tileHits, entityHits := 0, 0
	for _, c := range s.TileCollisions() {
		if c.Entity == ins.selected {
			tileHits++
		}
	}
	for _, c := range s.EntityCollisions() {
		if c.Entities[0] == ins.selected || c.Entities[1] == ins.selected {
			entityHits++
		}
	}
	y += DrawLabel(x, y, "Tile hits", tileHits, nil)
	DrawLabel(x, y, "Body contacts", entityHits, nil)
}

func (ins *Inspector) separator(x, y int32) int32 {
	y += 4
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	return y + 8
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
}

// panelHeight computes the panel height.
func (ins *Inspector) panelHeight() int32 {
	height := HeaderHeight + PanelPadding // header
	height += 22 + 12                     // ID line, separator
	height += 20 + 44*2 + 20 + 20 + 12    // body: header, min, size, mass, entry, separator
	height += 20 + 44 + 18 + 18 + 20 + 12 // motion: header, velocity, speed, grounded, terminal, separator
	height += 20 + 44 + 20 + 12           // overrides
	height += 20 + 20 + 20                // last step
	height += PanelPadding
	return int32(height)
}

// DrawSelectionHighlight outlines the selected body and draws its velocity.
func (ins *Inspector) DrawSelectionHighlight(cam *camera.Camera, s *sim.Simulation) {
	if !ins.hasSelected {
		return
	}
	state, ok := s.Body(ins.selected)
	if !ok {
		return
	}

	x, y, w, h := cam.ScreenRect(state.Bounds)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x - 2, Y: y - 2, Width: w + 4, Height: h + 4}, 2, ColorSelection)

	c := state.Bounds.Center()
	cx, cy := cam.WorldToScreen(c.X, c.Y)
	DrawArrow(rl.Vector2{X: cx, Y: cy}, state.Velocity, cam.Zoom/4, ColorVectorArrow)

	if state.Type == components.Kinematic && s.Grounded(ins.selected) {
		rl.DrawText("grounded", int32(x), int32(y+h+4), 10, ColorBoolOn)
	}
}

package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tilephys/ui"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.applyAction(ui.ActionPause)
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.applyAction(ui.ActionStep)
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		g.applyAction(ui.ActionRespawn)
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		g.applyAction(ui.ActionSnapshot)
	}

	// Speed multiplier with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.speed > 1 {
		g.speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.speed < maxSpeed {
		g.speed++
	}

	// Panels
	if rl.IsKeyPressed(rl.KeyO) {
		g.uiControlsPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		g.showTuning = !g.showTuning
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}
	g.handleOverlayKeys()

	// Camera controls
	g.handleCameraInput()

	// Inspector input, unless the cursor is over a panel
	mouse := rl.GetMousePosition()
	if !g.overPanel(mouse) {
		g.inspector.HandleInput(mouse.X, mouse.Y, g.camera, g.sim)
	}
}

// applyAction runs a UI action triggered by a key or a tuning panel button.
func (g *Game) applyAction(a ui.Action) {
	switch a {
	case ui.ActionPause:
		g.paused = !g.paused
	case ui.ActionStep:
		if g.paused {
			g.sim.Step()
			g.stepsThisFrame++
		}
	case ui.ActionRespawn:
		g.respawn()
	case ui.ActionSnapshot:
		g.saveSnapshot()
	}
}

// handleOverlayKeys toggles overlays by their registered keys.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.uiOverlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			g.uiOverlays.Toggle(desc.ID)
		}
	}
}

// overPanel reports whether p lies over a panel drawn last frame.
func (g *Game) overPanel(p rl.Vector2) bool {
	for _, r := range g.panelRects {
		if rl.CheckCollisionPointRec(p, r) {
			return true
		}
	}
	return false
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.camera.Resize(w, h)
	g.inspector.Resize(int32(w))
	g.uiPerfPanel.SetPosition(int32(w)-260, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	cam := g.camera

	// Arrow key panning, a fixed number of pixels per frame
	const panPixels = 8
	if rl.IsKeyDown(rl.KeyRight) {
		cam.Pan(-panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Pan(panPixels, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Pan(0, -panPixels)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Pan(0, panPixels)
	}

	// Middle mouse drag
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		cam.Pan(d.X, d.Y)
	}

	// Zoom toward/away from cursor position
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		cam.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
	}

	// Keyboard zoom with +/- (= and - keys)
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(0.8)
	}

	// Follow the selected body
	if rl.IsKeyPressed(rl.KeyF) {
		g.following = !g.following
	}
	if e, ok := g.inspector.Selected(); ok && g.following {
		if b, ok := g.sim.Body(e); ok {
			cam.Follow(b.Bounds.Center(), 0.1)
		}
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
		g.following = false
	}
}

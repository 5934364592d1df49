package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tilephys/config"
)

// ControlsPanel renders the left-side controls panel with overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  false,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the controls panel and returns the Y below it.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry) int32 {
	if !c.visible {
		return c.y
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight + int32(len(categories))*4

	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	y := c.y + padding

	rl.DrawText("Overlays", c.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), c.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)
			if c.drawToggle(c.x+padding, y, desc, enabled, c.width-padding*2) {
				overlays.Toggle(desc.ID)
			}
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return c.y + panelHeight
}

// drawToggle draws a single overlay toggle line and reports whether it was
// clicked.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) bool {
	r := c.renderer

	clicked := gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y + 1), Width: 10, Height: 10}, "", enabled) != enabled

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+16, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
	return clicked
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "world":
		return "World"
	case "index":
		return "Index"
	case "collision":
		return "Collision"
	case "render":
		return "Render"
	default:
		return cat
	}
}

// Action is a button pressed on the tuning panel.
type Action int

const (
	ActionNone Action = iota
	ActionPause
	ActionStep
	ActionRespawn
	ActionSnapshot
)

// TuningPanel edits physics parameters at runtime.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewTuningPanel creates a new tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *TuningPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders sliders bound to cfg. It reports whether any physics value
// changed and which button, if any, was pressed.
func (p *TuningPanel) Draw(cfg *config.Config, paused bool) (changed bool, action Action) {
	r := p.renderer
	padding := r.Theme.Padding
	inner := p.width - padding*2

	r.DrawPanel(p.x, p.y, p.width, 300)
	x := p.x + padding
	y := p.y + padding

	rl.DrawText("Physics", x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	phys := &cfg.Physics
	slider := func(label string, v *float64, lo, hi float32, format string) {
		var nv float32
		nv, y = r.DrawSlider(x, y, label, float32(*v), lo, hi, format, inner)
		if nv != float32(*v) {
			*v = float64(nv)
			changed = true
		}
	}
	slider("Gravity Y", &phys.Gravity.Y, -30, 0, "%.2f")
	slider("Terminal velocity", &phys.TerminalVelocity, 5, 120, "%.1f")
	slider("Friction", &phys.Friction, 0, 1, "%.2f")
	slider("Restitution", &phys.Restitution, 0, 1, "%.2f")

	momentum := phys.Response == "momentum"
	if gui.CheckBox(rl.Rectangle{X: float32(x), Y: float32(y), Width: 12, Height: 12}, "Momentum response", momentum) != momentum {
		if momentum {
			phys.Response = "detect"
		} else {
			phys.Response = "momentum"
		}
		changed = true
	}
	y += 24

	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	bw := float32(inner-10) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: bw, Height: 24}, pauseLabel) {
		action = ActionPause
	}
	if gui.Button(rl.Rectangle{X: float32(x) + bw + 10, Y: float32(y), Width: bw, Height: 24}, "Step") {
		action = ActionStep
	}
	y += 30
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: bw, Height: 24}, "Respawn") {
		action = ActionRespawn
	}
	if gui.Button(rl.Rectangle{X: float32(x) + bw + 10, Y: float32(y), Width: bw, Height: 24}, "Snapshot") {
		action = ActionSnapshot
	}

	return changed, action
}

package game

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tilephys/geom"
	"github.com/pthm-cable/tilephys/tiles"
)

// drawTooltip shows a short summary of the body or tile under the cursor.
func (g *Game) drawTooltip() {
	mouse := rl.GetMousePosition()
	if g.overPanel(mouse) {
		return
	}
	wx, wy := g.camera.ScreenToWorld(mouse.X, mouse.Y)

	var lines []string
	if e, ok := g.sim.BodyAt(geom.V(wx, wy)); ok {
		b, _ := g.sim.Body(e)
		lines = append(lines,
			fmt.Sprintf("Body %d (%s)", e.ID(), b.Type),
			fmt.Sprintf("v=(%.1f, %.1f) m/s", b.Velocity.X, b.Velocity.Y),
			fmt.Sprintf("mass %.0f kg", b.Mass),
		)
		if g.sim.Grounded(e) {
			lines = append(lines, "grounded")
		}
	} else if t, ok, err := g.sim.Tiles().Tile(tiles.PosAt(geom.V(wx, wy))); err == nil && ok {
		lines = append(lines, fmt.Sprintf("%s tile", t))
	}
	if len(lines) == 0 {
		return
	}

	const fontSize, lineHeight, pad = 12, 14, 6
	width := int32(0)
	for _, l := range lines {
		width = max(width, rl.MeasureText(l, fontSize))
	}
	x := int32(mouse.X) + 14
	y := int32(mouse.Y) + 14
	h := int32(len(lines))*lineHeight + pad*2
	rl.DrawRectangle(x, y, width+pad*2, h, rl.Color{R: 20, G: 25, B: 30, A: 220})
	rl.DrawRectangleLines(x, y, width+pad*2, h, rl.Color{R: 60, G: 70, B: 80, A: 255})
	for i, l := range lines {
		rl.DrawText(l, x+pad, y+pad+int32(i)*lineHeight, fontSize, rl.LightGray)
	}
}

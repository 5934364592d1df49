package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tilephys/geom"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarHigh     = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorLabelDim    = rl.Color{R: 110, G: 110, B: 120, A: 255}
	ColorVectorBg    = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorVectorArrow = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// DrawLabel renders a text value.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	text := FormatValue(value, options["fmt"])
	rl.DrawText(fmt.Sprintf("%s: %s", name, text), x, y, 16, ColorText)
	return 20
}

// DrawBar renders a horizontal progress bar. Values close to max turn red.
func DrawBar(x, y int32, name string, value float32, options map[string]string) int32 {
	maxVal := GetMax(options)
	ratio := min(max(value/maxVal, 0), 1)

	barWidth := int32(120)
	barHeight := int32(14)

	// Label
	rl.DrawText(name, x, y, 14, ColorTextDim)

	// Bar background
	barX := x + 80
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	// Bar fill
	fillWidth := int32(float32(barWidth) * ratio)
	rl.DrawRectangle(barX, y, fillWidth, barHeight, lerpColor(ColorBarFill, ColorBarHigh, ratio))

	// Value text
	rl.DrawText(FormatValue(value, options["fmt"]), barX+barWidth+5, y, 14, ColorTextDim)

	return 18
}

// DrawVector renders a vector as an arrow in a small dial next to its
// components. World y points up, so the arrow is flipped for the screen.
func DrawVector(x, y int32, name string, v geom.Vec2, options map[string]string) int32 {
	size := int32(40)
	centerX := x + 80 + size/2
	centerY := y + size/2

	// Label
	rl.DrawText(name, x, y+size/2-7, 14, ColorTextDim)

	rl.DrawCircle(centerX, centerY, float32(size/2), ColorVectorBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), ColorTextDim)

	if length := v.Len(); length > 0 {
		// Arrow length scales with magnitude up to the max option.
		scale := min(length/GetMax(options), 1)
		arrowLen := float32(size/2-4) * scale
		dir := v.Scale(1 / length)
		endX := float32(centerX) + arrowLen*dir.X
		endY := float32(centerY) - arrowLen*dir.Y
		rl.DrawLineEx(
			rl.Vector2{X: float32(centerX), Y: float32(centerY)},
			rl.Vector2{X: endX, Y: endY},
			2,
			ColorVectorArrow,
		)
	}

	rl.DrawText(FormatValue(v, options["fmt"]), x+80+size+5, y+size/2-7, 14, ColorTextDim)
	return size + 4
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	// Label
	rl.DrawText(name, x, y, 14, ColorTextDim)

	// Indicator
	indicatorX := x + 80
	indicatorSize := int32(14)

	color := ColorBoolOff
	text := "NO"
	if value {
		color = ColorBoolOn
		text = "YES"
	}

	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)

	return 18
}

// DrawField renders a field using its widget type.
func DrawField(x, y int32, field Field) int32 {
	switch field.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(field.Value); ok {
			return DrawBar(x, y, field.Name, v, field.Options)
		}
		return DrawLabel(x, y, field.Name, field.Value, field.Options)

	case WidgetVector:
		if v, ok := field.Value.(geom.Vec2); ok {
			return DrawVector(x, y, field.Name, v, field.Options)
		}
		return DrawLabel(x, y, field.Name, field.Value, field.Options)

	case WidgetBool:
		if v, ok := field.Value.(bool); ok {
			return DrawBool(x, y, field.Name, v)
		}
		return DrawLabel(x, y, field.Name, field.Value, field.Options)

	default:
		return DrawLabel(x, y, field.Name, field.Value, field.Options)
	}
}

// DrawArrow draws a world-space vector starting at a screen point.
func DrawArrow(from rl.Vector2, v geom.Vec2, pixelsPerUnit float32, color rl.Color) {
	to := rl.Vector2{X: from.X + v.X*pixelsPerUnit, Y: from.Y - v.Y*pixelsPerUnit}
	rl.DrawLineEx(from, to, 2, color)

	length := float32(math.Hypot(float64(to.X-from.X), float64(to.Y-from.Y)))
	if length < 4 {
		return
	}
	ux, uy := (to.X-from.X)/length, (to.Y-from.Y)/length
	const head = 6
	left := rl.Vector2{X: to.X - head*(ux-uy*0.5), Y: to.Y - head*(uy+ux*0.5)}
	right := rl.Vector2{X: to.X - head*(ux+uy*0.5), Y: to.Y - head*(uy-ux*0.5)}
	rl.DrawLineEx(to, left, 2, color)
	rl.DrawLineEx(to, right, 2, color)
}

// lerpColor interpolates between two colors.
func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}

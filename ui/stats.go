package ui

import (
	"fmt"

	"github.com/pthm-cable/tilephys/telemetry"
)

// StatsPanel shows the most recent telemetry window.
type StatsPanel struct {
	renderer   *Renderer
	descriptor PanelDescriptor
}

// NewStatsPanel creates a stats panel anchored at the bottom right.
// maxSpeed scales the speed bars.
func NewStatsPanel(maxSpeed float32) *StatsPanel {
	return &StatsPanel{
		renderer:   NewRenderer(),
		descriptor: WindowStatsPanel(maxSpeed),
	}
}

// Draw renders stats. Nothing is drawn before the first window closes.
func (p *StatsPanel) Draw(stats *telemetry.WindowStats, screenW, screenH int32) {
	if stats == nil {
		return
	}
	p.renderer.DrawDescriptor(p.descriptor, *stats, screenW, screenH)
}

// WindowStatsPanel describes the telemetry.WindowStats panel layout.
func WindowStatsPanel(maxSpeed float32) PanelDescriptor {
	ws := func(data any) telemetry.WindowStats {
		s, _ := data.(telemetry.WindowStats)
		return s
	}
	speedRange := FieldRange{Min: 0, Max: maxSpeed}

	return PanelDescriptor{
		ID:     "window_stats",
		Title:  "Window Stats",
		Width:  280,
		Anchor: AnchorBottomRight,
		Sections: []SectionDescriptor{
			{
				ID:    "window",
				Title: "Window",
				Fields: []FieldDescriptor{
					{ID: "end", Label: "Ends at", Widget: WidgetText, TextGetter: func(d any) string {
						s := ws(d)
						return fmt.Sprintf("step %d (%.1fs)", s.WindowEndStep, s.SimTimeSec)
					}},
					{ID: "steps", Label: "Steps", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(ws(d).Steps)
					}},
					{ID: "queued", Label: "Max queued", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(ws(d).MaxQueued)
					}},
				},
			},
			{
				ID:    "events",
				Title: "Collisions",
				Fields: []FieldDescriptor{
					{ID: "tiles", Label: "Tile", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(ws(d).TileCollisions)
					}},
					{ID: "entities", Label: "Entity", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(ws(d).EntityCollisions)
					}},
					{ID: "resets", Label: "Resets", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(ws(d).Resets)
					}, Visible: func(d any) bool { return ws(d).Resets > 0 }},
				},
			},
			{
				ID:    "speed",
				Title: "Speed (m/s)",
				Visible: func(d any) bool {
					return ws(d).Kinematic > 0
				},
				Fields: []FieldDescriptor{
					{ID: "p10", Label: "p10", Widget: WidgetBar, Range: speedRange, Format: "%.1f", Getter: func(d any) float32 {
						return float32(ws(d).SpeedP10)
					}},
					{ID: "p50", Label: "p50", Widget: WidgetBar, Range: speedRange, Format: "%.1f", Getter: func(d any) float32 {
						return float32(ws(d).SpeedP50)
					}},
					{ID: "p90", Label: "p90", Widget: WidgetBar, Range: speedRange, Format: "%.1f", Getter: func(d any) float32 {
						return float32(ws(d).SpeedP90)
					}},
					{ID: "max", Label: "max", Widget: WidgetBar, Range: speedRange, Format: "%.1f", Getter: func(d any) float32 {
						return float32(ws(d).SpeedMax)
					}},
				},
			},
			{
				ID:    "cost",
				Title: "Step cost",
				Fields: []FieldDescriptor{
					{ID: "mean", Label: "mean", Widget: WidgetText, Format: "%.0f us", Getter: func(d any) float32 {
						return float32(ws(d).StepMeanUS)
					}},
					{ID: "p90", Label: "p90", Widget: WidgetText, Format: "%.0f us", Getter: func(d any) float32 {
						return float32(ws(d).StepP90US)
					}},
				},
			},
		},
	}
}

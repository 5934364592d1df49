// Package camera provides a 2D camera system for viewport control.
package camera

import (
	"github.com/pthm-cable/tilephys/geom"
)

// Camera controls the viewport into the tile world.
// World space is y-up; screen space is y-down with the origin top-left.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom is the number of screen pixels per world unit.
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Zoom constraints
	MinZoom, MaxZoom float32

	home     geom.Vec2
	homeZoom float32
}

// New creates a camera centered on home at the given zoom.
func New(viewportW, viewportH float32, home geom.Vec2, zoom float32) *Camera {
	if zoom <= 0 {
		zoom = 1
	}
	return &Camera{
		X:         home.X,
		Y:         home.Y,
		Zoom:      zoom,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinZoom:   0.5,
		MaxZoom:   64,
		home:      home,
		homeZoom:  zoom,
	}
}

// Center returns the camera center.
func (c *Camera) Center() geom.Vec2 {
	return geom.V(c.X, c.Y)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// ScreenRect returns the screen rectangle covered by b as its top-left
// corner and size in pixels.
func (c *Camera) ScreenRect(b geom.AABB) (x, y, w, h float32) {
	x, y = c.WorldToScreen(b.Left(), b.Top())
	return x, y, b.Width() * c.Zoom, b.Height() * c.Zoom
}

// VisibleBounds returns the world-space box covered by the viewport.
func (c *Camera) VisibleBounds() geom.AABB {
	half := geom.V(c.ViewportW/(2*c.Zoom), c.ViewportH/(2*c.Zoom))
	return geom.FromCenter(c.Center(), half.Scale(2))
}

// IsVisible reports whether any part of b is on screen.
func (c *Camera) IsVisible(b geom.AABB) bool {
	return c.VisibleBounds().Intersects(b)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the view by a screen-space drag. Dragging right moves the
// world right, so the camera moves left.
func (c *Camera) Pan(dx, dy float32) {
	c.X -= dx / c.Zoom
	c.Y += dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under (sx, sy)
// fixed on screen.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X += wx - nx
	c.Y += wy - ny
}

// Follow moves the camera a fraction t of the way towards target.
// t is clamped to [0, 1]; 1 snaps.
func (c *Camera) Follow(target geom.Vec2, t float32) {
	t = clamp(t, 0, 1)
	c.X += (target.X - c.X) * t
	c.Y += (target.Y - c.Y) * t
}

// Reset returns the camera to its initial position and zoom.
func (c *Camera) Reset() {
	c.X = c.home.X
	c.Y = c.home.Y
	c.Zoom = c.homeZoom
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Package camera holds the pan/zoom state shared by the viewers. It is UI
// state only and never touches body data.
package camera

import "github.com/go-gl/mathgl/mgl32"

// Camera maps world coordinates (y up) onto a screen (y down). Scale is
// world units per screen pixel, so a larger scale shows more of the world.
type Camera struct {
	Center          mgl32.Vec2
	Scale           float32
	MinScale        float32
	MaxScale        float32
	ZoomSensitivity float32
}

func New(initial, min, max, sensitivity float32) *Camera {
	return &Camera{
		Scale:           initial,
		MinScale:        min,
		MaxScale:        max,
		ZoomSensitivity: sensitivity,
	}
}

// Zoom applies a wheel movement. Scrolling up zooms in. A request that
// would leave [MinScale, MaxScale] is dropped rather than clamped.
func (c *Camera) Zoom(wheel float32) bool {
	scroll := -wheel * c.ZoomSensitivity
	if scroll == 0 {
		return false
	}
	next := c.Scale + scroll
	if next < c.MinScale || next > c.MaxScale {
		return false
	}
	c.Scale = next
	return true
}

// ZoomAt zooms like Zoom but keeps the world point under the screen
// position (sx, sy) fixed.
func (c *Camera) ZoomAt(wheel, sx, sy, w, h float32) bool {
	anchor := c.ScreenToWorld(sx, sy, w, h)
	if !c.Zoom(wheel) {
		return false
	}
	moved := c.ScreenToWorld(sx, sy, w, h)
	c.Center = c.Center.Add(anchor.Sub(moved))
	return true
}

// Pan moves the view by a screen-space drag delta.
func (c *Camera) Pan(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	c.Center = c.Center.Add(mgl32.Vec2{-dx * c.Scale, dy * c.Scale})
}

func (c *Camera) Reset(initial float32) {
	c.Center = mgl32.Vec2{}
	c.Scale = initial
}

// WorldToScreen projects p onto a w x h viewport.
func (c *Camera) WorldToScreen(p mgl32.Vec2, w, h float32) (float32, float32) {
	sx := (p[0]-c.Center[0])/c.Scale + w/2
	sy := h/2 - (p[1]-c.Center[1])/c.Scale
	return sx, sy
}

func (c *Camera) ScreenToWorld(sx, sy, w, h float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(sx-w/2)*c.Scale + c.Center[0],
		(h/2-sy)*c.Scale + c.Center[1],
	}
}

package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// minRadius is the smallest body size on screen, in pixels.
const minRadius = 2

// camera2D converts the shared camera to raylib's. The world is drawn
// with y negated, so y points up on screen.
func (a *App) camera2D() rl.Camera2D {
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	return rl.Camera2D{
		Offset:   rl.NewVector2(w/2, h/2),
		Target:   toScreenSpace(a.Cam.Center),
		Rotation: 0,
		Zoom:     1 / a.Cam.Scale,
	}
}

func toScreenSpace(p mgl32.Vec2) rl.Vector2 {
	return rl.NewVector2(p[0], -p[1])
}

func (a *App) drawTrails() {
	for i, trail := range a.Trails {
		if len(trail) < 2 {
			continue
		}
		points := make([]rl.Vector2, len(trail))
		for k, p := range trail {
			points[k] = toScreenSpace(p)
		}
		rl.DrawLineStrip(points, a.TrailColors[i])
	}
}

func (a *App) drawBodies() {
	for i := 0; i < a.Sys.Len(); i++ {
		r := max(a.Radii[i], minRadius*a.Cam.Scale)
		rl.DrawCircleV(toScreenSpace(a.Sys.Body(i).Position), r, a.Colors[i])
	}
}

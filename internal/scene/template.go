package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Template describes one body as authored in a scene. Density and Color
// only affect how the body is drawn.
type Template struct {
	Name     string    `yaml:"name,omitempty"`
	Mass     float32   `yaml:"mass"`
	Density  float32   `yaml:"density"`
	Color    string    `yaml:"color"`
	Position []float32 `yaml:"position,flow"`
	Velocity []float32 `yaml:"velocity,flow"`
}

// Radius is the display radius, mass / density. A non-positive density
// yields 0 and viewers fall back to their minimum dot size.
func (t Template) Radius() float32 {
	if t.Density <= 0 {
		return 0
	}
	return t.Mass / t.Density
}

func (t Template) RGB() (colorful.Color, error) {
	return ParseColor(t.Color)
}

func (t Template) Pos() mgl32.Vec2 { return vec(t.Position) }
func (t Template) Vel() mgl32.Vec2 { return vec(t.Velocity) }

func vec(v []float32) mgl32.Vec2 {
	if len(v) != 2 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{v[0], v[1]}
}

package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// G is the gravitational constant in natural units.
	G float32 = 1.0

	// DT is the fixed simulation timestep.
	DT float32 = 1.5
)

// Body is a point mass. Mass is fixed at construction; Acceleration is
// rebuilt from scratch on every accumulator pass.
type Body struct {
	mass         float32
	Position     mgl32.Vec2
	Velocity     mgl32.Vec2
	Acceleration mgl32.Vec2
}

// NewBody validates mass and initial vectors and returns a body at rest
// acceleration.
func NewBody(mass float32, pos, vel mgl32.Vec2) (Body, error) {
	if !(mass > 0) || !finite(mass) {
		return Body{}, ErrInvalidMass
	}
	if !finiteVec(pos) || !finiteVec(vel) {
		return Body{}, ErrInvalidVector
	}
	return Body{mass: mass, Position: pos, Velocity: vel}, nil
}

// Mass returns the body's mass.
func (b Body) Mass() float32 { return b.mass }

// IsFinite reports whether position, velocity and acceleration are free of NaN and Inf.
func (b Body) IsFinite() bool {
	return finiteVec(b.Position) && finiteVec(b.Velocity) && finiteVec(b.Acceleration)
}

// BodyState is a plain copy of a body's kinematic state.
type BodyState struct {
	Mass         float32
	Position     mgl32.Vec2
	Velocity     mgl32.Vec2
	Acceleration mgl32.Vec2
}

func (b Body) State() BodyState {
	return BodyState{
		Mass:         b.mass,
		Position:     b.Position,
		Velocity:     b.Velocity,
		Acceleration: b.Acceleration,
	}
}

func finite(f float32) bool {
	x := float64(f)
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finiteVec(v mgl32.Vec2) bool {
	return finite(v[0]) && finite(v[1])
}

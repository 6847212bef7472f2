package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Conservation diagnostics. All sums run in float64 so that the
// diagnostics themselves add as little error as possible.

// Momentum returns the total linear momentum sum(m*v).
func (s *System) Momentum() (px, py float64) {
	for _, b := range s.bodies {
		m := float64(b.mass)
		px += m * float64(b.Velocity[0])
		py += m * float64(b.Velocity[1])
	}
	return
}

func (s *System) KineticEnergy() float64 {
	ke := 0.0
	for _, b := range s.bodies {
		vx, vy := float64(b.Velocity[0]), float64(b.Velocity[1])
		ke += 0.5 * float64(b.mass) * (vx*vx + vy*vy)
	}
	return ke
}

// PotentialEnergy returns -sum(G*mi*mj/r) over unordered pairs. Coincident
// pairs are skipped, matching the accumulator.
func (s *System) PotentialEnergy() float64 {
	pe := 0.0
	for i := range s.bodies {
		for j := 0; j < i; j++ {
			rx := float64(s.bodies[i].Position[0] - s.bodies[j].Position[0])
			ry := float64(s.bodies[i].Position[1] - s.bodies[j].Position[1])
			r := math.Sqrt(rx*rx + ry*ry)
			if r == 0 {
				continue
			}
			pe -= float64(G) * float64(s.bodies[i].mass) * float64(s.bodies[j].mass) / r
		}
	}
	return pe
}

func (s *System) TotalEnergy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

// AngularMomentum returns sum(m * (x*vy - y*vx)) about the origin.
func (s *System) AngularMomentum() float64 {
	l := 0.0
	for _, b := range s.bodies {
		x, y := float64(b.Position[0]), float64(b.Position[1])
		vx, vy := float64(b.Velocity[0]), float64(b.Velocity[1])
		l += float64(b.mass) * (x*vy - y*vx)
	}
	return l
}

func (s *System) TotalMass() float64 {
	total := 0.0
	for _, b := range s.bodies {
		total += float64(b.mass)
	}
	return total
}

// CenterOfMass returns the mass-weighted mean position.
func (s *System) CenterOfMass() (mgl32.Vec2, error) {
	if len(s.bodies) == 0 {
		return mgl32.Vec2{}, ErrEmptySystem
	}
	var cx, cy float64
	for _, b := range s.bodies {
		m := float64(b.mass)
		cx += m * float64(b.Position[0])
		cy += m * float64(b.Position[1])
	}
	total := s.TotalMass()
	return mgl32.Vec2{float32(cx / total), float32(cy / total)}, nil
}

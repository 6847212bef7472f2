package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
)

// MomentumDrift is the largest absolute change of total linear momentum
// seen since the first observation.
type MomentumDrift struct {
	name     string
	px0, py0 float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(s *gravity.System) {
	px, py := s.Momentum()
	if m.samples == 0 {
		m.px0, m.py0 = px, py
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Hypot(px-m.px0, py-m.py0))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.px0, m.py0 = 0, 0
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift is the largest absolute change of angular momentum
// about the origin.
type AngularMomentumDrift struct {
	name     string
	l0       float64
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift() *AngularMomentumDrift {
	return &AngularMomentumDrift{name: "angular_momentum_drift"}
}

func (a *AngularMomentumDrift) Name() string { return a.name }

func (a *AngularMomentumDrift) Observe(s *gravity.System) {
	l := s.AngularMomentum()
	if a.samples == 0 {
		a.l0 = l
	}
	a.samples++
	a.maxDrift = math.Max(a.maxDrift, math.Abs(l-a.l0))
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.l0 = 0
	a.maxDrift = 0
	a.samples = 0
}

// MaxSpeed is the highest body speed observed.
type MaxSpeed struct {
	name string
	max  float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{name: "max_speed"}
}

func (m *MaxSpeed) Name() string { return m.name }

func (m *MaxSpeed) Observe(s *gravity.System) {
	for i := 0; i < s.Len(); i++ {
		m.max = math.Max(m.max, float64(s.Body(i).Velocity.Len()))
	}
}

func (m *MaxSpeed) Value() float64 { return m.max }

func (m *MaxSpeed) Reset() { m.max = 0 }

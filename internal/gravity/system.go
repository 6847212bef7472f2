package gravity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Stage identifies where a System is inside its step pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageAccumulate
	StageIntegrateVelocity
	StageIntegratePosition
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAccumulate:
		return "accumulate"
	case StageIntegrateVelocity:
		return "integrate-velocity"
	case StageIntegratePosition:
		return "integrate-position"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// System is an ordered, fixed set of bodies plus the scratch space the
// accumulator needs.
type System struct {
	bodies  []Body
	totals  []mgl32.Vec2
	stage   Stage
	steps   int
	workers int
	hook    func(Stage)
}

// NewSystem copies bodies into a new system. Enumeration order is the
// slice order and never changes afterwards.
func NewSystem(bodies []Body) (*System, error) {
	owned := make([]Body, len(bodies))
	for i, b := range bodies {
		if !(b.mass > 0) || !finite(b.mass) {
			return nil, &BodyError{Index: i, Mass: b.mass, Wrapped: ErrInvalidMass}
		}
		owned[i] = b
	}
	return &System{
		bodies: owned,
		totals: make([]mgl32.Vec2, len(owned)),
	}, nil
}

// SetWorkers selects the accumulator used by Step: values above 1 use
// AccumulateParallel with that many workers.
func (s *System) SetWorkers(n int) { s.workers = n }

// SetStageHook registers fn to be called on every stage transition.
func (s *System) SetStageHook(fn func(Stage)) { s.hook = fn }

func (s *System) Len() int       { return len(s.bodies) }
func (s *System) Stage() Stage   { return s.stage }
func (s *System) StepCount() int { return s.steps }

// Body returns a copy of the i-th body.
func (s *System) Body(i int) Body { return s.bodies[i] }

// Bodies returns a copy of all bodies in enumeration order.
func (s *System) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// States returns the kinematic state of every body.
func (s *System) States() []BodyState {
	out := make([]BodyState, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = b.State()
	}
	return out
}

// Step advances the system by one DT: accumulate, then velocity, then
// position. Each stage finishes for all bodies before the next starts.
func (s *System) Step() error {
	if s.workers > 1 {
		if err := s.AccumulateParallel(s.workers); err != nil {
			s.enter(StageIdle)
			return err
		}
	} else {
		s.Accumulate()
	}
	s.IntegrateVelocity()
	s.IntegratePosition()
	s.enter(StageIdle)
	s.steps++
	return nil
}

// StepN runs n steps, stopping at the first error.
func (s *System) StepN(n int) error {
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Validate returns a *BodyError wrapping ErrNonFinite for the first body
// whose state contains NaN or Inf.
func (s *System) Validate() error {
	for i, b := range s.bodies {
		if !b.IsFinite() {
			return &BodyError{Index: i, Mass: b.mass, Wrapped: ErrNonFinite}
		}
	}
	return nil
}

func (s *System) enter(st Stage) {
	s.stage = st
	if s.hook != nil {
		s.hook(st)
	}
}

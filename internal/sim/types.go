package sim

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/gravity"
)

type Metric interface {
	Name() string
	Observe(s *gravity.System)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s *gravity.System)
}

type Config struct {
	Steps         int
	Sample        int
	Workers       int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Steps:         1000,
		Sample:        1,
		Workers:       1,
		ValidateState: true,
	}
}

// Frame is a recorded snapshot taken after Step steps.
type Frame struct {
	Step   int
	Time   float64
	Bodies []gravity.BodyState
}

type Result struct {
	Frames        []Frame
	Metrics       map[string]float64
	StepsTaken    int
	EnergyDrift   float64
	MomentumDrift float64
	Errors        []error
}

// Final returns the last recorded frame.
func (r *Result) Final() (Frame, bool) {
	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

type SimError struct {
	Step    int
	Time    float64
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

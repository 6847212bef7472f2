package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/gravity"
)

// Simulator drives a gravity.System for a fixed number of steps and
// records what happened.
type Simulator struct {
	sys       *gravity.System
	metrics   []Metric
	observers []Observer
}

func New(sys *gravity.System) *Simulator {
	return &Simulator{
		sys:       sys,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) System() *gravity.System { return s.sys }

// Run advances the system cfg.Steps times. Cancellation is checked
// between steps, so a returned partial result always ends on a whole step.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	s.sys.SetWorkers(cfg.Workers)

	frames := cfg.Steps/cfg.Sample + 2
	result := &Result{
		Frames:  make([]Frame, 0, frames),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.sys)
	}

	result.Frames = append(result.Frames, s.frame())
	initialEnergy := s.sys.TotalEnergy()
	px0, py0 := s.sys.Momentum()

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initialEnergy, px0, py0)
			return result, ctx.Err()
		default:
		}

		if err := s.sys.Step(); err != nil {
			return result, fmt.Errorf("step %d: %w", i, err)
		}

		if cfg.ValidateState {
			if err := s.sys.Validate(); err != nil {
				result.Errors = append(result.Errors, SimError{
					Step:    i,
					Time:    stepTime(i + 1),
					Message: err.Error(),
				})
				break
			}
		}

		result.StepsTaken++
		for _, m := range s.metrics {
			m.Observe(s.sys)
		}
		for _, obs := range s.observers {
			obs.OnStep(s.sys)
		}

		if (i+1)%cfg.Sample == 0 || i == cfg.Steps-1 {
			result.Frames = append(result.Frames, s.frame())
		}
	}

	s.finish(result, initialEnergy, px0, py0)
	return result, nil
}

func (s *Simulator) finish(result *Result, e0, px0, py0 float64) {
	if e := s.sys.TotalEnergy(); e0 != 0 {
		result.EnergyDrift = math.Abs(e-e0) / math.Abs(e0)
	}
	px, py := s.sys.Momentum()
	result.MomentumDrift = math.Hypot(px-px0, py-py0)

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) frame() Frame {
	return Frame{
		Step:   s.sys.StepCount(),
		Time:   stepTime(s.sys.StepCount()),
		Bodies: s.sys.States(),
	}
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.Sample <= 0 {
		return fmt.Errorf("sample must be positive, got %d", cfg.Sample)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	return nil
}

func stepTime(step int) float64 {
	return float64(step) * float64(gravity.DT)
}

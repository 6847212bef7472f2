package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

// DefaultRadius bounds the region a run must stay inside to count as stable.
const DefaultRadius = 1000.0

// ParameterSweep runs Scene once per evenly spaced value of Param in
// [Min, Max].
type ParameterSweep struct {
	Scene  *scene.Scene
	Param  string
	Min    float64
	Max    float64
	Count  int
	Steps  int
	Radius float64
}

type SweepResult struct {
	Value         float64
	StepsTaken    int
	EnergyDrift   float64
	MomentumDrift float64
	Stability     float64
	Diverged      bool
}

// Values returns the sweep points.
func (p *ParameterSweep) Values() []float64 {
	if p.Count == 1 {
		return []float64{p.Min}
	}
	vals := make([]float64, p.Count)
	step := (p.Max - p.Min) / float64(p.Count-1)
	for i := range vals {
		vals[i] = p.Min + float64(i)*step
	}
	return vals
}

// RunSweep executes every sweep point concurrently.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Scene == nil {
		return nil, fmt.Errorf("sweep has no scene")
	}
	if sweep.Count < 1 {
		return nil, fmt.Errorf("sweep count must be positive, got %d", sweep.Count)
	}
	if sweep.Steps <= 0 {
		return nil, fmt.Errorf("sweep steps must be positive, got %d", sweep.Steps)
	}
	radius := sweep.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}

	values := sweep.Values()
	scenes := make([]*scene.Scene, len(values))
	for i, v := range values {
		sc, err := ApplyParam(sweep.Scene, sweep.Param, v)
		if err != nil {
			return nil, err
		}
		scenes[i] = sc
	}

	runs, err := runAll(ctx, scenes, sweep.Steps, func() []sim.Metric {
		return []sim.Metric{metrics.NewStability(radius)}
	})
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(values))
	for i, r := range runs {
		results[i] = SweepResult{
			Value:         values[i],
			StepsTaken:    r.StepsTaken,
			EnergyDrift:   r.EnergyDrift,
			MomentumDrift: r.MomentumDrift,
			Stability:     r.Metrics["stability"],
			Diverged:      len(r.Errors) > 0,
		}
	}
	return results, nil
}

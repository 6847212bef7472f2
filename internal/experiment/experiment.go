package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

type Config struct {
	Scene *scene.Scene
	Sim   sim.Config
}

// Experiment binds a scene to a run configuration. Each Setup builds a
// fresh system from the scene, so an experiment can be run repeatedly.
type Experiment struct {
	cfg       Config
	simulator *sim.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(metrics []sim.Metric) error {
	if e.cfg.Scene == nil {
		return fmt.Errorf("experiment has no scene")
	}
	sys, err := e.cfg.Scene.NewSystem()
	if err != nil {
		return fmt.Errorf("scene %q: %w", e.cfg.Scene.Name, err)
	}
	e.simulator = sim.New(sys)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Sim)
}

func (e *Experiment) Scene() *scene.Scene { return e.cfg.Scene }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

// Comparison runs several scenes side by side under one configuration.
type Comparison struct {
	Scenes []*scene.Scene
	Config sim.Config
	sims   []*sim.Simulator
}

// NewComparison prepares one simulator per named scene. The configured
// scene file, if any, is registered first so it can be named too.
func NewComparison(cfg *config.Config, names []string) (*Comparison, error) {
	registry := NewRegistry()
	if cfg.SceneFile != "" {
		if _, err := registry.Resolve("", cfg.SceneFile); err != nil {
			return nil, err
		}
	}

	c := &Comparison{
		Scenes: make([]*scene.Scene, len(names)),
		Config: sim.Config{Steps: cfg.Steps, Sample: cfg.Steps, Workers: cfg.Workers, ValidateState: cfg.ValidateState},
		sims:   make([]*sim.Simulator, len(names)),
	}
	for i, name := range names {
		sc, err := registry.GetScene(name)
		if err != nil {
			return nil, err
		}
		sys, err := sc.NewSystem()
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", name, err)
		}
		s := sim.New(sys)
		for _, m := range registry.DefaultMetrics() {
			s.AddMetric(m)
		}
		c.Scenes[i] = sc
		c.sims[i] = s
	}
	return c, nil
}

// Run executes every scene concurrently; results keep the name order.
func (c *Comparison) Run(ctx context.Context) ([]*sim.Result, error) {
	return sim.NewEnsemble(c.sims...).Run(ctx, c.Config)
}

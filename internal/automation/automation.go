package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Scene names a registered scene unless
// SceneFile is set; Params are applied to the scene before building it.
type ScenarioStep struct {
	Scene     string             `yaml:"scene"`
	SceneFile string             `yaml:"scene_file"`
	Steps     int                `yaml:"steps"`
	Sample    int                `yaml:"sample"`
	Workers   int                `yaml:"workers"`
	Params    map[string]float64 `yaml:"params"`
	SaveAs    string             `yaml:"save_as"`
}

type ScenarioResult struct {
	Scene  string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

func (s ScenarioStep) simConfig() sim.Config {
	cfg := sim.DefaultConfig()
	if s.Steps > 0 {
		cfg.Steps = s.Steps
	}
	if s.Sample > 0 {
		cfg.Sample = s.Sample
	}
	if s.Workers > 0 {
		cfg.Workers = s.Workers
	}
	return cfg
}

// RunScenario executes the steps in order. Steps with SaveAs set are
// written to st under that name; st may be nil when nothing is saved.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		base, err := registry.Resolve(step.Scene, step.SceneFile)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		sc, err := ApplyParams(base, step.Params)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.SaveAs != "" {
			sc.Name = step.SaveAs
		}

		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), sc.Name)

		cfg := step.simConfig()
		exp := experiment.New(experiment.Config{Scene: sc, Sim: cfg})
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		r := ScenarioResult{Scene: sc.Name, Result: result}
		if step.SaveAs != "" {
			if st == nil {
				return results, fmt.Errorf("step %d: save_as %q needs a store", i+1, step.SaveAs)
			}
			if r.RunID, err = st.Save(sc, cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, r)
	}

	return results, nil
}

// runAll runs one simulator per scene concurrently with the given metric
// factory and returns results in scene order.
func runAll(ctx context.Context, scenes []*scene.Scene, steps int, newMetrics func() []sim.Metric) ([]*sim.Result, error) {
	sims := make([]*sim.Simulator, len(scenes))
	for i, sc := range scenes {
		sys, err := sc.NewSystem()
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		s := sim.New(sys)
		for _, m := range newMetrics() {
			s.AddMetric(m)
		}
		sims[i] = s
	}

	cfg := sim.Config{Steps: steps, Sample: steps, Workers: 1, ValidateState: true}
	return sim.NewEnsemble(sims...).Run(ctx, cfg)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

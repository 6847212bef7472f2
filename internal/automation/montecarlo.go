package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

// MonteCarloConfig perturbs every velocity component of Scene by a
// uniform offset in [-Perturbation, Perturbation] per trial.
type MonteCarloConfig struct {
	Scene        *scene.Scene
	Perturbation float64
	Trials       int
	Steps        int
	Seed         int64
	Radius       float64
}

type MonteCarloResult struct {
	TrialID int
	Scene   *scene.Scene
	Final   []gravity.BodyState
	// Stable is true when the run finished without diverging and no body
	// left the radius.
	Stable bool
}

// RunMonteCarlo runs all trials concurrently. A zero seed is replaced by
// the current time.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Scene == nil {
		return nil, fmt.Errorf("monte carlo has no scene")
	}
	if cfg.Trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", cfg.Trials)
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	radius := cfg.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	scenes := make([]*scene.Scene, cfg.Trials)
	for trial := range scenes {
		sc := cfg.Scene.Clone()
		for i := range sc.Bodies {
			for k := range sc.Bodies[i].Velocity {
				sc.Bodies[i].Velocity[k] += float32((rng.Float64() - 0.5) * 2 * cfg.Perturbation)
			}
		}
		scenes[trial] = sc
	}

	runs, err := runAll(ctx, scenes, cfg.Steps, func() []sim.Metric {
		return []sim.Metric{metrics.NewStability(radius)}
	})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, r := range runs {
		var final []gravity.BodyState
		if f, ok := r.Final(); ok {
			final = f.Bodies
		}
		results[trial] = MonteCarloResult{
			TrialID: trial,
			Scene:   scenes[trial],
			Final:   final,
			Stable:  len(r.Errors) == 0 && r.Metrics["stability"] == 1,
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

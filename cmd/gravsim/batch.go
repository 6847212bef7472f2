package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	results, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(), st)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tSTEPS\tENERGY DRIFT\tRUN ID")
	for _, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%s\n", r.Scene, r.Result.StepsTaken, r.Result.EnergyDrift, id)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := resolveScene(cfg, args)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Scene:  sc,
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Count:  sweepCount,
		Steps:  cfg.Steps,
		Radius: stableRadius,
	}

	fmt.Printf("sweeping %s over [%g, %g] on %s (%d points, %d steps)\n\n",
		sweepParam, sweepMin, sweepMax, sc.Name, sweepCount, cfg.Steps)
	results, err := automation.RunSweep(context.Background(), sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tSTEPS\tENERGY DRIFT\tMOMENTUM DRIFT\tSTABILITY\tDIVERGED")
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%d\t%.3e\t%.3e\t%.2f\t%t\n",
			r.Value, r.StepsTaken, r.EnergyDrift, r.MomentumDrift, r.Stability, r.Diverged)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := resolveScene(cfg, args)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(context.Background(), &automation.MonteCarloConfig{
		Scene:        sc,
		Perturbation: perturbation,
		Trials:       trials,
		Steps:        cfg.Steps,
		Seed:         seed,
		Radius:       stableRadius,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("%s: %d trials, perturbation %g, %d steps\n", sc.Name, len(results), perturbation, cfg.Steps)
	fmt.Printf("stable:   %d\n", stable)
	fmt.Printf("unstable: %d\n", unstable)
	return nil
}

// parseGrid reads name=v1,v2,... entries.
func parseGrid(entries []string) ([]string, [][]float64, error) {
	sort.Strings(entries)
	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, e := range entries {
		name, list, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("grid entry %q: want name=v1,v2", e)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid entry %q: %w", e, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := resolveScene(cfg, args)
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(gridParams)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	simCfg := sim.Config{Steps: cfg.Steps, Sample: cfg.Steps, Workers: cfg.Workers, ValidateState: true}
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		candidate, err := automation.ApplyParams(sc, params)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(experiment.Config{Scene: candidate, Sim: simCfg})
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return nil, err
		}
		return exp, nil
	}

	fmt.Printf("searching %d grid points on %s for minimum %s\n", g.Size(), sc.Name, optimMetric)
	best, value, err := g.Search(context.Background(), build, optimMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", optimMetric, value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

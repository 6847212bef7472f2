package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/gui"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

// progressPrinter prints a bar every n steps.
type progressPrinter struct {
	total int
	every int
	done  int
}

func (p *progressPrinter) OnStep(s *gravity.System) {
	p.done++
	if p.every <= 0 || (p.done%p.every != 0 && p.done != p.total) {
		return
	}
	pct := float64(p.done) / float64(p.total)
	fmt.Printf("%s %6d/%d  E=%.6g\n", viz.ProgressBar(pct, 30), p.done, p.total, s.TotalEnergy())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	name := cfg.Scene
	if len(args) > 0 {
		name = args[0]
	}
	sc, err := registry.Resolve(name, cfg.SceneFile)
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	simCfg := sim.Config{
		Steps:         cfg.Steps,
		Sample:        cfg.Sample,
		Workers:       cfg.Workers,
		ValidateState: cfg.ValidateState,
	}

	exp := experiment.New(experiment.Config{Scene: sc, Sim: simCfg})
	if err := exp.Setup(registry.DefaultMetrics()); err != nil {
		return err
	}
	if verbose {
		exp.GetSimulator().AddObserver(&progressPrinter{total: cfg.Steps, every: progress})
	}

	fmt.Printf("running %s (%d bodies)...\n", sc.Name, len(sc.Bodies))
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(sc, simCfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d/%d\n", result.StepsTaken, cfg.Steps)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := resolveScene(cfg, args)
	if err != nil {
		return err
	}

	m, err := viz.NewModel(sc, cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := resolveScene(cfg, args)
	if err != nil {
		return err
	}
	return gui.Run(sc, cfg)
}

func compareScenes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cmp, err := experiment.NewComparison(cfg, args)
	if err != nil {
		return err
	}
	scenes := cmp.Scenes

	start := time.Now()
	results, err := cmp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("comparing %d scenes (steps=%d, %v)\n\n", len(args), cfg.Steps, elapsed)

	var metricNames []string
	for name := range results[0].Metrics {
		metricNames = append(metricNames, name)
	}
	sort.Strings(metricNames)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tBODIES\tSTEPS\t"+strings.ToUpper(strings.Join(metricNames, "\t")))
	for i, r := range results {
		row := []string{scenes[i].Name, fmt.Sprint(len(scenes[i].Bodies)), fmt.Sprint(r.StepsTaken)}
		for _, name := range metricNames {
			row = append(row, fmt.Sprintf("%.4g", r.Metrics[name]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func benchAccumulate(cmd *cobra.Command, args []string) error {
	if benchBodies < 2 {
		return fmt.Errorf("bench needs at least 2 bodies, got %d", benchBodies)
	}
	if benchSteps <= 0 {
		return fmt.Errorf("bench steps must be positive, got %d", benchSteps)
	}
	sc := scene.Ring(benchBodies, 1000, 400)

	counts := []int{1, 2, 4}
	if n := runtime.NumCPU(); n > 4 {
		counts = append(counts, n)
	}

	fmt.Printf("benchmarking %d bodies, %d steps\n\n", benchBodies, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tTIME\tSTEPS/SEC\tSPEEDUP")

	var base time.Duration
	for _, workers := range counts {
		sys, err := sc.NewSystem()
		if err != nil {
			return err
		}
		sys.SetWorkers(workers)

		start := time.Now()
		if err := sys.StepN(benchSteps); err != nil {
			return err
		}
		elapsed := time.Since(start)
		if base == 0 {
			base = elapsed
		}

		fmt.Fprintf(w, "%d\t%v\t%.0f\t%.2fx\n",
			workers, elapsed, float64(benchSteps)/elapsed.Seconds(), base.Seconds()/elapsed.Seconds())
	}

	return w.Flush()
}

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	sceneFile  string
	steps      int
	sample     int
	workers    int
	noValidate bool
	verbose    bool
	progress   int
	// viewer
	frameRate     int
	stepsPerFrame int
	noTrails      bool
	// output
	outFile   string
	svgWidth  int
	svgHeight int
	// analysis
	bodyIndex int
	lyapSteps int
	// bench
	benchBodies int
	benchSteps  int
	// batch
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepCount   int
	stableRadius float64
	perturbation float64
	trials       int
	seed         int64
	gridParams   []string
	optimMetric  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravsim",
		Short: "n-body gravity simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(viz.NewPicker(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a headless simulation and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&sample, "sample", config.DefaultSample, "record every n-th step")
	runCmd.Flags().BoolVar(&noValidate, "no-validate", false, "skip the NaN/Inf check after each step")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress")
	runCmd.Flags().IntVar(&progress, "progress", 100, "steps between progress lines (with --verbose)")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene in the terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)
	addViewFlags(liveCmd)

	windowCmd := &cobra.Command{
		Use:   "window [scene]",
		Short: "run a scene in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runWindow,
	}
	addSceneFlags(windowCmd)
	addViewFlags(windowCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyIndex, "body", 1, "body whose orbit is drawn")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "orbital periods and chaos estimate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyIndex, "body", 1, "body perturbed for the lyapunov estimate")
	analyzeCmd.Flags().IntVar(&lyapSteps, "lyapunov-steps", 2000, "steps for the lyapunov estimate (0 to skip)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		RunE:  listScenes,
	}
	scenesCmd.AddCommand(&cobra.Command{
		Use:   "show [scene]",
		Short: "print a built-in scene as yaml",
		Args:  cobra.ExactArgs(1),
		RunE:  showScene,
	})

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [scene] ...",
		Short: "run several scenes concurrently and compare metrics",
		Long:  "Runs each named scene concurrently. A scene loaded with --scene-file can be named too.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareScenes,
	}
	addSceneFlags(compareCmd)
	compareCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark sequential and parallel force accumulation",
		Args:  cobra.NoArgs,
		RunE:  benchAccumulate,
	}
	benchCmd.Flags().IntVar(&benchBodies, "bodies", 256, "bodies in the benchmark ring")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per measurement")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run a scene across a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per run")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "vscale", "parameter (vscale, mass:i, x:i, y:i, vx:i, vy:i)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.5, "last value")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 11, "number of values")
	sweepCmd.Flags().Float64Var(&stableRadius, "radius", automation.DefaultRadius, "stability radius around the center of mass")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "estimate how often random velocity kicks destabilise a scene",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSceneFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per trial")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.05, "maximum velocity kick per component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().Float64Var(&stableRadius, "radius", automation.DefaultRadius, "stability radius around the center of mass")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [scene]",
		Short: "grid search scene parameters minimising a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOptimize,
	}
	addSceneFlags(optimizeCmd)
	optimizeCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per run")
	optimizeCmd.Flags().StringArrayVar(&gridParams, "grid", []string{"vscale=0.8,0.9,1,1.1,1.2"}, "parameter grid as name=v1,v2,... (repeatable)")
	optimizeCmd.Flags().StringVar(&optimMetric, "metric", "energy_drift", "metric to minimise")

	rootCmd.AddCommand(runCmd, liveCmd, windowCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, scenesCmd, compareCmd, benchCmd,
		scenarioCmd, sweepCmd, monteCarloCmd, optimizeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sceneFile, "scene-file", "", "scene file path (yaml)")
	cmd.Flags().IntVar(&workers, "workers", 1, "force accumulation workers")
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", config.DefaultStepsPerFrame, "physics steps per frame")
	cmd.Flags().BoolVar(&noTrails, "no-trails", false, "hide trails")
}

// loadConfig layers the config file over the defaults and explicitly set
// flags over both.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || configFile == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("scene-file") {
		cfg.SceneFile = sceneFile
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("sample") {
		cfg.Sample = sample
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}
	if flags.Changed("fps") {
		cfg.View.FPS = frameRate
	}
	if flags.Changed("steps-per-frame") {
		cfg.View.StepsPerFrame = stepsPerFrame
	}
	if flags.Changed("no-trails") {
		cfg.View.Trails = !noTrails
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveScene picks the scene file when one is configured, else the
// scene named on the command line, else the configured scene.
func resolveScene(cfg *config.Config, args []string) (*scene.Scene, error) {
	name := cfg.Scene
	if len(args) > 0 {
		name = args[0]
	}
	return experiment.NewRegistry().Resolve(name, cfg.SceneFile)
}

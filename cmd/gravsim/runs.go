package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
)

// openStore uses the data directory from --config when --data is unset.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tBODIES\tSTEPS\tSAMPLE\tWORKERS")

	for _, run := range runs {
		steps := fmt.Sprint(run.StepsTaken)
		if run.StepsTaken != run.Steps {
			steps = fmt.Sprintf("%d/%d", run.StepsTaken, run.Steps)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			steps,
			run.Sample,
			run.Workers,
		)
	}

	return w.Flush()
}

// systemAt rebuilds a system from a stored frame so conserved quantities
// can be recomputed.
func systemAt(f sim.Frame) (*gravity.System, error) {
	bodies := make([]gravity.Body, len(f.Bodies))
	for i, b := range f.Bodies {
		body, err := gravity.NewBody(b.Mass, b.Position, b.Velocity)
		if err != nil {
			return nil, &gravity.BodyError{Index: i, Mass: b.Mass, Wrapped: err}
		}
		bodies[i] = body
	}
	return gravity.NewSystem(bodies)
}

func loadRun(st *storage.Store, runID string) (*storage.RunMetadata, []sim.Frame, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no frames", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, frames, err := loadRun(st, args[0])
	if err != nil {
		return err
	}
	if bodyIndex >= meta.Bodies && !cmd.Flags().Changed("body") {
		bodyIndex = 0
	}
	if bodyIndex < 0 || bodyIndex >= meta.Bodies {
		return fmt.Errorf("body %d out of range [0,%d)", bodyIndex, meta.Bodies)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(frames))

	energy := make([]float64, 0, len(frames))
	momentum := make([]float64, 0, len(frames))
	for _, f := range frames {
		// A diverged run stops the curves at its last finite frame.
		sys, err := systemAt(f)
		if err != nil {
			break
		}
		e := sys.TotalEnergy()
		px, py := sys.Momentum()
		if math.IsNaN(e) || math.IsInf(e, 0) {
			break
		}
		energy = append(energy, e)
		momentum = append(momentum, math.Hypot(px, py))
	}

	if len(energy) > 1 {
		fmt.Println(asciigraph.Plot(energy,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("total energy"),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(momentum,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption("|momentum|"),
		))
		fmt.Println()
	}

	orbit, err := analysis.Portrait(frames, bodyIndex, analysis.PortraitOrbit)
	if err != nil {
		return err
	}
	fmt.Printf("orbit of body %d\n", bodyIndex)
	fmt.Println(analysis.PhasePortraitToASCII(orbit, 60, 24))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, frames, err := loadRun(st, runID)
	if err != nil {
		return err
	}
	if meta.Sample <= 0 || len(meta.Masses) != meta.Bodies {
		return fmt.Errorf("run %s has inconsistent metadata", runID)
	}

	// Only frames on the sampling grid are evenly spaced.
	even := frames[:0:0]
	for _, f := range frames {
		if f.Step%meta.Sample == 0 {
			even = append(even, f)
		}
	}
	dt := float64(meta.Sample) * float64(meta.Dt)

	fmt.Printf("run: %s (%s, %d samples, dt=%g)\n\n", meta.ID, meta.Scene, len(even), dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tMASS\tPERIOD(X)\tPERIOD(Y)\tCROSSINGS")
	for i := 0; i < meta.Bodies; i++ {
		xs := make([]float64, len(even))
		ys := make([]float64, len(even))
		for k, f := range even {
			xs[k] = float64(f.Bodies[i].Position[0])
			ys[k] = float64(f.Bodies[i].Position[1])
		}
		section, err := analysis.Poincare(even, i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%g\t%s\t%s\t%d\n",
			i, meta.Masses[i], periodString(xs, dt), periodString(ys, dt), len(section.Points))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if bodyIndex >= 0 && bodyIndex < meta.Bodies && len(even) >= 8 {
		n := 1
		for n*2 <= len(even) {
			n *= 2
		}
		xs := make([]float64, n)
		for k := range xs {
			xs[k] = float64(even[k].Bodies[bodyIndex].Position[0])
		}
		ps := analysis.PowerSpectrum(xs)
		fmt.Println()
		fmt.Println(asciigraph.Plot(ps[1:],
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum of body %d x", bodyIndex)),
		))
	}

	if lyapSteps > 0 {
		sc, err := st.LoadScene(runID)
		if err != nil {
			return err
		}
		bodies, err := sc.Build()
		if err != nil {
			return err
		}
		lambda, err := analysis.LyapunovExponent(bodies, bodyIndex, 1e-3, lyapSteps)
		fmt.Println()
		if err != nil {
			fmt.Printf("lyapunov: %v\n", err)
		} else {
			fmt.Printf("lyapunov exponent (body %d, %d steps): %.6g\n", bodyIndex, lyapSteps, lambda)
		}
	}

	return nil
}

func periodString(series []float64, dt float64) string {
	p, err := analysis.DominantPeriod(series, dt)
	if errors.Is(err, analysis.ErrTooShort) || errors.Is(err, analysis.ErrNoSignal) {
		return "-"
	}
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%.4g", p)
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// output opens outFile, or stdout when it is unset.
func output(fallback string) (io.WriteCloser, error) {
	path := outFile
	if path == "" {
		path = fallback
	}
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	out, err := output("")
	if err != nil {
		return err
	}
	defer out.Close()
	return st.ExportJSON(out, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}

	out, err := output("")
	if err != nil {
		return err
	}
	defer out.Close()
	return storage.WriteFramesCSV(out, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	sc, err := st.LoadScene(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	out, err := output(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := export.TrajectoriesToSVG(out, frames, export.StylesFromScene(sc), svgWidth, svgHeight); err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func listScenes(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tTOTAL MASS")
	for _, name := range registry.ListScenes() {
		sc, err := registry.GetScene(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%g\n", sc.Name, len(sc.Bodies), totalMass(sc))
	}
	return w.Flush()
}

func totalMass(sc *scene.Scene) float64 {
	total := 0.0
	for _, b := range sc.Bodies {
		total += float64(b.Mass)
	}
	return total
}

func showScene(cmd *cobra.Command, args []string) error {
	sc, err := experiment.NewRegistry().GetScene(args[0])
	if err != nil {
		return err
	}
	data, err := sc.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	sceneFile    = "scene.yaml"
)

// Store keeps finished runs as read-only artifacts, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Bodies     int                `json:"bodies"`
	Masses     []float32          `json:"masses"`
	Steps      int                `json:"steps"`
	Sample     int                `json:"sample"`
	Workers    int                `json:"workers"`
	Dt         float32            `json:"dt"`
	G          float32            `json:"g"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
	StepsTaken int                `json:"steps_taken"`
}

// runIDPrefix turns a scene name into a single path element. Anything
// outside [A-Za-z0-9._-] becomes '_' and leading dots are dropped.
func runIDPrefix(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	safe = strings.TrimLeft(safe, ".")
	if safe == "" {
		return "run"
	}
	return safe
}

// Save writes the run directory and returns its id.
func (s *Store) Save(sc *scene.Scene, cfg sim.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", runIDPrefix(sc.Name), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      sc.Name,
		Timestamp:  now,
		Bodies:     len(sc.Bodies),
		Masses:     make([]float32, len(sc.Bodies)),
		Steps:      cfg.Steps,
		Sample:     cfg.Sample,
		Workers:    cfg.Workers,
		Dt:         gravity.DT,
		G:          gravity.G,
		Metrics:    finiteMetrics(result.Metrics),
		StepsTaken: result.StepsTaken,
	}
	for i, t := range sc.Bodies {
		meta.Masses[i] = t.Mass
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := scene.Save(filepath.Join(runDir, sceneFile), sc); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, statesFile))
	if err != nil {
		return "", err
	}
	if err := WriteFramesCSV(csvFile, result.Frames); err != nil {
		csvFile.Close()
		return "", err
	}
	if err := csvFile.Close(); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteFramesCSV writes one row per frame: step, time, then x, y, vx, vy
// for each body in order.
func WriteFramesCSV(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)

	if len(frames) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"step", "time"}
	for i := range frames[0].Bodies {
		header = append(header,
			fmt.Sprintf("b%d_x", i), fmt.Sprintf("b%d_y", i),
			fmt.Sprintf("b%d_vx", i), fmt.Sprintf("b%d_vy", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Step),
			strconv.FormatFloat(f.Time, 'f', 6, 64),
		}
		for _, b := range f.Bodies {
			row = append(row,
				formatFloat32(b.Position[0]), formatFloat32(b.Position[1]),
				formatFloat32(b.Velocity[0]), formatFloat32(b.Velocity[1]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// finiteMetrics drops NaN and Inf values, which JSON cannot encode.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func formatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadScene(runID string) (*scene.Scene, error) {
	return scene.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

// StatesPath is the trajectory CSV of a run.
func (s *Store) StatesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, statesFile)
}

// LoadFrames reads the trajectory back. Accelerations are not stored and
// come back as zero; masses are taken from the metadata.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(s.StatesPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for line, record := range records[1:] {
		f, err := parseFrame(record, meta.Masses)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", statesFile, line+2, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(record []string, masses []float32) (sim.Frame, error) {
	if len(record) < 2 || (len(record)-2)%4 != 0 {
		return sim.Frame{}, fmt.Errorf("unexpected column count %d", len(record))
	}

	step, err := strconv.Atoi(record[0])
	if err != nil {
		return sim.Frame{}, err
	}
	t, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return sim.Frame{}, err
	}

	n := (len(record) - 2) / 4
	f := sim.Frame{Step: step, Time: t, Bodies: make([]gravity.BodyState, n)}
	for i := 0; i < n; i++ {
		var v [4]float32
		for k := range v {
			x, err := strconv.ParseFloat(record[2+4*i+k], 32)
			if err != nil {
				return sim.Frame{}, err
			}
			v[k] = float32(x)
		}
		f.Bodies[i] = gravity.BodyState{
			Position: mgl32.Vec2{v[0], v[1]},
			Velocity: mgl32.Vec2{v[2], v[3]},
		}
		if i < len(masses) {
			f.Bodies[i].Mass = masses[i]
		}
	}
	return f, nil
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

func runTrinary(t *testing.T, cfg sim.Config) (*scene.Scene, *sim.Result) {
	t.Helper()
	sc := scene.GetPreset("trinary")
	sys, err := sc.NewSystem()
	if err != nil {
		t.Fatal(err)
	}
	result, err := sim.New(sys).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	result.Metrics["energy"] = -1.5
	return sc, result
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := sim.Config{Steps: 10, Sample: 2, Workers: 1}
	sc, result := runTrinary(t, cfg)

	runID, err := st.Save(sc, cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "trinary" {
		t.Errorf("expected scene 'trinary', got '%s'", meta.Scene)
	}
	if meta.Bodies != 3 || len(meta.Masses) != 3 || meta.Masses[0] != 200 {
		t.Errorf("unexpected bodies in metadata: %+v", meta)
	}
	if meta.Dt != 1.5 || meta.G != 1 {
		t.Errorf("unexpected constants dt=%v g=%v", meta.Dt, meta.G)
	}
	if meta.Metrics["energy"] != -1.5 {
		t.Errorf("expected energy -1.5, got %f", meta.Metrics["energy"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != len(result.Frames) {
		t.Fatalf("expected %d frames, got %d", len(result.Frames), len(frames))
	}
	for i, f := range frames {
		want := result.Frames[i]
		if f.Step != want.Step {
			t.Errorf("frame %d: step %d, want %d", i, f.Step, want.Step)
		}
		for j, b := range f.Bodies {
			if b.Position != want.Bodies[j].Position || b.Velocity != want.Bodies[j].Velocity {
				t.Errorf("frame %d body %d: %v/%v, want %v/%v", i, j,
					b.Position, b.Velocity, want.Bodies[j].Position, want.Bodies[j].Velocity)
			}
			if b.Mass != want.Bodies[j].Mass {
				t.Errorf("frame %d body %d: mass %v, want %v", i, j, b.Mass, want.Bodies[j].Mass)
			}
		}
	}

	loaded, err := st.LoadScene(runID)
	if err != nil {
		t.Fatalf("load scene failed: %v", err)
	}
	if len(loaded.Bodies) != 3 || loaded.Bodies[1].Color != "blue" {
		t.Errorf("scene did not round-trip: %+v", loaded)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg := sim.Config{Steps: 2, Sample: 1}
	sc, result := runTrinary(t, cfg)
	if _, err := st.Save(sc, cfg, result); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save(sc, cfg, result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[1].Timestamp.Before(runs[0].Timestamp) {
		t.Error("runs not sorted oldest first")
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := sim.Config{Steps: 1, Sample: 1}
	sc, result := runTrinary(t, cfg)
	runID, err := st.Save(sc, cfg, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"metadata.json", "states.csv", "scene.yaml"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	data, err := os.ReadFile(st.StatesPath(runID))
	if err != nil {
		t.Fatal(err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	want := "step,time,b0_x,b0_y,b0_vx,b0_vy,b1_x,b1_y,b1_vx,b1_vy,b2_x,b2_y,b2_vx,b2_vy"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	cfg := sim.Config{Steps: 4, Sample: 2}
	sc, result := runTrinary(t, cfg)
	runID, err := st.Save(sc, cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatal(err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Metadata.ID != runID {
		t.Errorf("metadata id = %q, want %q", got.Metadata.ID, runID)
	}
	if len(got.Frames) != 3 {
		t.Errorf("expected 3 frames, got %d", len(got.Frames))
	}
}

func TestFiniteMetrics(t *testing.T) {
	in := map[string]float64{"ok": 1, "nan": math.NaN(), "inf": math.Inf(1)}
	out := finiteMetrics(in)
	if len(out) != 1 || out["ok"] != 1 {
		t.Errorf("unexpected metrics %v", out)
	}
}

func TestRunIDPrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"trinary", "trinary"},
		{"orbits/binary", "orbits_binary"},
		{"../escape", "_escape"},
		{`a\b c`, "a_b_c"},
		{"..", "run"},
		{"", "run"},
		{"v1.2-final", "v1.2-final"},
	}
	for _, tt := range tests {
		if got := runIDPrefix(tt.name); got != tt.want {
			t.Errorf("runIDPrefix(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestStoreSaveUnsafeSceneName(t *testing.T) {
	base := t.TempDir()
	st := New(base)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"orbits/binary", "../escape"} {
		sc, result := runTrinary(t, sim.Config{Steps: 2, Sample: 1, Workers: 1})
		sc.Name = name

		runID, err := st.Save(sc, sim.Config{Steps: 2, Sample: 1, Workers: 1}, result)
		if err != nil {
			t.Fatalf("%q: save failed: %v", name, err)
		}
		if strings.ContainsAny(runID, `/\`) || filepath.Dir(filepath.Join(base, runID)) != base {
			t.Errorf("%q: run id %q is not a single directory under the store", name, runID)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 listed runs, got %d", len(runs))
	}
	names := map[string]bool{runs[0].Scene: true, runs[1].Scene: true}
	if !names["orbits/binary"] || !names["../escape"] {
		t.Errorf("scene names not kept in metadata: %v", names)
	}
	if outside, _ := filepath.Glob(filepath.Join(filepath.Dir(base), "escape_*")); len(outside) != 0 {
		t.Errorf("save wrote outside the store: %v", outside)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.json")
	if err := writeJSON(path, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"a": 1`)) {
		t.Errorf("unexpected file contents %s", data)
	}

	if err := writeJSON(path, math.NaN()); err == nil {
		t.Error("expected encode error for NaN")
	}
	if err := writeJSON(filepath.Join(t.TempDir(), "missing", "m.json"), 1); err == nil {
		t.Error("expected error for missing directory")
	}
}

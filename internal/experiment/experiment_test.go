package experiment

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

func TestExperimentRun(t *testing.T) {
	r := NewRegistry()
	sc, err := r.GetScene("trinary")
	if err != nil {
		t.Fatal(err)
	}

	exp := New(Config{Scene: sc, Sim: sim.Config{Steps: 20, Sample: 5, Workers: 1}})
	if _, err := exp.Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
	if err := exp.Setup(r.DefaultMetrics()); err != nil {
		t.Fatal(err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.StepsTaken != 20 {
		t.Errorf("expected 20 steps, got %d", result.StepsTaken)
	}
	for _, name := range []string{"energy", "energy_drift", "momentum_drift", "max_speed"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
}

func TestExperimentSetupInvalidScene(t *testing.T) {
	sc := scene.GetPreset("binary")
	sc.Bodies[1].Mass = -1

	err := New(Config{Scene: sc}).Setup(nil)
	var be *gravity.BodyError
	if !errors.As(err, &be) || be.Index != 1 {
		t.Fatalf("expected BodyError for body 1, got %v", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetScene("nope"); err == nil {
		t.Error("expected error for unknown scene")
	}

	sc, err := r.Resolve("", "")
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != scene.DefaultPreset {
		t.Errorf("default scene = %q, want %q", sc.Name, scene.DefaultPreset)
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	custom := scene.GetPreset("single")
	custom.Name = "custom"
	if err := scene.Save(path, custom); err != nil {
		t.Fatal(err)
	}
	sc, err = r.Resolve("trinary", path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "custom" || len(sc.Bodies) != 1 {
		t.Errorf("scene file not preferred: %+v", sc)
	}

	registered, err := r.GetScene("custom")
	if err != nil {
		t.Fatalf("loaded scene file not registered: %v", err)
	}
	if len(registered.Bodies) != 1 {
		t.Errorf("registered scene has %d bodies, want 1", len(registered.Bodies))
	}
}

func TestRegistryResolveUnnamedFile(t *testing.T) {
	r := NewRegistry()

	path := filepath.Join(t.TempDir(), "drift.yaml")
	unnamed := scene.GetPreset("single")
	unnamed.Name = ""
	if err := scene.Save(path, unnamed); err != nil {
		t.Fatal(err)
	}

	sc, err := r.Resolve("", path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "drift" {
		t.Errorf("name = %q, want file stem %q", sc.Name, "drift")
	}
	if _, err := r.GetScene("drift"); err != nil {
		t.Errorf("unnamed scene file not registered: %v", err)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	custom := scene.GetPreset("single")
	custom.Name = "mine"
	if err := r.Register(custom); err != nil {
		t.Fatal(err)
	}
	custom.Bodies[0].Mass = 999

	got, err := r.GetScene("mine")
	if err != nil {
		t.Fatal(err)
	}
	if got.Bodies[0].Mass == 999 {
		t.Error("registry shares state with the registered scene")
	}

	found := false
	for _, n := range r.ListScenes() {
		found = found || n == "mine"
	}
	if !found {
		t.Error("registered scene not listed")
	}
}

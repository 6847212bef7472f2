package experiment

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/scene"
)

func TestComparisonUsesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.yaml")
	custom := scene.GetPreset("binary")
	custom.Name = "wide-pair"
	if err := scene.Save(path, custom); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Steps = 20
	cfg.Workers = 3
	cfg.SceneFile = path

	c, err := NewComparison(cfg, []string{"trinary", "wide-pair"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Scenes[1].Name != "wide-pair" || len(c.Scenes[1].Bodies) != 2 {
		t.Errorf("scene file not used: %+v", c.Scenes[1])
	}
	if c.Config.Workers != 3 {
		t.Errorf("workers = %d, want 3", c.Config.Workers)
	}
	if c.Config.Steps != 20 || c.Config.Sample != 20 {
		t.Errorf("unexpected sim config %+v", c.Config)
	}

	results, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.StepsTaken != 20 {
			t.Errorf("result %d: %d steps, want 20", i, r.StepsTaken)
		}
	}
}

func TestComparisonUnknownScene(t *testing.T) {
	if _, err := NewComparison(config.DefaultConfig(), []string{"trinary", "nope"}); err == nil {
		t.Error("expected error for unknown scene")
	}
}

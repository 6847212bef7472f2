package experiment

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

// Registry maps scene names to scenes: the built-in presets plus any
// scene files registered at runtime.
type Registry struct {
	scenes map[string]func() *scene.Scene
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes: make(map[string]func() *scene.Scene),
	}
	for _, name := range scene.ListPresets() {
		r.scenes[name] = func() *scene.Scene { return scene.GetPreset(name) }
	}
	return r
}

// Register adds s under its name, replacing any preset of the same name.
func (r *Registry) Register(s *scene.Scene) error {
	if s.Name == "" {
		return fmt.Errorf("scene has no name")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	c := s.Clone()
	r.scenes[s.Name] = func() *scene.Scene { return c.Clone() }
	return nil
}

func (r *Registry) GetScene(name string) (*scene.Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn(), nil
}

// Resolve loads file when it is set and falls back to the named scene.
// A loaded file is registered, so later lookups can use its name.
func (r *Registry) Resolve(name, file string) (*scene.Scene, error) {
	if file != "" {
		s, err := scene.Load(file)
		if err != nil {
			return nil, fmt.Errorf("load scene %s: %w", file, err)
		}
		if s.Name == "" {
			s.Name = name
		}
		if s.Name == "" {
			s.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}
		if err := r.Register(s); err != nil {
			return nil, err
		}
		return s, nil
	}
	if name == "" {
		name = scene.DefaultPreset
	}
	return r.GetScene(name)
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Defaults()
}

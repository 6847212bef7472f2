package scene

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/gravity"
)

var (
	ErrEmptyScene   = errors.New("scene: no bodies")
	ErrInvalidColor = errors.New("scene: invalid color")
	ErrBadVector    = errors.New("scene: position and velocity need exactly two components")
)

// Scene is an ordered list of body templates. Order is preserved into the
// simulation and fixes the accumulator's enumeration order.
type Scene struct {
	Name   string     `yaml:"name"`
	Bodies []Template `yaml:"bodies"`
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func Save(path string, s *Scene) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scene) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Validate checks every template. Mass problems surface as
// *gravity.BodyError so callers can point at the offending body.
func (s *Scene) Validate() error {
	if len(s.Bodies) == 0 {
		return ErrEmptyScene
	}
	for i, t := range s.Bodies {
		if len(t.Position) != 2 || len(t.Velocity) != 2 {
			return fmt.Errorf("body %d: %w", i, ErrBadVector)
		}
		if _, err := gravity.NewBody(t.Mass, t.Pos(), t.Vel()); err != nil {
			return &gravity.BodyError{Index: i, Mass: t.Mass, Wrapped: err}
		}
		if _, err := t.RGB(); err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
	}
	return nil
}

// Build creates the bodies in template order.
func (s *Scene) Build() ([]gravity.Body, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	bodies := make([]gravity.Body, len(s.Bodies))
	for i, t := range s.Bodies {
		b, err := gravity.NewBody(t.Mass, t.Pos(), t.Vel())
		if err != nil {
			return nil, &gravity.BodyError{Index: i, Mass: t.Mass, Wrapped: err}
		}
		bodies[i] = b
	}
	return bodies, nil
}

func (s *Scene) NewSystem() (*gravity.System, error) {
	bodies, err := s.Build()
	if err != nil {
		return nil, err
	}
	return gravity.NewSystem(bodies)
}

// Clone returns a deep copy.
func (s *Scene) Clone() *Scene {
	c := &Scene{Name: s.Name, Bodies: make([]Template, len(s.Bodies))}
	for i, t := range s.Bodies {
		t.Position = append([]float32(nil), t.Position...)
		t.Velocity = append([]float32(nil), t.Velocity...)
		c.Bodies[i] = t
	}
	return c
}

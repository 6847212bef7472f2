package gravity

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewBody_Mass(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		mass float32
		err  error
	}{
		{"positive", 200, nil},
		{"tiny", 1e-20, nil},
		{"zero", 0, ErrInvalidMass},
		{"negative", -5, ErrInvalidMass},
		{"NaN", nan, ErrInvalidMass},
		{"+Inf", inf, ErrInvalidMass},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBody(tt.mass, mgl32.Vec2{}, mgl32.Vec2{})
			if !errors.Is(err, tt.err) {
				t.Fatalf("NewBody(%v) error = %v, want %v", tt.mass, err, tt.err)
			}
			if err == nil && b.Mass() != tt.mass {
				t.Errorf("Mass() = %v, want %v", b.Mass(), tt.mass)
			}
		})
	}
}

func TestNewBody_Vectors(t *testing.T) {
	nan := float32(math.NaN())

	if _, err := NewBody(1, mgl32.Vec2{nan, 0}, mgl32.Vec2{}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("NaN position: got %v, want ErrInvalidVector", err)
	}
	if _, err := NewBody(1, mgl32.Vec2{}, mgl32.Vec2{0, float32(math.Inf(-1))}); !errors.Is(err, ErrInvalidVector) {
		t.Errorf("Inf velocity: got %v, want ErrInvalidVector", err)
	}
}

func TestNewSystem_RejectsZeroValueBody(t *testing.T) {
	good := mustBody(t, 10, mgl32.Vec2{}, mgl32.Vec2{})

	_, err := NewSystem([]Body{good, {}})
	var be *BodyError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BodyError, got %v", err)
	}
	if be.Index != 1 {
		t.Errorf("BodyError.Index = %d, want 1", be.Index)
	}
	if !errors.Is(err, ErrInvalidMass) {
		t.Errorf("expected ErrInvalidMass in chain, got %v", err)
	}
}

func TestNewSystem_CopiesInput(t *testing.T) {
	bodies := []Body{mustBody(t, 10, mgl32.Vec2{1, 2}, mgl32.Vec2{})}
	s, err := NewSystem(bodies)
	if err != nil {
		t.Fatal(err)
	}
	bodies[0].Position = mgl32.Vec2{99, 99}
	if got := s.Body(0).Position; got != (mgl32.Vec2{1, 2}) {
		t.Errorf("system aliased caller slice: position %v", got)
	}
}

func TestBodyError_Message(t *testing.T) {
	err := &BodyError{Index: 2, Mass: -1, Wrapped: ErrInvalidMass}
	want := "body 2 (mass=-1): gravity: mass must be positive and finite"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func mustBody(t *testing.T, mass float32, pos, vel mgl32.Vec2) Body {
	t.Helper()
	b, err := NewBody(mass, pos, vel)
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return b
}

func mustSystem(t *testing.T, bodies ...Body) *System {
	t.Helper()
	s, err := NewSystem(bodies)
	if err != nil {
		t.Fatalf("NewSystem: %v", err)
	}
	return s
}

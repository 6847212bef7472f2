package scene

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/gravsim/internal/gravity"
)

func TestTemplate_Radius(t *testing.T) {
	tests := []struct {
		tmpl Template
		want float32
	}{
		{Template{Mass: 200, Density: 10}, 20},
		{Template{Mass: 50, Density: 5}, 10},
		{Template{Mass: 40, Density: 0}, 0},
		{Template{Mass: 40, Density: -1}, 0},
	}
	for _, tt := range tests {
		if got := tt.tmpl.Radius(); got != tt.want {
			t.Errorf("Radius(mass=%v, density=%v) = %v, want %v", tt.tmpl.Mass, tt.tmpl.Density, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		wantHex string
		wantErr bool
	}{
		{"yellow", "#ffff00", false},
		{"Blue", "#0000ff", false},
		{"#12ab34", "#12ab34", false},
		{"chartreuse-ish", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		c, err := ParseColor(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if c.Hex() != tt.wantHex {
			t.Errorf("ParseColor(%q) = %s, want %s", tt.in, c.Hex(), tt.wantHex)
		}
	}
}

func TestPalette(t *testing.T) {
	p := Palette(5)
	if len(p) != 5 {
		t.Fatalf("expected 5 colors, got %d", len(p))
	}
	seen := map[string]bool{}
	for _, c := range p {
		if _, err := ParseColor(c); err != nil {
			t.Errorf("palette color %q does not parse: %v", c, err)
		}
		seen[c] = true
	}
	if len(seen) != 5 {
		t.Errorf("palette colors not distinct: %v", p)
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			s := GetPreset(name)
			if s == nil {
				t.Fatal("preset missing")
			}
			if err := s.Validate(); err != nil {
				t.Fatalf("invalid preset: %v", err)
			}
			sys, err := s.NewSystem()
			if err != nil {
				t.Fatal(err)
			}
			if sys.Len() != len(s.Bodies) {
				t.Errorf("system has %d bodies, scene %d", sys.Len(), len(s.Bodies))
			}
		})
	}
}

func TestTrinaryMatchesOriginalScene(t *testing.T) {
	s := GetPreset(DefaultPreset)
	bodies, err := s.Build()
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		mass     float32
		pos, vel mgl32.Vec2
	}{
		{200, mgl32.Vec2{0, 0}, mgl32.Vec2{0, 0}},
		{50, mgl32.Vec2{100, 0}, mgl32.Vec2{0, -1}},
		{50, mgl32.Vec2{-100, 0}, mgl32.Vec2{0, 1}},
	}
	for i, w := range want {
		b := bodies[i]
		if b.Mass() != w.mass || b.Position != w.pos || b.Velocity != w.vel {
			t.Errorf("body %d = (%v, %v, %v), want (%v, %v, %v)", i, b.Mass(), b.Position, b.Velocity, w.mass, w.pos, w.vel)
		}
	}
	if r := s.Bodies[0].Radius(); r != 20 {
		t.Errorf("sun radius = %v, want 20", r)
	}
}

func TestGetPreset_ReturnsCopy(t *testing.T) {
	a := GetPreset("binary")
	a.Bodies[0].Position[0] = 999
	b := GetPreset("binary")
	if b.Bodies[0].Position[0] == 999 {
		t.Error("GetPreset leaked a shared preset")
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		scene Scene
		err   error
	}{
		{"empty", Scene{}, ErrEmptyScene},
		{"zero mass", Scene{Bodies: []Template{{Mass: 0, Color: "red", Position: []float32{0, 0}, Velocity: []float32{0, 0}}}}, gravity.ErrInvalidMass},
		{"negative mass", Scene{Bodies: []Template{{Mass: -3, Color: "red", Position: []float32{0, 0}, Velocity: []float32{0, 0}}}}, gravity.ErrInvalidMass},
		{"short vector", Scene{Bodies: []Template{{Mass: 1, Color: "red", Position: []float32{0}, Velocity: []float32{0, 0}}}}, ErrBadVector},
		{"bad color", Scene{Bodies: []Template{{Mass: 1, Color: "nope", Position: []float32{0, 0}, Velocity: []float32{0, 0}}}}, ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scene.Validate()
			if !errors.Is(err, tt.err) {
				t.Errorf("Validate() = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestBuild_ReportsBodyIndex(t *testing.T) {
	s := GetPreset("trinary")
	s.Bodies[2].Mass = 0

	_, err := s.Build()
	var be *gravity.BodyError
	if !errors.As(err, &be) {
		t.Fatalf("expected *gravity.BodyError, got %v", err)
	}
	if be.Index != 2 {
		t.Errorf("BodyError.Index = %d, want 2", be.Index)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	orig := GetPreset("lagrange")

	if err := Save(path, orig); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Name != orig.Name || len(loaded.Bodies) != len(orig.Bodies) {
		t.Fatalf("loaded %+v, want %+v", loaded, orig)
	}
	for i := range orig.Bodies {
		if loaded.Bodies[i].Pos() != orig.Bodies[i].Pos() || loaded.Bodies[i].Vel() != orig.Bodies[i].Vel() {
			t.Errorf("body %d vectors changed across save/load", i)
		}
	}
}

func TestParse_FlowSyntax(t *testing.T) {
	data := []byte(`
name: pair
bodies:
  - {name: sun, mass: 200, density: 10, color: yellow, position: [0, 0], velocity: [0, 0]}
  - {mass: 50, density: 5, color: "#0000ff", position: [100, 0], velocity: [0, -1]}
`)
	s, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Bodies) != 2 || s.Bodies[1].Pos() != (mgl32.Vec2{100, 0}) {
		t.Errorf("unexpected scene: %+v", s)
	}
}

func TestRing(t *testing.T) {
	s := Ring(65, 1000, 200)
	if len(s.Bodies) != 65 {
		t.Fatalf("expected 65 bodies, got %d", len(s.Bodies))
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("ring scene invalid: %v", err)
	}

	b := s.Bodies[1]
	if r := b.Pos().Len(); r < 199.9 || r > 200.1 {
		t.Errorf("ring radius = %v, want 200", r)
	}
	if d := b.Pos().Dot(b.Vel()); d > 1e-3 || d < -1e-3 {
		t.Errorf("ring velocity not tangential, dot = %v", d)
	}

	if got := len(Ring(0, 1, 1).Bodies); got != 0 {
		t.Errorf("empty ring has %d bodies", got)
	}
}

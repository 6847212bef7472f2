package scene

import (
	"math"
	"sort"
)

// DefaultPreset is the scene used when none is named.
const DefaultPreset = "trinary"

var Presets = map[string]*Scene{
	"trinary": {
		Name: "trinary",
		Bodies: []Template{
			{Name: "sun", Mass: 200, Density: 10, Color: "yellow", Position: []float32{0, 0}, Velocity: []float32{0, 0}},
			{Name: "blue", Mass: 50, Density: 5, Color: "blue", Position: []float32{100, 0}, Velocity: []float32{0, -1}},
			{Name: "red", Mass: 50, Density: 5, Color: "red", Position: []float32{-100, 0}, Velocity: []float32{0, 1}},
		},
	},
	"binary": {
		Name: "binary",
		Bodies: []Template{
			{Name: "a", Mass: 50, Density: 5, Color: "cyan", Position: []float32{50, 0}, Velocity: []float32{0, 0.5}},
			{Name: "b", Mass: 50, Density: 5, Color: "magenta", Position: []float32{-50, 0}, Velocity: []float32{0, -0.5}},
		},
	},
	"single": {
		Name: "single",
		Bodies: []Template{
			{Name: "drifter", Mass: 10, Density: 2, Color: "white", Position: []float32{0, 0}, Velocity: []float32{1, 0.5}},
		},
	},
	"lagrange": lagrange(50, 100),
	"coincident": {
		Name: "coincident",
		Bodies: []Template{
			{Name: "left", Mass: 40, Density: 8, Color: "orange", Position: []float32{0, 0}, Velocity: []float32{0, 0}},
			{Name: "right", Mass: 40, Density: 8, Color: "green", Position: []float32{0, 0}, Velocity: []float32{0, 0}},
			{Name: "moon", Mass: 5, Density: 2, Color: "gray", Position: []float32{120, 0}, Velocity: []float32{0, 1}},
		},
	},
}

// lagrange places three equal masses on an equilateral triangle of
// circumradius r, moving at the speed of the rigidly rotating solution.
func lagrange(mass, r float64) *Scene {
	v := math.Sqrt(mass / (math.Sqrt(3) * r))
	names := []string{"a", "b", "c"}
	colors := Palette(3)
	s := &Scene{Name: "lagrange", Bodies: make([]Template, 3)}
	for i := range s.Bodies {
		sn, cs := math.Sincos(math.Pi/2 + float64(i)*2*math.Pi/3)
		s.Bodies[i] = Template{
			Name:     names[i],
			Mass:     float32(mass),
			Density:  5,
			Color:    colors[i],
			Position: []float32{float32(r * cs), float32(r * sn)},
			Velocity: []float32{float32(-v * sn), float32(v * cs)},
		}
	}
	return s
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Scene {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ring places n-1 light bodies on a circle of radius r around a central
// mass, each on a circular orbit about it. Used for benchmarks and large
// runs; the ring bodies perturb each other slightly.
func Ring(n int, central, r float64) *Scene {
	s := &Scene{Name: "ring", Bodies: make([]Template, 0, n)}
	if n <= 0 {
		return s
	}
	s.Bodies = append(s.Bodies, Template{
		Name: "center", Mass: float32(central), Density: 10, Color: "yellow",
		Position: []float32{0, 0}, Velocity: []float32{0, 0},
	})

	k := n - 1
	colors := Palette(max(k, 1))
	v := math.Sqrt(central / r)
	for i := 0; i < k; i++ {
		sn, cs := math.Sincos(float64(i) * 2 * math.Pi / float64(k))
		s.Bodies = append(s.Bodies, Template{
			Mass:     1,
			Density:  1,
			Color:    colors[i],
			Position: []float32{float32(r * cs), float32(r * sn)},
			Velocity: []float32{float32(-v * sn), float32(v * cs)},
		})
	}
	return s
}

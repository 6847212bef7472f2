package automation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/gravsim/internal/scene"
)

var ErrUnknownParam = errors.New("automation: unknown parameter")

// ApplyParam returns a copy of sc with one parameter set to v.
//
// Per-body parameters are written field:index, with field one of mass, x,
// y, vx or vy. "vscale" multiplies every velocity by v.
func ApplyParam(sc *scene.Scene, param string, v float64) (*scene.Scene, error) {
	out := sc.Clone()
	if param == "vscale" {
		for i := range out.Bodies {
			for k := range out.Bodies[i].Velocity {
				out.Bodies[i].Velocity[k] *= float32(v)
			}
		}
		return out, nil
	}

	field, index, ok := strings.Cut(param, ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, param)
	}
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(out.Bodies) {
		return nil, fmt.Errorf("%w: %q has no body %s", ErrUnknownParam, param, index)
	}

	t := &out.Bodies[i]
	switch field {
	case "mass":
		t.Mass = float32(v)
		return out, nil
	case "x", "y":
		if len(t.Position) != 2 {
			return nil, fmt.Errorf("body %d: %w", i, scene.ErrBadVector)
		}
		t.Position[axis(field)] = float32(v)
		return out, nil
	case "vx", "vy":
		if len(t.Velocity) != 2 {
			return nil, fmt.Errorf("body %d: %w", i, scene.ErrBadVector)
		}
		t.Velocity[axis(field[1:])] = float32(v)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownParam, param)
}

// ApplyParams applies every entry of params in sorted key order.
func ApplyParams(sc *scene.Scene, params map[string]float64) (*scene.Scene, error) {
	out := sc
	for _, name := range sortedKeys(params) {
		var err error
		if out, err = ApplyParam(out, name, params[name]); err != nil {
			return nil, err
		}
	}
	if out == sc {
		out = sc.Clone()
	}
	return out, nil
}

func axis(name string) int {
	if name == "y" {
		return 1
	}
	return 0
}

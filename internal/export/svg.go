package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/gravsim/internal/scene"
	"github.com/san-kum/gravsim/internal/sim"
)

const background = "#0a0a0a"

// Style is the per-body drawing information taken from a scene.
type Style struct {
	Color  string
	Radius float32
}

// StylesFromScene resolves every template color to hex. Unknown colors
// fall back to white.
func StylesFromScene(sc *scene.Scene) []Style {
	styles := make([]Style, len(sc.Bodies))
	for i, t := range sc.Bodies {
		styles[i] = Style{Color: "#ffffff", Radius: t.Radius()}
		if c, err := t.RGB(); err == nil {
			styles[i].Color = c.Hex()
		}
	}
	return styles
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func frameBounds(frames []sim.Frame) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	ok := false
	for _, f := range frames {
		for _, body := range f.Bodies {
			if !finite(body.Position) {
				continue
			}
			x, y := float64(body.Position[0]), float64(body.Position[1])
			b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
			b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
			ok = true
		}
	}
	return b, ok
}

// TrajectoriesToSVG draws one path per body through all frames, plus a
// disc at each body's final position. World y points up.
func TrajectoriesToSVG(w io.Writer, frames []sim.Frame, styles []Style, width, height int) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to draw")
	}
	b, ok := frameBounds(frames)
	if !ok {
		return fmt.Errorf("no finite positions to draw")
	}

	// Add padding, keep aspect ratio
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	span := math.Max(math.Max(rangeX, rangeY), 1) * 1.2
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	scale := math.Min(float64(width), float64(height)) / span

	toScreen := func(x, y float64) (float64, float64) {
		return float64(width)/2 + (x-cx)*scale, float64(height)/2 - (y-cy)*scale
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	n := len(frames[0].Bodies)
	for i := 0; i < n; i++ {
		st := styleAt(styles, i)
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1.5" d="`, st.Color))
		move := true
		for _, f := range frames {
			if i >= len(f.Bodies) || !finite(f.Bodies[i].Position) {
				move = true
				continue
			}
			x, y := toScreen(float64(f.Bodies[i].Position[0]), float64(f.Bodies[i].Position[1]))
			if move {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
				move = false
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	last := frames[len(frames)-1]
	for i, body := range last.Bodies {
		if !finite(body.Position) {
			continue
		}
		st := styleAt(styles, i)
		x, y := toScreen(float64(body.Position[0]), float64(body.Position[1]))
		r := math.Max(float64(st.Radius)*scale, 2)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, x, y, r, st.Color))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func styleAt(styles []Style, i int) Style {
	if i < len(styles) {
		return styles[i]
	}
	return Style{Color: "#ffffff"}
}

func finite(v mgl32.Vec2) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/gravsim/internal/sim"
)

type PortraitKind int

const (
	// PortraitOrbit plots y against x.
	PortraitOrbit PortraitKind = iota
	// PortraitPhaseX plots vx against x.
	PortraitPhaseX
	// PortraitPhaseY plots vy against y.
	PortraitPhaseY
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D plot of one body.
type PhasePortrait2D struct {
	Body   int
	Kind   PortraitKind
	Points []Point
}

// Portrait extracts a trace of body from recorded frames.
func Portrait(frames []sim.Frame, body int, kind PortraitKind) (*PhasePortrait2D, error) {
	p := &PhasePortrait2D{Body: body, Kind: kind, Points: make([]Point, 0, len(frames))}
	for _, f := range frames {
		if body < 0 || body >= len(f.Bodies) {
			return nil, fmt.Errorf("frame at step %d has no body %d", f.Step, body)
		}
		b := f.Bodies[body]
		var pt Point
		switch kind {
		case PortraitOrbit:
			pt = Point{float64(b.Position[0]), float64(b.Position[1])}
		case PortraitPhaseX:
			pt = Point{float64(b.Position[0]), float64(b.Velocity[0])}
		case PortraitPhaseY:
			pt = Point{float64(b.Position[1]), float64(b.Velocity[1])}
		default:
			return nil, fmt.Errorf("unknown portrait kind %d", kind)
		}
		p.Points = append(p.Points, pt)
	}
	return p, nil
}

// Poincare records body's (x, vx) each time its y coordinate crosses
// zero going up, linearly interpolated between the bracketing frames.
func Poincare(frames []sim.Frame, body int) (*PhasePortrait2D, error) {
	section := &PhasePortrait2D{Body: body, Kind: PortraitPhaseX}
	for i := 1; i < len(frames); i++ {
		prev, curr := frames[i-1].Bodies, frames[i].Bodies
		if body < 0 || body >= len(prev) || body >= len(curr) {
			return nil, fmt.Errorf("frame at step %d has no body %d", frames[i].Step, body)
		}
		a, b := prev[body], curr[body]
		y0, y1 := float64(a.Position[1]), float64(b.Position[1])
		if !(y0 < 0 && y1 >= 0) {
			continue
		}
		frac := -y0 / (y1 - y0)
		section.Points = append(section.Points, Point{
			X: lerp(float64(a.Position[0]), float64(b.Position[0]), frac),
			Y: lerp(float64(a.Velocity[0]), float64(b.Velocity[0]), frac),
		})
	}
	return section, nil
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	toCol := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	toRow := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && maxX >= 0 {
		col := toCol(0)
		for row := 0; row < height; row++ {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := toRow(0)
		for col := 0; col < width; col++ {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	for _, p := range portrait.Points {
		row, col := toRow(p.Y), toCol(p.X)
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

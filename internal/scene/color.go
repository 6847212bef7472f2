package scene

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

var namedColors = map[string]string{
	"yellow":  "#ffff00",
	"blue":    "#0000ff",
	"red":     "#ff0000",
	"green":   "#00ff00",
	"white":   "#ffffff",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"orange":  "#ffa500",
	"gray":    "#808080",
}

// ParseColor accepts a #rrggbb hex string or one of the named colors.
func ParseColor(s string) (colorful.Color, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[key]; ok {
		key = hex
	}
	c, err := colorful.Hex(key)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// Palette returns n visually distinct colors, used for generated scenes.
func Palette(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = colorful.Hcl(float64(i)*360/float64(n), 0.6, 0.75).Clamped().Hex()
	}
	return out
}

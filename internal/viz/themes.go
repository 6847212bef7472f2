package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the viewer chrome. Body colors always come from the scene.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:      "deepspace",
		Primary:   lipgloss.Color("#ffd166"),
		Secondary: lipgloss.Color("#4cc9f0"),
		Text:      lipgloss.Color("#e8e8f0"),
		Muted:     lipgloss.Color("#6c6c8a"),
		Error:     lipgloss.Color("#ff4d6d"),
	}

	ThemeNebula = Theme{
		Name:      "nebula",
		Primary:   lipgloss.Color("#f72585"),
		Secondary: lipgloss.Color("#b5179e"),
		Text:      lipgloss.Color("#fde2f3"),
		Muted:     lipgloss.Color("#7a5c8a"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Error:     lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemeDeepSpace

	Themes = []Theme{ThemeDeepSpace, ThemeNebula, ThemeMono}
)

// GetTheme returns a theme by name, or the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDeepSpace
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

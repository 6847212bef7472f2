package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/scene"
)

var sceneInfo = map[string]string{
	"trinary":    "sun with two planets",
	"binary":     "equal mass pair",
	"single":     "free drifting body",
	"lagrange":   "rotating triangle",
	"coincident": "overlapping pair",
}

const (
	stateMenu = iota
	stateSim
)

var (
	pickTitle    = lipgloss.Color("#ffd166")
	pickTitleEnd = lipgloss.Color("#4cc9f0")
	pickCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickActive   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	pickErr      = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4d6d"))
)

// Picker lists the preset scenes and opens the live viewer on the chosen
// one. Esc in the viewer returns to the list.
type Picker struct {
	state, cursor int
	scenes        []string
	cfg           *config.Config
	live          Model
	size          *tea.WindowSizeMsg
	err           error
}

// NewPicker starts with the cursor on cfg.Scene when it is a preset.
func NewPicker(cfg *config.Config) *Picker {
	p := &Picker{scenes: scene.ListPresets(), cfg: cfg}
	for i, name := range p.scenes {
		if name == cfg.Scene {
			p.cursor = i
		}
	}
	return p
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		p.size = &size
	}
	if p.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.scenes)-1 {
			p.cursor++
		}
	case "enter", " ":
		return p.start()
	}
	return p, nil
}

func (p Picker) start() (tea.Model, tea.Cmd) {
	live, err := NewModel(scene.GetPreset(p.scenes[p.cursor]), p.cfg)
	if err != nil {
		p.err = err
		return p, nil
	}
	if p.size != nil {
		live.resize(p.size.Width, p.size.Height)
	}
	p.live, p.state, p.err = live, stateSim, nil
	return p, p.live.Init()
}

func (p Picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("GRAVSIM", pickTitle, pickTitleEnd) + "\n")
	b.WriteString("    " + pickIdle.Render("n-body gravity") + "\n")
	b.WriteString("    " + pickIdle.Render("─────────────────────────") + "\n\n")
	for i, name := range p.scenes {
		desc := sceneInfo[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickActive.Render(fmt.Sprintf("%-12s", name)), pickDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", pickIdle.Render(fmt.Sprintf("%-12s", name)), pickIdle.Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + pickErr.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickIdle.Render(" navigate  ") +
		pickKey.Render("enter") + pickIdle.Render(" select  ") +
		pickKey.Render("q") + pickIdle.Render(" quit") + "\n")
	return b.String()
}

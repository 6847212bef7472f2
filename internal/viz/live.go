package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/guptarohit/asciigraph"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/gravsim/internal/camera"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/scene"
)

const (
	width           = 80
	height          = 24
	statsWidth      = 45
	historyCapacity = 600

	// canvas origin inside the terminal, from canvasStyle padding
	canvasOffsetX = 2
	canvasOffsetY = 1

	panStep = 8

	maxDiscRadius = 32
)

// Snapshot stores the system after a frame for replay.
type Snapshot struct {
	Step   int
	Bodies []gravity.BodyState
	Energy float64
}

type TickMsg time.Time

// Model is the terminal live viewer. Physics advances StepsPerFrame steps
// per tick; the camera is UI state only.
type Model struct {
	scene         *scene.Scene
	sys           *gravity.System
	cam           *camera.Camera
	view          config.ViewConfig
	initialScale  float32
	workers       int
	canvas        *Canvas
	colors        []string
	trailColors   []string
	radii         []float32
	trails        [][]mgl32.Vec2
	running       bool
	energyHistory []float64
	history       []Snapshot
	playHead      int
	dragging      bool
	lastX, lastY  int
	showHelp      bool
	err           error
}

// NewModel builds a viewer for sc using the view and camera settings of cfg.
func NewModel(sc *scene.Scene, cfg *config.Config) (Model, error) {
	sys, err := sc.NewSystem()
	if err != nil {
		return Model{}, err
	}
	sys.SetWorkers(cfg.Workers)

	m := Model{
		scene:         sc,
		sys:           sys,
		cam:           camera.New(cfg.Camera.InitialScale, cfg.Camera.MinScale, cfg.Camera.MaxScale, cfg.Camera.ZoomSensitivity),
		view:          cfg.View,
		initialScale:  cfg.Camera.InitialScale,
		workers:       cfg.Workers,
		canvas:        NewCanvas(width, height),
		colors:        make([]string, len(sc.Bodies)),
		trailColors:   make([]string, len(sc.Bodies)),
		radii:         make([]float32, len(sc.Bodies)),
		trails:        make([][]mgl32.Vec2, len(sc.Bodies)),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		history:       make([]Snapshot, 0, historyCapacity),
		playHead:      -1,
	}
	black := colorful.Color{}
	for i, t := range sc.Bodies {
		c, err := t.RGB()
		if err != nil {
			return Model{}, fmt.Errorf("body %d: %w", i, err)
		}
		m.colors[i] = c.Hex()
		m.trailColors[i] = c.BlendLab(black, 0.55).Clamped().Hex()
		m.radii[i] = t.Radius()
	}
	m.record()
	return m, nil
}

func (m Model) tick() tea.Cmd {
	fps := m.view.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case ".":
			if !m.running && m.playHead == -1 {
				m.advance(1)
			}
		case "r":
			m.reset()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "+", "=":
			m.cam.Zoom(1)
		case "-", "_":
			m.cam.Zoom(-1)
		case "left", "h":
			m.cam.Pan(panStep, 0)
		case "right", "l":
			m.cam.Pan(-panStep, 0)
		case "up", "k":
			m.cam.Pan(0, panStep)
		case "down", "j":
			m.cam.Pan(0, -panStep)
		case "c":
			if com, err := m.sys.CenterOfMass(); err == nil {
				m.cam.Center = com
			}
		case "0":
			m.cam.Reset(m.initialScale)
		case "x":
			m.view.Trails = !m.view.Trails
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.advance(m.view.StepsPerFrame)
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

// handleMouse pans on left drag and zooms about the cursor on wheel.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	w, h := m.canvas.PixelSize()
	sx := float32((msg.X-canvasOffsetX)*2 + 1)
	sy := float32((msg.Y-canvasOffsetY)*4 + 2)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.cam.ZoomAt(1, sx, sy, float32(w), float32(h))
	case msg.Button == tea.MouseButtonWheelDown:
		m.cam.ZoomAt(-1, sx, sy, float32(w), float32(h))
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.lastX, m.lastY = msg.X, msg.Y
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.cam.Pan(float32((msg.X-m.lastX)*2), float32((msg.Y-m.lastY)*4))
		m.lastX, m.lastY = msg.X, msg.Y
	case msg.Action == tea.MouseActionRelease:
		m.dragging = false
	}
}

func (m *Model) resize(termW, termH int) {
	w := max(termW-statsWidth-2*canvasOffsetX-2, 20)
	h := max(termH-2*canvasOffsetY-1, 8)
	m.canvas = NewCanvas(w, h)
}

// advance runs n physics steps and records the result. A non-finite
// state pauses the viewer and is reported in the status line.
func (m *Model) advance(n int) {
	if m.err != nil {
		return
	}
	for i := 0; i < n; i++ {
		if err := m.sys.Step(); err != nil {
			m.fail(err)
			return
		}
		if err := m.sys.Validate(); err != nil {
			m.fail(err)
			return
		}
	}
	m.record()
}

func (m *Model) fail(err error) {
	m.err = err
	m.running = false
}

func (m *Model) record() {
	if m.view.TrailLength > 0 {
		for i := 0; i < m.sys.Len(); i++ {
			m.trails[i] = append(m.trails[i], m.sys.Body(i).Position)
			if len(m.trails[i]) > m.view.TrailLength {
				m.trails[i] = m.trails[i][1:]
			}
		}
	}

	energy := m.sys.TotalEnergy()
	m.energyHistory = append(m.energyHistory, energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}

	m.history = append(m.history, Snapshot{Step: m.sys.StepCount(), Bodies: m.sys.States(), Energy: energy})
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rebuilds the system from the scene and restores the camera.
func (m *Model) reset() {
	sys, err := m.scene.NewSystem()
	if err != nil {
		m.fail(err)
		return
	}
	sys.SetWorkers(m.workers)
	m.sys = sys
	m.err = nil
	m.cam.Reset(m.initialScale)
	for i := range m.trails {
		m.trails[i] = m.trails[i][:0]
	}
	m.energyHistory = m.energyHistory[:0]
	m.history = m.history[:0]
	m.playHead = -1
	m.record()
}

// displayed returns the body states on screen, from history while
// replaying.
func (m *Model) displayed() (int, []gravity.BodyState) {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		snap := m.history[m.playHead]
		return snap.Step, snap.Bodies
	}
	return m.sys.StepCount(), m.sys.States()
}

func (m *Model) project(p mgl32.Vec2) (int, int) {
	w, h := m.canvas.PixelSize()
	sx, sy := m.cam.WorldToScreen(p, float32(w), float32(h))
	return int(math.Floor(float64(sx))), int(math.Floor(float64(sy)))
}

func (m *Model) draw() {
	m.canvas.Clear()
	_, bodies := m.displayed()

	if m.view.Trails && m.playHead == -1 {
		for i, trail := range m.trails {
			for _, p := range trail {
				x, y := m.project(p)
				m.canvas.SetColor(x, y, m.trailColors[i])
			}
		}
	}

	for i, b := range bodies {
		x, y := m.project(b.Position)
		r := min(m.radii[i]/m.cam.Scale, maxDiscRadius)
		m.canvas.Disc(x, y, int(r), m.colors[i])
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	theme := CurrentTheme
	header := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).MarginBottom(1)
	label := MetricLabel.Foreground(theme.Muted).Width(12)
	value := MetricValue.Foreground(theme.Text)

	step, bodies := m.displayed()
	status := StatusRunning.Render("RUNNING")
	switch {
	case m.err != nil:
		status = lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("DIVERGED: " + m.err.Error())
	case m.playHead != -1:
		status = StatusPaused.Render(fmt.Sprintf("REPLAY (%d steps back)", m.sys.StepCount()-step))
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}

	var s strings.Builder
	s.WriteString(header.Render(strings.ToUpper(m.scene.Name)) + "\n")
	s.WriteString(status + "\n\n")
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	px, py := m.sys.Momentum()
	rows := [][2]string{
		{"Step", fmt.Sprintf("%d", step)},
		{"Time", fmt.Sprintf("%.1f", float64(step)*float64(gravity.DT))},
		{"Energy", fmt.Sprintf("%.4f", m.sys.TotalEnergy())},
		{"Momentum", fmt.Sprintf("%.2e", math.Hypot(px, py))},
		{"Scale", fmt.Sprintf("%.1f", m.cam.Scale)},
		{"Center", fmt.Sprintf("(%.0f, %.0f)", m.cam.Center[0], m.cam.Center[1])},
	}
	for _, r := range rows {
		s.WriteString(label.Render(r[0]) + value.Render(r[1]) + "\n")
	}

	s.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Secondary).Render("BODIES") + "\n")
	for i, b := range bodies {
		name := m.scene.Bodies[i].Name
		if name == "" {
			name = fmt.Sprintf("body %d", i)
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors[i])).Render("●")
		s.WriteString(fmt.Sprintf("%s %-8s %s\n", dot, name,
			Subtle.Render(fmt.Sprintf("|v|=%.2f", b.Velocity.Len()))))
	}
	s.WriteString("\n" + Separator(statsWidth-6) + "\n")
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nDrag:Pan Wheel:Zoom ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.Render())
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  .        - Single step when paused  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  Arrows   - Pan camera               ║
║  +/-      - Zoom in/out              ║
║  C        - Center on mass center    ║
║  0        - Reset camera             ║
║  X        - Toggle trails            ║
║  [ ]      - Rewind/forward history   ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

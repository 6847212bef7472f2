package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/scene"
)

func newTestModel(t *testing.T, name string) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.View.StepsPerFrame = 3
	m, err := NewModel(scene.GetPreset(name), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t, "trinary")

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.sys.StepCount() != 3 {
		t.Errorf("expected 3 steps per frame, got %d", m.sys.StepCount())
	}
	if len(m.history) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(m.history))
	}
}

func TestModelPause(t *testing.T) {
	m := newTestModel(t, "trinary")
	m = update(t, m, key(" "), TickMsg(time.Now()), TickMsg(time.Now()))
	if m.sys.StepCount() != 0 {
		t.Errorf("paused model advanced %d steps", m.sys.StepCount())
	}

	m = update(t, m, key("."))
	if m.sys.StepCount() != 1 {
		t.Errorf("single step advanced %d steps", m.sys.StepCount())
	}
}

func TestModelKeyZoomAndPan(t *testing.T) {
	m := newTestModel(t, "trinary")

	m = update(t, m, key("+"))
	if !near32(m.cam.Scale, 1.9) {
		t.Errorf("scale after zoom in = %v, want 1.9", m.cam.Scale)
	}
	m = update(t, m, key("-"), key("-"))
	if !near32(m.cam.Scale, 2.1) {
		t.Errorf("scale after zoom out = %v, want 2.1", m.cam.Scale)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.cam.Center[0] >= 0 {
		t.Errorf("left should move the view left, center %v", m.cam.Center)
	}

	m = update(t, m, key("0"))
	if m.cam.Scale != 2 || m.cam.Center[0] != 0 {
		t.Errorf("camera not reset: %+v", m.cam)
	}
}

func TestModelMouseDragPans(t *testing.T) {
	m := newTestModel(t, "trinary")

	m = update(t, m,
		tea.MouseMsg{X: 10, Y: 10, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		tea.MouseMsg{X: 15, Y: 10, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion},
	)
	if !near32(m.cam.Center[0], -20) || m.cam.Center[1] != 0 {
		t.Errorf("center after drag = %v, want (-20, 0)", m.cam.Center)
	}

	m = update(t, m,
		tea.MouseMsg{X: 15, Y: 10, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease},
		tea.MouseMsg{X: 30, Y: 12, Button: tea.MouseButtonNone, Action: tea.MouseActionMotion},
	)
	if !near32(m.cam.Center[0], -20) {
		t.Errorf("motion after release should not pan, center %v", m.cam.Center)
	}
}

func TestModelWheelZoomKeepsCursorPoint(t *testing.T) {
	m := newTestModel(t, "trinary")
	w, h := m.canvas.PixelSize()
	sx, sy := float32((30-canvasOffsetX)*2+1), float32((5-canvasOffsetY)*4+2)
	before := m.cam.ScreenToWorld(sx, sy, float32(w), float32(h))

	m = update(t, m, tea.MouseMsg{X: 30, Y: 5, Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	if !near32(m.cam.Scale, 2.1) {
		t.Fatalf("scale after wheel down = %v, want 2.1", m.cam.Scale)
	}
	after := m.cam.ScreenToWorld(sx, sy, float32(w), float32(h))
	if !near32(before[0], after[0]) || !near32(before[1], after[1]) {
		t.Errorf("point under cursor moved from %v to %v", before, after)
	}
}

func TestModelZoomLimits(t *testing.T) {
	m := newTestModel(t, "trinary")
	for i := 0; i < 50; i++ {
		m = update(t, m, key("+"))
	}
	if m.cam.Scale < m.cam.MinScale {
		t.Errorf("scale %v below min %v", m.cam.Scale, m.cam.MinScale)
	}
}

func TestModelResetAndScrub(t *testing.T) {
	m := newTestModel(t, "trinary")
	m = update(t, m, TickMsg(time.Now()), TickMsg(time.Now()))

	m = update(t, m, key("["))
	if m.running {
		t.Error("scrubbing should pause")
	}
	step, _ := m.displayed()
	if step != 3 {
		t.Errorf("replay shows step %d, want 3", step)
	}
	m = update(t, m, key("]"), key("]"))
	if m.playHead != -1 {
		t.Errorf("scrubbing past the end should return to live, playHead %d", m.playHead)
	}

	m = update(t, m, key("r"))
	if m.sys.StepCount() != 0 || len(m.history) != 1 {
		t.Errorf("reset left step %d and %d snapshots", m.sys.StepCount(), len(m.history))
	}
}

func TestModelDivergence(t *testing.T) {
	sc := &scene.Scene{
		Name: "blowup",
		Bodies: []scene.Template{
			{Mass: 3e38, Density: 1, Color: "white", Position: []float32{0, 0}, Velocity: []float32{0, 0}},
			{Mass: 3e38, Density: 1, Color: "red", Position: []float32{1e-3, 0}, Velocity: []float32{0, 0}},
		},
	}
	m, err := NewModel(sc, config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	m = update(t, m, TickMsg(time.Now()))
	if m.err == nil || m.running {
		t.Fatal("expected divergence to stop the viewer")
	}
	if !strings.Contains(m.View(), "DIVERGED") {
		t.Error("view should report divergence")
	}
}

func TestModelResizeAndView(t *testing.T) {
	m := newTestModel(t, "trinary")
	m = update(t, m, tea.WindowSizeMsg{Width: 150, Height: 40})
	if m.canvas.Width != 99 || m.canvas.Height != 37 {
		t.Errorf("canvas = %dx%d, want 99x37", m.canvas.Width, m.canvas.Height)
	}

	view := m.View()
	for _, want := range []string{"TRINARY", "sun", "blue", "red", "Energy", "◆"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPicker(t *testing.T) {
	cfg := config.DefaultConfig()
	p := NewPicker(cfg)
	if p.scenes[p.cursor] != "trinary" {
		t.Errorf("cursor on %q, want trinary", p.scenes[p.cursor])
	}

	next, _ := p.Update(key("k"))
	pk := next.(Picker)
	if pk.cursor != p.cursor-1 {
		t.Errorf("cursor = %d, want %d", pk.cursor, p.cursor-1)
	}

	next, cmd := pk.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pk = next.(Picker)
	if pk.state != stateSim || cmd == nil {
		t.Fatal("enter should open the live view")
	}

	next, _ = pk.Update(tea.KeyMsg{Type: tea.KeyEsc})
	pk = next.(Picker)
	if pk.state != stateMenu {
		t.Error("esc should return to the menu")
	}
	if !strings.Contains(pk.View(), "trinary") {
		t.Error("menu should list presets")
	}
}

func near32(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-3
}

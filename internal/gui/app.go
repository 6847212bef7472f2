package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/san-kum/gravsim/internal/camera"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/gravity"
	"github.com/san-kum/gravsim/internal/scene"
)

var (
	ColBg      = rl.Black
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColError   = rl.NewColor(255, 77, 109, 255)
)

const telemetryCapacity = 400

// App is the windowed viewer. It owns its system and steps it from the
// frame loop.
type App struct {
	Scene        *scene.Scene
	Sys          *gravity.System
	Cam          *camera.Camera
	View         config.ViewConfig
	Workers      int
	InitialScale float32
	Colors       []rl.Color
	TrailColors  []rl.Color
	Radii        []float32
	Trails       [][]mgl32.Vec2
	Telemetry    []float64
	Running      bool
	Err          error
}

func NewApp(sc *scene.Scene, cfg *config.Config) (*App, error) {
	sys, err := sc.NewSystem()
	if err != nil {
		return nil, err
	}
	sys.SetWorkers(cfg.Workers)

	a := &App{
		Scene:        sc,
		Sys:          sys,
		Cam:          camera.New(cfg.Camera.InitialScale, cfg.Camera.MinScale, cfg.Camera.MaxScale, cfg.Camera.ZoomSensitivity),
		View:         cfg.View,
		Workers:      cfg.Workers,
		InitialScale: cfg.Camera.InitialScale,
		Colors:       make([]rl.Color, len(sc.Bodies)),
		TrailColors:  make([]rl.Color, len(sc.Bodies)),
		Radii:        make([]float32, len(sc.Bodies)),
		Trails:       make([][]mgl32.Vec2, len(sc.Bodies)),
		Telemetry:    make([]float64, 0, telemetryCapacity),
		Running:      true,
	}
	for i, t := range sc.Bodies {
		c, err := t.RGB()
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		r, g, b := c.RGB255()
		a.Colors[i] = rl.NewColor(r, g, b, 255)
		a.TrailColors[i] = rl.NewColor(r, g, b, 90)
		a.Radii[i] = t.Radius()
	}
	return a, nil
}

// Run opens a window for sc and blocks until it is closed.
func Run(sc *scene.Scene, cfg *config.Config) error {
	app, err := NewApp(sc, cfg)
	if err != nil {
		return err
	}

	rl.InitWindow(int32(cfg.View.WindowWidth), int32(cfg.View.WindowHeight), "gravsim :: "+sc.Name)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.View.FPS))

	app.RunLoop()
	return app.Err
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	a.handleInput()
	if !a.Running || a.Err != nil {
		return
	}

	for i := 0; i < a.View.StepsPerFrame; i++ {
		if err := a.Sys.Step(); err != nil {
			a.fail(err)
			return
		}
		if err := a.Sys.Validate(); err != nil {
			a.fail(err)
			return
		}
	}
	a.record()
}

func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		a.View.Trails = !a.View.Trails
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if com, err := a.Sys.CenterOfMass(); err == nil {
			a.Cam.Center = com
		}
	}

	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		a.Cam.ZoomAt(wheel, mouse.X, mouse.Y, w, h)
	}
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		d := rl.GetMouseDelta()
		a.Cam.Pan(d.X, d.Y)
	}
}

func (a *App) fail(err error) {
	a.Err = err
	a.Running = false
}

func (a *App) record() {
	if a.View.TrailLength > 0 {
		for i := 0; i < a.Sys.Len(); i++ {
			a.Trails[i] = append(a.Trails[i], a.Sys.Body(i).Position)
			if len(a.Trails[i]) > a.View.TrailLength {
				a.Trails[i] = a.Trails[i][1:]
			}
		}
	}
	a.Telemetry = append(a.Telemetry, a.Sys.TotalEnergy())
	if len(a.Telemetry) > telemetryCapacity {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) reset() {
	sys, err := a.Scene.NewSystem()
	if err != nil {
		a.fail(err)
		return
	}
	sys.SetWorkers(a.Workers)
	a.Sys = sys
	a.Err = nil
	a.Running = true
	a.Cam.Reset(a.InitialScale)
	for i := range a.Trails {
		a.Trails[i] = a.Trails[i][:0]
	}
	a.Telemetry = a.Telemetry[:0]
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	rl.BeginMode2D(a.camera2D())
	if a.View.Trails {
		a.drawTrails()
	}
	a.drawBodies()
	rl.EndMode2D()

	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	rl.DrawText("gravsim", 30, 30, 24, ColSelect)
	rl.DrawText(":: "+a.Scene.Name, 140, 34, 16, ColText)

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	switch {
	case a.Err != nil:
		status, col = "DIVERGED", ColError
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	rl.DrawText(status, w-130, 30, 16, col)
	rl.DrawText(fmt.Sprintf("step %d  scale %.1f", a.Sys.StepCount(), a.Cam.Scale), w-260, 54, 14, ColText)

	rl.DrawText("[SPACE] PAUSE  [R] RESET  [T] TRAILS  [C] CENTER  [DRAG] PAN  [WHEEL] ZOOM", w-700, h-40, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, h-40, 14, ColTextDim)
}

// DrawTelemetry plots recent total energy as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := float32(30), float32(rl.GetScreenHeight()-120)
	width, height := float32(400), float32(60)

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := rectX + float32(i)/float32(len(a.Telemetry))*width
		norm := (val - minVal) / (maxVal - minVal)
		points[i] = rl.NewVector2(px, rectY+height-float32(norm)*height)
	}

	rl.DrawLineStrip(points, ColAccent)
	rl.DrawText(fmt.Sprintf("E: %.4e", a.Telemetry[len(a.Telemetry)-1]), int32(rectX+width+10), int32(rectY+height-10), 14, ColText)
}

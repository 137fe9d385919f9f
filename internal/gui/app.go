// Package gui renders a simulation in a raylib window.
package gui

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/experiment"
	"github.com/san-kum/solsim/internal/metrics"
	"github.com/san-kum/solsim/internal/sim"
)

var (
	ColBg      = rl.NewColor(5, 5, 12, 255)
	ColAccent  = rl.NewColor(180, 180, 200, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 150, 255)
	ColTextDim = rl.NewColor(60, 60, 70, 255)
	ColMarker  = rl.NewColor(255, 102, 204, 255)
)

const (
	screenW      = 1280
	screenH      = 720
	maxTelemetry = 400
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

type App struct {
	Sim    *sim.Simulation
	Preset string
	drift  *metrics.EnergyDrift

	Camera     rl.Camera3D
	orbit      orbit
	InMenu     bool
	Presets    []string
	Selected   int
	Telemetry  []float64
	ShowLabels bool
	Font       rl.Font
	Stars      []rl.Vector3
	models     map[string]rl.Model
	err        error
}

func initWindow() {
	rl.InitWindow(screenW, screenH, "solsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

func newApp() *App {
	a := &App{
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 30, 40),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
		orbit:      newOrbit(),
		Presets:    config.ListPresets(),
		Telemetry:  make([]float64, 0, maxTelemetry),
		ShowLabels: true,
		Font:       loadFont(),
		Stars:      starfield(2000, 42),
		models:     make(map[string]rl.Model),
	}
	return a
}

// RunInteractive opens the window on the preset menu and blocks until it
// is closed.
func RunInteractive() {
	initWindow()
	defer rl.CloseWindow()
	a := newApp()
	a.InMenu = true
	a.RunLoop()
}

// Run opens the window on an existing simulation.
func Run(s *sim.Simulation, title string) {
	initWindow()
	defer rl.CloseWindow()
	a := newApp()
	a.attach(s, title)
	a.RunLoop()
}

func (a *App) RunLoop() {
	defer a.unloadModels()
	for !rl.WindowShouldClose() {
		if quit := a.Update(); quit {
			return
		}
		a.Draw()
	}
}

func (a *App) attach(s *sim.Simulation, title string) {
	a.Sim, a.Preset = s, title
	a.drift = metrics.NewEnergyDrift(s.Gravity())
	s.AddMetric(a.drift)
	a.Telemetry = a.Telemetry[:0]
	a.orbit = newOrbit()
	a.InMenu = false
	a.err = nil
	a.loadModels()
}

func (a *App) loadPreset(name string) {
	cfg := config.GetPreset(name)
	s, err := experiment.Build(cfg)
	if err != nil {
		a.err = err
		log.Error("preset failed", "preset", name, "err", err)
		return
	}
	a.attach(s, name)
}

// Update handles input and ticks the simulation. It returns true to quit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	if a.InMenu {
		a.updateMenu()
		return false
	}

	dt := float64(rl.GetFrameTime())
	a.handleKeys()
	if err := a.Sim.Tick(dt); err != nil {
		a.err = err
		a.Sim.Clock().Pause()
		log.Warn("simulation paused", "err", err)
	}
	if !a.Sim.Clock().Paused() {
		a.Telemetry = append(a.Telemetry, a.drift.Current())
		if len(a.Telemetry) > maxTelemetry {
			a.Telemetry = a.Telemetry[1:]
		}
	}

	target := mgl64.Vec3{}
	if b, ok := a.Sim.Registry().Focused(); ok {
		target = b.Position
	}
	a.orbit.update(dt, target)
	a.Camera.Position, a.Camera.Target = a.orbit.camera()
	a.Sim.SetView(a.orbit.view())
	return false
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected = (a.Selected + 1) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		a.loadPreset(a.Presets[a.Selected])
	}
}

func (a *App) handleKeys() {
	c := a.Sim.Clock()
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	switch {
	case rl.IsKeyPressed(rl.KeyEscape):
		a.InMenu = true
	case rl.IsKeyPressed(rl.KeySpace):
		c.TogglePause()
	case rl.IsKeyPressed(rl.KeyR):
		a.Sim.Reset()
		a.Telemetry = a.Telemetry[:0]
		a.err = nil
	case rl.IsKeyPressed(rl.KeyEqual) && shift, rl.IsKeyPressed(rl.KeyPeriod):
		c.MuchFaster()
	case rl.IsKeyPressed(rl.KeyComma):
		c.MuchSlower()
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		c.Faster()
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		c.Slower()
	case rl.IsKeyPressed(rl.KeyTab):
		a.cycleFocus()
	case rl.IsKeyPressed(rl.KeyN):
		a.ShowLabels = !a.ShowLabels
	}

	if rl.IsKeyDown(rl.KeyA) || rl.IsKeyDown(rl.KeyLeft) {
		a.orbit.yaw -= 0.02
	}
	if rl.IsKeyDown(rl.KeyD) || rl.IsKeyDown(rl.KeyRight) {
		a.orbit.yaw += 0.02
	}
	if rl.IsKeyDown(rl.KeyW) || rl.IsKeyDown(rl.KeyUp) {
		a.orbit.tilt(0.02)
	}
	if rl.IsKeyDown(rl.KeyS) || rl.IsKeyDown(rl.KeyDown) {
		a.orbit.tilt(-0.02)
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		a.orbit.yaw += float64(d.X) * 0.005
		a.orbit.tilt(float64(d.Y) * 0.005)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.orbit.zoom(math.Pow(0.9, float64(wheel)))
	}
}

func (a *App) cycleFocus() {
	bodies := a.Sim.Registry().Bodies()
	if len(bodies) == 0 {
		return
	}
	cur := -1
	for i, b := range bodies {
		if b.Focused {
			cur = i
		}
	}
	for n := 1; n <= len(bodies); n++ {
		b := bodies[(cur+n)%len(bodies)]
		if b.Selectable {
			_ = a.Sim.Registry().Focus(b.Name)
			a.orbit.distance = math.Max(b.Radius*40, 0.5)
			return
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawScene()
		a.drawHUD()
	}
	rl.EndDrawing()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) drawMenu() {
	a.drawText("solsim", 50, 50, 40, ColSelect)
	a.drawText("solar system simulator", 50, 100, 16, ColText)
	for i, name := range a.Presets {
		col := ColTextDim
		prefix := "  "
		if i == a.Selected {
			col, prefix = ColSelect, "> "
		}
		a.drawText(prefix+name, 60, 160+i*30, 20, col)
	}
	if a.err != nil {
		a.drawText(a.err.Error(), 50, 620, 14, rl.Red)
	}
	a.drawText("[J/K] SELECT  [ENTER] START  [Q] QUIT", 50, 680, 14, ColTextDim)
}

func (a *App) drawHUD() {
	f := a.Sim.Frame(false)
	a.drawText("solsim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Preset), 130, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if f.Paused {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)
	a.drawText(f.Date.Format("2006-01-02 15:04"), 1050, 55, 16, ColAccent)
	a.drawText(fmt.Sprintf("%g days/s", f.Speed), 1050, 78, 14, ColText)
	if b, ok := a.Sim.Registry().Focused(); ok {
		a.drawText("focus "+b.Name, 1050, 98, 14, ColText)
	}

	for i, p := range f.Points {
		v := p.Position
		a.drawText(fmt.Sprintf("%-6s %7.3f %7.3f %7.3f", p.Name, v.X(), v.Y(), v.Z()), 30, 70+i*18, 14, ColMarker)
	}

	a.drawTelemetry()
	if a.err != nil {
		a.drawText(a.err.Error(), 30, 560, 14, rl.Red)
	}
	a.drawText("[SPACE] PAUSE  [R] RESET  [+/-] SPEED  [TAB] FOCUS  [N] LABELS  [ESC] MENU  [Q] QUIT", 420, 690, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 690, 14, ColTextDim)
}

func (a *App) drawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}
	rectX, rectY := 30, 600
	width, height := 400, 60

	points := telemetryLine(a.Telemetry, float32(rectX), float32(rectY), float32(width), float32(height))
	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("dE/E0: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

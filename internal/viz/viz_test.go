package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/sim"
)

func TestCanvasSetAndUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	if c.Grid[0][0] != blank+0x1 {
		t.Errorf("cell 0 = %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != blank+0x80 {
		t.Errorf("cell 1 = %U", c.Grid[0][1])
	}
	c.Unset(0, 0)
	if c.Grid[0][0] != blank {
		t.Errorf("unset left %U", c.Grid[0][0])
	}
	// Out of range writes are ignored.
	c.Set(-1, 0)
	c.Set(4, 0)
	c.Set(0, 4)
}

func TestCanvasColorsAndLabels(t *testing.T) {
	c := NewCanvas(10, 2)
	c.SetColor(0, 0, "#ff0000")
	c.Label(4, 4, "Sun", "#ffff00")

	if c.Colors[0][0] != "#ff0000" {
		t.Errorf("colour not stored: %q", c.Colors[0][0])
	}
	if got := string(c.Grid[1][2:5]); got != "Sun" {
		t.Errorf("label = %q", got)
	}
	// Labels clip at the right edge.
	c.Label(18, 0, "Jupiter", "")
	if c.Grid[0][9] != 'J' {
		t.Errorf("clipped label start = %q", c.Grid[0][9])
	}
	plain := c.String()
	if strings.Count(plain, "\n") != 2 || !strings.Contains(plain, "Sun") {
		t.Errorf("String() = %q", plain)
	}
	if !strings.Contains(c.Render(), "S") {
		t.Error("Render dropped label text")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for col := 0; col < 4; col++ {
		if c.Grid[0][col] != blank+0x1+0x8 {
			t.Errorf("col %d = %U", col, c.Grid[0][col])
		}
	}
}

func TestCameraProjectsTargetToCentre(t *testing.T) {
	cam := NewCamera()
	cam.Follow(mgl64.Vec3{10, 0, 0})
	cam.Snap()

	x, y, depth, ok := cam.Project(mgl64.Vec3{10, 0, 0}, 160, 96)
	if !ok || x != 80 || y != 48 {
		t.Errorf("target projected to (%d, %d) ok=%v", x, y, ok)
	}
	if math.Abs(depth-cam.Distance) > 1e-9 {
		t.Errorf("depth = %f", depth)
	}
}

func TestCameraTopDownOrientation(t *testing.T) {
	cam := NewCamera()
	cam.Pitch = 0
	cam.Snap()

	// Looking straight down, +x is right and +y is up on screen.
	x, _, _, _ := cam.Project(mgl64.Vec3{5, 0, 0}, 160, 96)
	_, y, _, _ := cam.Project(mgl64.Vec3{0, 5, 0}, 160, 96)
	if x <= 80 {
		t.Errorf("+x landed at column %d", x)
	}
	if y >= 48 {
		t.Errorf("+y landed at row %d", y)
	}

	// Behind the eye is not drawn.
	if _, _, _, ok := cam.Project(mgl64.Vec3{0, 0, cam.Distance + 1}, 160, 96); ok {
		t.Error("point behind camera reported visible")
	}
}

func TestCameraZoomSpringSettles(t *testing.T) {
	cam := NewCamera()
	cam.ZoomIn()
	goal := cam.zoomGoal
	for i := 0; i < 600; i++ {
		cam.Animate()
	}
	if math.Abs(cam.Zoom()-goal) > 1e-3 {
		t.Errorf("zoom = %f, want %f", cam.Zoom(), goal)
	}
}

func TestBodyColor(t *testing.T) {
	if BodyColor("Earth", 5.97) != "#4f8fe6" {
		t.Error("known body lost its colour")
	}
	a := BodyColor("Comet", 0.01)
	if a != BodyColor("Comet", 0.01) || !strings.HasPrefix(a, "#") || len(a) != 7 {
		t.Errorf("generated colour %q not stable", a)
	}
}

func TestThemeCycle(t *testing.T) {
	defer SetTheme(ThemeDeepSpace.Name)
	SetTheme("deepspace")
	seen := map[string]bool{}
	for range Themes {
		seen[CurrentTheme.Name] = true
		NextTheme()
	}
	if len(seen) != len(Themes) || CurrentTheme.Name != "deepspace" {
		t.Errorf("cycled through %v, ended on %s", seen, CurrentTheme.Name)
	}
}

func newTestSim(t *testing.T) *sim.Simulation {
	t.Helper()
	specs := []body.Spec{
		{Name: "Sun", Mass: 1988500, Radius: 0.05},
		{Name: "Earth", Mass: 5.97, Position: mgl64.Vec3{10, 0, 0}, Velocity: mgl64.Vec3{0, 0.172, 0}, Radius: 0.01},
	}
	s, err := sim.New(specs, sim.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestModelKeys(t *testing.T) {
	s := newTestSim(t)
	m := NewModel(s, "test")

	m.handleKey(" ")
	if !s.Clock().Paused() {
		t.Error("space did not pause")
	}
	m.handleKey("+")
	m.handleKey(">")
	if s.Clock().Speed() != 20 {
		t.Errorf("speed = %g, want 20", s.Clock().Speed())
	}
	m.handleKey("tab")
	if b, ok := s.Registry().Focused(); !ok || b.Name != "Sun" {
		t.Errorf("first tab focused %v", b)
	}
	m.handleKey("tab")
	if b, _ := s.Registry().Focused(); b.Name != "Earth" {
		t.Errorf("second tab focused %s", b.Name)
	}
	if !m.handleKey("q") {
		t.Error("q should quit")
	}
}

func TestModelStepDrawsBodies(t *testing.T) {
	s := newTestSim(t)
	m := NewModel(s, "test")
	for i := 0; i < 30; i++ {
		m.step(1.0 / fps)
	}
	if s.Ticks() != 30 {
		t.Fatalf("ticks = %d", s.Ticks())
	}
	if len(m.driftHistory) != 30 {
		t.Errorf("drift history has %d samples", len(m.driftHistory))
	}
	if !strings.Contains(m.canvas.String(), "Sun") {
		t.Error("sun label missing from canvas")
	}
	view := m.View()
	if !strings.Contains(view, "Date") || !strings.Contains(view, "RUNNING") {
		t.Error("panel missing status lines")
	}
}

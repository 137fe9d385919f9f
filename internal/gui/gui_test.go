package gui

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestToRLKeepsHandedness(t *testing.T) {
	x := toRL(mgl64.Vec3{1, 0, 0})
	y := toRL(mgl64.Vec3{0, 1, 0})
	z := toRL(mgl64.Vec3{0, 0, 1})
	if x.X != 1 || y.Z != -1 || z.Y != 1 {
		t.Fatalf("axes mapped to %v %v %v", x, y, z)
	}
	// x × y = z must hold after the mapping too.
	cx := x.Y*y.Z - x.Z*y.Y
	cy := x.Z*y.X - x.X*y.Z
	cz := x.X*y.Y - x.Y*y.X
	if cx != z.X || cy != z.Y || cz != z.Z {
		t.Errorf("cross product (%v, %v, %v) != %v", cx, cy, cz, z)
	}
}

func TestRLColor(t *testing.T) {
	c := rlColor("#4f8fe6", 200)
	if c.R != 0x4f || c.G != 0x8f || c.B != 0xe6 || c.A != 200 {
		t.Errorf("got %+v", c)
	}
	if w := rlColor("nonsense", 10); w.R != 255 || w.A != 10 {
		t.Errorf("fallback = %+v", w)
	}
}

func TestOrbitFollowsTarget(t *testing.T) {
	o := newOrbit()
	goal := mgl64.Vec3{10, 0, 0}
	for i := 0; i < 300; i++ {
		o.update(1.0/60, goal)
	}
	if !o.target.ApproxEqualThreshold(goal, 1e-6) {
		t.Errorf("target = %v", o.target)
	}
	if d := o.eye().Sub(o.target).Len(); math.Abs(d-o.distance) > 1e-9 {
		t.Errorf("eye distance %f, want %f", d, o.distance)
	}

	o.zoom(1e-9)
	if o.distance != minDistance {
		t.Errorf("zoom not clamped: %f", o.distance)
	}
	o.tilt(10)
	if o.pitch >= math.Pi/2 {
		t.Errorf("pitch not clamped: %f", o.pitch)
	}
}

func TestTelemetryLineFitsBox(t *testing.T) {
	pts := telemetryLine([]float64{0, 1, 0.5}, 10, 20, 100, 50)
	if len(pts) != 3 {
		t.Fatal(len(pts))
	}
	if pts[0].Y != 70 || pts[1].Y != 20 {
		t.Errorf("min/max not at box edges: %v", pts)
	}
	flat := telemetryLine([]float64{3, 3}, 0, 0, 10, 10)
	if flat[0].Y != 10 {
		t.Errorf("flat series = %v", flat)
	}
}

func TestModelFile(t *testing.T) {
	if got := modelFile("models/earth.glb#Scene0"); got != "models/earth.glb" {
		t.Errorf("modelFile = %q", got)
	}
	if got := modelFile("plain.obj"); got != "plain.obj" {
		t.Errorf("modelFile = %q", got)
	}
}

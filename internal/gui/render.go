package gui

import (
	"math"
	"math/rand"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/solsim/internal/viz"
)

// toRL maps scene coordinates (z up, ecliptic in xy) to raylib's y-up space.
func toRL(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v.X()), float32(v.Z()), float32(-v.Y()))
}

func rlColor(hex string, alpha uint8) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.NewColor(255, 255, 255, alpha)
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, alpha)
}

// orbit is a camera circling a target. The eye follows its goal with
// exponential smoothing so focus changes glide.
type orbit struct {
	yaw, pitch float64
	distance   float64
	target     mgl64.Vec3
}

const (
	minDistance = 0.05
	maxDistance = 2000
	follow      = 5.0 // 1/s
)

func newOrbit() orbit {
	return orbit{pitch: 0.6, distance: 40}
}

func (o *orbit) tilt(d float64) {
	o.pitch = mgl64.Clamp(o.pitch+d, -math.Pi/2+0.01, math.Pi/2-0.01)
}

func (o *orbit) zoom(f float64) {
	o.distance = mgl64.Clamp(o.distance*f, minDistance, maxDistance)
}

func (o *orbit) update(dt float64, goal mgl64.Vec3) {
	k := math.Min(1, follow*dt)
	o.target = o.target.Add(goal.Sub(o.target).Mul(k))
}

// eye returns the camera position in scene coordinates.
func (o *orbit) eye() mgl64.Vec3 {
	cp := math.Cos(o.pitch)
	off := mgl64.Vec3{cp * math.Sin(o.yaw), -cp * math.Cos(o.yaw), math.Sin(o.pitch)}
	return o.target.Add(off.Mul(o.distance))
}

func (o *orbit) camera() (rl.Vector3, rl.Vector3) {
	return toRL(o.eye()), toRL(o.target)
}

// view is the camera orientation in scene space, used to orient the
// lagrange point markers.
func (o *orbit) view() mgl64.Quat {
	return mgl64.QuatLookAtV(o.eye(), o.target, mgl64.Vec3{0, 0, 1}).Inverse()
}

func starfield(n int, seed int64) []rl.Vector3 {
	rng := rand.New(rand.NewSource(seed))
	stars := make([]rl.Vector3, n)
	for i := range stars {
		// Uniform on a far sphere.
		z := rng.Float64()*2 - 1
		phi := rng.Float64() * 2 * math.Pi
		r := math.Sqrt(1 - z*z)
		stars[i] = toRL(mgl64.Vec3{r * math.Cos(phi), r * math.Sin(phi), z}.Mul(1500))
	}
	return stars
}

// telemetryLine scales values into a width × height box at (x, y).
func telemetryLine(values []float64, x, y, width, height float32) []rl.Vector2 {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	points := make([]rl.Vector2, len(values))
	for i, v := range values {
		px := x + float32(i)/float32(len(values))*width
		py := y + height - float32((v-lo)/(hi-lo))*height
		points[i] = rl.NewVector2(px, py)
	}
	return points
}

// modelFile strips the scene selector from a model reference such as
// "models/earth.glb#Scene0".
func modelFile(ref string) string {
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		return ref[:i]
	}
	return ref
}

func (a *App) loadModels() {
	for _, b := range a.Sim.Registry().Bodies() {
		if b.Model == "" {
			continue
		}
		path := modelFile(b.Model)
		if _, ok := a.models[path]; ok {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		a.models[path] = rl.LoadModel(path)
		log.Debug("loaded model", "body", b.Name, "path", path)
	}
}

func (a *App) unloadModels() {
	for path, m := range a.models {
		rl.UnloadModel(m)
		delete(a.models, path)
	}
}

func (a *App) drawScene() {
	f := a.Sim.Frame(true)

	rl.BeginMode3D(a.Camera)
	for _, s := range a.Stars {
		rl.DrawPoint3D(s, ColTextDim)
	}

	for _, b := range f.Bodies {
		if !b.Visible || len(b.Trail) < 2 {
			continue
		}
		col := rlColor(viz.Fade(viz.BodyColor(b.Name, b.Mass), 0.4), 160)
		for i := 1; i < len(b.Trail); i++ {
			rl.DrawLine3D(toRL(b.Trail[i-1]), toRL(b.Trail[i]), col)
		}
	}

	bodies := a.Sim.Registry().Bodies()
	for i, b := range f.Bodies {
		if !b.Visible {
			continue
		}
		pos := toRL(b.Position)
		col := rlColor(viz.BodyColor(b.Name, b.Mass), 255)
		if m, ok := a.models[modelFile(bodies[i].Model)]; ok && bodies[i].Model != "" {
			tint := rl.White
			if !bodies[i].Unlit {
				tint = col
			}
			rl.DrawModel(m, pos, float32(bodies[i].ModelScale), tint)
		} else {
			rl.DrawSphere(pos, float32(b.Radius), col)
		}
		if b.Focused {
			rl.DrawCircle3D(pos, float32(b.Radius*3), rl.NewVector3(1, 0, 0), 90, ColMarker)
		}
	}

	for _, p := range f.Points {
		s := float32(a.orbit.distance * 0.01)
		rl.DrawCubeWires(toRL(p.Position), s, s, s, ColMarker)
	}
	rl.EndMode3D()

	if !a.ShowLabels {
		return
	}
	for _, b := range f.Bodies {
		if !b.Visible {
			continue
		}
		sp := rl.GetWorldToScreen(toRL(b.Position), a.Camera)
		a.drawText(b.Name, int(sp.X)+8, int(sp.Y)-8, 14, ColText)
	}
	for _, p := range f.Points {
		sp := rl.GetWorldToScreen(toRL(p.Position), a.Camera)
		a.drawText(p.Name, int(sp.X)+8, int(sp.Y)-8, 12, ColMarker)
	}
}

package viz

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	minZoom = 0.02
	maxZoom = 200
)

// Camera orbits a target point and projects scene coordinates onto the
// canvas. Zoom and target follow their goals through critically damped
// springs so focus changes glide instead of jumping.
type Camera struct {
	Yaw, Pitch float64
	Distance   float64 // eye distance from target, scene units
	Extent     float64 // half-width visible at zoom 1

	zoom, zoomVel, zoomGoal float64
	target, targetVel       mgl64.Vec3
	targetGoal              mgl64.Vec3
	spring                  harmonica.Spring
}

func NewCamera() *Camera {
	return &Camera{
		Pitch:    -0.5,
		Distance: 400,
		Extent:   20,
		zoom:     1,
		zoomGoal: 1,
		spring:   harmonica.NewSpring(harmonica.FPS(60), 6.0, 1.0),
	}
}

func (c *Camera) RotateYaw(a float64)   { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) { c.Pitch = mgl64.Clamp(c.Pitch+a, -math.Pi/2, math.Pi/2) }
func (c *Camera) ZoomIn()               { c.zoomGoal = math.Min(maxZoom, c.zoomGoal*1.25) }
func (c *Camera) ZoomOut()              { c.zoomGoal = math.Max(minZoom, c.zoomGoal/1.25) }
func (c *Camera) Zoom() float64         { return c.zoom }

// Follow sets the point the camera glides towards.
func (c *Camera) Follow(p mgl64.Vec3) { c.targetGoal = p }

func (c *Camera) Target() mgl64.Vec3 { return c.target }

// Animate advances the springs by one frame.
func (c *Camera) Animate() {
	c.zoom, c.zoomVel = c.spring.Update(c.zoom, c.zoomVel, c.zoomGoal)
	for i := 0; i < 3; i++ {
		c.target[i], c.targetVel[i] = c.spring.Update(c.target[i], c.targetVel[i], c.targetGoal[i])
	}
}

// Snap jumps straight to the goals.
func (c *Camera) Snap() {
	c.zoom, c.zoomVel = c.zoomGoal, 0
	c.target, c.targetVel = c.targetGoal, mgl64.Vec3{}
}

// Orientation is the camera's rotation in scene space.
func (c *Camera) Orientation() mgl64.Quat {
	yaw := mgl64.QuatRotate(c.Yaw, mgl64.Vec3{0, 0, 1})
	pitch := mgl64.QuatRotate(c.Pitch, mgl64.Vec3{1, 0, 0})
	return yaw.Mul(pitch).Normalize()
}

// Project maps a scene point to canvas sub-pixels (sw × sh). It returns the
// screen position, the depth and whether the point lands on screen.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	rel := c.Orientation().Inverse().Rotate(p.Sub(c.target))
	depth := c.Distance - rel.Z()
	if depth <= 0.1 {
		return 0, 0, 0, false
	}

	minDim := float64(sh)
	if float64(sw) < minDim {
		minDim = float64(sw)
	}
	scale := c.zoom * c.Distance / depth * minDim / (2 * c.Extent)

	sx := int(math.Round(rel.X()*scale)) + sw/2
	sy := int(math.Round(-rel.Y()*scale)) + sh/2
	return sx, sy, depth, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

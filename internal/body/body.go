// Package body holds the simulated point masses and their kinematic state.
//
// A [Registry] owns the bodies in a fixed iteration order. That order is the
// order the force accumulator walks, so it is preserved across removals.
// Units are the scaled units of the simulation: mass in 10^24 kg, distance in
// scene units (0.1 AU), time in simulated days.
package body

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/trail"
)

// Spec is one entry of the initial configuration table, already in scene units.
type Spec struct {
	Name       string
	Mass       float64
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
	Radius     float64
	Model      string
	ModelScale float64
	Unlit      bool
}

type Body struct {
	ID   int
	Name string

	Mass         float64
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3 // overwritten every tick

	Trail *trail.Trail

	// Rendering only.
	Radius     float64
	Model      string
	ModelScale float64
	Unlit      bool
	Visible    bool
	Selectable bool
	Focused    bool
}

func newBody(id int, s Spec, trailCap int) *Body {
	b := &Body{
		ID:         id,
		Name:       s.Name,
		Mass:       s.Mass,
		Position:   s.Position,
		Velocity:   s.Velocity,
		Radius:     s.Radius,
		Model:      s.Model,
		ModelScale: s.ModelScale,
		Unlit:      s.Unlit,
		Visible:    true,
		Selectable: true,
	}
	if trailCap >= 0 {
		b.Trail = trail.New(trailCap)
	}
	return b
}

// Point and History let the trail recorder walk bodies directly.
func (b *Body) Point() mgl64.Vec3          { return b.Position }
func (b *Body) History() *trail.Trail      { return b.Trail }
func (b *Body) Momentum() mgl64.Vec3       { return b.Velocity.Mul(b.Mass) }
func (b *Body) KineticEnergy() float64     { return 0.5 * b.Mass * b.Velocity.LenSqr() }
func (b *Body) DistanceTo(o *Body) float64 { return o.Position.Sub(b.Position).Len() }

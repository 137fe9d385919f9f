// Package gravity computes Newtonian gravitational accelerations.
//
// The gravitational constant is rescaled once so that masses in 10^24 kg,
// distances in scene units (0.1 AU) and times in simulated days can be fed to
// Newton's law directly:
//
//	g := gravity.Default()
//	gravity.Accumulate(g, reg.Bodies())
//
// Accumulation is O(n²) over pairs. The body count is small, so no tree or
// approximation scheme is used.
package gravity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
)

const (
	// G is the physical gravitational constant in m³/(kg·s²).
	G = 6.67430e-11

	// Day is the length of the scaled time unit in seconds.
	Day = 86400.0
)

// Gravity is the gravitational constant in scaled units. It is fixed at setup
// and only read while the simulation runs.
type Gravity float64

// Scale converts a constant in SI units to scaled units: g·day²·10⁻⁶/1.5³.
func Scale(g float64) Gravity {
	return Gravity(g * Day * Day * 1e-6 / (1.5 * 1.5 * 1.5))
}

// Default returns Scale(G).
func Default() Gravity { return Scale(G) }

// Force returns the gravitational force b feels from a. It is zero when the
// two positions coincide.
func Force(g Gravity, a, b *body.Body) mgl64.Vec3 {
	diff := a.Position.Sub(b.Position)
	r2 := diff.LenSqr()
	if r2 == 0 {
		return mgl64.Vec3{}
	}
	magnitude := float64(g) * a.Mass * b.Mass / r2
	return diff.Mul(magnitude / math.Sqrt(r2))
}

// Accumulate overwrites every body's acceleration with the net gravitational
// acceleration from all other bodies.
//
// Bodies are visited in order; each new body interacts once with every body
// visited before it, and the pair force is added to one side and subtracted
// from the other. The summed forces are then divided by each body's mass.
func Accumulate(g Gravity, bodies []*body.Body) {
	for i, b := range bodies {
		b.Acceleration = mgl64.Vec3{}
		for _, a := range bodies[:i] {
			f := Force(g, a, b)
			b.Acceleration = b.Acceleration.Add(f)
			a.Acceleration = a.Acceleration.Sub(f)
		}
	}

	for _, b := range bodies {
		b.Acceleration = b.Acceleration.Mul(1 / b.Mass)
	}
}

// Energy returns the total kinetic plus potential energy of the system.
func Energy(g Gravity, bodies []*body.Body) float64 {
	ke, pe := 0.0, 0.0
	for i, b := range bodies {
		ke += b.KineticEnergy()
		for _, a := range bodies[:i] {
			r := a.Position.Sub(b.Position).Len()
			if r == 0 {
				continue
			}
			pe -= float64(g) * a.Mass * b.Mass / r
		}
	}
	return ke + pe
}

// Momentum returns the total linear momentum Σ m·v.
func Momentum(bodies []*body.Body) mgl64.Vec3 {
	var p mgl64.Vec3
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position.
func CenterOfMass(bodies []*body.Body) mgl64.Vec3 {
	var c mgl64.Vec3
	total := 0.0
	for _, b := range bodies {
		c = c.Add(b.Position.Mul(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return mgl64.Vec3{}
	}
	return c.Mul(1 / total)
}

package integrators

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/gravity"
)

func benchBodies(n int) []*body.Body {
	bodies := make([]*body.Body, n)
	bodies[0] = &body.Body{Mass: 1988500}
	for i := 1; i < n; i++ {
		r := float64(i) * 4
		bodies[i] = &body.Body{
			Mass:     1,
			Position: mgl64.Vec3{r, 0, 0},
			Velocity: mgl64.Vec3{0, 0.54 / float64(i), 0},
		}
	}
	return bodies
}

func benchmarkIntegrator(b *testing.B, integ Integrator, n int) {
	g := gravity.Default()
	bodies := benchBodies(n)
	accel := func(bs []*body.Body) { gravity.Accumulate(g, bs) }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		accel(bodies)
		integ.Step(bodies, accel, 0.01)
	}
}

func BenchmarkSymplecticEuler(b *testing.B) { benchmarkIntegrator(b, NewSymplecticEuler(), 13) }
func BenchmarkEuler(b *testing.B)           { benchmarkIntegrator(b, NewEuler(), 13) }
func BenchmarkVerlet(b *testing.B)          { benchmarkIntegrator(b, NewVerlet(), 13) }

package integrators

import "github.com/san-kum/solsim/internal/body"

// Verlet is velocity Verlet in kick-drift-kick form. It evaluates forces
// twice per step, so accelerations are current again on return.
type Verlet struct{}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(bodies []*body.Body, accel Accelerator, dt float64) {
	halfDt := 0.5 * dt

	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(b.Acceleration.Mul(halfDt))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}

	if accel == nil {
		return
	}
	accel(bodies)

	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(b.Acceleration.Mul(halfDt))
	}
}

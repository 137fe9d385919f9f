package integrators

import "github.com/san-kum/solsim/internal/body"

// SymplecticEuler is semi-implicit Euler: velocity first, then position from
// the updated velocity. Energy error stays bounded over long runs.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic" }

func (s *SymplecticEuler) Step(bodies []*body.Body, _ Accelerator, dt float64) {
	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	}
	for _, b := range bodies {
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}
}

// Euler is the naive explicit scheme. Position advances with the old
// velocity. It is kept for comparing drift.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(bodies []*body.Body, _ Accelerator, dt float64) {
	for _, b := range bodies {
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
		b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	}
}

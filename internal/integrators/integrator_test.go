package integrators

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/gravity"
)

func TestSymplecticEulerOrder(t *testing.T) {
	p0 := mgl64.Vec3{1, 2, 3}
	v0 := mgl64.Vec3{0.5, 0, -1}
	a := mgl64.Vec3{2, -4, 1}
	dt := 0.25

	b := &body.Body{Mass: 1, Position: p0, Velocity: v0, Acceleration: a}
	NewSymplecticEuler().Step([]*body.Body{b}, nil, dt)

	wantV := v0.Add(a.Mul(dt))
	wantP := p0.Add(wantV.Mul(dt))
	if !b.Velocity.ApproxEqual(wantV) {
		t.Errorf("velocity = %v, want %v", b.Velocity, wantV)
	}
	if !b.Position.ApproxEqual(wantP) {
		t.Errorf("position = %v, want %v", b.Position, wantP)
	}

	naive := p0.Add(v0.Mul(dt))
	if b.Position.ApproxEqual(naive) {
		t.Error("position advanced with the old velocity")
	}
}

func TestEulerUsesOldVelocity(t *testing.T) {
	p0 := mgl64.Vec3{0, 0, 0}
	v0 := mgl64.Vec3{1, 0, 0}
	a := mgl64.Vec3{0, 3, 0}
	dt := 0.5

	b := &body.Body{Mass: 1, Position: p0, Velocity: v0, Acceleration: a}
	NewEuler().Step([]*body.Body{b}, nil, dt)

	if want := (mgl64.Vec3{0.5, 0, 0}); !b.Position.ApproxEqual(want) {
		t.Errorf("position = %v, want %v", b.Position, want)
	}
	if want := (mgl64.Vec3{1, 1.5, 0}); !b.Velocity.ApproxEqual(want) {
		t.Errorf("velocity = %v, want %v", b.Velocity, want)
	}
}

func TestVerletRefreshesAccelerations(t *testing.T) {
	calls := 0
	accel := func(bs []*body.Body) {
		calls++
		for _, b := range bs {
			b.Acceleration = mgl64.Vec3{0, 0, -1}
		}
	}

	b := &body.Body{Mass: 1, Acceleration: mgl64.Vec3{0, 0, -1}}
	NewVerlet().Step([]*body.Body{b}, accel, 1)

	if calls != 1 {
		t.Errorf("expected one force evaluation, got %d", calls)
	}
	// Constant acceleration is integrated exactly.
	if math.Abs(b.Position.Z()+0.5) > 1e-12 || math.Abs(b.Velocity.Z()+1) > 1e-12 {
		t.Errorf("got position %v velocity %v", b.Position, b.Velocity)
	}
}

func circularOrbit() []*body.Body {
	g := float64(gravity.Default())
	sun := &body.Body{Mass: 1988500}
	r := 10.0
	v := math.Sqrt(g * sun.Mass / r)
	earth := &body.Body{Mass: 5.97219, Position: mgl64.Vec3{r, 0, 0}, Velocity: mgl64.Vec3{0, v, 0}}
	return []*body.Body{sun, earth}
}

func TestEnergyDriftByScheme(t *testing.T) {
	g := gravity.Default()
	accel := func(bs []*body.Body) { gravity.Accumulate(g, bs) }

	drift := func(integ Integrator) float64 {
		bodies := circularOrbit()
		e0 := gravity.Energy(g, bodies)
		for i := 0; i < 3650; i++ {
			accel(bodies)
			integ.Step(bodies, accel, 0.5)
		}
		return math.Abs(gravity.Energy(g, bodies)-e0) / math.Abs(e0)
	}

	symplectic := drift(NewSymplecticEuler())
	naive := drift(NewEuler())
	if symplectic > 0.01 {
		t.Errorf("symplectic Euler drift %g over five years", symplectic)
	}
	if naive <= symplectic {
		t.Errorf("naive Euler drift %g should exceed symplectic drift %g", naive, symplectic)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ.Name() != name {
			t.Errorf("New(%q).Name() = %q", name, integ.Name())
		}
	}

	if integ, err := New(""); err != nil || integ.Name() != Default {
		t.Errorf("New(\"\") = %v, %v", integ, err)
	}
	if _, err := New("rk4"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

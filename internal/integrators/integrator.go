// Package integrators advances bodies through one time step.
//
// Every integrator expects accelerations to be current on entry; the caller
// runs the force accumulator first. Integrators that need accelerations at
// the new positions call the supplied Accelerator themselves.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/solsim/internal/body"
)

// Accelerator overwrites every body's acceleration from current positions.
type Accelerator func(bodies []*body.Body)

type Integrator interface {
	Name() string
	Step(bodies []*body.Body, accel Accelerator, dt float64)
}

var registry = map[string]func() Integrator{
	"symplectic": func() Integrator { return NewSymplecticEuler() },
	"euler":      func() Integrator { return NewEuler() },
	"verlet":     func() Integrator { return NewVerlet() },
}

// Default is the integrator used when none is configured.
const Default = "symplectic"

func New(name string) (Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

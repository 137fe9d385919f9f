package body

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveMass is a configuration error: the integrator divides by mass.
	ErrNonPositiveMass = errors.New("body: mass must be positive")

	ErrDuplicateBody = errors.New("body: duplicate body name")
	ErrUnknownBody   = errors.New("body: unknown body")
)

// Registry is the ordered set of simulated bodies.
//
// It is not safe for concurrent use. Removals requested while a step is in
// progress are deferred until [Registry.Flush] runs at a tick boundary.
type Registry struct {
	bodies   []*Body
	byName   map[string]*Body
	nextID   int
	trailCap int
	pending  []string
}

// NewRegistry returns an empty registry whose bodies get trails of the given
// capacity. A negative capacity disables trails.
func NewRegistry(trailCap int) *Registry {
	return &Registry{
		bodies:   make([]*Body, 0, 16),
		byName:   make(map[string]*Body),
		trailCap: trailCap,
	}
}

// Validate checks a spec without adding it.
func Validate(s Spec) error {
	if !(s.Mass > 0) {
		return fmt.Errorf("%w: %s has mass %g", ErrNonPositiveMass, s.Name, s.Mass)
	}
	return nil
}

// Add appends a body built from s and returns it.
func (r *Registry) Add(s Spec) (*Body, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	if _, ok := r.byName[s.Name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateBody, s.Name)
	}
	b := newBody(r.nextID, s, r.trailCap)
	r.nextID++
	r.bodies = append(r.bodies, b)
	r.byName[b.Name] = b
	return b, nil
}

// AddAll adds every spec, stopping at the first error.
func (r *Registry) AddAll(specs []Spec) error {
	for _, s := range specs {
		if _, err := r.Add(s); err != nil {
			return err
		}
	}
	return nil
}

// Bodies returns the bodies in iteration order. The slice is shared.
func (r *Registry) Bodies() []*Body { return r.bodies }
func (r *Registry) Len() int        { return len(r.bodies) }

func (r *Registry) Lookup(name string) (*Body, bool) {
	b, ok := r.byName[name]
	return b, ok
}

func (r *Registry) Get(id int) (*Body, bool) {
	for _, b := range r.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// SetMass changes a body's mass, as an inspector edit would.
func (r *Registry) SetMass(name string, mass float64) error {
	b, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, name)
	}
	if !(mass > 0) {
		return fmt.Errorf("%w: %s has mass %g", ErrNonPositiveMass, name, mass)
	}
	b.Mass = mass
	return nil
}

// Focus marks name as the focused body and clears the flag on all others.
func (r *Registry) Focus(name string) error {
	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, name)
	}
	for _, b := range r.bodies {
		b.Focused = b.Name == name
	}
	return nil
}

// Focused returns the focused body, if any.
func (r *Registry) Focused() (*Body, bool) {
	for _, b := range r.bodies {
		if b.Focused {
			return b, true
		}
	}
	return nil, false
}

// RequestRemoval schedules a body for deletion at the next Flush.
func (r *Registry) RequestRemoval(name string) error {
	if _, ok := r.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, name)
	}
	r.pending = append(r.pending, name)
	return nil
}

// Flush applies pending removals, keeping the order of the remaining bodies.
// It returns the number of bodies removed.
func (r *Registry) Flush() int {
	if len(r.pending) == 0 {
		return 0
	}
	drop := make(map[string]struct{}, len(r.pending))
	for _, n := range r.pending {
		drop[n] = struct{}{}
	}
	r.pending = r.pending[:0]

	kept := r.bodies[:0]
	removed := 0
	for _, b := range r.bodies {
		if _, ok := drop[b.Name]; ok {
			delete(r.byName, b.Name)
			removed++
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(r.bodies); i++ {
		r.bodies[i] = nil
	}
	r.bodies = kept
	return removed
}

// Reset removes every body and restarts id assignment.
func (r *Registry) Reset() {
	r.bodies = r.bodies[:0]
	r.byName = make(map[string]*Body)
	r.pending = r.pending[:0]
	r.nextID = 0
}

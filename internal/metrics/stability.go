package metrics

import (
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/gravity"
)

// Bound is the fraction of observations in which every body stayed within
// radius of the centre of mass. Anything flung out counts as a violation.
type Bound struct {
	name       string
	radius     float64
	violations int
	samples    int
}

func NewBound(radius float64) *Bound {
	return &Bound{
		name:   "bound",
		radius: radius,
	}
}

func (s *Bound) Name() string {
	return s.name
}

func (s *Bound) Observe(bodies []*body.Body, t float64) {
	s.samples++
	c := gravity.CenterOfMass(bodies)
	r2 := s.radius * s.radius
	for _, b := range bodies {
		if b.Position.Sub(c).LenSqr() > r2 {
			s.violations++
			break
		}
	}
}

func (s *Bound) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Bound) Reset() {
	s.violations = 0
	s.samples = 0
}

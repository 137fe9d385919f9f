package metrics

import (
	"math"

	"github.com/san-kum/solsim/internal/body"
)

// Separation averages the distance between two named bodies. Ticks where
// either is absent are skipped.
type Separation struct {
	a, b     string
	sum      float64
	min, max float64
	samples  int
}

func NewSeparation(a, b string) *Separation {
	return &Separation{a: a, b: b, min: math.Inf(1)}
}

func (s *Separation) Name() string { return "separation_" + s.a + "_" + s.b }

func (s *Separation) Observe(bodies []*body.Body, t float64) {
	var ba, bb *body.Body
	for _, x := range bodies {
		switch x.Name {
		case s.a:
			ba = x
		case s.b:
			bb = x
		}
	}
	if ba == nil || bb == nil {
		return
	}
	d := ba.DistanceTo(bb)
	s.sum += d
	s.min = math.Min(s.min, d)
	s.max = math.Max(s.max, d)
	s.samples++
}

func (s *Separation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

// Range returns the closest and farthest observed distances.
func (s *Separation) Range() (float64, float64) {
	if s.samples == 0 {
		return 0, 0
	}
	return s.min, s.max
}

func (s *Separation) Reset() {
	s.sum = 0
	s.min = math.Inf(1)
	s.max = 0
	s.samples = 0
}

package experiment

import (
	"github.com/san-kum/solsim/internal/integrators"
	"github.com/san-kum/solsim/internal/metrics"
	"github.com/san-kum/solsim/internal/sim"
)

// BoundRadius is the escape radius for the bound metric, past Pluto's orbit
// in scene units.
const BoundRadius = 1000.0

var pairs = [][2]string{
	{"Sun", "Earth"},
	{"Earth", "Moon"},
	{"A", "B"},
}

// DefaultMetrics returns the metrics worth tracking for s's bodies.
func DefaultMetrics(s *sim.Simulation) []sim.Metric {
	ms := []sim.Metric{
		metrics.NewEnergyDrift(s.Gravity()),
		metrics.NewMomentumDrift(),
		metrics.NewBound(BoundRadius),
	}
	reg := s.Registry()
	for _, p := range pairs {
		_, okA := reg.Lookup(p[0])
		_, okB := reg.Lookup(p[1])
		if okA && okB {
			ms = append(ms, metrics.NewSeparation(p[0], p[1]))
		}
	}
	return ms
}

func ListIntegrators() []string {
	return integrators.Names()
}

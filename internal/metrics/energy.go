package metrics

import (
	"math"

	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/gravity"
)

// Energy reports the mean total energy over the observed ticks.
type Energy struct {
	name        string
	g           gravity.Gravity
	samples     int
	totalEnergy float64
}

func NewEnergy(g gravity.Gravity) *Energy {
	return &Energy{name: "energy", g: g}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []*body.Body, t float64) {
	if len(bodies) == 0 {
		return
	}
	e.totalEnergy += gravity.Energy(e.g, bodies)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the first
// observed energy.
type EnergyDrift struct {
	name          string
	g             gravity.Gravity
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(g gravity.Gravity) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", g: g}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []*body.Body, t float64) {
	energy := gravity.Energy(e.g, bodies)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		e.maxDrift = math.Max(e.maxDrift, e.Current())
	}
}

// Current is the relative drift at the latest observation.
func (e *EnergyDrift) Current() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return math.Abs(e.currentEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

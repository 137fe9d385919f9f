package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/gravity"
)

// MomentumDrift is the largest change in total momentum, relative to the
// sum of |m·v| at the first observation. That scale stays meaningful when the
// total starts at zero.
type MomentumDrift struct {
	name     string
	initial  mgl64.Vec3
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []*body.Body, t float64) {
	p := gravity.Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
		for _, b := range bodies {
			m.scale += b.Momentum().Len()
		}
	}
	m.samples++

	if m.scale > 0 {
		m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Len()/m.scale)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = mgl64.Vec3{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

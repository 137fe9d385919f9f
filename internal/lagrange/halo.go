package lagrange

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
)

const (
	DefaultHaloRadius = 0.01
	DefaultHaloRate   = 0.1
)

// Halo pins a body to a small circle around a Lagrange point, as the JWST
// marker does. The angle advances with unpaused wall time, not simulated
// time, so the circling rate does not follow the speed multiplier. Only
// position is overwritten.
type Halo struct {
	Body   string
	Point  string
	Radius float64 // scene units
	Rate   float64 // radians per real second
}

func NewHalo(bodyName, point string) *Halo {
	return &Halo{Body: bodyName, Point: point, Radius: DefaultHaloRadius, Rate: DefaultHaloRate}
}

// Offset returns the displacement from the point after elapsed unpaused seconds.
func (h *Halo) Offset(elapsed float64) mgl64.Vec3 {
	a := h.Rate * elapsed
	return mgl64.Vec3{h.Radius * math.Cos(a), h.Radius * math.Sin(a), 0}
}

// Apply moves the halo body. It returns false when the body or point is
// absent.
func (h *Halo) Apply(bodies []*body.Body, l *Locator, elapsed float64) bool {
	p, ok := l.Lookup(h.Point)
	if !ok {
		return false
	}
	for _, b := range bodies {
		if b.Name == h.Body {
			b.Position = p.Position.Add(h.Offset(elapsed))
			return true
		}
	}
	return false
}

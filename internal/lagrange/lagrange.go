// Package lagrange derives simplified co-linear reference points on the
// Sun–Earth axis.
//
// A point sits at earth + unit(sun − earth) × offset, so the offset is a
// distance in scene units. Positive offsets lie between the two bodies,
// negative offsets beyond Earth. A Relative locator instead reads the offset
// as a fraction of the Sun–Earth separation. Points own no physical state and
// are recomputed from the bodies every tick.
package lagrange

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
)

const (
	DefaultSun   = "Sun"
	DefaultEarth = "Earth"
)

type Point struct {
	Name     string
	Offset   float64
	Position mgl64.Vec3

	// Orientation copies the view rotation so labels face the camera.
	Orientation mgl64.Quat
}

// DefaultPoints returns fresh SE-L1 and SE-L2 markers.
func DefaultPoints() []*Point {
	return []*Point{
		{Name: "SE-L1", Offset: 0.1, Orientation: mgl64.QuatIdent()},
		{Name: "SE-L2", Offset: -0.1, Orientation: mgl64.QuatIdent()},
	}
}

type Locator struct {
	Sun      string
	Earth    string
	Points   []*Point
	Relative bool
}

func NewLocator(sun, earth string, points []*Point) *Locator {
	if sun == "" {
		sun = DefaultSun
	}
	if earth == "" {
		earth = DefaultEarth
	}
	return &Locator{Sun: sun, Earth: earth, Points: points}
}

// Update recomputes every point from the current bodies. When either
// reference body is missing it changes nothing and returns false.
func (l *Locator) Update(bodies []*body.Body, view mgl64.Quat) bool {
	var sun, earth *body.Body
	for _, b := range bodies {
		switch b.Name {
		case l.Sun:
			sun = b
		case l.Earth:
			earth = b
		}
	}
	if sun == nil || earth == nil {
		return false
	}

	dir := sun.Position.Sub(earth.Position)
	if !l.Relative {
		dir = normalizeOrZero(dir)
	}
	for _, p := range l.Points {
		p.Position = Position(earth.Position, dir, p.Offset)
		p.Orientation = view
	}
	return true
}

// Lookup finds a point by name.
func (l *Locator) Lookup(name string) (*Point, bool) {
	for _, p := range l.Points {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Reset moves every point back to the origin.
func (l *Locator) Reset() {
	for _, p := range l.Points {
		p.Position = mgl64.Vec3{}
		p.Orientation = mgl64.QuatIdent()
	}
}

// Position is earth + dir × offset.
func Position(earth, dir mgl64.Vec3, offset float64) mgl64.Vec3 {
	return earth.Add(dir.Mul(offset))
}

func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Package ephemeris is the static table of initial bodies: published masses
// and heliocentric state vectors at the epoch, in AU and AU/day.
package ephemeris

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
)

// AUScale converts astronomical units to scene units.
const AUScale = 10.0

// EpochJD is the Julian day the state vectors refer to (2022-11-25).
const EpochJD = 2459908.5

const (
	planetRadius = 0.005
	planetScale  = 0.00001
)

type Entry struct {
	Name       string
	Mass       float64    // 10^24 kg
	Position   mgl64.Vec3 // AU
	Velocity   mgl64.Vec3 // AU/day
	Radius     float64
	ModelScale float64
	Unlit      bool
}

// Model is the display asset reference for the entry.
func (e Entry) Model() string { return "models/" + strings.ToLower(e.Name) + ".glb#Scene0" }

// Spec converts the entry to scene units.
func (e Entry) Spec() body.Spec {
	return body.Spec{
		Name:       e.Name,
		Mass:       e.Mass,
		Position:   e.Position.Mul(AUScale),
		Velocity:   e.Velocity.Mul(AUScale),
		Radius:     e.Radius,
		Model:      e.Model(),
		ModelScale: e.ModelScale,
		Unlit:      e.Unlit,
	}
}

func planet(name string, mass float64, pos, vel mgl64.Vec3) Entry {
	return Entry{Name: name, Mass: mass, Position: pos, Velocity: vel, Radius: planetRadius, ModelScale: planetScale}
}

// Table lists every known body in load order.
var Table = []Entry{
	{Name: "Sun", Mass: 1988500, Radius: 0.05, ModelScale: 0.002, Unlit: true},
	planet("Mercury", 0.3302,
		mgl64.Vec3{3.111405698823826e-03, -4.607974584403516e-01, -3.860159093638146e-02},
		mgl64.Vec3{2.248220104774973e-02, 2.177869427789603e-03, -1.883369041847100e-03}),
	planet("Venus", 4.867,
		mgl64.Vec3{-1.104602952742054e-01, -7.189512888891817e-01, -3.818331146763080e-03},
		mgl64.Vec3{1.989263354357960e-02, -2.910502841093310e-03, -1.187594747165436e-03}),
	planet("Earth", 5.97219,
		mgl64.Vec3{4.487758087146768e-01, 8.751235324844499e-01, 1.618817013329493e-04},
		mgl64.Vec3{-1.552868871220300e-02, 7.906229533085379e-03, 3.064648367334892e-07}),
	{
		Name:       "Moon",
		Mass:       0.0734767,
		Position:   mgl64.Vec3{4.482115265952957e-01, 8.727621196450731e-01, 3.888179917645140e-05},
		Velocity:   mgl64.Vec3{-1.491883668334010e-02, 7.773993419863166e-03, -4.679176055656679e-05},
		Radius:     0.002,
		ModelScale: 0.000003,
	},
	planet("Mars", 0.64171,
		mgl64.Vec3{5.371347489929870e-01, 1.415777733841128, 1.647268731293564e-02},
		mgl64.Vec3{-1.252424659948937e-02, 6.220232033014156e-03, 4.378447959849454e-04}),
	planet("Jupiter", 1898.187,
		mgl64.Vec3{4.883310383356100, 7.577598574024473e-01, -1.123963322175233e-01},
		mgl64.Vec3{-1.243645389952230e-03, 7.811788737744427e-03, -4.555620902846121e-06}),
	planet("Saturn", 568.3,
		mgl64.Vec3{8.032503665636328, -5.674419409731062, -2.211472254846864e-01},
		mgl64.Vec3{2.906095271828988e-03, 4.545286691593917e-03, -1.944528757086951e-04}),
	planet("Uranus", 86.813,
		mgl64.Vec3{1.346817163779143e+01, 1.433467548071632e+01, -1.212433131756314e-01},
		mgl64.Vec3{-2.895294668494246e-03, 2.509923332168401e-03, 4.682362547589839e-05}),
	planet("Pluto", 0.0130900,
		mgl64.Vec3{1.606202476106402e+01, -3.066989614373318e+01, -1.364243998730049},
		mgl64.Vec3{2.848861795045802e-03, 7.648276574228828e-04, -9.055284692410262e-04}),
	{
		Name:       "JWST",
		Mass:       6200e-24,
		Position:   mgl64.Vec3{4.488948840878112e-01, 8.856860339483225e-01, -7.512566561474845e-04},
		Velocity:   mgl64.Vec3{-1.564139006806661e-02, 7.940335006606503e-03, -9.026475694712961e-05},
		Radius:     0.002,
		ModelScale: 0.0003,
		Unlit:      true,
	},
	{
		Name:       "ISS",
		Mass:       4.44615e-22,
		Position:   mgl64.Vec3{4.488043238527515e-01, 8.751376110417752e-01, 1.941969204321329e-04},
		Velocity:   mgl64.Vec3{-1.504701637582184e-02, 1.177161600016825e-02, -2.108766983760775e-03},
		Radius:     0.002,
		ModelScale: 0.000003,
	},
	{
		Name:       "Hubble",
		Mass:       11600e-24,
		Position:   mgl64.Vec3{4.487378270154649e-01, 8.751063507720495e-01, 1.817069672476064e-04},
		Velocity:   mgl64.Vec3{-1.303624904379408e-02, 5.738929759261992e-03, 2.893730048309336e-03},
		Radius:     0.002,
		ModelScale: 0.000003,
	},
}

func Lookup(name string) (Entry, bool) {
	for _, e := range Table {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func Names() []string {
	names := make([]string, len(Table))
	for i, e := range Table {
		names[i] = e.Name
	}
	return names
}

// Specs returns scene-unit specs for the named bodies in the order given.
// Unknown names are reported in missing.
func Specs(names []string) (specs []body.Spec, missing []string) {
	for _, n := range names {
		e, ok := Lookup(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		specs = append(specs, e.Spec())
	}
	return specs, missing
}

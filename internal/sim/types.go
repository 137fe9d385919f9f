package sim

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/gravity"
	"github.com/san-kum/solsim/internal/integrators"
	"github.com/san-kum/solsim/internal/lagrange"
)

type Metric interface {
	Name() string
	Observe(bodies []*body.Body, t float64)
	Value() float64
	Reset()
}

// Observer is called once per tick after every derived view has settled.
type Observer interface {
	OnTick(bodies []*body.Body, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(bodies []*body.Body, t float64)

func (f ObserverFunc) OnTick(bodies []*body.Body, t float64) { f(bodies, t) }

type Config struct {
	Gravity    gravity.Gravity
	Integrator integrators.Integrator

	// Substeps splits each tick's step evenly. One reproduces the single
	// update per tick of the reference ephemeris runs.
	Substeps int

	// TrailCapacity is the per-body trail length; negative disables trails.
	TrailCapacity int

	Locator *lagrange.Locator
	Halo    *lagrange.Halo

	// ValidateState makes Tick report NaN or Inf positions and velocities.
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Gravity:       gravity.Default(),
		Integrator:    integrators.NewSymplecticEuler(),
		Substeps:      1,
		TrailCapacity: 1024,
		Locator:       lagrange.NewLocator("", "", lagrange.DefaultPoints()),
	}
}

// RunConfig drives a headless run. Dt is the wall time fed to each tick and
// Duration is in simulated days.
type RunConfig struct {
	Dt          float64
	Duration    float64
	SampleEvery int
	MaxTicks    int // 0 allows ten times the ticks planned at the starting speed
}

type Result struct {
	Names       []string
	Times       []float64      // simulated days
	Positions   [][]mgl64.Vec3 // [sample][body], NaN once a body is removed
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

type BodyState struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Mass     float64      `json:"mass"`
	Position mgl64.Vec3   `json:"position"`
	Velocity mgl64.Vec3   `json:"velocity"`
	Radius   float64      `json:"radius"`
	Visible  bool         `json:"visible"`
	Focused  bool         `json:"focused,omitempty"`
	Trail    []mgl64.Vec3 `json:"trail,omitempty"`
}

type PointState struct {
	Name     string     `json:"name"`
	Offset   float64    `json:"offset"`
	Position mgl64.Vec3 `json:"position"`
}

// Frame is a copy of everything a renderer needs for one tick. It shares no
// memory with the simulation.
type Frame struct {
	Tick    int          `json:"tick"`
	SimTime float64      `json:"sim_time"`
	Date    time.Time    `json:"date"`
	Speed   float64      `json:"speed"`
	Paused  bool         `json:"paused"`
	Bodies  []BodyState  `json:"bodies"`
	Points  []PointState `json:"points"`
	View    mgl64.Quat   `json:"-"`
}

// Body returns the named body state.
func (f *Frame) Body(name string) (BodyState, bool) {
	for _, b := range f.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

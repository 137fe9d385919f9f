// Package sim runs the tick loop: forces, integration, then the derived
// views (trails, Lagrange points) that renderers read.
//
// A Simulation is single-threaded. Every method must be called from the
// goroutine that owns it; front ends marshal UI actions onto that goroutine.
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/clock"
	"github.com/san-kum/solsim/internal/gravity"
	"github.com/san-kum/solsim/internal/integrators"
	"github.com/san-kum/solsim/internal/lagrange"
	"github.com/san-kum/solsim/internal/trail"
)

type Simulation struct {
	cfg       Config
	specs     []body.Spec
	reg       *body.Registry
	clock     *clock.Clock
	view      mgl64.Quat
	metrics   []Metric
	observers []Observer
	ticks     int
	haloTime  float64 // real seconds spent unpaused
}

// New validates every spec and builds the initial body set. A bad mass is a
// configuration error and no simulation is returned.
func New(specs []body.Spec, cfg Config) (*Simulation, error) {
	if len(specs) == 0 {
		return nil, ErrNoBodies
	}
	for _, s := range specs {
		if err := body.Validate(s); err != nil {
			return nil, err
		}
	}
	if cfg.Gravity == 0 {
		cfg.Gravity = gravity.Default()
	}
	if cfg.Integrator == nil {
		cfg.Integrator = integrators.NewSymplecticEuler()
	}
	if cfg.Substeps < 1 {
		cfg.Substeps = 1
	}

	s := &Simulation{
		cfg:   cfg,
		specs: append([]body.Spec(nil), specs...),
		reg:   body.NewRegistry(cfg.TrailCapacity),
		clock: clock.New(),
		view:  mgl64.QuatIdent(),
	}
	if err := s.reg.AddAll(s.specs); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Registry() *body.Registry           { return s.reg }
func (s *Simulation) Clock() *clock.Clock                { return s.clock }
func (s *Simulation) Locator() *lagrange.Locator         { return s.cfg.Locator }
func (s *Simulation) Gravity() gravity.Gravity           { return s.cfg.Gravity }
func (s *Simulation) Integrator() integrators.Integrator { return s.cfg.Integrator }
func (s *Simulation) Ticks() int                         { return s.ticks }

// SetView sets the camera rotation that Lagrange markers copy.
func (s *Simulation) SetView(q mgl64.Quat) { s.view = q }

func (s *Simulation) accelerate(bodies []*body.Body) {
	gravity.Accumulate(s.cfg.Gravity, bodies)
}

// Tick advances the simulation by realDt wall seconds. Pending removals are
// applied first, so the body set never changes mid-step. While paused forces
// and derived views are still computed but no body moves.
//
// The returned error is always nil unless ValidateState is set.
func (s *Simulation) Tick(realDt float64) error {
	s.reg.Flush()
	dt := s.clock.Advance(realDt)
	bodies := s.reg.Bodies()
	paused := s.clock.Paused()

	if paused {
		s.accelerate(bodies)
	} else {
		s.haloTime += realDt
		h := dt / float64(s.cfg.Substeps)
		for i := 0; i < s.cfg.Substeps; i++ {
			s.accelerate(bodies)
			s.cfg.Integrator.Step(bodies, s.accelerate, h)
		}
	}

	// The halo body is placed before trails are recorded so its trail
	// follows the drawn position.
	if s.cfg.Locator != nil {
		s.cfg.Locator.Update(bodies, s.view)
		if s.cfg.Halo != nil && !paused {
			s.cfg.Halo.Apply(bodies, s.cfg.Locator, s.haloTime)
		}
	}
	trail.RecordAll(bodies)

	t := s.clock.SimTime()
	for _, m := range s.metrics {
		m.Observe(bodies, t)
	}
	for _, o := range s.observers {
		o.OnTick(bodies, t)
	}
	s.ticks++

	if s.cfg.ValidateState {
		if b := firstInvalid(bodies); b != nil {
			return &SimulationError{Step: s.ticks, Time: t, Body: b.Name, Wrapped: ErrInvalidState}
		}
	}
	return nil
}

func firstInvalid(bodies []*body.Body) *body.Body {
	for _, b := range bodies {
		for i := 0; i < 3; i++ {
			if !isFinite(b.Position[i]) || !isFinite(b.Velocity[i]) {
				return b
			}
		}
	}
	return nil
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// Reset rebuilds the initial bodies and restores speed, pause and SimTime.
func (s *Simulation) Reset() {
	s.reg.Reset()
	// Specs were validated in New.
	_ = s.reg.AddAll(s.specs)
	s.clock.Reset()
	if s.cfg.Locator != nil {
		s.cfg.Locator.Reset()
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.ticks = 0
	s.haloTime = 0
}

// Run ticks headlessly until Duration simulated days have passed, sampling
// positions every SampleEvery ticks. Speed or pause changes made by
// observers mid-run are honoured; a run that cannot reach Duration within
// MaxTicks ends with ErrRunStalled in Result.Errors.
func (s *Simulation) Run(ctx context.Context, cfg RunConfig) (*Result, error) {
	if err := s.validateRun(cfg); err != nil {
		return nil, err
	}
	if cfg.SampleEvery < 1 {
		cfg.SampleEvery = 1
	}

	planned := int(math.Ceil(cfg.Duration/(cfg.Dt*s.clock.Speed()) - 1e-9))
	maxTicks := cfg.MaxTicks
	if maxTicks <= 0 {
		maxTicks = 10*planned + 100
	}
	samples := planned/cfg.SampleEvery + 2

	bodies := s.reg.Bodies()
	result := &Result{
		Names:     make([]string, len(bodies)),
		Times:     make([]float64, 0, samples),
		Positions: make([][]mgl64.Vec3, 0, samples),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}
	for i, b := range bodies {
		result.Names[i] = b.Name
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	initialEnergy := gravity.Energy(s.cfg.Gravity, bodies)
	start := s.clock.SimTime()
	s.sample(result)
	sampled := true

	for s.clock.SimTime()-start < cfg.Duration-1e-9 {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if result.StepsTaken >= maxTicks {
			result.Errors = append(result.Errors, &SimulationError{
				Step:    s.ticks,
				Time:    s.clock.SimTime(),
				Wrapped: fmt.Errorf("%w: %.4f of %.4f days after %d ticks", ErrRunStalled, s.clock.SimTime()-start, cfg.Duration, result.StepsTaken),
			})
			break
		}

		if err := s.Tick(cfg.Dt); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++

		sampled = result.StepsTaken%cfg.SampleEvery == 0
		if sampled {
			s.sample(result)
		}
	}
	if !sampled {
		s.sample(result)
	}

	finalEnergy := gravity.Energy(s.cfg.Gravity, s.reg.Bodies())
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulation) validateRun(cfg RunConfig) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidRun, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidRun, cfg.Duration)
	}
	if !(s.clock.Speed() > 0) {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidRun, s.clock.Speed())
	}
	return nil
}

func (s *Simulation) sample(r *Result) {
	row := make([]mgl64.Vec3, len(r.Names))
	for i, name := range r.Names {
		if b, ok := s.reg.Lookup(name); ok {
			row[i] = b.Position
		} else {
			row[i] = mgl64.Vec3{math.NaN(), math.NaN(), math.NaN()}
		}
	}
	r.Times = append(r.Times, s.clock.SimTime())
	r.Positions = append(r.Positions, row)
}

// Frame copies the current state for rendering. Trails are included only
// when asked for.
func (s *Simulation) Frame(withTrails bool) Frame {
	bodies := s.reg.Bodies()
	f := Frame{
		Tick:    s.ticks,
		SimTime: s.clock.SimTime(),
		Date:    s.clock.Date(),
		Speed:   s.clock.Speed(),
		Paused:  s.clock.Paused(),
		Bodies:  make([]BodyState, len(bodies)),
		View:    s.view,
	}
	for i, b := range bodies {
		bs := BodyState{
			ID:       b.ID,
			Name:     b.Name,
			Mass:     b.Mass,
			Position: b.Position,
			Velocity: b.Velocity,
			Radius:   b.Radius,
			Visible:  b.Visible,
			Focused:  b.Focused,
		}
		if withTrails && b.Trail != nil {
			bs.Trail = b.Trail.Points()
		}
		f.Bodies[i] = bs
	}
	if s.cfg.Locator != nil {
		for _, p := range s.cfg.Locator.Points {
			f.Points = append(f.Points, PointState{Name: p.Name, Offset: p.Offset, Position: p.Position})
		}
	}
	return f
}

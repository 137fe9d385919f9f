// Package experiment turns a validated config into a ready simulation.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/gravity"
	"github.com/san-kum/solsim/internal/integrators"
	"github.com/san-kum/solsim/internal/lagrange"
	"github.com/san-kum/solsim/internal/sim"
)

type Experiment struct {
	cfg        *config.Config
	simulation *sim.Simulation
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the simulation and attaches the default metrics.
func (e *Experiment) Setup() error {
	s, err := Build(e.cfg)
	if err != nil {
		return err
	}
	for _, m := range DefaultMetrics(s) {
		s.AddMetric(m)
	}
	e.simulation = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulation == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulation.Run(ctx, RunConfig(e.cfg))
}

// Simulation returns the underlying simulation for adding observers.
func (e *Experiment) Simulation() *sim.Simulation {
	return e.simulation
}

// Build validates cfg and creates a simulation from it. Any configuration
// error, a non-positive mass included, is returned and nothing is built.
func Build(cfg *config.Config) (*sim.Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	specs, err := cfg.Specs()
	if err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	g := gravity.Default()
	if cfg.Gravity > 0 {
		g = gravity.Scale(cfg.Gravity)
	}

	points := make([]*lagrange.Point, 0, len(cfg.Lagrange.Points))
	for _, p := range cfg.Lagrange.Points {
		points = append(points, &lagrange.Point{Name: p.Name, Offset: p.Offset})
	}
	locator := lagrange.NewLocator(cfg.Lagrange.Sun, cfg.Lagrange.Earth, points)
	locator.Relative = cfg.Lagrange.Relative
	locator.Reset()

	simCfg := sim.Config{
		Gravity:       g,
		Integrator:    integ,
		Substeps:      cfg.Substeps,
		TrailCapacity: cfg.TrailCapacity(),
		Locator:       locator,
		ValidateState: true,
	}
	if cfg.Halo.Enabled {
		h := lagrange.NewHalo(cfg.Halo.Body, cfg.Halo.Point)
		if cfg.Halo.Radius > 0 {
			h.Radius = cfg.Halo.Radius
		}
		if cfg.Halo.Rate != 0 {
			h.Rate = cfg.Halo.Rate
		}
		simCfg.Halo = h
	}

	s, err := sim.New(specs, simCfg)
	if err != nil {
		return nil, err
	}
	s.Clock().SetSpeed(cfg.Speed)
	return s, nil
}

func RunConfig(cfg *config.Config) sim.RunConfig {
	return sim.RunConfig{
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: cfg.SampleEvery,
	}
}

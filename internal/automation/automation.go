// Package automation runs scripted and batch simulations: timed control
// events, multi-step scenarios, mass sweeps and randomised trials.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/solsim/internal/config"
	"github.com/san-kum/solsim/internal/experiment"
	"github.com/san-kum/solsim/internal/sim"
	"github.com/san-kum/solsim/internal/storage"
	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset or a config file and overrides the
// fields that are set.
type ScenarioStep struct {
	Preset     string             `yaml:"preset"`
	Config     string             `yaml:"config"`
	Integrator string             `yaml:"integrator"`
	Speed      float64            `yaml:"speed"`
	Duration   float64            `yaml:"duration"`
	Dt         float64            `yaml:"dt"`
	Substeps   int                `yaml:"substeps"`
	Masses     map[string]float64 `yaml:"masses"`
	Events     []Event            `yaml:"events"`
	SaveAs     string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (st ScenarioStep) config() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Config != "":
		c, err := config.Load(st.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		name := st.Preset
		if name == "" {
			name = config.DefaultPreset
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
		}
	}

	if st.Integrator != "" {
		cfg.Integrator = st.Integrator
	}
	if st.Speed != 0 {
		cfg.Speed = st.Speed
	}
	if st.Duration != 0 {
		cfg.Duration = st.Duration
	}
	if st.Dt != 0 {
		cfg.Dt = st.Dt
	}
	if st.Substeps != 0 {
		cfg.Substeps = st.Substeps
	}
	if len(st.Masses) > 0 {
		if cfg.Masses == nil {
			cfg.Masses = make(map[string]float64, len(st.Masses))
		}
		for k, v := range st.Masses {
			cfg.Masses[k] = v
		}
	}
	return cfg, nil
}

// RunScenario executes every step in order. Steps with SaveAs set are
// written to store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("running step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		script, err := NewScript(step.Events)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		script.Attach(exp.Simulation())

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)

		if step.SaveAs != "" && store != nil {
			id, err := store.Save(runInfo(step.SaveAs, cfg, exp.Simulation()), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			log.Info("saved step", "step", i+1, "run", id)
		}
	}

	return results, nil
}

func runInfo(name string, cfg *config.Config, s *sim.Simulation) storage.RunInfo {
	return storage.RunInfo{
		Preset:     name,
		Integrator: s.Integrator().Name(),
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Speed:      cfg.Speed,
		Substeps:   cfg.Substeps,
		Epoch:      s.Clock().Epoch(),
	}
}

// MassSweep reruns a preset while stepping one body's mass across a range.
type MassSweep struct {
	Preset   string
	Body     string
	Min, Max float64
	NumSteps int
}

type SweepResult struct {
	Mass        float64
	EnergyDrift float64
	Bound       float64
	Metrics     map[string]float64
}

func RunSweep(ctx context.Context, sweep *MassSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	step := (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		mass := sweep.Min + float64(i)*step
		res, err := runWithMass(ctx, sweep.Preset, sweep.Body, mass)
		if err != nil {
			return results, fmt.Errorf("sweep %s=%g: %w", sweep.Body, mass, err)
		}
		results = append(results, SweepResult{
			Mass:        mass,
			EnergyDrift: res.EnergyDrift,
			Bound:       res.Metrics["bound"],
			Metrics:     res.Metrics,
		})
		log.Info("sweep", "step", i+1, "of", sweep.NumSteps, "body", sweep.Body, "mass", mass)
	}
	return results, nil
}

func runWithMass(ctx context.Context, preset, name string, mass float64) (*sim.Result, error) {
	st := ScenarioStep{Preset: preset, Masses: map[string]float64{name: mass}}
	cfg, err := st.config()
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	if _, ok := exp.Simulation().Registry().Lookup(name); !ok {
		return nil, fmt.Errorf("no body %q in preset %s", name, cfg.Preset)
	}
	return exp.Run(ctx)
}

// MonteCarloConfig perturbs one body's mass by up to ±Perturbation (a
// fraction) per trial.
type MonteCarloConfig struct {
	Preset       string
	Body         string
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID     int
	Mass        float64
	EnergyDrift float64
	Stable      bool // every body stayed within the bound radius
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	base := config.GetPreset(cfg.Preset)
	if base == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, cfg.Preset)
	}
	specs, err := base.Specs()
	if err != nil {
		return nil, err
	}
	baseMass := 0.0
	for _, s := range specs {
		if s.Name == cfg.Body {
			baseMass = s.Mass
		}
	}
	if baseMass == 0 {
		return nil, fmt.Errorf("no body %q in preset %s", cfg.Body, cfg.Preset)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		mass := baseMass * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		res, err := runWithMass(ctx, cfg.Preset, cfg.Body, mass)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}
		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Mass:        mass,
			EnergyDrift: res.EnergyDrift,
			Stable:      res.Metrics["bound"] == 1,
		})
		if (trial+1)%10 == 0 {
			log.Info("monte carlo", "done", trial+1, "of", cfg.NumTrials)
		}
	}
	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}

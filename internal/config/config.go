package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/ephemeris"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPreset        = "solar"
	DefaultIntegrator    = "symplectic"
	DefaultDt            = 1.0 / 60
	DefaultSpeed         = 1.0
	DefaultDuration      = 365.0
	DefaultSubsteps      = 1
	DefaultSampleEvery   = 10
	DefaultTrailCapacity = 1024
	DefaultHaloRadius    = 0.01
	DefaultHaloRate      = 0.1
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Preset      string             `yaml:"preset,omitempty"`
	Bodies      []string           `yaml:"bodies,omitempty"`
	Custom      []BodyConfig       `yaml:"custom,omitempty"`
	Integrator  string             `yaml:"integrator"`
	Dt          float64            `yaml:"dt"`
	Speed       float64            `yaml:"speed"`
	Duration    float64            `yaml:"duration"`
	Substeps    int                `yaml:"substeps"`
	SampleEvery int                `yaml:"sample_every"`
	Gravity     float64            `yaml:"gravity,omitempty"`
	Masses      map[string]float64 `yaml:"masses,omitempty"`
	Trail       TrailConfig        `yaml:"trail"`
	Lagrange    LagrangeConfig     `yaml:"lagrange"`
	Halo        HaloConfig         `yaml:"halo"`
}

// BodyConfig describes a body outside the ephemeris table, in scene units.
type BodyConfig struct {
	Name     string     `yaml:"name"`
	Mass     float64    `yaml:"mass"`
	Position [3]float64 `yaml:"position"`
	Velocity [3]float64 `yaml:"velocity"`
	Radius   float64    `yaml:"radius,omitempty"`
}

type TrailConfig struct {
	Enabled  bool `yaml:"enabled"`
	Capacity int  `yaml:"capacity"`
}

// LagrangeConfig places points at earth + unit(sun - earth) * offset, the
// offset in scene units (0.1 is 0.01 AU). With Relative set the offset is a
// fraction of the Sun-Earth separation instead.
type LagrangeConfig struct {
	Sun      string        `yaml:"sun"`
	Earth    string        `yaml:"earth"`
	Relative bool          `yaml:"relative,omitempty"`
	Points   []PointConfig `yaml:"points"`
}

type PointConfig struct {
	Name   string  `yaml:"name"`
	Offset float64 `yaml:"offset"`
}

type HaloConfig struct {
	Enabled bool    `yaml:"enabled"`
	Body    string  `yaml:"body"`
	Point   string  `yaml:"point"`
	Radius  float64 `yaml:"radius"`
	Rate    float64 `yaml:"rate"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:      DefaultPreset,
		Bodies:      []string{"Sun", "Mercury", "Venus", "Earth", "Moon", "Mars", "Jupiter", "Saturn", "Uranus", "Pluto"},
		Integrator:  DefaultIntegrator,
		Dt:          DefaultDt,
		Speed:       DefaultSpeed,
		Duration:    DefaultDuration,
		Substeps:    DefaultSubsteps,
		SampleEvery: DefaultSampleEvery,
		Trail:       TrailConfig{Enabled: true, Capacity: DefaultTrailCapacity},
		Lagrange:    DefaultLagrange(),
		Halo: HaloConfig{
			Body:   "JWST",
			Point:  "SE-L2",
			Radius: DefaultHaloRadius,
			Rate:   DefaultHaloRate,
		},
	}
}

// Convention names the offset reading in use, for listings.
func (l LagrangeConfig) Convention() string {
	if l.Relative {
		return "relative"
	}
	return "absolute"
}

func DefaultLagrange() LagrangeConfig {
	return LagrangeConfig{
		Sun:   "Sun",
		Earth: "Earth",
		Points: []PointConfig{
			{Name: "SE-L1", Offset: 0.1},
			{Name: "SE-L2", Offset: -0.1},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that would stop a simulation from
// starting.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if !(c.Speed > 0) {
		return fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidConfig, c.Speed)
	}
	if c.Substeps < 0 {
		return fmt.Errorf("%w: substeps must not be negative, got %d", ErrInvalidConfig, c.Substeps)
	}
	if c.Gravity < 0 {
		return fmt.Errorf("%w: gravity must not be negative, got %g", ErrInvalidConfig, c.Gravity)
	}
	if len(c.Bodies) == 0 && len(c.Custom) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidConfig)
	}
	specs, err := c.Specs()
	if err != nil {
		return err
	}
	for _, s := range specs {
		if err := body.Validate(s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// Specs resolves ephemeris names and custom bodies into scene-unit specs,
// with mass overrides applied.
func (c *Config) Specs() ([]body.Spec, error) {
	specs, missing := ephemeris.Specs(c.Bodies)
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: unknown bodies %v", ErrInvalidConfig, missing)
	}
	for _, b := range c.Custom {
		radius := b.Radius
		if radius == 0 {
			radius = 0.005
		}
		specs = append(specs, body.Spec{
			Name:     b.Name,
			Mass:     b.Mass,
			Position: mgl64.Vec3(b.Position),
			Velocity: mgl64.Vec3(b.Velocity),
			Radius:   radius,
		})
	}
	for i := range specs {
		if m, ok := c.Masses[specs[i].Name]; ok {
			specs[i].Mass = m
		}
	}
	return specs, nil
}

// TrailCapacity returns the registry trail capacity; -1 disables trails.
func (c *Config) TrailCapacity() int {
	if !c.Trail.Enabled {
		return -1
	}
	if c.Trail.Capacity <= 0 {
		return DefaultTrailCapacity
	}
	return c.Trail.Capacity
}

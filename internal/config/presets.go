package config

import "sort"

var inner = []string{"Sun", "Mercury", "Venus", "Earth", "Moon", "Mars"}

// Presets are the built-in configurations. All of them use absolute
// Lagrange offsets; set lagrange.relative in a config file for fractions of
// the Sun-Earth separation.
var Presets = map[string]*Config{
	"solar": DefaultConfig(),
	"full": withDefaults(&Config{
		Bodies: []string{"Sun", "Mercury", "Venus", "Earth", "Moon", "Mars", "Jupiter", "Saturn",
			"Uranus", "Pluto", "JWST", "ISS", "Hubble"},
		Halo: HaloConfig{Enabled: true, Body: "JWST", Point: "SE-L2", Radius: DefaultHaloRadius, Rate: DefaultHaloRate},
	}),
	"inner": withDefaults(&Config{
		Bodies:   inner,
		Duration: 687,
	}),
	"earth-moon": withDefaults(&Config{
		Bodies:   []string{"Sun", "Earth", "Moon"},
		Speed:    0.1,
		Duration: 27.3,
		Substeps: 4,
	}),
	"binary": withDefaults(&Config{
		Custom: []BodyConfig{
			{Name: "A", Mass: 1000, Velocity: [3]float64{0, -0.00272, 0}, Radius: 0.05},
			{Name: "B", Mass: 1000, Position: [3]float64{10, 0, 0}, Velocity: [3]float64{0, 0.00272, 0}, Radius: 0.05},
		},
		Speed:    100,
		Duration: 16000,
	}),
}

// withDefaults fills every zero field of c from DefaultConfig.
func withDefaults(c *Config) *Config {
	d := DefaultConfig()
	if c.Bodies == nil && c.Custom == nil {
		c.Bodies = d.Bodies
	}
	if c.Integrator == "" {
		c.Integrator = d.Integrator
	}
	if c.Dt == 0 {
		c.Dt = d.Dt
	}
	if c.Speed == 0 {
		c.Speed = d.Speed
	}
	if c.Duration == 0 {
		c.Duration = d.Duration
	}
	if c.Substeps == 0 {
		c.Substeps = d.Substeps
	}
	if c.SampleEvery == 0 {
		c.SampleEvery = d.SampleEvery
	}
	if c.Trail.Capacity == 0 {
		c.Trail = d.Trail
	}
	if c.Lagrange.Points == nil {
		c.Lagrange = d.Lagrange
	}
	if c.Halo.Body == "" {
		c.Halo = d.Halo
	}
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Preset = name
	cfg.Bodies = append([]string(nil), p.Bodies...)
	cfg.Custom = append([]BodyConfig(nil), p.Custom...)
	cfg.Lagrange.Points = append([]PointConfig(nil), p.Lagrange.Points...)
	cfg.Masses = make(map[string]float64, len(p.Masses))
	for k, v := range p.Masses {
		cfg.Masses[k] = v
	}
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/config"
)

func TestBuild(t *testing.T) {
	cfg := config.GetPreset("full")
	cfg.Speed = 2
	s, err := Build(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.Registry().Len() != 13 {
		t.Errorf("expected 13 bodies, got %d", s.Registry().Len())
	}
	if s.Clock().Speed() != 2 {
		t.Errorf("speed = %f, want 2", s.Clock().Speed())
	}
	if len(s.Locator().Points) != 2 {
		t.Errorf("expected two Lagrange points")
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		target error
	}{
		{"zero mass", func(c *config.Config) { c.Masses = map[string]float64{"Sun": 0} }, body.ErrNonPositiveMass},
		{"unknown integrator", func(c *config.Config) { c.Integrator = "rk45" }, config.ErrInvalidConfig},
		{"duplicate body", func(c *config.Config) { c.Bodies = []string{"Sun", "Sun"} }, body.ErrDuplicateBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			s, err := Build(cfg)
			if s != nil || !errors.Is(err, tt.target) {
				t.Errorf("Build() = %v, %v; want error %v", s, err, tt.target)
			}
		})
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.GetPreset("earth-moon")
	cfg.Duration = 2
	e := New(cfg)

	if _, err := e.Run(context.Background()); err == nil {
		t.Error("expected an error before Setup")
	}
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"energy_drift", "momentum_drift", "bound", "separation_Earth_Moon"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if len(res.Errors) != 0 {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

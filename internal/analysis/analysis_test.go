package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/sim"
)

func TestOrbitalPeriod(t *testing.T) {
	series := make([]float64, 3650)
	for i := range series {
		series[i] = 10 * math.Cos(2*math.Pi*float64(i)/365)
	}

	p, err := OrbitalPeriod(series, 1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(p-365) > 1e-9 {
		t.Errorf("period = %f, want 365", p)
	}
}

func TestOrbitalPeriodErrors(t *testing.T) {
	if _, err := OrbitalPeriod([]float64{1, 2}, 1); !errors.Is(err, ErrShortSeries) {
		t.Errorf("expected ErrShortSeries, got %v", err)
	}
	if _, err := OrbitalPeriod(make([]float64, 64), 1); !errors.Is(err, ErrShortSeries) {
		t.Errorf("flat series: expected ErrShortSeries, got %v", err)
	}
}

func TestRadialStats(t *testing.T) {
	positions := []mgl64.Vec3{{9, 0, 0}, {0, 11, 0}, {-9, 0, 0}, {0, -11, 0}}
	r := RadialStats(positions, mgl64.Vec3{})

	if r.Mean != 10 {
		t.Errorf("Mean = %f, want 10", r.Mean)
	}
	if r.Min != 9 || r.Max != 11 {
		t.Errorf("Min/Max = %f/%f", r.Min, r.Max)
	}
	if math.Abs(r.Eccentricity-0.1) > 1e-12 {
		t.Errorf("Eccentricity = %f, want 0.1", r.Eccentricity)
	}
	if r.StdDev <= 0 {
		t.Errorf("StdDev = %f", r.StdDev)
	}
}

func circularResult() *sim.Result {
	res := &sim.Result{Names: []string{"Sun", "Earth"}}
	for i := 0; i < 1460; i++ {
		a := 2 * math.Pi * float64(i) / 365
		res.Times = append(res.Times, float64(i))
		res.Positions = append(res.Positions, []mgl64.Vec3{{}, {10 * math.Cos(a), 10 * math.Sin(a), 0}})
	}
	return res
}

func TestSummarise(t *testing.T) {
	out, err := Summarise(circularResult(), "Sun")
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Name != "Earth" {
		t.Fatalf("unexpected summary %+v", out)
	}
	if math.Abs(out[0].Radial.Mean-10) > 1e-9 {
		t.Errorf("mean distance = %f", out[0].Radial.Mean)
	}
	if math.Abs(out[0].Period-365) > 1e-6 {
		t.Errorf("period = %f, want 365", out[0].Period)
	}
}

func TestDistancesUnknownBody(t *testing.T) {
	if _, err := Distances(circularResult(), "Vulcan", "Sun"); err == nil {
		t.Error("expected an error for an unknown body")
	}
}

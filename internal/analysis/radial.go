package analysis

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/sim"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Radial struct {
	Mean         float64
	StdDev       float64
	Min          float64
	Max          float64
	Eccentricity float64 // (max-min)/(max+min)
}

// RadialStats summarises the distance of positions from centre.
func RadialStats(positions []mgl64.Vec3, centre mgl64.Vec3) Radial {
	if len(positions) == 0 {
		return Radial{}
	}
	d := make([]float64, len(positions))
	for i, p := range positions {
		d[i] = p.Sub(centre).Len()
	}
	return radial(d)
}

func radial(d []float64) Radial {
	mean, std := stat.MeanStdDev(d, nil)
	r := Radial{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(d),
		Max:    floats.Max(d),
	}
	if math.IsNaN(std) {
		r.StdDev = 0
	}
	if sum := r.Max + r.Min; sum > 0 {
		r.Eccentricity = (r.Max - r.Min) / sum
	}
	return r
}

// Distances returns the distance between two bodies at every sample.
// Samples after either body was removed are dropped.
func Distances(res *sim.Result, name, ref string) ([]float64, error) {
	bi, ri := index(res.Names, name), index(res.Names, ref)
	if bi < 0 {
		return nil, fmt.Errorf("analysis: no body %q in result", name)
	}
	if ri < 0 {
		return nil, fmt.Errorf("analysis: no body %q in result", ref)
	}

	d := make([]float64, 0, len(res.Positions))
	for _, row := range res.Positions {
		v := row[bi].Sub(row[ri]).Len()
		if math.IsNaN(v) {
			break
		}
		d = append(d, v)
	}
	return d, nil
}

// Track returns one body's positions relative to ref.
func Track(res *sim.Result, name, ref string) ([]mgl64.Vec3, error) {
	bi, ri := index(res.Names, name), index(res.Names, ref)
	if bi < 0 || ri < 0 {
		return nil, fmt.Errorf("analysis: %q or %q missing from result", name, ref)
	}
	out := make([]mgl64.Vec3, 0, len(res.Positions))
	for _, row := range res.Positions {
		out = append(out, row[bi].Sub(row[ri]))
	}
	return out, nil
}

// Summary is the per-body report of the analyze command.
type Summary struct {
	Name   string
	Radial Radial
	Period float64 // days, 0 when undetermined
}

// Summarise reports every body's orbit around ref.
func Summarise(res *sim.Result, ref string) ([]Summary, error) {
	if len(res.Times) < 2 {
		return nil, ErrShortSeries
	}
	interval := (res.Times[len(res.Times)-1] - res.Times[0]) / float64(len(res.Times)-1)

	out := make([]Summary, 0, len(res.Names))
	for _, name := range res.Names {
		if name == ref {
			continue
		}
		d, err := Distances(res, name, ref)
		if err != nil {
			return nil, err
		}
		if len(d) == 0 {
			continue
		}
		s := Summary{Name: name, Radial: radial(d)}
		if tr, err := Track(res, name, ref); err == nil {
			xs := make([]float64, len(d))
			for i := range d {
				xs[i] = tr[i].X()
			}
			s.Period, _ = OrbitalPeriod(xs, interval)
		}
		out = append(out, s)
	}
	return out, nil
}

func index(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

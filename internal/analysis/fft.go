package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSeries = errors.New("analysis: series too short for a spectrum")

// PowerSpectrum returns |X_k| for k below the Nyquist bin. The mean is
// removed first so bin 0 carries no offset.
func PowerSpectrum(data []float64) []float64 {
	mean := stat.Mean(data, nil)
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// OrbitalPeriod returns the period of the strongest oscillation in series,
// sampled every interval. Resolution is limited to n·interval/k, so the
// series should span several periods.
func OrbitalPeriod(series []float64, interval float64) (float64, error) {
	if len(series) < 4 || interval <= 0 {
		return 0, ErrShortSeries
	}

	ps := PowerSpectrum(series)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, ErrShortSeries
	}

	return float64(len(series)) * interval / float64(peak), nil
}

package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var ErrTooShort = errors.New("analysis: series needs at least 4 samples")

// Peak is one bin of a power spectrum.
type Peak struct {
	Bin       int
	Frequency float64
	Period    float64
	Power     float64
}

// PowerSpectrum returns the squared magnitude of the first half of the FFT
// of data with its mean removed. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return []float64{}
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		mag := cmplx.Abs(spectrum[i])
		ps[i] = mag * mag
	}
	return ps
}

// Dominant returns the strongest non-constant frequency of data sampled
// every interval time units.
func Dominant(data []float64, interval float64) (Peak, error) {
	if len(data) < 4 {
		return Peak{}, ErrTooShort
	}
	if interval <= 0 {
		interval = 1
	}

	ps := PowerSpectrum(data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}

	freq := float64(best) / (float64(len(data)) * interval)
	period := math.Inf(1)
	if freq > 0 {
		period = 1 / freq
	}
	return Peak{Bin: best, Frequency: freq, Period: period, Power: ps[best]}, nil
}

package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrShortTrace = errors.New("analysis: trace too short")

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFT zero pads data to a power of two before transforming it.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	if n != len(data) {
		padded := make([]float64, n)
		copy(padded, data)
		data = padded
	}
	return fft.FFTReal(data)
}

func PowerSpectrum(data []float64) []float64 {
	spec := FFT(data)
	ps := make([]float64, len(spec)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}

	return ps
}

// DominantFrequency returns the frequency, in cycles per unit time, of the
// strongest non-DC bin of a trace sampled every dt.
func DominantFrequency(trace []float64, dt float64) (float64, error) {
	if len(trace) < 4 {
		return 0, ErrShortTrace
	}
	if !(dt > 0) {
		return 0, errors.New("analysis: dt must be positive")
	}

	mean := stat.Mean(trace, nil)
	centred := make([]float64, len(trace))
	for i, v := range trace {
		centred[i] = v - mean
	}

	ps := PowerSpectrum(centred)
	k := 1 + floats.MaxIdx(ps[1:])
	n := nextPow2(len(trace))
	return float64(k) / (float64(n) * dt), nil
}

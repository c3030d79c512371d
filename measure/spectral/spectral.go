package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// ErrEmptySignal is returned for signals too short to analyze.
var ErrEmptySignal = errors.New("spectral: signal is empty")

// minFFTSize keeps very short inputs from producing a degenerate transform.
const minFFTSize = 64

// Spectrum is a one-sided magnitude spectrum.
type Spectrum struct {
	Magnitude  []float64 // |X[k]| for k in [0, Size/2]
	Size       int       // transform length
	SampleRate float64
}

// BinHz returns the width of one bin in Hz.
func (s Spectrum) BinHz() float64 {
	return s.SampleRate / float64(s.Size)
}

// Frequency returns the center frequency of bin k.
func (s Spectrum) Frequency(k float64) float64 {
	return k * s.BinHz()
}

// Hann returns a periodic Hann window of length n.
func Hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}

	return w
}

// Analyze returns the Hann-windowed magnitude spectrum of signal.
func Analyze(signal []float64, sampleRate float64) (Spectrum, error) {
	if len(signal) == 0 {
		return Spectrum{}, ErrEmptySignal
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Spectrum{}, fmt.Errorf("spectral: sample rate must be positive and finite: %f", sampleRate)
	}

	size := nextPowerOfTwo(max(len(signal), minFFTSize))

	windowed := make([]float64, len(signal))
	vecmath.MulBlock(windowed, signal, Hann(len(signal)))

	in := make([]complex128, size)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return Spectrum{}, fmt.Errorf("spectral: plan %d-point FFT: %w", size, err)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return Spectrum{}, fmt.Errorf("spectral: forward FFT: %w", err)
	}

	half := size/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for k := range half {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, half)
	vecmath.Magnitude(mag, re, im)

	return Spectrum{Magnitude: mag, Size: size, SampleRate: sampleRate}, nil
}

// DominantFrequency returns the frequency of the strongest non-DC component
// of signal in Hz. The mean is removed first so a DC offset cannot leak into
// the lowest bins.
func DominantFrequency(signal []float64, sampleRate float64) (float64, error) {
	if len(signal) == 0 {
		return 0, ErrEmptySignal
	}

	var mean float64
	for _, v := range signal {
		mean += v
	}

	mean /= float64(len(signal))

	centered := make([]float64, len(signal))
	for i, v := range signal {
		centered[i] = v - mean
	}

	s, err := Analyze(centered, sampleRate)
	if err != nil {
		return 0, err
	}

	return s.Peak(), nil
}

// Peak returns the interpolated frequency of the largest bin above DC.
// Bin 0 and the Nyquist bin are never reported.
func (s Spectrum) Peak() float64 {
	n := len(s.Magnitude)
	if n < 3 {
		return 0
	}

	best := 1
	for k := 2; k < n-1; k++ {
		if s.Magnitude[k] > s.Magnitude[best] {
			best = k
		}
	}

	return s.Frequency(float64(best) + s.parabolicOffset(best))
}

// parabolicOffset fits a parabola through the log magnitudes of bins k-1, k
// and k+1 and returns the vertex offset in bins, within ±0.5.
func (s Spectrum) parabolicOffset(k int) float64 {
	const floor = 1e-30

	a := math.Log(s.Magnitude[k-1] + floor)
	b := math.Log(s.Magnitude[k] + floor)
	c := math.Log(s.Magnitude[k+1] + floor)

	den := a - 2*b + c
	if den >= 0 {
		return 0
	}

	return max(-0.5, min(0.5, 0.5*(a-c)/den))
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

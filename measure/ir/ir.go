package ir

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by decay analysis.
var (
	ErrEmptyIR  = errors.New("ir: impulse response is empty")
	ErrNoDecay  = errors.New("ir: insufficient decay for RT calculation")
	errNoEnergy = errors.New("ir: impulse response has no energy")
)

// schroederFloorDB is reported where the remaining energy is exactly zero.
const schroederFloorDB = -200.0

// Decay summarizes the energy decay of an impulse response.
type Decay struct {
	RT60       float64 // T30 when available, otherwise T20 (seconds)
	EDT        float64 // early decay time, 0 to -10 dB extrapolated (seconds)
	T20        float64 // -5 to -25 dB extrapolated to 60 dB (seconds)
	T30        float64 // -5 to -35 dB extrapolated to 60 dB (seconds)
	CenterTime float64 // energy centroid after the peak (seconds)
	PeakIndex  int     // index of the absolute maximum
}

// Analyze measures the decay of ir starting at its absolute peak.
func Analyze(ir []float64, sampleRate float64) (Decay, error) {
	if err := validate(ir, sampleRate); err != nil {
		return Decay{}, err
	}

	peak := peakIndex(ir)
	tail := ir[peak:]

	curve, err := SchroederDB(tail)
	if err != nil {
		return Decay{}, err
	}

	d := Decay{
		PeakIndex:  peak,
		EDT:        decayTime(curve, 0, -10, sampleRate),
		T20:        decayTime(curve, -5, -25, sampleRate),
		T30:        decayTime(curve, -5, -35, sampleRate),
		CenterTime: centerTime(tail, sampleRate),
	}

	d.RT60 = d.T30
	if d.RT60 == 0 {
		d.RT60 = d.T20
	}

	if d.RT60 == 0 {
		return d, ErrNoDecay
	}

	return d, nil
}

// RT60 returns the reverberation time of ir in seconds, preferring the T30
// range and falling back to T20.
func RT60(ir []float64, sampleRate float64) (float64, error) {
	d, err := Analyze(ir, sampleRate)
	if err != nil {
		return 0, err
	}

	return d.RT60, nil
}

// SchroederDB returns the backward-integrated energy of ir normalized to
// 0 dB at the first sample:
//
//	S[n] = 10*log10(sum_{k>=n} h[k]^2 / sum_k h[k]^2)
func SchroederDB(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	out := make([]float64, len(ir))

	var acc float64
	for i := len(ir) - 1; i >= 0; i-- {
		acc += ir[i] * ir[i]
		out[i] = acc
	}

	total := out[0]
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, errNoEnergy
	}

	for i, e := range out {
		if e <= 0 {
			out[i] = schroederFloorDB
			continue
		}

		out[i] = 10 * math.Log10(e/total)
	}

	return out, nil
}

// decayTime fits a line to curve between startDB and endDB by least squares
// and extrapolates its slope to a 60 dB drop. It returns 0 when the curve
// never spans the range or does not fall.
func decayTime(curve []float64, startDB, endDB, sampleRate float64) float64 {
	first, last := -1, -1

	for i, v := range curve {
		if first < 0 && v <= startDB {
			first = i
		}

		if first >= 0 && v <= endDB {
			last = i
			break
		}
	}

	if first < 0 || last <= first {
		return 0
	}

	var sx, sy, sxx, sxy float64

	for i := first; i <= last; i++ {
		x := float64(i - first)
		y := curve[i]
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}

	n := float64(last - first + 1)

	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}

	slope := (n*sxy - sx*sy) / den // dB per sample
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * sampleRate)
}

func centerTime(ir []float64, sampleRate float64) float64 {
	var num, den float64

	for i, v := range ir {
		e := v * v
		num += float64(i) * e
		den += e
	}

	if den <= 0 {
		return 0
	}

	return num / den / sampleRate
}

func peakIndex(ir []float64) int {
	idx, peak := 0, 0.0

	for i, v := range ir {
		if a := math.Abs(v); a > peak {
			idx, peak = i, a
		}
	}

	return idx
}

func validate(ir []float64, sampleRate float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("ir: sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

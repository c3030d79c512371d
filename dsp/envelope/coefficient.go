package envelope

import "math"

// Floor is the smallest level reported by detectors; it keeps later log and
// division steps finite.
const Floor = 1e-10

// Coefficient returns the one-pole smoothing coefficient for a time constant
// in milliseconds. Non-positive or non-finite inputs yield 0 (no smoothing).
func Coefficient(timeMs, sampleRate float64) float64 {
	samples := timeMs * sampleRate / 1000
	if !(samples > 0) || math.IsInf(samples, 0) {
		return 0
	}

	return math.Exp(-1 / samples)
}

// Smooth advances state toward input with coefficient c.
func Smooth(state, input, c float64) float64 {
	return state + (input-state)*(1-c)
}

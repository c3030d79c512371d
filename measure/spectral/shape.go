package spectral

import "math"

// Centroid returns the magnitude-weighted mean frequency in Hz, or 0 for an
// empty or silent spectrum.
func (s Spectrum) Centroid() float64 {
	var sum, weighted float64
	for k, m := range s.Magnitude {
		sum += m
		weighted += s.Frequency(float64(k)) * m
	}

	if sum == 0 {
		return 0
	}

	return weighted / sum
}

// Rolloff returns the lowest frequency below which fraction (0..1) of the
// spectral energy lies. 0.85 is the usual choice.
func (s Spectrum) Rolloff(fraction float64) float64 {
	var total float64
	for _, m := range s.Magnitude {
		total += m * m
	}

	if total == 0 {
		return 0
	}

	threshold := fraction * total

	var acc float64
	for k, m := range s.Magnitude {
		acc += m * m
		if acc >= threshold {
			return s.Frequency(float64(k))
		}
	}

	return s.Frequency(float64(len(s.Magnitude) - 1))
}

// Flatness returns the ratio of geometric to arithmetic mean magnitude,
// excluding DC: near 1 for noise, near 0 for a tone. A zero bin gives 0.
func (s Spectrum) Flatness() float64 {
	n := len(s.Magnitude) - 1
	if n < 1 {
		return 0
	}

	var sumLin, sumLog float64

	for _, m := range s.Magnitude[1:] {
		if m <= 0 {
			return 0
		}

		sumLin += m
		sumLog += math.Log(m)
	}

	return math.Exp(sumLog/float64(n)) / (sumLin / float64(n))
}

package biquad

import (
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
)

const (
	// MinFrequency is the lowest design frequency in Hz.
	MinFrequency = 20.0
	// NyquistGuard divides the sample rate to give the highest design
	// frequency, keeping poles away from z = -1.
	NyquistGuard = 2.5
	// MinQ and MaxQ bound the quality factor.
	MinQ = 0.1
	MaxQ = 20.0
	// MaxGainDB bounds peaking and shelving gain in either direction.
	MaxGainDB = 48.0
)

// ClampDesign returns the frequency, Q and gain actually used by Design for
// the given request.
func ClampDesign(freqHz, sampleRate, q, gainDB float64) (float64, float64, float64) {
	freqHz = core.Clamp(freqHz, MinFrequency, math.Max(MinFrequency, sampleRate/NyquistGuard))
	q = core.Clamp(q, MinQ, MaxQ)

	if !core.IsFinite(gainDB) {
		gainDB = 0
	}

	gainDB = core.Clamp(gainDB, -MaxGainDB, MaxGainDB)

	return freqHz, q, gainDB
}

// Design computes normalized coefficients for response t.
//
// Out-of-range parameters are clamped rather than rejected. An unusable
// sample rate or unknown type yields a unity passthrough.
func Design(t Type, freqHz, sampleRate, q, gainDB float64) Coefficients {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) || !t.Valid() {
		return Coefficients{B0: 1}
	}

	freqHz, q, gainDB = ClampDesign(freqHz, sampleRate, q, gainDB)

	w := 2 * math.Pi * freqHz / sampleRate
	sn, cs := math.Sincos(w)
	alpha := sn / (2 * q)
	a := math.Pow(10, gainDB/40)

	var b0, b1, b2, a0, a1, a2 float64

	switch t {
	case LowPass:
		b0 = (1 - cs) / 2
		b1 = 1 - cs
		b2 = b0
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case HighPass:
		b0 = (1 + cs) / 2
		b1 = -(1 + cs)
		b2 = b0
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case Notch:
		b0 = 1
		b1 = -2 * cs
		b2 = 1
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	case Peaking:
		b0 = 1 + alpha*a
		b1 = -2 * cs
		b2 = 1 - alpha*a
		a0 = 1 + alpha/a
		a1 = -2 * cs
		a2 = 1 - alpha/a
	case LowShelf:
		beta := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) - (a-1)*cs + beta)
		b1 = 2 * a * ((a - 1) - (a+1)*cs)
		b2 = a * ((a + 1) - (a-1)*cs - beta)
		a0 = (a + 1) + (a-1)*cs + beta
		a1 = -2 * ((a - 1) + (a+1)*cs)
		a2 = (a + 1) + (a-1)*cs - beta
	case HighShelf:
		beta := 2 * math.Sqrt(a) * alpha
		b0 = a * ((a + 1) + (a-1)*cs + beta)
		b1 = -2 * a * ((a - 1) + (a+1)*cs)
		b2 = a * ((a + 1) + (a-1)*cs - beta)
		a0 = (a + 1) - (a-1)*cs + beta
		a1 = 2 * ((a - 1) - (a+1)*cs)
		a2 = (a + 1) - (a-1)*cs - beta
	case AllPass:
		b0 = 1 - alpha
		b1 = -2 * cs
		b2 = 1 + alpha
		a0 = 1 + alpha
		a1 = -2 * cs
		a2 = 1 - alpha
	}

	return normalize(b0, b1, b2, a0, a1, a2)
}

func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	if a0 == 0 || !core.IsFinite(a0) {
		return Coefficients{B0: 1}
	}

	inv := 1 / a0

	return Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: a1 * inv,
		A2: a2 * inv,
	}
}

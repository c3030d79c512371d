package effects

import (
	"fmt"
	"math"
)

const (
	defaultBitCrusherBitDepth   = 8.0
	defaultBitCrusherDownsample = 1
	defaultBitCrusherMix        = 1.0
	minBitCrusherBitDepth       = 1.0
	maxBitCrusherBitDepth       = 24.0
	maxBitCrusherDownsample     = 64
)

// BitCrusher quantizes amplitude and holds samples to fake a lower rate.
//
// Quantization snaps each held sample to a grid of 2^(bits-1) steps per unit;
// fractional bit depths give smooth sweeps. Downsampling holds every N-th
// input for N output samples. BitDepth 24 with Downsample 1 is effectively
// transparent.
type BitCrusher struct {
	sampleRate float64
	bitDepth   float64
	downsample int
	mix        float64

	levels      float64
	holdCounter int
	holdValue   float64
}

// NewBitCrusher creates an 8-bit, full-rate, fully wet crusher.
func NewBitCrusher(sampleRate float64) (*BitCrusher, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("bit crusher sample rate must be positive and finite: %f", sampleRate)
	}

	bc := &BitCrusher{
		sampleRate: sampleRate,
		bitDepth:   defaultBitCrusherBitDepth,
		downsample: defaultBitCrusherDownsample,
		mix:        defaultBitCrusherMix,
	}
	bc.updateLevels()

	return bc, nil
}

// SetBitDepth sets the quantization depth in [1, 24].
func (bc *BitCrusher) SetBitDepth(bits float64) error {
	if bits < minBitCrusherBitDepth || bits > maxBitCrusherBitDepth || math.IsNaN(bits) {
		return fmt.Errorf("bit crusher bit depth must be in [%g, %g]: %f",
			minBitCrusherBitDepth, maxBitCrusherBitDepth, bits)
	}

	bc.bitDepth = bits
	bc.updateLevels()

	return nil
}

// SetDownsample sets the hold factor in [1, 64].
func (bc *BitCrusher) SetDownsample(factor int) error {
	if factor < 1 || factor > maxBitCrusherDownsample {
		return fmt.Errorf("bit crusher downsample factor must be in [1, %d]: %d",
			maxBitCrusherDownsample, factor)
	}

	bc.downsample = factor

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (bc *BitCrusher) SetMix(mix float64) error {
	if err := validateUnit("bit crusher mix", mix); err != nil {
		return err
	}

	bc.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (bc *BitCrusher) SampleRate() float64 { return bc.sampleRate }

// BitDepth returns the quantization depth.
func (bc *BitCrusher) BitDepth() float64 { return bc.bitDepth }

// Downsample returns the hold factor.
func (bc *BitCrusher) Downsample() int { return bc.downsample }

// Mix returns the wet amount.
func (bc *BitCrusher) Mix() float64 { return bc.mix }

// ProcessSample crushes one sample.
func (bc *BitCrusher) ProcessSample(input float64) float64 {
	if bc.holdCounter == 0 {
		bc.holdValue = math.Round(input*bc.levels) / bc.levels
	}

	bc.holdCounter++
	if bc.holdCounter >= bc.downsample {
		bc.holdCounter = 0
	}

	return input*(1-bc.mix) + bc.holdValue*bc.mix
}

// ProcessInPlace crushes buf in place.
func (bc *BitCrusher) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = bc.ProcessSample(buf[i])
	}
}

// Reset clears the hold state.
func (bc *BitCrusher) Reset() {
	bc.holdCounter = 0
	bc.holdValue = 0
}

func (bc *BitCrusher) updateLevels() {
	bc.levels = math.Exp2(bc.bitDepth - 1)
}

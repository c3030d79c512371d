package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

// source produces a continuous mono test signal.
type source interface {
	Fill(buf []float64)
}

var sourceNames = []string{"sine", "noise", "vowel", "impulse"}

func newSource(name string, sampleRate, freqHz, amplitude float64) (source, error) {
	switch strings.ToLower(name) {
	case "sine":
		return &sineSource{step: 2 * math.Pi * freqHz / sampleRate, amp: amplitude}, nil
	case "noise":
		return &noiseSource{rng: rand.New(rand.NewPCG(1, 2)), amp: amplitude}, nil
	case "vowel":
		return newVowelSource(sampleRate, freqHz, amplitude), nil
	case "impulse":
		return &impulseSource{amp: amplitude}, nil
	default:
		return nil, fmt.Errorf("unknown source %q (want one of %s)", name, strings.Join(sourceNames, ", "))
	}
}

type sineSource struct {
	phase, step, amp float64
}

func (s *sineSource) Fill(buf []float64) {
	for i := range buf {
		buf[i] = s.amp * math.Sin(s.phase)

		s.phase += s.step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

type noiseSource struct {
	rng *rand.Rand
	amp float64
}

func (s *noiseSource) Fill(buf []float64) {
	for i := range buf {
		buf[i] = s.amp * (2*s.rng.Float64() - 1)
	}
}

// impulseSource emits a single sample at the start, then silence.
type impulseSource struct {
	amp  float64
	done bool
}

func (s *impulseSource) Fill(buf []float64) {
	clear(buf)

	if !s.done && len(buf) > 0 {
		buf[0] = s.amp
		s.done = true
	}
}

// vowelSource is a sawtooth glottal source with vibrato through three
// parallel formant resonators tuned to the vowel in "bard", gated into
// syllables.
type vowelSource struct {
	sampleRate float64
	pitchHz    float64
	amp        float64

	phase      float64
	vibrato    float64
	syllable   float64
	formants   [3]biquad.Section
	gains      [3]float64
	normalizer float64
}

var (
	vowelFormantsHz = [3]float64{710, 1100, 2540}
	vowelFormantQ   = [3]float64{6, 8, 12}
	vowelFormantDB  = [3]float64{0, -4, -12}
)

const (
	vibratoHz    = 5.5
	vibratoDepth = 0.02
	syllableHz   = 3.0
)

func newVowelSource(sampleRate, pitchHz, amplitude float64) *vowelSource {
	v := &vowelSource{
		sampleRate: sampleRate,
		pitchHz:    pitchHz,
		amp:        amplitude,
		normalizer: 0.25,
	}

	for i := range v.formants {
		v.formants[i].Design(biquad.BandPass, vowelFormantsHz[i], sampleRate, vowelFormantQ[i], 0)
		v.gains[i] = math.Pow(10, vowelFormantDB[i]/20)
	}

	return v
}

func (v *vowelSource) Fill(buf []float64) {
	for i := range buf {
		f0 := v.pitchHz * (1 + vibratoDepth*math.Sin(2*math.Pi*v.vibrato))

		v.phase += f0 / v.sampleRate
		if v.phase >= 1 {
			v.phase--
		}

		v.vibrato += vibratoHz / v.sampleRate
		if v.vibrato >= 1 {
			v.vibrato--
		}

		v.syllable += syllableHz / v.sampleRate
		if v.syllable >= 1 {
			v.syllable--
		}

		glottal := 1 - 2*v.phase

		var y float64
		for k := range v.formants {
			y += v.gains[k] * v.formants[k].ProcessSample(glottal)
		}

		// Raised-cosine syllable envelope with a short pause between syllables.
		env := 0.0
		if v.syllable < 0.8 {
			env = 0.5 - 0.5*math.Cos(2*math.Pi*v.syllable/0.8)
		}

		buf[i] = v.amp * v.normalizer * env * y
	}
}

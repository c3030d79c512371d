package effects

import (
	"fmt"
	"math"
)

const (
	defaultRingModCarrierHz = 60.0
	defaultRingModMix       = 1.0
	maxRingModCarrierHz     = 5000.0
)

// RingModulatorOption mutates ring modulator construction parameters.
type RingModulatorOption func(*ringModConfig) error

type ringModConfig struct {
	carrierHz float64
	mix       float64
}

// WithRingModCarrierHz sets the carrier frequency in Hz.
func WithRingModCarrierHz(hz float64) RingModulatorOption {
	return func(cfg *ringModConfig) error {
		if err := validateCarrier(hz); err != nil {
			return err
		}

		cfg.carrierHz = hz

		return nil
	}
}

// WithRingModMix sets the wet amount in [0, 1].
func WithRingModMix(mix float64) RingModulatorOption {
	return func(cfg *ringModConfig) error {
		if err := validateUnit("ring modulator mix", mix); err != nil {
			return err
		}

		cfg.mix = mix

		return nil
	}
}

// RingModulator multiplies the input by a bipolar sine carrier, producing
// the sum and difference frequencies that give the robotic timbre:
//
//	output = input*(1-mix) + input*sin(phase)*mix
type RingModulator struct {
	sampleRate float64
	carrierHz  float64
	mix        float64

	phase    float64
	phaseInc float64
}

// NewRingModulator creates a ring modulator with a 60 Hz carrier, fully wet.
func NewRingModulator(sampleRate float64, opts ...RingModulatorOption) (*RingModulator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("ring modulator sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := ringModConfig{carrierHz: defaultRingModCarrierHz, mix: defaultRingModMix}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	r := &RingModulator{
		sampleRate: sampleRate,
		carrierHz:  cfg.carrierHz,
		mix:        cfg.mix,
	}
	r.updatePhaseIncrement()

	return r, nil
}

// SetCarrierHz sets the carrier frequency. The phase is kept, so changes do
// not click.
func (r *RingModulator) SetCarrierHz(hz float64) error {
	if err := validateCarrier(hz); err != nil {
		return err
	}

	r.carrierHz = hz
	r.updatePhaseIncrement()

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (r *RingModulator) SetMix(mix float64) error {
	if err := validateUnit("ring modulator mix", mix); err != nil {
		return err
	}

	r.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (r *RingModulator) SampleRate() float64 { return r.sampleRate }

// CarrierHz returns the carrier frequency in Hz.
func (r *RingModulator) CarrierHz() float64 { return r.carrierHz }

// Mix returns the wet amount.
func (r *RingModulator) Mix() float64 { return r.mix }

// ProcessSample modulates one sample.
func (r *RingModulator) ProcessSample(input float64) float64 {
	wet := input * math.Sin(r.phase)

	r.phase += r.phaseInc
	if r.phase >= 2*math.Pi {
		r.phase -= 2 * math.Pi
	}

	return input*(1-r.mix) + wet*r.mix
}

// ProcessInPlace modulates buf in place.
func (r *RingModulator) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// Reset restarts the carrier at zero phase.
func (r *RingModulator) Reset() {
	r.phase = 0
}

func (r *RingModulator) updatePhaseIncrement() {
	r.phaseInc = 2 * math.Pi * r.carrierHz / r.sampleRate
}

func validateCarrier(hz float64) error {
	if hz <= 0 || hz > maxRingModCarrierHz || math.IsNaN(hz) {
		return fmt.Errorf("ring modulator carrier must be in (0, %g] Hz: %f", maxRingModCarrierHz, hz)
	}

	return nil
}

func validateUnit(name string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("%s must be in [0, 1]: %f", name, v)
	}

	return nil
}

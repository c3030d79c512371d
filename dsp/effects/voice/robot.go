package voice

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/delay"
	"github.com/cwbudde/voicefx/dsp/effects"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

const (
	defaultRobotCarrierHz = 60.0
	defaultRobotMetallic  = 0.5
	defaultRobotBitDepth  = 10.0
	defaultRobotMix       = 1.0

	minRobotCarrierHz = 10.0
	maxRobotCarrierHz = 1000.0
	minRobotBitDepth  = 4.0
	maxRobotBitDepth  = 16.0

	robotCombMs          = 4.0
	robotMaxCombFeedback = 0.85
	robotLowCutHz        = 200.0
	robotHighCutHz       = 4500.0
	robotBandQ           = 0.707
)

// Robot turns a voice into a synthetic, metallic one.
//
// Signal flow:
//
//	ring modulator -> feedback comb (4 ms) -> bit crusher -> band limit
//
// The comb resonates at multiples of 250 Hz. Its feedback is
// 0.85*metallic, and the wet comb output is scaled by (1-feedback) so the
// resonant peaks stay at unity gain. The band limit is a 200 Hz high pass
// followed by a 4.5 kHz low pass.
type Robot struct {
	sampleRate float64
	carrierHz  float64
	metallic   float64
	bitDepth   float64
	mix        float64

	ring     *effects.RingModulator
	comb     *delay.Line
	combLen  int
	feedback float64
	crusher  *effects.BitCrusher
	band     *biquad.Chain
}

// NewRobot creates a robot voice with a 60 Hz carrier, half metallic
// resonance and 10-bit quantization.
func NewRobot(sampleRate float64) (*Robot, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("robot voice: %w", err)
	}

	ring, err := effects.NewRingModulator(sampleRate, effects.WithRingModCarrierHz(defaultRobotCarrierHz))
	if err != nil {
		return nil, fmt.Errorf("robot voice: %w", err)
	}

	combLen := max(1, int(math.Round(robotCombMs*sampleRate/1000)))

	comb, err := delay.New(combLen + 1)
	if err != nil {
		return nil, fmt.Errorf("robot voice comb: %w", err)
	}

	crusher, err := effects.NewBitCrusher(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("robot voice: %w", err)
	}

	band := biquad.NewChain(biquad.Coefficients{B0: 1}, biquad.Coefficients{B0: 1})
	band.Section(0).Design(biquad.HighPass, robotLowCutHz, sampleRate, robotBandQ, 0)
	band.Section(1).Design(biquad.LowPass, robotHighCutHz, sampleRate, robotBandQ, 0)

	r := &Robot{
		sampleRate: sampleRate,
		carrierHz:  defaultRobotCarrierHz,
		mix:        defaultRobotMix,
		ring:       ring,
		comb:       comb,
		combLen:    combLen,
		crusher:    crusher,
		band:       band,
	}

	if err := r.SetMetallic(defaultRobotMetallic); err != nil {
		return nil, err
	}

	if err := r.SetBitDepth(defaultRobotBitDepth); err != nil {
		return nil, err
	}

	return r, nil
}

// SetCarrierHz sets the ring modulator carrier in [10, 1000] Hz.
func (r *Robot) SetCarrierHz(hz float64) error {
	if !core.IsFinite(hz) || hz < minRobotCarrierHz || hz > maxRobotCarrierHz {
		return fmt.Errorf("robot carrier must be in [%g, %g] Hz: %f",
			minRobotCarrierHz, maxRobotCarrierHz, hz)
	}

	if err := r.ring.SetCarrierHz(hz); err != nil {
		return fmt.Errorf("robot voice: %w", err)
	}

	r.carrierHz = hz

	return nil
}

// SetMetallic sets the comb resonance amount in [0, 1].
func (r *Robot) SetMetallic(amount float64) error {
	if err := validateAmount("robot metallic", amount); err != nil {
		return err
	}

	r.metallic = amount
	r.feedback = robotMaxCombFeedback * amount

	return nil
}

// SetBitDepth sets the quantizer resolution in [4, 16] bits.
func (r *Robot) SetBitDepth(bits float64) error {
	if !core.IsFinite(bits) || bits < minRobotBitDepth || bits > maxRobotBitDepth {
		return fmt.Errorf("robot bit depth must be in [%g, %g]: %f",
			minRobotBitDepth, maxRobotBitDepth, bits)
	}

	if err := r.crusher.SetBitDepth(bits); err != nil {
		return fmt.Errorf("robot voice: %w", err)
	}

	r.bitDepth = bits

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (r *Robot) SetMix(mix float64) error {
	if err := validateAmount("robot mix", mix); err != nil {
		return err
	}

	r.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (r *Robot) SampleRate() float64 { return r.sampleRate }

// CarrierHz returns the carrier frequency.
func (r *Robot) CarrierHz() float64 { return r.carrierHz }

// Metallic returns the comb resonance amount.
func (r *Robot) Metallic() float64 { return r.metallic }

// BitDepth returns the quantizer resolution.
func (r *Robot) BitDepth() float64 { return r.bitDepth }

// Mix returns the wet amount.
func (r *Robot) Mix() float64 { return r.mix }

// ProcessSample processes one sample.
func (r *Robot) ProcessSample(x float64) float64 {
	y := r.ring.ProcessSample(x)

	y += r.feedback * r.comb.Read(r.combLen)
	r.comb.Write(y)
	y *= 1 - r.feedback

	y = r.crusher.ProcessSample(y)
	y = r.band.ProcessSample(y)

	return x*(1-r.mix) + y*r.mix
}

// ProcessInPlace processes buf in place.
func (r *Robot) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = r.ProcessSample(x)
	}
}

// Reset clears all internal state.
func (r *Robot) Reset() {
	r.ring.Reset()
	r.comb.Reset()
	r.crusher.Reset()
	r.band.Reset()
}

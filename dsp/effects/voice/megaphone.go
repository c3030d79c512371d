package voice

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/effects"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

const (
	defaultMegaphoneLowCutHz  = 500.0
	defaultMegaphoneHighCutHz = 3500.0
	defaultMegaphoneDrive     = 4.0
	defaultMegaphoneMix       = 1.0

	minMegaphoneLowCutHz  = 100.0
	maxMegaphoneLowCutHz  = 2000.0
	minMegaphoneHighCutHz = 1500.0
	maxMegaphoneHighCutHz = 8000.0
	minMegaphoneDrive     = 1.0
	maxMegaphoneDrive     = 20.0

	// megaphoneMinBandRatio keeps the pass band at least this wide.
	megaphoneMinBandRatio = 1.5
	megaphoneBandQ        = 0.707
	megaphoneMidQ         = 1.2
	megaphoneMidGainDB    = 6.0
)

// Megaphone imitates a horn loudspeaker.
//
// Signal flow:
//
//	2x high pass -> 2x low pass -> mid peak -> saturator -> makeup
//
// The band edges are each a cascade of two Butterworth sections. The mid
// peak sits at the geometric centre of the band. The saturated signal is
// scaled by 1/sqrt(drive) so more drive adds grit faster than level.
type Megaphone struct {
	sampleRate float64
	lowCutHz   float64
	highCutHz  float64
	drive      float64
	mix        float64

	highPass *biquad.Chain
	lowPass  *biquad.Chain
	mid      biquad.Section
	sat      *effects.Saturator
	makeup   float64
}

// NewMegaphone creates a megaphone voice with a 500 Hz..3.5 kHz band and
// drive 4.
func NewMegaphone(sampleRate float64) (*Megaphone, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("megaphone voice: %w", err)
	}

	m := &Megaphone{
		sampleRate: sampleRate,
		lowCutHz:   defaultMegaphoneLowCutHz,
		highCutHz:  defaultMegaphoneHighCutHz,
		mix:        defaultMegaphoneMix,
		highPass:   biquad.NewChain(biquad.Coefficients{B0: 1}, biquad.Coefficients{B0: 1}),
		lowPass:    biquad.NewChain(biquad.Coefficients{B0: 1}, biquad.Coefficients{B0: 1}),
		sat:        effects.NewSaturator(),
	}

	if err := m.SetDrive(defaultMegaphoneDrive); err != nil {
		return nil, err
	}

	m.updateFilters()

	return m, nil
}

// SetLowCut sets the high-pass corner in [100, 2000] Hz.
func (m *Megaphone) SetLowCut(hz float64) error {
	if !core.IsFinite(hz) || hz < minMegaphoneLowCutHz || hz > maxMegaphoneLowCutHz {
		return fmt.Errorf("megaphone low cut must be in [%g, %g] Hz: %f",
			minMegaphoneLowCutHz, maxMegaphoneLowCutHz, hz)
	}

	m.lowCutHz = hz
	m.updateFilters()

	return nil
}

// SetHighCut sets the low-pass corner in [1500, 8000] Hz. The effective
// corner never drops below 1.5 times the low cut.
func (m *Megaphone) SetHighCut(hz float64) error {
	if !core.IsFinite(hz) || hz < minMegaphoneHighCutHz || hz > maxMegaphoneHighCutHz {
		return fmt.Errorf("megaphone high cut must be in [%g, %g] Hz: %f",
			minMegaphoneHighCutHz, maxMegaphoneHighCutHz, hz)
	}

	m.highCutHz = hz
	m.updateFilters()

	return nil
}

// SetDrive sets the saturation drive in [1, 20].
func (m *Megaphone) SetDrive(drive float64) error {
	if !core.IsFinite(drive) || drive < minMegaphoneDrive || drive > maxMegaphoneDrive {
		return fmt.Errorf("megaphone drive must be in [%g, %g]: %f",
			minMegaphoneDrive, maxMegaphoneDrive, drive)
	}

	if err := m.sat.SetDrive(drive); err != nil {
		return fmt.Errorf("megaphone voice: %w", err)
	}

	m.drive = drive
	m.makeup = 1 / math.Sqrt(drive)

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (m *Megaphone) SetMix(mix float64) error {
	if err := validateAmount("megaphone mix", mix); err != nil {
		return err
	}

	m.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (m *Megaphone) SampleRate() float64 { return m.sampleRate }

// LowCut returns the high-pass corner.
func (m *Megaphone) LowCut() float64 { return m.lowCutHz }

// HighCut returns the requested low-pass corner.
func (m *Megaphone) HighCut() float64 { return m.highCutHz }

// Drive returns the saturation drive.
func (m *Megaphone) Drive() float64 { return m.drive }

// Mix returns the wet amount.
func (m *Megaphone) Mix() float64 { return m.mix }

// CenterHz returns the frequency of the mid peak.
func (m *Megaphone) CenterHz() float64 {
	return math.Sqrt(m.lowCutHz * m.effectiveHighCut())
}

// ProcessSample processes one sample.
func (m *Megaphone) ProcessSample(x float64) float64 {
	y := m.highPass.ProcessSample(x)
	y = m.lowPass.ProcessSample(y)
	y = m.mid.ProcessSample(y)
	y = m.sat.ProcessSample(y) * m.makeup

	return x*(1-m.mix) + y*m.mix
}

// ProcessInPlace processes buf in place.
func (m *Megaphone) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = m.ProcessSample(x)
	}
}

// Reset clears all filter state.
func (m *Megaphone) Reset() {
	m.highPass.Reset()
	m.lowPass.Reset()
	m.mid.Reset()
}

func (m *Megaphone) effectiveHighCut() float64 {
	return math.Max(m.highCutHz, m.lowCutHz*megaphoneMinBandRatio)
}

func (m *Megaphone) updateFilters() {
	m.highPass.DesignAll(biquad.HighPass, m.lowCutHz, m.sampleRate, megaphoneBandQ, 0)
	m.lowPass.DesignAll(biquad.LowPass, m.effectiveHighCut(), m.sampleRate, megaphoneBandQ, 0)
	m.mid.Design(biquad.Peaking, m.CenterHz(), m.sampleRate, megaphoneMidQ, megaphoneMidGainDB)
}

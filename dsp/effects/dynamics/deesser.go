package dynamics

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/envelope"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

const (
	defaultDeEsserFreqHz      = 6000.0
	defaultDeEsserThresholdDB = -30.0
	defaultDeEsserRatio       = 4.0
	defaultDeEsserRangeDB     = 12.0
	defaultDeEsserAttackMs    = 0.5
	defaultDeEsserReleaseMs   = 40.0
	defaultDeEsserWindowMs    = 2.0

	minDeEsserFreqHz      = 2000.0
	maxDeEsserFreqHz      = 12000.0
	minDeEsserThresholdDB = -60.0
	maxDeEsserThresholdDB = 0.0
	minDeEsserRatio       = 1.0
	maxDeEsserRatio       = 20.0
	minDeEsserRangeDB     = 0.0
	maxDeEsserRangeDB     = 24.0
	maxDeEsserWindowMs    = 10.0

	// Sidechain shaping: a highpass below the band plus a narrow peak on it.
	deEsserHighpassRatio = 0.7
	deEsserHighpassQ     = 0.707
	deEsserPeakQ         = 2.0
	deEsserPeakGainDB    = 6.0
)

// DeEsserMetrics holds metering information for visualization and analysis.
type DeEsserMetrics struct {
	DetectionLevelDB float64 // Highest sidechain level since last reset
	MaxReductionDB   float64 // Largest reduction since last reset (positive)
}

// DeEsser tames sibilance with a frequency-selective detector.
//
// The sidechain runs the input through a highpass at 0.7*freq and a narrow
// peaking boost at freq, then an RMS follower. Above the threshold the
// reduction is (level - threshold) * (1 - 1/ratio) dB, limited to range,
// and it is applied to the full-band signal. In listen mode the output is
// the sidechain signal itself.
type DeEsser struct {
	freqHz      float64
	thresholdDB float64
	ratio       float64
	rangeDB     float64
	listen      bool
	sampleRate  float64

	highpass *biquad.Section
	peak     *biquad.Section
	detector *envelope.Follower

	lastReductionDB float64

	metrics DeEsserMetrics
}

// NewDeEsser creates a de-esser with defaults:
//
//   - Frequency: 6 kHz
//   - Threshold: -30 dB
//   - Ratio: 4:1
//   - Range: 12 dB
func NewDeEsser(sampleRate float64) (*DeEsser, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("de-esser %w", err)
	}

	detector, err := envelope.NewFollower(sampleRate, envelope.RMS, maxDeEsserWindowMs)
	if err != nil {
		return nil, fmt.Errorf("de-esser detector: %w", err)
	}

	detector.SetAttack(defaultDeEsserAttackMs)
	detector.SetRelease(defaultDeEsserReleaseMs)
	detector.SetWindow(defaultDeEsserWindowMs)

	d := &DeEsser{
		freqHz:      defaultDeEsserFreqHz,
		thresholdDB: defaultDeEsserThresholdDB,
		ratio:       defaultDeEsserRatio,
		rangeDB:     defaultDeEsserRangeDB,
		sampleRate:  sampleRate,
		highpass:    biquad.NewSection(biquad.Coefficients{B0: 1}),
		peak:        biquad.NewSection(biquad.Coefficients{B0: 1}),
		detector:    detector,
	}

	d.updateFilters()
	d.ResetMetrics()

	return d, nil
}

// SetFrequency sets the sibilance band center in Hz. Frequencies that would
// sit too close to Nyquist are pulled down by the filter designer.
func (d *DeEsser) SetFrequency(hz float64) error {
	if err := checkRange("de-esser frequency", hz, minDeEsserFreqHz, maxDeEsserFreqHz); err != nil {
		return err
	}

	d.freqHz = hz
	d.updateFilters()

	return nil
}

// SetThreshold sets the detection threshold in dB.
func (d *DeEsser) SetThreshold(dB float64) error {
	if err := checkRange("de-esser threshold", dB, minDeEsserThresholdDB, maxDeEsserThresholdDB); err != nil {
		return err
	}

	d.thresholdDB = dB

	return nil
}

// SetRatio sets the reduction ratio.
func (d *DeEsser) SetRatio(ratio float64) error {
	if err := checkRange("de-esser ratio", ratio, minDeEsserRatio, maxDeEsserRatio); err != nil {
		return err
	}

	d.ratio = ratio

	return nil
}

// SetRange sets the maximum reduction in dB (positive).
func (d *DeEsser) SetRange(dB float64) error {
	if err := checkRange("de-esser range", dB, minDeEsserRangeDB, maxDeEsserRangeDB); err != nil {
		return err
	}

	d.rangeDB = dB

	return nil
}

// SetListen routes the sidechain to the output when enabled.
func (d *DeEsser) SetListen(listen bool) { d.listen = listen }

// Frequency returns the band center in Hz.
func (d *DeEsser) Frequency() float64 { return d.freqHz }

// Threshold returns the threshold in dB.
func (d *DeEsser) Threshold() float64 { return d.thresholdDB }

// Ratio returns the reduction ratio.
func (d *DeEsser) Ratio() float64 { return d.ratio }

// Range returns the maximum reduction in dB.
func (d *DeEsser) Range() float64 { return d.rangeDB }

// Listen reports whether listen mode is on.
func (d *DeEsser) Listen() bool { return d.listen }

// SampleRate returns the sample rate in Hz.
func (d *DeEsser) SampleRate() float64 { return d.sampleRate }

// ReductionDB returns the reduction applied to the most recent sample.
func (d *DeEsser) ReductionDB() float64 { return d.lastReductionDB }

// ProcessSample de-esses one sample.
func (d *DeEsser) ProcessSample(input float64) float64 {
	side := d.peak.ProcessSample(d.highpass.ProcessSample(input))

	d.detector.Process(side)
	levelDB := meanSquareToDB(d.detector.State())

	reduction := d.Reduction(levelDB)
	d.lastReductionDB = reduction

	if levelDB > d.metrics.DetectionLevelDB {
		d.metrics.DetectionLevelDB = levelDB
	}

	if reduction > d.metrics.MaxReductionDB {
		d.metrics.MaxReductionDB = reduction
	}

	if d.listen {
		return side
	}

	if reduction == 0 {
		return input
	}

	return input * dbToGain(-reduction)
}

// ProcessInPlace de-esses buf in place.
func (d *DeEsser) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// Reduction returns the static reduction in dB (>= 0) for a sidechain
// level in dB.
func (d *DeEsser) Reduction(levelDB float64) float64 {
	over := levelDB - d.thresholdDB
	if over <= 0 {
		return 0
	}

	return min(d.rangeDB, over*(1-1/d.ratio))
}

// Reset clears the filters, detector and metrics.
func (d *DeEsser) Reset() {
	d.highpass.Reset()
	d.peak.Reset()
	d.detector.Reset()
	d.lastReductionDB = 0
	d.ResetMetrics()
}

// GetMetrics returns current metering values.
func (d *DeEsser) GetMetrics() DeEsserMetrics {
	return d.metrics
}

// ResetMetrics clears metering state.
func (d *DeEsser) ResetMetrics() {
	d.metrics = DeEsserMetrics{DetectionLevelDB: meanSquareToDB(0)}
}

func (d *DeEsser) updateFilters() {
	d.highpass.Design(biquad.HighPass, d.freqHz*deEsserHighpassRatio, d.sampleRate, deEsserHighpassQ, 0)
	d.peak.Design(biquad.Peaking, d.freqHz, d.sampleRate, deEsserPeakQ, deEsserPeakGainDB)
}

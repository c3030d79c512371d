package dynamics

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/envelope"
)

const (
	defaultCompressorThresholdDB = -18.0
	defaultCompressorRatio       = 3.0
	defaultCompressorKneeDB      = 6.0
	defaultCompressorAttackMs    = 5.0
	defaultCompressorReleaseMs   = 80.0
	defaultCompressorWindowMs    = 10.0

	minCompressorThresholdDB = -60.0
	maxCompressorThresholdDB = 0.0
	minCompressorRatio       = 1.0
	maxCompressorRatio       = 20.0
	minCompressorKneeDB      = 0.0
	maxCompressorKneeDB      = 24.0
	minCompressorAttackMs    = 0.05
	maxCompressorAttackMs    = 500.0
	minCompressorReleaseMs   = 1.0
	maxCompressorReleaseMs   = 5000.0
	minCompressorMakeupDB    = -24.0
	maxCompressorMakeupDB    = 24.0
	maxCompressorWindowMs    = 50.0
)

// CompressorMetrics holds metering information for visualization and analysis.
type CompressorMetrics struct {
	InputLevelDB     float64 // Most recent detector level
	MaxGainReduction float64 // Largest reduction in dB since last reset (positive)
}

// Compressor is an RMS soft-knee compressor.
//
// The detector averages the squared input over a short window and smooths
// the mean square with separate attack and release times. The static curve
// works in dB:
//
//	over <= -knee/2:        no reduction
//	|over| <  knee/2:       (1/r - 1) * (over + knee/2)^2 / (2*knee)
//	over >= knee/2:         (1/r - 1) * over
//
// where over = level - threshold. The quadratic segment matches both the
// value and the slope of its neighbours, so the curve has a continuous first
// derivative. Auto makeup adds half of the full-scale reduction,
// -threshold*(1-1/r)/2.
type Compressor struct {
	thresholdDB float64
	ratio       float64
	kneeDB      float64
	attackMs    float64
	releaseMs   float64
	windowMs    float64
	makeupDB    float64
	autoMakeup  bool
	sampleRate  float64

	detector *envelope.Follower

	slope         float64 // 1/ratio - 1
	totalMakeupDB float64
	lastGainDB    float64

	metrics CompressorMetrics
}

// NewCompressor creates a compressor with defaults:
//
//   - Threshold: -18 dB
//   - Ratio: 3:1
//   - Knee: 6 dB
//   - Attack: 5 ms
//   - Release: 80 ms
//   - RMS window: 10 ms
//   - Makeup: 0 dB, auto makeup off
func NewCompressor(sampleRate float64) (*Compressor, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("compressor %w", err)
	}

	detector, err := envelope.NewFollower(sampleRate, envelope.RMS, maxCompressorWindowMs)
	if err != nil {
		return nil, fmt.Errorf("compressor detector: %w", err)
	}

	c := &Compressor{
		thresholdDB: defaultCompressorThresholdDB,
		ratio:       defaultCompressorRatio,
		kneeDB:      defaultCompressorKneeDB,
		attackMs:    defaultCompressorAttackMs,
		releaseMs:   defaultCompressorReleaseMs,
		windowMs:    defaultCompressorWindowMs,
		sampleRate:  sampleRate,
		detector:    detector,
	}

	c.detector.SetWindow(c.windowMs)
	c.updateTimeConstants()
	c.updateCurve()
	c.ResetMetrics()

	return c, nil
}

// SetThreshold sets the threshold in dBFS (RMS).
func (c *Compressor) SetThreshold(dB float64) error {
	if err := checkRange("compressor threshold", dB, minCompressorThresholdDB, maxCompressorThresholdDB); err != nil {
		return err
	}

	c.thresholdDB = dB
	c.updateCurve()

	return nil
}

// SetRatio sets the compression ratio.
func (c *Compressor) SetRatio(ratio float64) error {
	if err := checkRange("compressor ratio", ratio, minCompressorRatio, maxCompressorRatio); err != nil {
		return err
	}

	c.ratio = ratio
	c.updateCurve()

	return nil
}

// SetKnee sets the knee width in dB.
func (c *Compressor) SetKnee(dB float64) error {
	if err := checkRange("compressor knee", dB, minCompressorKneeDB, maxCompressorKneeDB); err != nil {
		return err
	}

	c.kneeDB = dB

	return nil
}

// SetAttack sets the detector attack time in milliseconds.
func (c *Compressor) SetAttack(ms float64) error {
	if err := checkRange("compressor attack", ms, minCompressorAttackMs, maxCompressorAttackMs); err != nil {
		return err
	}

	c.attackMs = ms
	c.updateTimeConstants()

	return nil
}

// SetRelease sets the detector release time in milliseconds.
func (c *Compressor) SetRelease(ms float64) error {
	if err := checkRange("compressor release", ms, minCompressorReleaseMs, maxCompressorReleaseMs); err != nil {
		return err
	}

	c.releaseMs = ms
	c.updateTimeConstants()

	return nil
}

// SetWindow sets the RMS averaging window in milliseconds.
func (c *Compressor) SetWindow(ms float64) error {
	if err := checkRange("compressor window", ms, 0, maxCompressorWindowMs); err != nil {
		return err
	}

	c.windowMs = ms
	c.detector.SetWindow(ms)

	return nil
}

// SetMakeupGain sets manual makeup gain in dB.
func (c *Compressor) SetMakeupGain(dB float64) error {
	if err := checkRange("compressor makeup", dB, minCompressorMakeupDB, maxCompressorMakeupDB); err != nil {
		return err
	}

	c.makeupDB = dB
	c.updateCurve()

	return nil
}

// SetAutoMakeup enables or disables automatic makeup gain.
func (c *Compressor) SetAutoMakeup(enable bool) {
	c.autoMakeup = enable
	c.updateCurve()
}

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Attack returns the attack time in milliseconds.
func (c *Compressor) Attack() float64 { return c.attackMs }

// Release returns the release time in milliseconds.
func (c *Compressor) Release() float64 { return c.releaseMs }

// Window returns the RMS window in milliseconds.
func (c *Compressor) Window() float64 { return c.windowMs }

// MakeupGain returns the manual makeup gain in dB.
func (c *Compressor) MakeupGain() float64 { return c.makeupDB }

// AutoMakeup reports whether automatic makeup is enabled.
func (c *Compressor) AutoMakeup() bool { return c.autoMakeup }

// TotalMakeup returns manual plus automatic makeup in dB.
func (c *Compressor) TotalMakeup() float64 { return c.totalMakeupDB }

// SampleRate returns the sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// GainDB returns the gain applied to the most recent sample in dB.
func (c *Compressor) GainDB() float64 { return c.lastGainDB }

// ProcessSample compresses one sample.
func (c *Compressor) ProcessSample(input float64) float64 {
	c.detector.Process(input)
	levelDB := meanSquareToDB(c.detector.State())

	reduction := c.GainReduction(levelDB)
	gainDB := c.totalMakeupDB - reduction
	c.lastGainDB = gainDB

	c.metrics.InputLevelDB = levelDB
	if reduction > c.metrics.MaxGainReduction {
		c.metrics.MaxGainReduction = reduction
	}

	return input * dbToGain(gainDB)
}

// ProcessInPlace compresses buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// GainReduction returns the static curve reduction in dB (>= 0) for a
// detector level in dB.
func (c *Compressor) GainReduction(levelDB float64) float64 {
	over := levelDB - c.thresholdDB
	half := c.kneeDB / 2

	switch {
	case over <= -half:
		return 0
	case over < half && c.kneeDB > 0:
		x := over + half
		return -c.slope * x * x / (2 * c.kneeDB)
	default:
		return -c.slope * over
	}
}

// CalculateOutputLevel returns the steady-state output level in dB for a
// constant input level in dB, including makeup.
func (c *Compressor) CalculateOutputLevel(levelDB float64) float64 {
	return levelDB - c.GainReduction(levelDB) + c.totalMakeupDB
}

// Reset clears the detector and metrics.
func (c *Compressor) Reset() {
	c.detector.Reset()
	c.lastGainDB = c.totalMakeupDB
	c.ResetMetrics()
}

// GetMetrics returns current metering values.
func (c *Compressor) GetMetrics() CompressorMetrics {
	return c.metrics
}

// ResetMetrics clears metering state.
func (c *Compressor) ResetMetrics() {
	c.metrics = CompressorMetrics{InputLevelDB: meanSquareToDB(0)}
}

func (c *Compressor) updateCurve() {
	c.slope = 1/c.ratio - 1

	c.totalMakeupDB = c.makeupDB
	if c.autoMakeup {
		c.totalMakeupDB += -c.thresholdDB * (1 - 1/c.ratio) / 2
	}
}

func (c *Compressor) updateTimeConstants() {
	c.detector.SetAttack(c.attackMs)
	c.detector.SetRelease(c.releaseMs)
}

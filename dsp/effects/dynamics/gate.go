package dynamics

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/envelope"
)

const (
	defaultGateThresholdDB = -45.0
	defaultGateKneeDB      = 6.0
	defaultGateFloorDB     = -40.0
	defaultGateAttackMs    = 1.0
	defaultGateHoldMs      = 20.0
	defaultGateReleaseMs   = 120.0

	minGateThresholdDB = -96.0
	maxGateThresholdDB = 0.0
	minGateKneeDB      = 0.0
	maxGateKneeDB      = 24.0
	minGateFloorDB     = -96.0
	maxGateFloorDB     = 0.0
	minGateAttackMs    = 0.05
	maxGateAttackMs    = 500.0
	minGateHoldMs      = 0.0
	maxGateHoldMs      = 2000.0
	minGateReleaseMs   = 1.0
	maxGateReleaseMs   = 5000.0
)

// GateMetrics holds metering information for visualization and analysis.
type GateMetrics struct {
	InputPeak  float64 // Maximum input level since last reset
	OutputPeak float64 // Maximum output level since last reset
	MinGain    float64 // Lowest applied gain since last reset
}

// Gate is a soft-knee noise gate.
//
// An absolute-value envelope with separate attack and release times is
// compared against the knee [threshold-knee/2, threshold+knee/2]. Below the
// knee the target gain is the floor gain, above it unity, and inside it the
// gain is interpolated linearly between the two by the envelope's position
// in dB. The applied gain glides toward the target with the release
// coefficient when closing and the attack coefficient when opening, so the
// gate never clicks.
//
// Gate is single-threaded; parameter changes must happen between
// ProcessSample calls on the processing goroutine.
type Gate struct {
	thresholdDB float64
	kneeDB      float64
	floorDB     float64
	attackMs    float64
	holdMs      float64
	releaseMs   float64
	sampleRate  float64

	detector *envelope.Follower

	gain        float64
	holdCounter int

	attackCoeff  float64
	releaseCoeff float64
	lowerDB      float64
	upperDB      float64
	floorLin     float64
	holdSamples  int

	metrics GateMetrics
}

// NewGate creates a gate with voice-friendly defaults:
//
//   - Threshold: -45 dB
//   - Knee: 6 dB
//   - Floor: -40 dB
//   - Attack: 1 ms
//   - Hold: 20 ms
//   - Release: 120 ms
func NewGate(sampleRate float64) (*Gate, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("gate %w", err)
	}

	detector, err := envelope.NewFollower(sampleRate, envelope.Peak, 0)
	if err != nil {
		return nil, fmt.Errorf("gate detector: %w", err)
	}

	g := &Gate{
		thresholdDB: defaultGateThresholdDB,
		kneeDB:      defaultGateKneeDB,
		floorDB:     defaultGateFloorDB,
		attackMs:    defaultGateAttackMs,
		holdMs:      defaultGateHoldMs,
		releaseMs:   defaultGateReleaseMs,
		sampleRate:  sampleRate,
		detector:    detector,
	}

	g.updateCoefficients()
	g.Reset()

	return g, nil
}

// SetThreshold sets the knee center in dBFS.
func (g *Gate) SetThreshold(dB float64) error {
	if err := checkRange("gate threshold", dB, minGateThresholdDB, maxGateThresholdDB); err != nil {
		return err
	}

	g.thresholdDB = dB
	g.updateCoefficients()

	return nil
}

// SetKnee sets the knee width in dB. Zero gives a hard threshold.
func (g *Gate) SetKnee(dB float64) error {
	if err := checkRange("gate knee", dB, minGateKneeDB, maxGateKneeDB); err != nil {
		return err
	}

	g.kneeDB = dB
	g.updateCoefficients()

	return nil
}

// SetFloor sets the gain applied when the gate is closed, in dB.
func (g *Gate) SetFloor(dB float64) error {
	if err := checkRange("gate floor", dB, minGateFloorDB, maxGateFloorDB); err != nil {
		return err
	}

	g.floorDB = dB
	g.updateCoefficients()

	return nil
}

// SetAttack sets the opening time in milliseconds.
func (g *Gate) SetAttack(ms float64) error {
	if err := checkRange("gate attack", ms, minGateAttackMs, maxGateAttackMs); err != nil {
		return err
	}

	g.attackMs = ms
	g.updateTimeConstants()

	return nil
}

// SetHold sets how long the gate stays open after the level drops, in ms.
func (g *Gate) SetHold(ms float64) error {
	if err := checkRange("gate hold", ms, minGateHoldMs, maxGateHoldMs); err != nil {
		return err
	}

	g.holdMs = ms
	g.updateTimeConstants()

	return nil
}

// SetRelease sets the closing time in milliseconds.
func (g *Gate) SetRelease(ms float64) error {
	if err := checkRange("gate release", ms, minGateReleaseMs, maxGateReleaseMs); err != nil {
		return err
	}

	g.releaseMs = ms
	g.updateTimeConstants()

	return nil
}

// Threshold returns the threshold in dB.
func (g *Gate) Threshold() float64 { return g.thresholdDB }

// Knee returns the knee width in dB.
func (g *Gate) Knee() float64 { return g.kneeDB }

// Floor returns the closed-gate gain in dB.
func (g *Gate) Floor() float64 { return g.floorDB }

// Attack returns the attack time in milliseconds.
func (g *Gate) Attack() float64 { return g.attackMs }

// Hold returns the hold time in milliseconds.
func (g *Gate) Hold() float64 { return g.holdMs }

// Release returns the release time in milliseconds.
func (g *Gate) Release() float64 { return g.releaseMs }

// SampleRate returns the sample rate in Hz.
func (g *Gate) SampleRate() float64 { return g.sampleRate }

// Envelope returns the current detector level (linear amplitude).
func (g *Gate) Envelope() float64 { return g.detector.Level() }

// Gain returns the currently applied linear gain.
func (g *Gate) Gain() float64 { return g.gain }

// ProcessSample gates one sample.
func (g *Gate) ProcessSample(input float64) float64 {
	level := g.detector.Process(input)
	target := g.targetGain(level)

	if target >= 1 {
		g.holdCounter = g.holdSamples
	} else if g.holdCounter > 0 {
		g.holdCounter--
		target = 1
	}

	if target < g.gain {
		g.gain = envelope.Smooth(g.gain, target, g.releaseCoeff)
	} else {
		g.gain = envelope.Smooth(g.gain, target, g.attackCoeff)
	}

	output := input * g.gain
	g.updateMetrics(input, output)

	return output
}

// ProcessInPlace gates buf in place.
func (g *Gate) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = g.ProcessSample(buf[i])
	}
}

// TargetGain returns the static curve gain for a linear level, without
// envelope or hold dynamics.
func (g *Gate) TargetGain(level float64) float64 {
	return g.targetGain(level)
}

// Reset closes the gate and clears detector, hold and metrics.
func (g *Gate) Reset() {
	g.detector.Reset()
	g.gain = g.floorLin
	g.holdCounter = 0
	g.ResetMetrics()
}

// GetMetrics returns current metering values.
func (g *Gate) GetMetrics() GateMetrics {
	return g.metrics
}

// ResetMetrics clears metering state.
func (g *Gate) ResetMetrics() {
	g.metrics = GateMetrics{MinGain: 1}
}

func (g *Gate) targetGain(level float64) float64 {
	levelDB := amplitudeToDB(level)

	switch {
	case levelDB >= g.upperDB:
		return 1
	case levelDB < g.lowerDB || g.upperDB <= g.lowerDB:
		return g.floorLin
	default:
		t := (levelDB - g.lowerDB) / (g.upperDB - g.lowerDB)
		return g.floorLin + (1-g.floorLin)*t
	}
}

func (g *Gate) updateCoefficients() {
	g.lowerDB = g.thresholdDB - g.kneeDB/2
	g.upperDB = g.thresholdDB + g.kneeDB/2
	g.floorLin = mathPower10(g.floorDB / 20)

	g.updateTimeConstants()
}

func (g *Gate) updateTimeConstants() {
	g.attackCoeff = envelope.Coefficient(g.attackMs, g.sampleRate)
	g.releaseCoeff = envelope.Coefficient(g.releaseMs, g.sampleRate)
	g.holdSamples = int(g.holdMs * 0.001 * g.sampleRate)

	g.detector.SetAttack(g.attackMs)
	g.detector.SetRelease(g.releaseMs)
}

func (g *Gate) updateMetrics(input, output float64) {
	if a := abs(input); a > g.metrics.InputPeak {
		g.metrics.InputPeak = a
	}

	if a := abs(output); a > g.metrics.OutputPeak {
		g.metrics.OutputPeak = a
	}

	if g.gain < g.metrics.MinGain {
		g.metrics.MinGain = g.gain
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}

package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/envelope"
)

const (
	defaultLimiterCeilingDB   = -1.0
	defaultLimiterLookaheadMs = 3.0
	defaultLimiterAttackMs    = 1.0
	defaultLimiterReleaseMs   = 60.0

	minLimiterCeilingDB   = -24.0
	maxLimiterCeilingDB   = 0.0
	minLimiterLookaheadMs = 0.1
	maxLimiterLookaheadMs = 10.0
	minLimiterAttackMs    = 0.01
	maxLimiterAttackMs    = 10.0
	minLimiterReleaseMs   = 1.0
	maxLimiterReleaseMs   = 2000.0
)

// LimiterMetrics holds metering information for visualization and analysis.
type LimiterMetrics struct {
	MinGain    float64 // Lowest applied gain since last reset
	OutputPeak float64 // Maximum output magnitude since last reset
}

// Limiter is a lookahead brick-wall peak limiter.
//
// The program signal runs through a short delay line. The detector looks at
// the undelayed input and holds the largest magnitude seen over the
// lookahead span, so by the time a peak leaves the delay line the gain has
// already moved toward ceiling/peak with the attack coefficient. Gain
// recovers toward unity with the release coefficient. A final per-sample
// bound keeps every output sample at or below the ceiling even when the
// attack is slower than the lookahead.
type Limiter struct {
	ceilingDB   float64
	lookaheadMs float64
	attackMs    float64
	releaseMs   float64
	sampleRate  float64

	ceiling      float64
	attackCoeff  float64
	releaseCoeff float64
	gain         float64

	// Program delay line, sized for the maximum lookahead.
	delayBuf  []float64
	writePos  int
	lookahead int

	// Sliding-window maximum over the last lookahead+1 input magnitudes,
	// kept as a monotonic deque in ring storage.
	dqValue []float64
	dqIndex []int64
	dqHead  int
	dqLen   int
	counter int64

	metrics LimiterMetrics
}

// NewLimiter creates a limiter with defaults:
//
//   - Ceiling: -1 dBFS
//   - Lookahead: 3 ms
//   - Attack: 1 ms
//   - Release: 60 ms
func NewLimiter(sampleRate float64) (*Limiter, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("limiter %w", err)
	}

	capacity := int(math.Ceil(maxLimiterLookaheadMs*sampleRate/1000)) + 1

	l := &Limiter{
		ceilingDB:   defaultLimiterCeilingDB,
		lookaheadMs: defaultLimiterLookaheadMs,
		attackMs:    defaultLimiterAttackMs,
		releaseMs:   defaultLimiterReleaseMs,
		sampleRate:  sampleRate,
		delayBuf:    make([]float64, capacity),
		dqValue:     make([]float64, capacity),
		dqIndex:     make([]int64, capacity),
	}

	l.ceiling = mathPower10(l.ceilingDB / 20)
	l.updateTimeConstants()
	l.setLookaheadSamples()
	l.Reset()

	return l, nil
}

// SetCeiling sets the output ceiling in dBFS.
func (l *Limiter) SetCeiling(dB float64) error {
	if err := checkRange("limiter ceiling", dB, minLimiterCeilingDB, maxLimiterCeilingDB); err != nil {
		return err
	}

	l.ceilingDB = dB
	l.ceiling = mathPower10(dB / 20)

	return nil
}

// SetLookahead sets the lookahead (and latency) in milliseconds.
func (l *Limiter) SetLookahead(ms float64) error {
	if err := checkRange("limiter lookahead", ms, minLimiterLookaheadMs, maxLimiterLookaheadMs); err != nil {
		return err
	}

	l.lookaheadMs = ms
	l.setLookaheadSamples()

	return nil
}

// SetAttack sets the gain attack time in milliseconds.
func (l *Limiter) SetAttack(ms float64) error {
	if err := checkRange("limiter attack", ms, minLimiterAttackMs, maxLimiterAttackMs); err != nil {
		return err
	}

	l.attackMs = ms
	l.updateTimeConstants()

	return nil
}

// SetRelease sets the gain release time in milliseconds.
func (l *Limiter) SetRelease(ms float64) error {
	if err := checkRange("limiter release", ms, minLimiterReleaseMs, maxLimiterReleaseMs); err != nil {
		return err
	}

	l.releaseMs = ms
	l.updateTimeConstants()

	return nil
}

// Ceiling returns the ceiling in dBFS.
func (l *Limiter) Ceiling() float64 { return l.ceilingDB }

// CeilingLinear returns the ceiling as a linear amplitude.
func (l *Limiter) CeilingLinear() float64 { return l.ceiling }

// Lookahead returns the lookahead in milliseconds.
func (l *Limiter) Lookahead() float64 { return l.lookaheadMs }

// Attack returns the attack time in milliseconds.
func (l *Limiter) Attack() float64 { return l.attackMs }

// Release returns the release time in milliseconds.
func (l *Limiter) Release() float64 { return l.releaseMs }

// SampleRate returns the sample rate in Hz.
func (l *Limiter) SampleRate() float64 { return l.sampleRate }

// Latency returns the program delay in samples.
func (l *Limiter) Latency() int { return l.lookahead }

// Gain returns the current smoothed gain.
func (l *Limiter) Gain() float64 { return l.gain }

// ProcessSample limits one sample and returns the delayed, gain-scaled
// program sample.
func (l *Limiter) ProcessSample(input float64) float64 {
	size := len(l.delayBuf)

	l.delayBuf[l.writePos] = input

	readPos := l.writePos - l.lookahead
	if readPos < 0 {
		readPos += size
	}

	delayed := l.delayBuf[readPos]

	l.writePos++
	if l.writePos >= size {
		l.writePos = 0
	}

	peak := l.pushPeak(math.Abs(input))

	target := 1.0
	if peak > l.ceiling {
		target = l.ceiling / peak
	}

	if target < l.gain {
		l.gain = envelope.Smooth(l.gain, target, l.attackCoeff)
	} else {
		l.gain = envelope.Smooth(l.gain, target, l.releaseCoeff)
	}

	g := l.gain
	if a := math.Abs(delayed); a*g > l.ceiling {
		g = l.ceiling / a
	}

	out := delayed * g

	if g < l.metrics.MinGain {
		l.metrics.MinGain = g
	}

	if a := math.Abs(out); a > l.metrics.OutputPeak {
		l.metrics.OutputPeak = a
	}

	return out
}

// ProcessInPlace limits buf in place.
func (l *Limiter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = l.ProcessSample(buf[i])
	}
}

// Reset clears the delay line, detector and gain.
func (l *Limiter) Reset() {
	clear(l.delayBuf)
	l.writePos = 0
	l.gain = 1
	l.dqHead = 0
	l.dqLen = 0
	l.counter = 0
	l.ResetMetrics()
}

// GetMetrics returns current metering values.
func (l *Limiter) GetMetrics() LimiterMetrics {
	return l.metrics
}

// ResetMetrics clears metering state.
func (l *Limiter) ResetMetrics() {
	l.metrics = LimiterMetrics{MinGain: 1}
}

// pushPeak adds a magnitude and returns the window maximum.
func (l *Limiter) pushPeak(v float64) float64 {
	if math.IsNaN(v) {
		v = math.Inf(1)
	}

	size := len(l.dqValue)
	n := l.counter
	l.counter++

	// Drop entries that left the window [n-lookahead, n].
	oldest := n - int64(l.lookahead)
	for l.dqLen > 0 && l.dqIndex[l.dqHead] < oldest {
		l.dqHead++
		if l.dqHead >= size {
			l.dqHead = 0
		}

		l.dqLen--
	}

	// Drop smaller entries from the tail; they can never be the maximum again.
	for l.dqLen > 0 {
		tail := (l.dqHead + l.dqLen - 1) % size
		if l.dqValue[tail] > v {
			break
		}

		l.dqLen--
	}

	tail := (l.dqHead + l.dqLen) % size
	l.dqValue[tail] = v
	l.dqIndex[tail] = n
	l.dqLen++

	return l.dqValue[l.dqHead]
}

func (l *Limiter) updateTimeConstants() {
	l.attackCoeff = envelope.Coefficient(l.attackMs, l.sampleRate)
	l.releaseCoeff = envelope.Coefficient(l.releaseMs, l.sampleRate)
}

func (l *Limiter) setLookaheadSamples() {
	n := int(math.Round(l.lookaheadMs * l.sampleRate / 1000))
	n = max(1, min(n, len(l.delayBuf)-1))

	if n == l.lookahead {
		return
	}

	l.lookahead = n
	l.rebuildPeakWindow()
}

// rebuildPeakWindow refills the deque from the delay line after the window
// length changed.
func (l *Limiter) rebuildPeakWindow() {
	l.dqHead = 0
	l.dqLen = 0

	if l.counter == 0 {
		return
	}

	size := len(l.delayBuf)
	span := int64(l.lookahead)
	start := max(l.counter-1-span, 0)
	latest := l.counter - 1

	l.counter = start
	for i := start; i <= latest; i++ {
		age := int(latest - i)

		pos := l.writePos - 1 - age
		for pos < 0 {
			pos += size
		}

		l.pushPeak(math.Abs(l.delayBuf[pos]))
	}
}

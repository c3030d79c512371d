package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/delay"
	"github.com/cwbudde/voicefx/dsp/envelope"
	"github.com/cwbudde/voicefx/dsp/interp"
)

const (
	defaultEchoTimeMs   = 300.0
	defaultEchoFeedback = 0.35
	defaultEchoDamping  = 0.3
	defaultEchoMix      = 0.25

	minEchoTimeMs   = 1.0
	maxEchoTimeMs   = 2000.0
	maxEchoFeedback = 0.95
	minEchoDamping  = 0.01
	maxEchoDamping  = 0.99

	// Time changes glide instead of jumping, which would click.
	echoTimeSmoothingMs = 60.0
	echoLineMargin      = 4
)

// Echo is a feedback delay with a damped repeat path.
//
// Each sample reads the line at the (smoothed, fractional) delay time with
// 4-point Hermite interpolation, low-passes the read value with a one-pole filter, writes
// input + damped*feedback back into the line, and outputs
// input*(1-mix) + damped*mix. Feedback never exceeds 0.95 and damping never
// reaches zero, so every repeat loses energy.
//
// The line is sized for the longest delay when the echo is created and is
// never reallocated.
type Echo struct {
	sampleRate float64
	timeMs     float64
	feedback   float64
	damping    float64
	mix        float64

	line      *delay.Line
	delayTime envelope.Smoother // in samples
	lowpass   float64
}

// NewEcho creates an echo with defaults:
//
//   - Time: 300 ms
//   - Feedback: 0.35
//   - Damping: 0.3
//   - Mix: 0.25
func NewEcho(sampleRate float64) (*Echo, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("echo sample rate must be positive and finite: %f", sampleRate)
	}

	line, err := delay.ForDuration(maxEchoTimeMs, sampleRate, echoLineMargin, delay.WithMode(interp.Hermite))
	if err != nil {
		return nil, fmt.Errorf("echo: %w", err)
	}

	e := &Echo{
		sampleRate: sampleRate,
		timeMs:     defaultEchoTimeMs,
		feedback:   defaultEchoFeedback,
		damping:    defaultEchoDamping,
		mix:        defaultEchoMix,
		line:       line,
	}

	samples := e.timeSamples()
	e.delayTime = envelope.NewSmoother(echoTimeSmoothingMs, sampleRate, samples)

	return e, nil
}

// SetTime sets the delay time in milliseconds. The running delay glides
// toward the new value.
func (e *Echo) SetTime(ms float64) error {
	if ms < minEchoTimeMs || ms > maxEchoTimeMs || math.IsNaN(ms) {
		return fmt.Errorf("echo time must be in [%g, %g] ms: %f", minEchoTimeMs, maxEchoTimeMs, ms)
	}

	e.timeMs = ms
	e.delayTime.SetTarget(e.timeSamples())

	return nil
}

// SetFeedback sets the repeat gain in [0, 0.95].
func (e *Echo) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > maxEchoFeedback || math.IsNaN(feedback) {
		return fmt.Errorf("echo feedback must be in [0, %g]: %f", maxEchoFeedback, feedback)
	}

	e.feedback = feedback

	return nil
}

// SetDamping sets the one-pole coefficient of the repeat filter in
// [0.01, 0.99]. Higher values darken the repeats faster.
func (e *Echo) SetDamping(damping float64) error {
	if damping < minEchoDamping || damping > maxEchoDamping || math.IsNaN(damping) {
		return fmt.Errorf("echo damping must be in [%g, %g]: %f", minEchoDamping, maxEchoDamping, damping)
	}

	e.damping = damping

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (e *Echo) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("echo mix must be in [0, 1]: %f", mix)
	}

	e.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (e *Echo) SampleRate() float64 { return e.sampleRate }

// Time returns the target delay time in milliseconds.
func (e *Echo) Time() float64 { return e.timeMs }

// Feedback returns the repeat gain.
func (e *Echo) Feedback() float64 { return e.feedback }

// Damping returns the repeat filter coefficient.
func (e *Echo) Damping() float64 { return e.damping }

// Mix returns the wet amount.
func (e *Echo) Mix() float64 { return e.mix }

// ProcessSample processes one sample.
func (e *Echo) ProcessSample(input float64) float64 {
	delayed := e.line.ReadFractional(e.delayTime.Next())

	e.lowpass = delayed*(1-e.damping) + e.lowpass*e.damping
	if math.Abs(e.lowpass) < 1e-20 {
		e.lowpass = 0
	}

	e.line.Write(input + e.lowpass*e.feedback)

	return input*(1-e.mix) + e.lowpass*e.mix
}

// ProcessInPlace processes buf in place.
func (e *Echo) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = e.ProcessSample(buf[i])
	}
}

// Reset clears the line and the repeat filter and snaps the delay time to
// its target.
func (e *Echo) Reset() {
	e.line.Reset()
	e.lowpass = 0
	e.delayTime.Snap(e.timeSamples())
}

func (e *Echo) timeSamples() float64 {
	return e.timeMs * e.sampleRate / 1000
}

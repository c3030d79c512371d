package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/delay"
)

const (
	reverbNumCombs     = 8
	reverbNumAllpasses = 4

	reverbAllpassGain = 0.5
	// Comb outputs are summed, so the bank input is scaled down.
	reverbCombInputGain = 1.0 / reverbNumCombs

	defaultReverbDecaySeconds = 1.5
	defaultReverbRoomSize     = 1.0
	defaultReverbDamping      = 0.4
	defaultReverbPreDelayMs   = 10.0
	defaultReverbMix          = 0.25

	minReverbDecaySeconds = 0.1
	maxReverbDecaySeconds = 10.0
	minReverbRoomSize     = 0.25
	maxReverbRoomSize     = 2.0
	maxReverbDamping      = 0.99
	maxReverbPreDelayMs   = 200.0

	// Damping loss is compensated at this frequency, which carries most of
	// the tail energy for voice material.
	reverbDampingRefHz = 1000.0
)

// Comb and allpass base lengths in milliseconds, scaled by room size.
var (
	reverbCombBaseMs    = [reverbNumCombs]float64{25.31, 26.94, 28.96, 30.75, 32.24, 33.81, 35.31, 36.67}
	reverbAllpassBaseMs = [reverbNumAllpasses]float64{12.61, 10.0, 7.73, 5.10}
)

// Reverb is a Schroeder reverberator: eight parallel damped feedback combs
// followed by four serial allpass sections.
//
// Delay lengths are the base times scaled by the room size and rounded up to
// distinct primes, which keeps the comb echoes from lining up. Each comb's
// loop gain is 0.001^(length/(decay*fs)), so every comb falls by 60 dB in the
// decay time. The feedback is divided by the damping filter's gain at 1 kHz
// so the broadband tail keeps that RT60 when damping is on; the low end then
// rings longer, at most twice the decay time. The allpasses only scatter
// phase.
//
// All buffers are sized for the largest room when the reverb is created.
type Reverb struct {
	sampleRate   float64
	decaySeconds float64
	roomSize     float64
	damping      float64
	preDelayMs   float64
	mix          float64

	preDelay        *delay.Line
	preDelaySamples int

	combs   [reverbNumCombs]reverbComb
	allpass [reverbNumAllpasses]reverbAllpass
}

type reverbComb struct {
	buffer   []float64
	length   int
	index    int
	feedback float64
	damp     float64
	store    float64
}

func (c *reverbComb) process(input float64) float64 {
	out := c.buffer[c.index]

	c.store = out*(1-c.damp) + c.store*c.damp
	if math.Abs(c.store) < 1e-23 {
		c.store = 0
	}

	c.buffer[c.index] = input + c.store*c.feedback

	c.index++
	if c.index >= c.length {
		c.index = 0
	}

	return out
}

func (c *reverbComb) setLength(n int) {
	c.length = n
	if c.index >= n {
		c.index = 0
	}
}

func (c *reverbComb) reset() {
	clear(c.buffer)
	c.index = 0
	c.store = 0
}

// reverbAllpass is a true allpass:
//
//	w[n] = x[n] + g*w[n-M]
//	y[n] = -g*w[n] + w[n-M]
type reverbAllpass struct {
	buffer []float64
	length int
	index  int
	gain   float64
}

func (a *reverbAllpass) process(input float64) float64 {
	delayed := a.buffer[a.index]

	w := input + a.gain*delayed
	if math.Abs(w) < 1e-23 {
		w = 0
	}

	a.buffer[a.index] = w

	a.index++
	if a.index >= a.length {
		a.index = 0
	}

	return delayed - a.gain*w
}

func (a *reverbAllpass) setLength(n int) {
	a.length = n
	if a.index >= n {
		a.index = 0
	}
}

func (a *reverbAllpass) reset() {
	clear(a.buffer)
	a.index = 0
}

// NewReverb creates a reverb with defaults:
//
//   - Decay (RT60): 1.5 s
//   - Room size: 1.0
//   - Damping: 0.4
//   - Pre-delay: 10 ms
//   - Mix: 0.25
func NewReverb(sampleRate float64) (*Reverb, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb sample rate must be positive and finite: %f", sampleRate)
	}

	preDelay, err := delay.ForDuration(maxReverbPreDelayMs, sampleRate, 2)
	if err != nil {
		return nil, fmt.Errorf("reverb pre-delay: %w", err)
	}

	r := &Reverb{
		sampleRate:   sampleRate,
		decaySeconds: defaultReverbDecaySeconds,
		roomSize:     defaultReverbRoomSize,
		damping:      defaultReverbDamping,
		preDelayMs:   defaultReverbPreDelayMs,
		mix:          defaultReverbMix,
		preDelay:     preDelay,
	}

	for i := range r.combs {
		r.combs[i].buffer = make([]float64, nextPrime(msToSamples(reverbCombBaseMs[i]*maxReverbRoomSize, sampleRate)+reverbNumCombs*8))
	}

	for i := range r.allpass {
		r.allpass[i].buffer = make([]float64, nextPrime(msToSamples(reverbAllpassBaseMs[i]*maxReverbRoomSize, sampleRate)+reverbNumAllpasses*8))
		r.allpass[i].gain = reverbAllpassGain
	}

	r.updateLengths()
	r.updateDamping()
	r.updatePreDelay()

	return r, nil
}

// SetDecay sets the RT60 decay time in seconds.
func (r *Reverb) SetDecay(seconds float64) error {
	if seconds < minReverbDecaySeconds || seconds > maxReverbDecaySeconds || math.IsNaN(seconds) {
		return fmt.Errorf("reverb decay must be in [%g, %g] s: %f", minReverbDecaySeconds, maxReverbDecaySeconds, seconds)
	}

	r.decaySeconds = seconds
	r.updateFeedback()

	return nil
}

// SetRoomSize scales all delay lengths.
func (r *Reverb) SetRoomSize(size float64) error {
	if size < minReverbRoomSize || size > maxReverbRoomSize || math.IsNaN(size) {
		return fmt.Errorf("reverb room size must be in [%g, %g]: %f", minReverbRoomSize, maxReverbRoomSize, size)
	}

	r.roomSize = size
	r.updateLengths()

	return nil
}

// SetDamping sets the high-frequency absorption inside the combs in
// [0, 0.99].
func (r *Reverb) SetDamping(damping float64) error {
	if damping < 0 || damping > maxReverbDamping || math.IsNaN(damping) {
		return fmt.Errorf("reverb damping must be in [0, %g]: %f", maxReverbDamping, damping)
	}

	r.damping = damping
	r.updateDamping()
	r.updateFeedback()

	return nil
}

// SetPreDelay sets the delay before the reverb network in milliseconds.
func (r *Reverb) SetPreDelay(ms float64) error {
	if ms < 0 || ms > maxReverbPreDelayMs || math.IsNaN(ms) {
		return fmt.Errorf("reverb pre-delay must be in [0, %g] ms: %f", maxReverbPreDelayMs, ms)
	}

	r.preDelayMs = ms
	r.updatePreDelay()

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (r *Reverb) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("reverb mix must be in [0, 1]: %f", mix)
	}

	r.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (r *Reverb) SampleRate() float64 { return r.sampleRate }

// Decay returns the RT60 in seconds.
func (r *Reverb) Decay() float64 { return r.decaySeconds }

// RoomSize returns the room scale factor.
func (r *Reverb) RoomSize() float64 { return r.roomSize }

// Damping returns the comb damping.
func (r *Reverb) Damping() float64 { return r.damping }

// PreDelay returns the pre-delay in milliseconds.
func (r *Reverb) PreDelay() float64 { return r.preDelayMs }

// Mix returns the wet amount.
func (r *Reverb) Mix() float64 { return r.mix }

// CombLengths returns the current comb lengths in samples.
func (r *Reverb) CombLengths() [reverbNumCombs]int {
	var out [reverbNumCombs]int
	for i := range r.combs {
		out[i] = r.combs[i].length
	}

	return out
}

// CombFeedback returns the feedback gain of comb i.
func (r *Reverb) CombFeedback(i int) float64 { return r.combs[i].feedback }

// ProcessSample processes one sample.
func (r *Reverb) ProcessSample(input float64) float64 {
	x := input
	if r.preDelaySamples > 0 {
		r.preDelay.Write(input)
		x = r.preDelay.Read(r.preDelaySamples + 1)
	}

	wet := r.processCombs(x * reverbCombInputGain)
	for i := range r.allpass {
		wet = r.allpass[i].process(wet)
	}

	return input*(1-r.mix) + wet*r.mix
}

// ProcessInPlace processes buf in place.
func (r *Reverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// CombTail resets the reverb and returns the response of the comb bank alone
// to a unit impulse, length samples long. It allocates and is meant for
// analysis, not for the audio thread. The reverb is reset again afterwards.
func (r *Reverb) CombTail(length int) []float64 {
	r.Reset()
	defer r.Reset()

	out := make([]float64, max(length, 0))
	for i := range out {
		x := 0.0
		if i == 0 {
			x = 1
		}

		out[i] = r.processCombs(x)
	}

	return out
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	r.preDelay.Reset()

	for i := range r.combs {
		r.combs[i].reset()
	}

	for i := range r.allpass {
		r.allpass[i].reset()
	}
}

func (r *Reverb) processCombs(x float64) float64 {
	var acc float64
	for i := range r.combs {
		acc += r.combs[i].process(x)
	}

	return acc
}

func (r *Reverb) updateLengths() {
	prev := 0
	for i := range r.combs {
		n := nextPrime(max(msToSamples(reverbCombBaseMs[i]*r.roomSize, r.sampleRate), prev+1))
		n = min(n, len(r.combs[i].buffer))
		r.combs[i].setLength(n)
		prev = n
	}

	prev = 0
	for i := range r.allpass {
		n := nextPrime(msToSamples(reverbAllpassBaseMs[i]*r.roomSize, r.sampleRate))
		if n == prev {
			n = nextPrime(n + 1)
		}

		n = min(n, len(r.allpass[i].buffer))
		r.allpass[i].setLength(n)
		prev = n
	}

	r.updateFeedback()
}

func (r *Reverb) updateFeedback() {
	w := 2 * math.Pi * reverbDampingRefHz / r.sampleRate
	d := r.damping
	dampGain := (1 - d) / math.Sqrt(1-2*d*math.Cos(w)+d*d)

	for i := range r.combs {
		g := math.Pow(0.001, float64(r.combs[i].length)/(r.decaySeconds*r.sampleRate))
		r.combs[i].feedback = min(g/dampGain, math.Sqrt(g))
	}
}

func (r *Reverb) updateDamping() {
	for i := range r.combs {
		r.combs[i].damp = r.damping
	}
}

func (r *Reverb) updatePreDelay() {
	r.preDelaySamples = core.ClampInt(int(math.Round(r.preDelayMs*r.sampleRate/1000)), 0, r.preDelay.Len()-1)
}

func msToSamples(ms, sampleRate float64) int {
	return max(2, int(math.Round(ms*sampleRate/1000)))
}

// nextPrime returns the smallest prime >= n.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}

	if n%2 == 0 {
		n++
	}

	for !isPrime(n) {
		n += 2
	}

	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}

	if n%2 == 0 {
		return n == 2
	}

	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}

	return true
}

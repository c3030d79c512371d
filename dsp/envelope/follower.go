package envelope

import (
	"fmt"
	"math"
)

// Mode selects the detector law.
type Mode int

const (
	// Peak follows |x|.
	Peak Mode = iota
	// RMS follows the mean square of x, pre-averaged over a sliding window.
	RMS
)

// String returns the detector name.
func (m Mode) String() string {
	switch m {
	case Peak:
		return "peak"
	case RMS:
		return "rms"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

const (
	defaultAttackMs  = 5.0
	defaultReleaseMs = 100.0
)

// Follower is an attack/release envelope detector.
//
// In RMS mode the squared input is first averaged over a sliding window and
// the smoothed state holds a mean square; Level returns its square root.
// The window storage is sized once at construction for the largest window,
// so SetWindow never allocates.
type Follower struct {
	mode       Mode
	sampleRate float64

	attackMs     float64
	releaseMs    float64
	attackCoeff  float64
	releaseCoeff float64

	state float64

	window    []float64
	windowLen int
	windowMs  float64
	windowPos int
	windowSum float64
}

// NewFollower creates a detector. maxWindowMs sizes the RMS window storage
// and is ignored in Peak mode.
func NewFollower(sampleRate float64, mode Mode, maxWindowMs float64) (*Follower, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("envelope sample rate must be positive and finite: %f", sampleRate)
	}

	if mode != Peak && mode != RMS {
		return nil, fmt.Errorf("envelope: invalid detector mode %d", mode)
	}

	f := &Follower{
		mode:       mode,
		sampleRate: sampleRate,
		attackMs:   defaultAttackMs,
		releaseMs:  defaultReleaseMs,
	}

	if mode == RMS && maxWindowMs > 0 {
		f.window = make([]float64, int(math.Ceil(maxWindowMs*sampleRate/1000))+1)
	}

	f.updateCoefficients()

	return f, nil
}

// SetAttack sets the attack time in milliseconds. Zero means instant.
func (f *Follower) SetAttack(ms float64) {
	if ms < 0 || math.IsNaN(ms) {
		ms = 0
	}

	f.attackMs = ms
	f.updateCoefficients()
}

// SetRelease sets the release time in milliseconds. Zero means instant.
func (f *Follower) SetRelease(ms float64) {
	if ms < 0 || math.IsNaN(ms) {
		ms = 0
	}

	f.releaseMs = ms
	f.updateCoefficients()
}

// SetWindow sets the RMS pre-averaging window. It is limited to the storage
// reserved at construction. Changing the length restarts the window.
func (f *Follower) SetWindow(ms float64) {
	if ms < 0 || math.IsNaN(ms) {
		ms = 0
	}

	n := int(math.Round(ms * f.sampleRate / 1000))
	if n > len(f.window) {
		n = len(f.window)
	}

	f.windowMs = ms
	if n == f.windowLen {
		return
	}

	f.windowLen = n
	f.clearWindow()
}

// Attack returns the attack time in milliseconds.
func (f *Follower) Attack() float64 { return f.attackMs }

// Release returns the release time in milliseconds.
func (f *Follower) Release() float64 { return f.releaseMs }

// Window returns the requested RMS window in milliseconds.
func (f *Follower) Window() float64 { return f.windowMs }

// WindowSamples returns the active RMS window length.
func (f *Follower) WindowSamples() int { return f.windowLen }

// Mode returns the detector mode.
func (f *Follower) Mode() Mode { return f.mode }

// Process feeds one sample and returns the detected level as a linear
// amplitude.
func (f *Follower) Process(x float64) float64 {
	var in float64

	if f.mode == RMS {
		in = f.windowed(x * x)
	} else {
		in = math.Abs(x)
	}

	if math.IsNaN(in) || math.IsInf(in, 0) {
		in = 0
	}

	c := f.releaseCoeff
	if in > f.state {
		c = f.attackCoeff
	}

	f.state = Smooth(f.state, in, c)
	if f.state < 1e-30 {
		f.state = 0
	}

	return f.Level()
}

// Level returns the current detected amplitude, floored at Floor.
func (f *Follower) Level() float64 {
	v := f.state
	if f.mode == RMS {
		v = math.Sqrt(v)
	}

	if v < Floor {
		return Floor
	}

	return v
}

// State returns the raw smoothed detector state (mean square in RMS mode).
func (f *Follower) State() float64 { return f.state }

// Reset clears the detector state.
func (f *Follower) Reset() {
	f.state = 0
	f.clearWindow()
}

func (f *Follower) windowed(sq float64) float64 {
	if f.windowLen <= 1 {
		return sq
	}

	f.windowSum += sq - f.window[f.windowPos]
	f.window[f.windowPos] = sq

	f.windowPos++
	if f.windowPos >= f.windowLen {
		f.windowPos = 0
	}

	if f.windowSum < 0 {
		f.windowSum = 0
	}

	return f.windowSum / float64(f.windowLen)
}

func (f *Follower) clearWindow() {
	clear(f.window)
	f.windowPos = 0
	f.windowSum = 0
}

func (f *Follower) updateCoefficients() {
	f.attackCoeff = Coefficient(f.attackMs, f.sampleRate)
	f.releaseCoeff = Coefficient(f.releaseMs, f.sampleRate)
}

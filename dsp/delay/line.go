package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/interp"
)

// Line is a fixed-capacity circular delay line. Its storage is allocated
// once by New and never resized, so it is safe to use on the audio thread.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// Option configures a Line.
type Option func(*Line)

// WithMode selects the fractional read interpolation (default linear).
func WithMode(mode interp.Mode) Option {
	return func(l *Line) {
		if mode == interp.Linear || mode == interp.Hermite {
			l.mode = mode
		}
	}
}

// New returns a delay line holding size samples.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	l := &Line{buffer: make([]float64, size)}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l, nil
}

// ForDuration returns a line long enough for maxMs at sampleRate plus
// margin samples.
func ForDuration(maxMs, sampleRate float64, margin int, opts ...Option) (*Line, error) {
	if !(maxMs > 0) || !(sampleRate > 0) || math.IsInf(maxMs*sampleRate, 0) {
		return nil, fmt.Errorf("delay duration must be positive and finite: %f ms at %f Hz", maxMs, sampleRate)
	}

	return New(int(math.Ceil(maxMs*sampleRate/1000))+margin, opts...)
}

// Len returns the capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// MaxDelay returns the largest delay ReadFractional can serve without
// wrapping into samples about to be overwritten.
func (d *Line) MaxDelay() float64 {
	return float64(len(d.buffer) - d.mode.Taps())
}

// MinDelay returns the smallest delay ReadFractional serves.
func (d *Line) MinDelay() float64 {
	return float64(d.mode.Taps() / 2)
}

// Mode returns the interpolation mode.
func (d *Line) Mode() interp.Mode { return d.mode }

// Write appends one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay samples before the next write.
// Read(1) is the most recent sample.
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)

	pos := (d.writePos - delay) % size
	if pos < 0 {
		pos += size
	}

	return d.buffer[pos]
}

// ReadFractional reads a fractional delay, clamped to [MinDelay, MaxDelay].
func (d *Line) ReadFractional(delay float64) float64 {
	maxDelay := d.MaxDelay()
	if delay > maxDelay {
		delay = maxDelay
	}

	if minDelay := d.MinDelay(); !(delay >= minDelay) {
		delay = minDelay
	}

	p := int(delay)
	t := delay - float64(p)

	if d.mode == interp.Hermite {
		return interp.Hermite4(t, d.Read(p-1), d.Read(p), d.Read(p+1), d.Read(p+2))
	}

	return interp.Linear2(t, d.Read(p), d.Read(p+1))
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}

package envelope

import "math"

// Smoother glides a control value toward a target with a one-pole filter.
// The zero value holds 0 and jumps straight to any target.
type Smoother struct {
	coeff  float64
	value  float64
	target float64
}

// NewSmoother returns a smoother with the given time constant, starting at
// initial.
func NewSmoother(timeMs, sampleRate, initial float64) Smoother {
	return Smoother{
		coeff:  Coefficient(timeMs, sampleRate),
		value:  initial,
		target: initial,
	}
}

// SetTime changes the time constant.
func (s *Smoother) SetTime(timeMs, sampleRate float64) {
	s.coeff = Coefficient(timeMs, sampleRate)
}

// SetTarget sets the value to glide toward. Non-finite targets are ignored.
func (s *Smoother) SetTarget(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}

	s.target = v
}

// Snap jumps to v immediately.
func (s *Smoother) Snap(v float64) {
	s.SetTarget(v)
	s.value = s.target
}

// Next advances one sample and returns the new value.
func (s *Smoother) Next() float64 {
	s.value = Smooth(s.value, s.target, s.coeff)
	if math.Abs(s.value-s.target) < 1e-12 {
		s.value = s.target
	}

	return s.value
}

// Value returns the current value.
func (s *Smoother) Value() float64 { return s.value }

// Target returns the current target.
func (s *Smoother) Target() float64 { return s.target }

// Settled reports whether the value has reached its target.
func (s *Smoother) Settled() bool { return s.value == s.target }

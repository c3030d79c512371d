package effects

import (
	"fmt"
	"math"
)

// SaturatorMode selects the transfer curve.
type SaturatorMode int

const (
	// SaturatorTanh is a smooth hyperbolic tangent curve.
	SaturatorTanh SaturatorMode = iota
	// SaturatorSoftClip is the cubic 1.5*(x - x^3/3) curve, flat beyond |x| = 1.
	SaturatorSoftClip
	// SaturatorHardClip clips at ±1.
	SaturatorHardClip
)

const (
	defaultSaturatorDrive = 2.0
	defaultSaturatorMix   = 1.0
	minSaturatorDrive     = 1.0
	maxSaturatorDrive     = 20.0
)

// Saturator drives the input into a memoryless curve and scales the result
// back so a full-scale input comes out near full scale again.
//
//	wet = shape(drive*x) / shape(drive)
//	out = x*(1-mix) + wet*mix
type Saturator struct {
	mode  SaturatorMode
	drive float64
	mix   float64

	compensation float64
}

// NewSaturator creates a tanh saturator with drive 2, fully wet.
func NewSaturator() *Saturator {
	s := &Saturator{
		mode:  SaturatorTanh,
		drive: defaultSaturatorDrive,
		mix:   defaultSaturatorMix,
	}
	s.updateCompensation()

	return s
}

// SetMode selects the transfer curve.
func (s *Saturator) SetMode(mode SaturatorMode) error {
	if mode < SaturatorTanh || mode > SaturatorHardClip {
		return fmt.Errorf("saturator mode out of range: %d", mode)
	}

	s.mode = mode
	s.updateCompensation()

	return nil
}

// SetDrive sets the input gain into the curve in [1, 20].
func (s *Saturator) SetDrive(drive float64) error {
	if drive < minSaturatorDrive || drive > maxSaturatorDrive || math.IsNaN(drive) {
		return fmt.Errorf("saturator drive must be in [%g, %g]: %f", minSaturatorDrive, maxSaturatorDrive, drive)
	}

	s.drive = drive
	s.updateCompensation()

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (s *Saturator) SetMix(mix float64) error {
	if err := validateUnit("saturator mix", mix); err != nil {
		return err
	}

	s.mix = mix

	return nil
}

// Mode returns the transfer curve.
func (s *Saturator) Mode() SaturatorMode { return s.mode }

// Drive returns the drive gain.
func (s *Saturator) Drive() float64 { return s.drive }

// Mix returns the wet amount.
func (s *Saturator) Mix() float64 { return s.mix }

// ProcessSample saturates one sample.
func (s *Saturator) ProcessSample(x float64) float64 {
	wet := s.shape(x*s.drive) * s.compensation
	return x*(1-s.mix) + wet*s.mix
}

// ProcessInPlace saturates buf in place.
func (s *Saturator) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}

func (s *Saturator) shape(x float64) float64 {
	switch s.mode {
	case SaturatorSoftClip:
		if math.Abs(x) < 1 {
			return 1.5 * (x - x*x*x/3)
		}

		return math.Copysign(1, x)
	case SaturatorHardClip:
		return max(-1, min(1, x))
	default:
		return math.Tanh(x)
	}
}

func (s *Saturator) updateCompensation() {
	s.compensation = 1 / s.shape(s.drive)
}

package voice

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/effects/dynamics"
	"github.com/cwbudde/voicefx/dsp/effects/pitch"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

const (
	defaultCharacterCompensation = 0.5
	defaultCharacterCompression  = 0.3

	minCharacterBrightnessDB = -12.0
	maxCharacterBrightnessDB = 12.0

	characterLowShelfHz   = 300.0
	characterHighShelfHz  = 2500.0
	characterPresenceHz   = 3200.0
	characterBrightnessHz = 6000.0
	characterShelfQ       = 0.707
	characterPresenceQ    = 1.0

	// tiltPerSemitoneDB is the shelf gain per semitone at full compensation.
	tiltPerSemitoneDB  = 0.75
	maxTiltDB          = 12.0
	maxPresenceBoostDB = 2.0
)

var characterCompression = compressionCurve{
	thresholdDB:     -12,
	thresholdSpanDB: 18,
	maxRatio:        4,
	makeupDB:        3,
	attackMs:        5,
	releaseMs:       100,
}

// Character shifts the pitch of a voice and reshapes its tone so the result
// reads as a different speaker rather than a sped-up tape.
//
// Signal flow:
//
//	pitch shift -> low shelf 300 Hz -> high shelf 2.5 kHz -> presence peak
//	  -> brightness shelf 6 kHz -> compressor
//
// Shifting pitch drags the formants along. Compensation tilts the spectrum
// against that move: for a shift of st semitones the high shelf gets
// -st*comp*0.75 dB and the low shelf the opposite amount, both limited to
// ±12 dB. The presence peak adds up to 2 dB with compensation to keep the
// voice intelligible.
type Character struct {
	sampleRate   float64
	semitones    float64
	compensation float64
	brightnessDB float64
	compression  float64

	shifter    *pitch.Shifter
	lowShelf   biquad.Section
	highShelf  biquad.Section
	presence   biquad.Section
	brightness biquad.Section
	comp       *dynamics.Compressor
}

// NewCharacter creates a character voice at unity pitch with moderate
// compensation and light compression.
func NewCharacter(sampleRate float64) (*Character, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("character voice: %w", err)
	}

	shifter, err := pitch.NewShifter(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("character voice: %w", err)
	}

	comp, err := dynamics.NewCompressor(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("character voice: %w", err)
	}

	c := &Character{
		sampleRate:   sampleRate,
		compensation: defaultCharacterCompensation,
		compression:  defaultCharacterCompression,
		shifter:      shifter,
		comp:         comp,
	}

	if err := c.updateCompressor(); err != nil {
		return nil, err
	}

	c.updateTone()

	return c, nil
}

// SetSemitones sets the pitch shift in [-24, 24] semitones.
func (c *Character) SetSemitones(st float64) error {
	if !core.IsFinite(st) || math.Abs(st) > pitch.MaxSemitones {
		return fmt.Errorf("character semitones must be in [-%g, %g]: %f",
			pitch.MaxSemitones, pitch.MaxSemitones, st)
	}

	if err := c.shifter.SetSemitones(st); err != nil {
		return fmt.Errorf("character voice: %w", err)
	}

	c.semitones = st
	c.updateTone()

	return nil
}

// SetCompensation sets the formant compensation amount in [0, 1].
func (c *Character) SetCompensation(amount float64) error {
	if err := validateAmount("character compensation", amount); err != nil {
		return err
	}

	c.compensation = amount
	c.updateTone()

	return nil
}

// SetBrightness sets the brightness shelf gain in [-12, 12] dB.
func (c *Character) SetBrightness(dB float64) error {
	if !core.IsFinite(dB) || dB < minCharacterBrightnessDB || dB > maxCharacterBrightnessDB {
		return fmt.Errorf("character brightness must be in [%g, %g] dB: %f",
			minCharacterBrightnessDB, maxCharacterBrightnessDB, dB)
	}

	c.brightnessDB = dB
	c.updateTone()

	return nil
}

// SetCompression sets the compression amount in [0, 1]. Zero disables the
// compressor.
func (c *Character) SetCompression(amount float64) error {
	if err := validateAmount("character compression", amount); err != nil {
		return err
	}

	c.compression = amount

	return c.updateCompressor()
}

// SampleRate returns the sample rate in Hz.
func (c *Character) SampleRate() float64 { return c.sampleRate }

// Semitones returns the pitch shift.
func (c *Character) Semitones() float64 { return c.semitones }

// Compensation returns the formant compensation amount.
func (c *Character) Compensation() float64 { return c.compensation }

// Brightness returns the brightness shelf gain in dB.
func (c *Character) Brightness() float64 { return c.brightnessDB }

// Compression returns the compression amount.
func (c *Character) Compression() float64 { return c.compression }

// TiltDB returns the gain currently applied by the high compensation shelf.
// The low shelf carries the negated value.
func (c *Character) TiltDB() float64 {
	return core.Clamp(-c.semitones*c.compensation*tiltPerSemitoneDB, -maxTiltDB, maxTiltDB)
}

// Latency returns the delay introduced by the pitch shifter in samples.
func (c *Character) Latency() int { return c.shifter.Latency() }

// ProcessSample processes one sample.
func (c *Character) ProcessSample(x float64) float64 {
	y := c.shifter.ProcessSample(x)
	y = c.lowShelf.ProcessSample(y)
	y = c.highShelf.ProcessSample(y)
	y = c.presence.ProcessSample(y)
	y = c.brightness.ProcessSample(y)

	if c.compression > 0 {
		y = c.comp.ProcessSample(y)
	}

	return y
}

// ProcessInPlace processes buf in place.
func (c *Character) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears all internal state.
func (c *Character) Reset() {
	c.shifter.Reset()
	c.lowShelf.Reset()
	c.highShelf.Reset()
	c.presence.Reset()
	c.brightness.Reset()
	c.comp.Reset()
}

func (c *Character) updateTone() {
	tilt := c.TiltDB()

	c.lowShelf.Design(biquad.LowShelf, characterLowShelfHz, c.sampleRate, characterShelfQ, -tilt)
	c.highShelf.Design(biquad.HighShelf, characterHighShelfHz, c.sampleRate, characterShelfQ, tilt)
	c.presence.Design(biquad.Peaking, characterPresenceHz, c.sampleRate, characterPresenceQ,
		maxPresenceBoostDB*c.compensation)
	c.brightness.Design(biquad.HighShelf, characterBrightnessHz, c.sampleRate, characterShelfQ,
		c.brightnessDB)
}

func (c *Character) updateCompressor() error {
	if err := characterCompression.apply(c.comp, c.compression); err != nil {
		return fmt.Errorf("character compressor %w", err)
	}

	return nil
}

func validateAmount(name string, v float64) error {
	if !core.IsFinite(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0, 1]: %f", name, v)
	}

	return nil
}

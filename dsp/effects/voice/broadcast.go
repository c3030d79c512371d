package voice

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/effects/dynamics"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

const (
	defaultBroadcastWarmthDB    = 3.0
	defaultBroadcastPresenceDB  = 3.0
	defaultBroadcastCompression = 0.5

	maxBroadcastShelfDB = 12.0

	broadcastWarmthHz   = 150.0
	broadcastPresenceHz = 3000.0
	broadcastAirHz      = 10000.0
	broadcastAirDB      = 2.0
	broadcastShelfQ     = 0.707
	broadcastPresenceQ  = 1.0
)

var broadcastCompression = compressionCurve{
	thresholdDB:     -10,
	thresholdSpanDB: 14,
	maxRatio:        5,
	makeupDB:        4,
	attackMs:        5,
	releaseMs:       120,
}

// Broadcast is the close-miked radio voice.
//
// Signal flow:
//
//	warmth low shelf 150 Hz -> presence peak 3 kHz -> compressor
//	  -> air high shelf 10 kHz (+2 dB)
//
// Compression 0 removes the compressor; 1 compresses at 5:1 from -24 dB
// with 4 dB of makeup.
type Broadcast struct {
	sampleRate  float64
	warmthDB    float64
	presenceDB  float64
	compression float64

	warmth   biquad.Section
	presence biquad.Section
	comp     *dynamics.Compressor
	air      biquad.Section
}

// NewBroadcast creates a broadcast voice with +3 dB warmth and presence and
// medium compression.
func NewBroadcast(sampleRate float64) (*Broadcast, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("broadcast voice: %w", err)
	}

	comp, err := dynamics.NewCompressor(sampleRate)
	if err != nil {
		return nil, fmt.Errorf("broadcast voice: %w", err)
	}

	b := &Broadcast{
		sampleRate:  sampleRate,
		warmthDB:    defaultBroadcastWarmthDB,
		presenceDB:  defaultBroadcastPresenceDB,
		compression: defaultBroadcastCompression,
		comp:        comp,
	}

	if err := b.updateCompressor(); err != nil {
		return nil, err
	}

	b.air.Design(biquad.HighShelf, broadcastAirHz, sampleRate, broadcastShelfQ, broadcastAirDB)
	b.updateTone()

	return b, nil
}

// SetWarmth sets the low shelf boost in [0, 12] dB.
func (b *Broadcast) SetWarmth(dB float64) error {
	if err := validateShelf("broadcast warmth", dB); err != nil {
		return err
	}

	b.warmthDB = dB
	b.updateTone()

	return nil
}

// SetPresence sets the presence peak boost in [0, 12] dB.
func (b *Broadcast) SetPresence(dB float64) error {
	if err := validateShelf("broadcast presence", dB); err != nil {
		return err
	}

	b.presenceDB = dB
	b.updateTone()

	return nil
}

// SetCompression sets the compression amount in [0, 1].
func (b *Broadcast) SetCompression(amount float64) error {
	if err := validateAmount("broadcast compression", amount); err != nil {
		return err
	}

	b.compression = amount

	return b.updateCompressor()
}

// SampleRate returns the sample rate in Hz.
func (b *Broadcast) SampleRate() float64 { return b.sampleRate }

// Warmth returns the low shelf boost in dB.
func (b *Broadcast) Warmth() float64 { return b.warmthDB }

// Presence returns the presence boost in dB.
func (b *Broadcast) Presence() float64 { return b.presenceDB }

// Compression returns the compression amount.
func (b *Broadcast) Compression() float64 { return b.compression }

// ProcessSample processes one sample.
func (b *Broadcast) ProcessSample(x float64) float64 {
	y := b.warmth.ProcessSample(x)
	y = b.presence.ProcessSample(y)

	if b.compression > 0 {
		y = b.comp.ProcessSample(y)
	}

	return b.air.ProcessSample(y)
}

// ProcessInPlace processes buf in place.
func (b *Broadcast) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = b.ProcessSample(x)
	}
}

// Reset clears all internal state.
func (b *Broadcast) Reset() {
	b.warmth.Reset()
	b.presence.Reset()
	b.comp.Reset()
	b.air.Reset()
}

func (b *Broadcast) updateTone() {
	b.warmth.Design(biquad.LowShelf, broadcastWarmthHz, b.sampleRate, broadcastShelfQ, b.warmthDB)
	b.presence.Design(biquad.Peaking, broadcastPresenceHz, b.sampleRate, broadcastPresenceQ, b.presenceDB)
}

func (b *Broadcast) updateCompressor() error {
	if err := broadcastCompression.apply(b.comp, b.compression); err != nil {
		return fmt.Errorf("broadcast compressor %w", err)
	}

	return nil
}

func validateShelf(name string, dB float64) error {
	if !core.IsFinite(dB) || dB < 0 || dB > maxBroadcastShelfDB {
		return fmt.Errorf("%s must be in [0, %g] dB: %f", name, maxBroadcastShelfDB, dB)
	}

	return nil
}

package pitch

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/delay"
	"github.com/cwbudde/voicefx/dsp/envelope"
)

const (
	// MaxSemitones bounds the shift in either direction.
	MaxSemitones = 24.0

	// CrossfadeSamples is the length of every head handover.
	CrossfadeSamples = 256

	defaultMix = 1.0

	// bufferSeconds sizes the circular buffer before rounding to a power of two.
	bufferSeconds  = 0.15
	minBufferSize  = 1024
	grainMs        = 40.0
	ratioSmoothMs  = 30.0
	headLimitRatio = 0.7

	// headGuard keeps the read heads clear of the write cursor.
	headGuard = 2.0

	// The idle head is moved by up to alignSearchMs so the content under it
	// lines up with the active head; 7 ms covers one period down to ~70 Hz.
	alignSearchMs = 7.0
	alignWindowMs = 10.0
	alignStride   = 4
)

type head struct {
	delay float64 // samples behind the write cursor
}

// Shifter is a dual-head pitch shifter.
//
// Both heads advance by ratio samples per input sample, so their distance
// behind the write cursor changes by 1-ratio per sample. For ratio > 1 the
// active head closes in on the write cursor; when it reaches
//
//	minDelay = 2 + CrossfadeSamples*|ratio-1|
//
// the idle head is placed one grain further back and the output crossfades
// to it. For ratio < 1 the active head falls behind and the idle head is
// placed at minDelay once the active one is a grain past it. minDelay leaves
// room for the old head to finish the crossfade. A head that strays past 70%
// of the buffer is always repositioned.
//
// Before a handover the idle head position is refined by cross-correlating
// the input under both heads, so periodic input stays phase-continuous
// across the crossfade instead of picking up a comb at the handover rate.
//
// The buffer and crossfade table are allocated by NewShifter; processing
// never allocates.
type Shifter struct {
	sampleRate float64
	semitones  float64
	mix        float64

	line  *delay.Line
	ratio envelope.Smoother

	heads    [2]head
	active   int
	fading   bool
	fadePos  int
	fadeGain [CrossfadeSamples]float64

	grain  float64
	limit  float64
	search int
	window int

	repositions int
}

// NewShifter creates a shifter at unity ratio, fully wet.
func NewShifter(sampleRate float64) (*Shifter, error) {
	if !core.IsFinite(sampleRate) || sampleRate <= 0 {
		return nil, fmt.Errorf("pitch shifter sample rate must be positive and finite: %f", sampleRate)
	}

	size := bufferSize(sampleRate)

	line, err := delay.New(size)
	if err != nil {
		return nil, fmt.Errorf("pitch shifter: %w", err)
	}

	s := &Shifter{
		sampleRate: sampleRate,
		mix:        defaultMix,
		line:       line,
		ratio:      envelope.NewSmoother(ratioSmoothMs, sampleRate, 1),
		grain:      math.Round(grainMs * sampleRate / 1000),
		limit:      headLimitRatio * float64(size),
		search:     int(math.Round(alignSearchMs * sampleRate / 1000)),
		window:     int(math.Round(alignWindowMs * sampleRate / 1000)),
	}

	for i := range s.fadeGain {
		s.fadeGain[i] = 0.5 - 0.5*math.Cos(math.Pi*float64(i+1)/CrossfadeSamples)
	}

	s.Reset()

	return s, nil
}

// SetSemitones sets the shift, clamped to ±MaxSemitones. The running ratio
// glides to the new value.
func (s *Shifter) SetSemitones(st float64) error {
	if math.IsNaN(st) || math.IsInf(st, 0) {
		return fmt.Errorf("pitch shifter semitones must be finite: %f", st)
	}

	s.semitones = core.Clamp(st, -MaxSemitones, MaxSemitones)
	s.ratio.SetTarget(core.SemitonesToRatio(s.semitones))

	return nil
}

// SetMix sets the wet amount in [0, 1].
func (s *Shifter) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("pitch shifter mix must be in [0, 1]: %f", mix)
	}

	s.mix = mix

	return nil
}

// SampleRate returns the sample rate in Hz.
func (s *Shifter) SampleRate() float64 { return s.sampleRate }

// Semitones returns the configured shift.
func (s *Shifter) Semitones() float64 { return s.semitones }

// Ratio returns the target pitch ratio.
func (s *Shifter) Ratio() float64 { return s.ratio.Target() }

// Mix returns the wet amount.
func (s *Shifter) Mix() float64 { return s.mix }

// BufferSize returns the circular buffer capacity in samples.
func (s *Shifter) BufferSize() int { return s.line.Len() }

// Repositions returns how many head handovers have started since Reset.
func (s *Shifter) Repositions() int { return s.repositions }

// Latency returns the nominal delay of the wet path in samples: the middle
// of a grain at the target ratio.
func (s *Shifter) Latency() int {
	return int(math.Round(s.minDelay(s.ratio.Target()) + s.grain/2))
}

// ProcessSample shifts one sample.
func (s *Shifter) ProcessSample(x float64) float64 {
	r := s.ratio.Next()

	s.line.Write(x)

	if !s.fading {
		s.checkActiveHead(r)
	}

	y := s.line.ReadFractional(s.heads[s.active].delay)

	if s.fading {
		next := 1 - s.active
		w := s.fadeGain[s.fadePos]
		y = y*(1-w) + s.line.ReadFractional(s.heads[next].delay)*w

		s.fadePos++
		if s.fadePos >= CrossfadeSamples {
			s.active = next
			s.fading = false
		}
	}

	step := 1 - r
	s.heads[0].delay += step
	s.heads[1].delay += step

	return x*(1-s.mix) + y*s.mix
}

// ProcessInPlace shifts buf in place.
func (s *Shifter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.ProcessSample(buf[i])
	}
}

// Reset clears the buffer, snaps the ratio to its target and parks the
// active head mid-grain.
func (s *Shifter) Reset() {
	s.line.Reset()
	s.ratio.Snap(s.ratio.Target())

	start := s.minDelay(s.ratio.Value()) + s.grain/2
	s.heads[0].delay = start
	s.heads[1].delay = start
	s.active = 0
	s.fading = false
	s.fadePos = 0
	s.repositions = 0
}

func (s *Shifter) checkActiveHead(r float64) {
	d := s.heads[s.active].delay
	minD := s.minDelay(r)

	var lo, hi float64

	switch {
	case d > s.limit || d < headGuard:
		lo = minD + s.grain/2 - float64(s.search)
		hi = minD + s.grain/2 + float64(s.search)
	case r > 1 && d <= minD:
		lo = minD + s.grain - float64(s.search)
		hi = minD + s.grain + float64(s.search)
	case r < 1 && d >= minD+s.grain:
		lo = minD
		hi = minD + 2*float64(s.search)
	default:
		return
	}

	maxStart := min(s.limit, float64(s.line.Len()-s.window-2))
	lo = core.Clamp(lo, minD, maxStart)
	hi = core.Clamp(hi, lo, maxStart)

	s.heads[1-s.active].delay = s.align(d, lo, hi)
	s.fading = true
	s.fadePos = 0
	s.repositions++
}

// align returns the delay in [lo, hi] whose input best matches the input
// under the active head at delay ref, keeping ref's fractional part.
func (s *Shifter) align(ref, lo, hi float64) float64 {
	base := int(math.Round(ref))
	frac := ref - float64(base)

	first := int(math.Ceil(lo))
	last := int(math.Floor(hi))

	best := first
	bestScore := math.Inf(-1)

	for c := first; c <= last; c++ {
		var dot, energy float64

		for j := 0; j < s.window; j += alignStride {
			b := s.line.Read(c + j)
			dot += s.line.Read(base+j) * b
			energy += b * b
		}

		if energy < envelope.Floor {
			continue
		}

		if score := dot / math.Sqrt(energy); score > bestScore {
			best = c
			bestScore = score
		}
	}

	if math.IsInf(bestScore, -1) {
		return core.Clamp(0.5*(lo+hi), lo, hi)
	}

	return core.Clamp(float64(best)+frac, lo, hi)
}

func (s *Shifter) minDelay(r float64) float64 {
	return headGuard + CrossfadeSamples*math.Abs(r-1)
}

func bufferSize(sampleRate float64) int {
	n := max(int(math.Ceil(sampleRate*bufferSeconds)), minBufferSize)
	return 1 << bits.Len(uint(n-1))
}

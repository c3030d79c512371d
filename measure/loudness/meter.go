// Package loudness measures BS.1770 loudness of a mono voice signal.
package loudness

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

const (
	// K-weighting stages from BS.1770.
	kShelfHz     = 1500.0
	kShelfGainDB = 4.0
	kHighPassHz  = 38.0
	kQ           = 0.7071067811865476

	momentarySeconds = 0.4
	shortTermSeconds = 3.0

	absoluteGateLUFS = -70.0
	relativeGateLU   = -10.0
	blockOverlap     = 0.75

	// FloorLUFS is reported for silence.
	FloorLUFS = -120.0
)

// Meter reports momentary, short-term and gated integrated loudness in
// LUFS for a mono stream.
type Meter struct {
	sampleRate float64
	weighting  *biquad.Chain

	momentary window
	shortTerm window

	filled     int
	blockStep  int
	sinceBlock int
	blocks     []float64 // mean square per complete 400 ms gating block

	peak float64
}

// window is a sliding sum of squares.
type window struct {
	history []float64
	pos     int
	sum     float64
}

func newWindow(n int) window {
	return window{history: make([]float64, max(n, 1))}
}

func (w *window) push(sq float64) {
	w.sum += sq - w.history[w.pos]
	if w.sum < 0 {
		w.sum = 0
	}

	w.history[w.pos] = sq

	w.pos++
	if w.pos == len(w.history) {
		w.pos = 0
	}
}

func (w *window) meanSquare() float64 { return w.sum / float64(len(w.history)) }

func (w *window) reset() {
	clear(w.history)
	w.pos = 0
	w.sum = 0
}

// NewMeter creates a meter for the given sample rate.
func NewMeter(sampleRate float64) (*Meter, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("loudness: %w", err)
	}

	m := &Meter{
		sampleRate: sampleRate,
		weighting: biquad.NewChain(
			biquad.Design(biquad.HighShelf, kShelfHz, sampleRate, kQ, kShelfGainDB),
			biquad.Design(biquad.HighPass, kHighPassHz, sampleRate, kQ, 0),
		),
		momentary: newWindow(int(math.Round(momentarySeconds * sampleRate))),
		shortTerm: newWindow(int(math.Round(shortTermSeconds * sampleRate))),
		blockStep: max(1, int(math.Round(momentarySeconds*(1-blockOverlap)*sampleRate))),
	}

	return m, nil
}

// WeightingDB returns the K-weighting gain at freqHz.
func (m *Meter) WeightingDB(freqHz float64) float64 {
	return m.weighting.MagnitudeDB(freqHz, m.sampleRate)
}

// ProcessSample adds one sample.
func (m *Meter) ProcessSample(x float64) {
	if a := math.Abs(x); a > m.peak {
		m.peak = a
	}

	y := m.weighting.ProcessSample(x)
	sq := y * y

	m.momentary.push(sq)
	m.shortTerm.push(sq)

	if m.filled < len(m.momentary.history) {
		m.filled++
		return
	}

	m.sinceBlock++
	if m.sinceBlock >= m.blockStep {
		m.sinceBlock = 0
		m.blocks = append(m.blocks, m.momentary.meanSquare())
	}
}

// Process adds a block of samples.
func (m *Meter) Process(block []float64) {
	for _, x := range block {
		m.ProcessSample(x)
	}
}

// Momentary returns the loudness of the last 400 ms.
func (m *Meter) Momentary() float64 { return toLUFS(m.momentary.meanSquare()) }

// ShortTerm returns the loudness of the last 3 s.
func (m *Meter) ShortTerm() float64 { return toLUFS(m.shortTerm.meanSquare()) }

// Integrated returns the gated loudness since the last Reset, or -Inf when
// every block falls below the absolute gate.
func (m *Meter) Integrated() float64 {
	var (
		sum   float64
		count int
	)

	for _, b := range m.blocks {
		if toLUFS(b) > absoluteGateLUFS {
			sum += b
			count++
		}
	}

	if count == 0 {
		return math.Inf(-1)
	}

	gate := toLUFS(sum/float64(count)) + relativeGateLU

	sum, count = 0, 0

	for _, b := range m.blocks {
		if l := toLUFS(b); l > absoluteGateLUFS && l > gate {
			sum += b
			count++
		}
	}

	if count == 0 {
		return math.Inf(-1)
	}

	return toLUFS(sum / float64(count))
}

// Peak returns the largest input magnitude since the last Reset.
func (m *Meter) Peak() float64 { return m.peak }

// Reset clears filter state, windows, gating blocks and the peak.
func (m *Meter) Reset() {
	m.weighting.Reset()
	m.momentary.reset()
	m.shortTerm.reset()
	m.filled = 0
	m.sinceBlock = 0
	m.blocks = m.blocks[:0]
	m.peak = 0
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return FloorLUFS
	}

	return max(FloorLUFS, -0.691+10*math.Log10(meanSquare))
}

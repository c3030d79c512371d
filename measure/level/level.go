// Package level provides RMS and peak measurements for sample blocks.
package level

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// FloorDB is reported for silent input.
const FloorDB = -240.0

// RMS returns the root mean square of x, or 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}

// Peak returns the largest magnitude in x.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		if a := math.Abs(v); a > p {
			p = a
		}
	}

	return p
}

// RMSDB returns RMS(x) in dBFS, floored at FloorDB.
func RMSDB(x []float64) float64 { return ToDB(RMS(x)) }

// PeakDB returns Peak(x) in dBFS, floored at FloorDB.
func PeakDB(x []float64) float64 { return ToDB(Peak(x)) }

// ToDB converts a linear amplitude to dB, floored at FloorDB.
func ToDB(a float64) float64 {
	if !(a > 0) {
		return FloorDB
	}

	return max(FloorDB, 20*math.Log10(a))
}

// Meter accumulates RMS and peak over a stream of blocks.
//
// Blocks larger than the scratch size given to NewMeter are measured in
// pieces, so Add never allocates.
type Meter struct {
	sumSquares float64
	count      int
	peak       float64
	nonFinite  int

	scratch []float64
}

// NewMeter returns a meter whose scratch buffer holds blockSize samples.
func NewMeter(blockSize int) *Meter {
	return &Meter{scratch: make([]float64, max(blockSize, 1))}
}

// Add measures block. Non-finite samples are counted separately and left
// out of the level.
func (m *Meter) Add(block []float64) {
	for len(block) > 0 {
		n := min(len(block), len(m.scratch))
		part := block[:n]
		sq := m.scratch[:n]

		vecmath.MulBlock(sq, part, part)

		for i, v := range sq {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				m.nonFinite++
				continue
			}

			m.sumSquares += v
			m.count++

			if a := math.Abs(part[i]); a > m.peak {
				m.peak = a
			}
		}

		block = block[n:]
	}
}

// RMS returns the RMS of everything added since the last reset.
func (m *Meter) RMS() float64 {
	if m.count == 0 {
		return 0
	}

	return math.Sqrt(m.sumSquares / float64(m.count))
}

// RMSDB returns RMS in dBFS.
func (m *Meter) RMSDB() float64 { return ToDB(m.RMS()) }

// Peak returns the largest finite magnitude seen.
func (m *Meter) Peak() float64 { return m.peak }

// PeakDB returns Peak in dBFS.
func (m *Meter) PeakDB() float64 { return ToDB(m.peak) }

// Samples returns the number of finite samples measured.
func (m *Meter) Samples() int { return m.count }

// NonFinite returns the number of NaN or Inf samples seen.
func (m *Meter) NonFinite() int { return m.nonFinite }

// Reset clears the accumulated measurements.
func (m *Meter) Reset() {
	m.sumSquares = 0
	m.count = 0
	m.peak = 0
	m.nonFinite = 0
}

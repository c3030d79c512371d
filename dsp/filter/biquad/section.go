package biquad

import "github.com/cwbudde/voicefx/dsp/core"

// Coefficients holds normalized biquad coefficients (a0 == 1):
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Section is a single Direct Form I biquad.
type Section struct {
	Coefficients

	x1, x2 float64
	y1, y2 float64
}

// NewSection returns a section with the given coefficients and cleared state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// Design replaces the coefficients with a freshly designed response.
// The history registers are kept so a live redesign does not click.
func (s *Section) Design(t Type, freqHz, sampleRate, q, gainDB float64) {
	s.Coefficients = Design(t, freqHz, sampleRate, q, gainDB)
}

// SetCoefficients replaces the coefficients, keeping state.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

// ProcessSample filters one sample.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.B1*s.x1 + s.B2*s.x2 - s.A1*s.y1 - s.A2*s.y2

	s.x2 = s.x1
	s.x1 = x
	s.y2 = s.y1
	s.y1 = core.FlushDenormals(y)

	return y
}

// ProcessInPlace filters buf in place.
func (s *Section) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = s.ProcessSample(x)
	}
}

// Reset clears the history registers.
func (s *Section) Reset() {
	s.x1, s.x2 = 0, 0
	s.y1, s.y2 = 0, 0
}

// State returns the history registers as [x1, x2, y1, y2].
func (s *Section) State() [4]float64 {
	return [4]float64{s.x1, s.x2, s.y1, s.y2}
}

package biquad

// Chain is a cascade of biquad sections followed by a scalar gain.
type Chain struct {
	sections []Section
	gain     float64
}

// NewChain creates a cascade from coefficient sets, one section each.
func NewChain(coeffs ...Coefficients) *Chain {
	c := &Chain{
		sections: make([]Section, len(coeffs)),
		gain:     1,
	}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// Len returns the number of sections.
func (c *Chain) Len() int { return len(c.sections) }

// Section returns the i-th section for in-place redesign.
func (c *Chain) Section(i int) *Section { return &c.sections[i] }

// SetGain sets the output gain.
func (c *Chain) SetGain(g float64) { c.gain = g }

// Gain returns the output gain.
func (c *Chain) Gain() float64 { return c.gain }

// DesignAll designs every section with the same response. Cascading n
// identical sections multiplies the slope by n.
func (c *Chain) DesignAll(t Type, freqHz, sampleRate, q, gainDB float64) {
	coeffs := Design(t, freqHz, sampleRate, q, gainDB)
	for i := range c.sections {
		c.sections[i].Coefficients = coeffs
	}
}

// ProcessSample runs one sample through every section.
func (c *Chain) ProcessSample(x float64) float64 {
	for i := range c.sections {
		x = c.sections[i].ProcessSample(x)
	}

	return x * c.gain
}

// ProcessInPlace filters buf in place.
func (c *Chain) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

// Reset clears the state of all sections.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}

// Package spectral estimates magnitude spectra and dominant frequencies of
// test signals.
//
// Signals are Hann-windowed, zero-padded to a power of two and transformed
// with algo-fft. The dominant frequency is refined between bins by fitting a
// parabola through the log magnitudes around the peak.
package spectral

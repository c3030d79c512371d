// Package ir measures the energy decay of impulse responses.
//
// The decay curve is the Schroeder backward integral of the squared
// response. Reverberation times are read from straight-line fits over
// standard ranges of that curve and extrapolated to a 60 dB drop:
//
//   - EDT: 0 to -10 dB
//   - T20: -5 to -25 dB
//   - T30: -5 to -35 dB
//
// RT60 reports T30, or T20 when the response is too short or noisy for the
// wider range.
//
//	rt, err := ir.RT60(response, 48000)
package ir

// Package biquad provides the second-order IIR filter used throughout the
// voice chain.
//
// [Design] turns a response [Type], a center frequency, a quality factor and
// a gain into normalized [Coefficients] using the audio-EQ cookbook
// formulas. Frequency and Q are clamped before any trigonometry so every
// design keeps its poles inside the unit circle.
//
// A [Section] runs Direct Form I with two input and two output history
// registers. Sections never allocate after construction and may be
// redesigned between samples; [Chain] cascades them for steeper slopes.
package biquad

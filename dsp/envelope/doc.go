// Package envelope provides the level detectors and smoothers shared by the
// dynamics processors.
//
// All smoothing uses the one-pole recurrence
//
//	state = state*c + input*(1-c),  c = exp(-1 / (timeMs * sampleRate / 1000))
//
// with separate coefficients for rising (attack) and falling (release)
// input. After timeMs the state has covered 1-1/e of a step.
package envelope

// Package pitch provides a low-latency time-domain pitch shifter.
//
// Shifter writes the input into a fixed circular buffer and reads it back
// with two interpolating heads moving at the pitch ratio. One head is heard
// at a time; before it drifts out of its usable range the other head is
// repositioned and a short raised-cosine crossfade hands over between them.
// All frequencies move together, so formants shift with the pitch.
package pitch

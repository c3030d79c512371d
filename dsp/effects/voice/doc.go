// Package voice provides composite voice characters built from the kernels
// in dsp/effects, dsp/effects/dynamics, dsp/effects/pitch and
// dsp/filter/biquad.
//
// Each composite exposes a small set of high-level knobs and maps them onto
// its internal processors:
//   - Character: pitch shift with formant compensation, brightness and
//     gentle compression (deep voice, chipmunk, anime).
//   - Robot: ring modulation, metallic comb, bit reduction and band limit.
//   - Megaphone: narrow band pass, mid emphasis and saturation.
//   - Broadcast: warmth, presence, compression and air.
//
// Composites allocate everything in their constructors. ProcessSample and
// ProcessInPlace do not allocate.
package voice

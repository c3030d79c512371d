// Package effects provides the time-based and colouring kernels of the voice
// chain.
//
// Subpackages:
//   - github.com/cwbudde/voicefx/dsp/effects/dynamics
//   - github.com/cwbudde/voicefx/dsp/effects/pitch
//   - github.com/cwbudde/voicefx/dsp/effects/voice
//
// Effects in this package:
//   - Echo: Feedback delay with a damped repeat path and a gliding delay time.
//   - Reverb: Schroeder room of damped combs and allpasses behind a pre-delay.
//   - RingModulator: Carrier multiplication for robotic timbres.
//   - Saturator: Tanh, soft or hard clipping with drive compensation.
//   - BitCrusher: Sample rate and bit-depth reduction for lo-fi radio sounds.
//
// Every kernel processes mono float64 blocks in place without allocating
// once constructed.
package effects

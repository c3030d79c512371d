// Package dynamics provides the level-dependent processors of the voice
// chain.
//
// Included processors:
//   - Gate: Soft-knee noise gate with hold and a gain floor.
//   - Compressor: RMS soft-knee compressor with optional auto makeup.
//   - Limiter: Lookahead brick-wall limiter with a sliding peak window.
//   - DeEsser: Sibilance detector driving full-band reduction.
//
// All processors work on float64 samples, are configured through validating
// setters and are not safe for concurrent use.
package dynamics

// Package effectchain runs an ordered list of effects over a mono buffer.
//
// Every effect kind has an immutable parameter record (FilterParams,
// CompressorParams, ...) implementing the sealed Params interface. Effects
// are created through a Registry, prepared for a Context and then processed
// in place by a Chain. Parameter records are clamped on entry and handed to
// the audio thread through an atomic snapshot, so SetParameters never
// blocks Process.
//
// A Chain isolates faults: an effect that errors, panics or produces
// non-finite samples is permanently bypassed while the rest of the chain
// keeps running.
package effectchain

package effectchain

import (
	"errors"
	"fmt"
)

// Factory builds one unprepared Effect carrying its kind's default
// parameters.
type Factory func() Effect

// Registry maps effect kinds to their factories.
type Registry struct {
	factories map[Kind]Factory
}

var errDuplicateEffect = errors.New("duplicate effect kind")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds a factory for the given kind.
func (r *Registry) Register(kind Kind, factory Factory) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEffect, kind)
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, kind)
	}

	r.factories[kind] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kind Kind, factory Factory) {
	err := r.Register(kind, factory)
	if err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given kind, or nil.
func (r *Registry) Lookup(kind Kind) Factory {
	return r.factories[kind]
}

// NewEffect builds an effect for p.Kind(), applies p and prepares it for
// ctx.
func (r *Registry) NewEffect(ctx Context, p Params) (Effect, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil parameters", ErrUnknownEffect)
	}

	factory := r.Lookup(p.Kind())
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, p.Kind())
	}

	fx := factory()

	if err := fx.SetParameters(p); err != nil {
		return nil, err
	}

	if err := fx.Prepare(ctx); err != nil {
		return nil, err
	}

	return fx, nil
}

// DefaultRegistry returns a Registry pre-populated with every built-in kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(KindFilter, newFilter)
	r.MustRegister(KindGate, newGate)
	r.MustRegister(KindCompressor, newCompressor)
	r.MustRegister(KindLimiter, newLimiter)
	r.MustRegister(KindEcho, newEcho)
	r.MustRegister(KindReverb, newReverb)
	r.MustRegister(KindDeEsser, newDeEsser)
	r.MustRegister(KindPitch, newPitch)
	r.MustRegister(KindCharacter, newCharacter)
	r.MustRegister(KindRobot, newRobot)
	r.MustRegister(KindMegaphone, newMegaphone)
	r.MustRegister(KindBroadcast, newBroadcast)

	return r
}

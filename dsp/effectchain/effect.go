package effectchain

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/voicefx/dsp/core"
)

var (
	// ErrUnknownEffect is returned for a kind without a registered factory.
	ErrUnknownEffect = errors.New("effectchain: unknown effect kind")
	// ErrParamsMismatch is returned when a parameter record does not match
	// the effect's kind.
	ErrParamsMismatch = errors.New("effectchain: parameters do not match effect kind")
	// ErrNotPrepared is returned by Process before a successful Prepare.
	ErrNotPrepared = errors.New("effectchain: effect not prepared")
)

// Context describes the stream an effect is prepared for.
type Context struct {
	SampleRate   float64
	MaxBlockSize int
}

// NewContext builds a Context from processor options. Unset values take the
// defaults of core.DefaultProcessorConfig.
func NewContext(opts ...core.ProcessorOption) Context {
	cfg := core.ApplyProcessorOptions(opts...)

	return Context{SampleRate: cfg.SampleRate, MaxBlockSize: cfg.BlockSize}
}

// Validate checks the sample rate range and the block size.
func (c Context) Validate() error {
	return core.ProcessorConfig{SampleRate: c.SampleRate, BlockSize: c.MaxBlockSize}.Validate()
}

// Effect is the uniform contract of every chain member.
//
// Prepare runs on the control side and allocates everything the effect
// needs for ctx. Process runs on the audio thread, in place, and must not
// allocate or block; a returned error marks the effect as faulted.
// SetParameters may be called from the control side at any time: the
// clamped record is handed to the audio thread and applied at the start of
// the next Process call.
type Effect interface {
	Kind() Kind
	Prepare(ctx Context) error
	Process(block []float64) error
	SetParameters(p Params) error
	Parameters() Params
	Reset()
	Latency() int
}

// kernel is the processing surface shared by the DSP types in dsp/effects.
type kernel interface {
	ProcessInPlace(buf []float64)
	Reset()
}

// snapshot hands immutable parameter records from one writer to one reader.
// The writer publishes with store; the reader claims the newest record
// with take, which returns false when nothing changed since the last take.
type snapshot[P Params] struct {
	pending atomic.Pointer[P]
	latest  atomic.Pointer[P]
}

func (s *snapshot[P]) store(p P) {
	s.latest.Store(&p)
	s.pending.Store(&p)
}

func (s *snapshot[P]) take() (P, bool) {
	ptr := s.pending.Swap(nil)
	if ptr == nil {
		var zero P
		return zero, false
	}

	return *ptr, true
}

func (s *snapshot[P]) load() P {
	return *s.latest.Load()
}

// adapter binds one kernel type to the Effect contract. build constructs the
// kernel for a context, configure pushes a clamped record into it and
// latency reports its delay.
type adapter[P Params, K kernel] struct {
	kind      Kind
	params    snapshot[P]
	build     func(ctx Context) (K, error)
	configure func(fx K, p P) error
	latency   func(fx K) int

	fx       K
	prepared bool
	delay    atomic.Int64
}

func newAdapter[P Params, K kernel](
	def P,
	build func(ctx Context) (K, error),
	configure func(fx K, p P) error,
	latency func(fx K) int,
) *adapter[P, K] {
	a := &adapter[P, K]{
		kind:      def.Kind(),
		build:     build,
		configure: configure,
		latency:   latency,
	}
	a.params.store(def)

	return a
}

func (a *adapter[P, K]) Kind() Kind { return a.kind }

func (a *adapter[P, K]) Prepare(ctx Context) error {
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("effectchain: prepare %s: %w", a.kind, err)
	}

	fx, err := a.build(ctx)
	if err != nil {
		return fmt.Errorf("effectchain: prepare %s: %w", a.kind, err)
	}

	a.params.take()

	if err := a.configure(fx, a.params.load()); err != nil {
		return err
	}

	a.fx = fx
	a.prepared = true
	a.updateLatency()

	return nil
}

func (a *adapter[P, K]) Process(block []float64) error {
	if !a.prepared {
		return ErrNotPrepared
	}

	if p, ok := a.params.take(); ok {
		if err := a.configure(a.fx, p); err != nil {
			return err
		}

		a.updateLatency()
	}

	a.fx.ProcessInPlace(block)

	return nil
}

func (a *adapter[P, K]) SetParameters(p Params) error {
	if p == nil {
		return ErrParamsMismatch
	}

	typed, ok := p.Clamped().(P)
	if !ok {
		return fmt.Errorf("%w: %s record for %s", ErrParamsMismatch, p.Kind(), a.kind)
	}

	a.params.store(typed)

	return nil
}

func (a *adapter[P, K]) Parameters() Params { return a.params.load() }

func (a *adapter[P, K]) Reset() {
	if a.prepared {
		a.fx.Reset()
	}
}

func (a *adapter[P, K]) Latency() int { return int(a.delay.Load()) }

func (a *adapter[P, K]) updateLatency() {
	if a.latency == nil {
		return
	}

	a.delay.Store(int64(a.latency(a.fx)))
}

package effectchain

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/voicefx/dsp/core"
)

var (
	// ErrChainPrepared is returned by structural changes after Prepare.
	ErrChainPrepared = errors.New("effectchain: chain is prepared; clear it before changing its structure")
	// ErrChainBusy is returned when a control operation overlaps Process.
	ErrChainBusy = errors.New("effectchain: chain is processing")
	// ErrIndexOutOfRange is returned for an effect index outside the chain.
	ErrIndexOutOfRange = errors.New("effectchain: effect index out of range")

	errEffectPanic = errors.New("effect panicked")
	errNonFinite   = errors.New("effect produced non-finite output")
)

// Fault describes an effect that the chain has permanently bypassed.
type Fault struct {
	Index int
	Kind  Kind
	Err   error
}

func (f Fault) Error() string {
	return fmt.Sprintf("effect %d (%s): %v", f.Index, f.Kind, f.Err)
}

func (f Fault) Unwrap() error { return f.Err }

type member struct {
	effect  Effect
	bypass  atomic.Bool
	faulted atomic.Bool
	err     error // written once before faulted is set
}

// Chain is an ordered list of effects processed in place.
//
// The structure is fixed once Prepare succeeds: Add and Remove fail with
// ErrChainPrepared until Clear. Parameters and per-effect bypass may change
// at any time.
//
// Process is meant for a single audio thread, the remaining methods for a
// single control thread. The two sides exclude each other through a
// non-blocking flag: a control operation that finds Process running returns
// ErrChainBusy, and a Process call that finds a control operation running
// leaves the buffer untouched.
//
// An effect whose Process returns an error, panics or writes a non-finite
// sample is faulted: its output for that block is discarded, the block
// continues from the effect's input, and the effect stays bypassed until
// the chain is cleared.
type Chain struct {
	members  []*member
	ctx      Context
	prepared bool
	scratch  []float64

	active atomic.Bool
}

// New creates an empty chain.
func New() *Chain {
	return &Chain{}
}

// Add appends effects to the end of the chain.
func (c *Chain) Add(effects ...Effect) error {
	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	if c.prepared {
		return ErrChainPrepared
	}

	for _, fx := range effects {
		if fx == nil {
			return errors.New("effectchain: nil effect")
		}
	}

	for _, fx := range effects {
		c.members = append(c.members, &member{effect: fx})
	}

	return nil
}

// Remove deletes the effect at index.
func (c *Chain) Remove(index int) error {
	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	if c.prepared {
		return ErrChainPrepared
	}

	if index < 0 || index >= len(c.members) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	c.members = append(c.members[:index], c.members[index+1:]...)

	return nil
}

// Clear removes every effect and returns the chain to the unprepared state.
func (c *Chain) Clear() error {
	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	clear(c.members)
	c.members = c.members[:0]
	c.prepared = false

	return nil
}

// Prepare prepares every effect for ctx and allocates the chain's scratch
// buffer. Process accepts blocks of any length and splits them into pieces
// of at most ctx.MaxBlockSize samples.
func (c *Chain) Prepare(ctx Context) error {
	if err := ctx.Validate(); err != nil {
		return fmt.Errorf("effectchain: prepare chain: %w", err)
	}

	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	for i, m := range c.members {
		if err := m.effect.Prepare(ctx); err != nil {
			return fmt.Errorf("effectchain: prepare effect %d: %w", i, err)
		}
	}

	c.ctx = ctx
	c.scratch = core.EnsureLen(c.scratch, ctx.MaxBlockSize)
	c.prepared = true

	return nil
}

// Prepared reports whether Prepare has succeeded since the last Clear.
func (c *Chain) Prepared() bool { return c.prepared }

// Context returns the context of the last successful Prepare.
func (c *Chain) Context() Context { return c.ctx }

// Len returns the number of effects.
func (c *Chain) Len() int { return len(c.members) }

// Effect returns the effect at index.
func (c *Chain) Effect(index int) (Effect, error) {
	m, err := c.member(index)
	if err != nil {
		return nil, err
	}

	return m.effect, nil
}

// SetParameters hands p to the effect at index. It takes effect at the next
// block boundary.
func (c *Chain) SetParameters(index int, p Params) error {
	m, err := c.member(index)
	if err != nil {
		return err
	}

	return m.effect.SetParameters(p)
}

// SetBypass enables or disables bypass for the effect at index.
func (c *Chain) SetBypass(index int, bypass bool) error {
	m, err := c.member(index)
	if err != nil {
		return err
	}

	m.bypass.Store(bypass)

	return nil
}

// Bypassed reports whether the effect at index is bypassed by request.
// Faulted effects are reported by Faulted.
func (c *Chain) Bypassed(index int) bool {
	m, err := c.member(index)

	return err == nil && m.bypass.Load()
}

// Faulted reports whether the effect at index has been disabled by a fault.
func (c *Chain) Faulted(index int) bool {
	m, err := c.member(index)

	return err == nil && m.faulted.Load()
}

// Faults lists every faulted effect in chain order.
func (c *Chain) Faults() []Fault {
	var out []Fault

	for i, m := range c.members {
		if m.faulted.Load() {
			out = append(out, Fault{Index: i, Kind: m.effect.Kind(), Err: m.err})
		}
	}

	return out
}

// Latency returns the summed delay of all effects that currently process
// audio.
func (c *Chain) Latency() int {
	total := 0

	for _, m := range c.members {
		if m.bypass.Load() || m.faulted.Load() {
			continue
		}

		total += m.effect.Latency()
	}

	return total
}

// Reset clears the internal state of every effect. Faults are kept.
func (c *Chain) Reset() error {
	if err := c.claim(); err != nil {
		return err
	}
	defer c.release()

	for _, m := range c.members {
		m.effect.Reset()
	}

	return nil
}

// Process runs buf through every active effect in place. Non-finite input
// samples are replaced with zero first. An unprepared chain, or one held by
// a control operation, leaves buf unchanged.
func (c *Chain) Process(buf []float64) {
	if !c.active.CompareAndSwap(false, true) {
		return
	}
	defer c.active.Store(false)

	if !c.prepared {
		return
	}

	core.SanitizeInPlace(buf, math.MaxFloat64)

	step := c.ctx.MaxBlockSize
	for start := 0; start < len(buf); start += step {
		c.processBlock(buf[start:min(start+step, len(buf))])
	}
}

func (c *Chain) processBlock(block []float64) {
	saved := c.scratch[:len(block)]

	for _, m := range c.members {
		if m.bypass.Load() || m.faulted.Load() {
			continue
		}

		copy(saved, block)

		if err := runEffect(m.effect, block); err != nil {
			copy(block, saved)

			m.err = err
			m.faulted.Store(true)
		}
	}
}

func runEffect(fx Effect, block []float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errEffectPanic, r)
		}
	}()

	if err := fx.Process(block); err != nil {
		return err
	}

	if !core.AllFinite(block) {
		return errNonFinite
	}

	return nil
}

func (c *Chain) member(index int) (*member, error) {
	if index < 0 || index >= len(c.members) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	return c.members[index], nil
}

func (c *Chain) claim() error {
	if !c.active.CompareAndSwap(false, true) {
		return ErrChainBusy
	}

	return nil
}

func (c *Chain) release() { c.active.Store(false) }

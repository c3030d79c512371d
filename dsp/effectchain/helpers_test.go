package effectchain

import (
	"errors"
	"math"
)

var errStub = errors.New("stub failure")

// stubEffect scales the block and can be told to fail on a given call.
type stubEffect struct {
	gain      float64
	failAt    int // 1-based Process call that fails; 0 never fails
	panicAt   int
	nanAt     int
	latency   int
	calls     int
	maxBlock  int
	resets    int
	prepared  []Context
	params    Params
	lastBlock int
}

func newStub(gain float64) *stubEffect {
	return &stubEffect{gain: gain, params: DefaultFilterParams()}
}

func (s *stubEffect) Kind() Kind { return KindFilter }

func (s *stubEffect) Prepare(ctx Context) error {
	s.prepared = append(s.prepared, ctx)
	return nil
}

func (s *stubEffect) Process(block []float64) error {
	s.calls++
	s.lastBlock = len(block)
	s.maxBlock = max(s.maxBlock, len(block))

	for i := range block {
		block[i] *= s.gain
	}

	switch s.calls {
	case s.failAt:
		return errStub
	case s.panicAt:
		panic("stub panic")
	case s.nanAt:
		block[len(block)/2] = math.NaN()
	}

	return nil
}

func (s *stubEffect) SetParameters(p Params) error {
	s.params = p
	return nil
}

func (s *stubEffect) Parameters() Params { return s.params }

func (s *stubEffect) Reset() { s.resets++ }

func (s *stubEffect) Latency() int { return s.latency }

// offsetEffect adds a constant, which makes processing order observable.
type offsetEffect struct {
	stubEffect

	offset float64
}

func (o *offsetEffect) Process(block []float64) error {
	for i := range block {
		block[i] += o.offset
	}

	return nil
}

var testCtx = Context{SampleRate: 48000, MaxBlockSize: 256}

func constBlock(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}

	return out
}

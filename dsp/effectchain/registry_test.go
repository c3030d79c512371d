package effectchain

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/voicefx/dsp/filter/biquad"
	"github.com/cwbudde/voicefx/internal/testutil"
)

func stubFactory() Effect { return newStub(1) }

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up factory", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		if err := r.Register(KindGate, stubFactory); err != nil {
			t.Fatalf("Register returned unexpected error: %v", err)
		}

		if r.Lookup(KindGate) == nil {
			t.Fatal("Lookup returned nil for registered kind")
		}

		if r.Lookup(KindEcho) != nil {
			t.Fatal("Lookup returned a factory for an unregistered kind")
		}
	})

	t.Run("rejects invalid kind", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		if err := r.Register(Kind(0), stubFactory); !errors.Is(err, ErrUnknownEffect) {
			t.Fatalf("Register(0) error = %v, want ErrUnknownEffect", err)
		}
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		if err := r.Register(KindGate, nil); err == nil {
			t.Fatal("expected error for nil factory")
		}
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		_ = r.Register(KindGate, stubFactory)

		if err := r.Register(KindGate, stubFactory); !errors.Is(err, errDuplicateEffect) {
			t.Fatalf("duplicate Register error = %v", err)
		}
	})

	t.Run("MustRegister panics on duplicate", func(t *testing.T) {
		t.Parallel()

		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()

		r := NewRegistry()
		r.MustRegister(KindGate, stubFactory)
		r.MustRegister(KindGate, stubFactory)
	})
}

func TestDefaultRegistryCoversEveryKind(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			t.Parallel()

			fx, err := r.NewEffect(testCtx, DefaultParams(k))
			if err != nil {
				t.Fatalf("NewEffect(%s) error = %v", k, err)
			}

			if fx.Kind() != k {
				t.Fatalf("Kind() = %s, want %s", fx.Kind(), k)
			}

			buf := testutil.Concat(
				testutil.DeterministicNoise(int64(k), 0.8, 4096),
				testutil.DeterministicSine(440, testCtx.SampleRate, 0.5, 4096),
			)

			testutil.ProcessBlocks(buf, testCtx.MaxBlockSize, func(block []float64) {
				if err := fx.Process(block); err != nil {
					t.Fatalf("Process() error = %v", err)
				}
			})

			testutil.RequireFinite(t, buf)
			testutil.RequireBounded(t, buf, 8)
		})
	}
}

func TestNewEffectErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry().NewEffect(testCtx, DefaultGateParams()); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("empty registry error = %v, want ErrUnknownEffect", err)
	}

	if _, err := DefaultRegistry().NewEffect(testCtx, nil); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("nil params error = %v, want ErrUnknownEffect", err)
	}

	bad := Context{SampleRate: 1000, MaxBlockSize: 256}
	if _, err := DefaultRegistry().NewEffect(bad, DefaultGateParams()); err == nil {
		t.Error("expected error for unsupported sample rate")
	}
}

func TestAdapterParameterHandoff(t *testing.T) {
	t.Parallel()

	fx, err := DefaultRegistry().NewEffect(testCtx, DefaultLimiterParams())
	if err != nil {
		t.Fatalf("NewEffect() error = %v", err)
	}

	if fx.Latency() != 144 {
		t.Fatalf("Latency() = %d, want 144", fx.Latency())
	}

	// Out of range: clamped to 10 ms, never rejected.
	if err := fx.SetParameters(LimiterParams{CeilingDB: -3, LookaheadMs: 50, AttackMs: 1, ReleaseMs: 60}); err != nil {
		t.Fatalf("SetParameters() error = %v", err)
	}

	got := fx.Parameters().(LimiterParams)
	if got.LookaheadMs != 10 {
		t.Errorf("Parameters().LookaheadMs = %v, want 10", got.LookaheadMs)
	}

	if fx.Latency() != 144 {
		t.Errorf("Latency() changed before the next block: %d", fx.Latency())
	}

	buf := make([]float64, 64)
	if err := fx.Process(buf); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if fx.Latency() != 480 {
		t.Errorf("Latency() after block = %d, want 480", fx.Latency())
	}
}

func TestAdapterRejectsMismatchedParams(t *testing.T) {
	t.Parallel()

	fx := newCompressor()

	err := fx.SetParameters(DefaultGateParams())
	if !errors.Is(err, ErrParamsMismatch) {
		t.Fatalf("SetParameters(gate) error = %v, want ErrParamsMismatch", err)
	}

	if err := fx.SetParameters(nil); !errors.Is(err, ErrParamsMismatch) {
		t.Fatalf("SetParameters(nil) error = %v, want ErrParamsMismatch", err)
	}

	if fx.Parameters() != Params(DefaultCompressorParams()) {
		t.Errorf("Parameters() = %+v, want defaults", fx.Parameters())
	}
}

func TestAdapterProcessBeforePrepare(t *testing.T) {
	t.Parallel()

	fx := newEcho()
	if err := fx.Process(make([]float64, 8)); !errors.Is(err, ErrNotPrepared) {
		t.Fatalf("Process() error = %v, want ErrNotPrepared", err)
	}

	fx.Reset() // must not panic before Prepare
}

func TestAdapterFilterAppliesDesign(t *testing.T) {
	t.Parallel()

	fx, err := DefaultRegistry().NewEffect(testCtx, FilterParams{
		Type: biquad.HighPass, FrequencyHz: 2000, Q: 0.707,
	})
	if err != nil {
		t.Fatalf("NewEffect() error = %v", err)
	}

	// DC is removed by the high pass.
	buf := testutil.DC(0.5, 9600)
	_ = fx.Process(buf)

	if tail := testutil.MaxAbs(buf[len(buf)-100:]); tail > 1e-6 {
		t.Errorf("high-pass DC tail = %g, want ~0", tail)
	}

	err = fx.SetParameters(FilterParams{Type: biquad.Type(42), FrequencyHz: 1e6, Q: 0, GainDB: math.NaN()})
	if err != nil {
		t.Fatalf("SetParameters() error = %v", err)
	}

	got := fx.Parameters().(FilterParams)
	want := FilterParams{Type: biquad.Peaking, FrequencyHz: 20000, Q: biquad.MinQ, GainDB: 0}

	if got != want {
		t.Errorf("Parameters() = %+v, want %+v", got, want)
	}
}

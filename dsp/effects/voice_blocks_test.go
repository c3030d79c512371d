package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/voicefx/internal/testutil"
)

func TestRingModulator(t *testing.T) {
	if _, err := NewRingModulator(48000, WithRingModCarrierHz(-1)); err == nil {
		t.Fatal("expected error for negative carrier")
	}

	r, err := NewRingModulator(48000, WithRingModCarrierHz(100), WithRingModMix(1))
	if err != nil {
		t.Fatalf("NewRingModulator() error = %v", err)
	}

	// DC in, carrier out.
	out := testutil.DC(1, 480)
	r.ProcessInPlace(out)

	want := testutil.DeterministicSine(100, 48000, 1, 480)
	testutil.RequireSliceNearlyEqual(t, out, want, 1e-9)

	if err := r.SetMix(2); err == nil {
		t.Error("SetMix(2) expected error")
	}

	_ = r.SetMix(0)
	r.Reset()

	dry := testutil.DeterministicNoise(1, 0.5, 256)
	got := append([]float64(nil), dry...)
	r.ProcessInPlace(got)
	testutil.RequireSliceNearlyEqual(t, got, dry, 0)
}

func TestSaturator(t *testing.T) {
	tests := []struct {
		name string
		mode SaturatorMode
	}{
		{"tanh", SaturatorTanh},
		{"soft clip", SaturatorSoftClip},
		{"hard clip", SaturatorHardClip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSaturator()
			if err := s.SetMode(tt.mode); err != nil {
				t.Fatalf("SetMode() error = %v", err)
			}

			_ = s.SetDrive(4)

			if got := s.ProcessSample(1); math.Abs(got-1) > 1e-12 {
				t.Errorf("full-scale output = %v, want 1", got)
			}

			if got, want := s.ProcessSample(-0.3), -s.ProcessSample(0.3); math.Abs(got-want) > 1e-12 {
				t.Errorf("curve is not odd: %v vs %v", got, want)
			}

			loud := testutil.DeterministicNoise(5, 3, 2048)
			s.ProcessInPlace(loud)
			testutil.RequireBounded(t, loud, 1/math.Tanh(1)+1e-9)
		})
	}

	s := NewSaturator()
	if err := s.SetDrive(0.5); err == nil {
		t.Error("SetDrive(0.5) expected error")
	}

	if err := s.SetMode(SaturatorMode(9)); err == nil {
		t.Error("SetMode(9) expected error")
	}
}

func TestBitCrusher(t *testing.T) {
	bc, err := NewBitCrusher(48000)
	if err != nil {
		t.Fatalf("NewBitCrusher() error = %v", err)
	}

	_ = bc.SetBitDepth(3) // 4 steps per unit
	_ = bc.SetDownsample(4)

	in := []float64{0.1, 0.2, 0.3, 0.4, 0.6, 0.7, 0.8, 0.9}
	bc.ProcessInPlace(in)

	want := []float64{0, 0, 0, 0, 0.5, 0.5, 0.5, 0.5}
	testutil.RequireSliceNearlyEqual(t, in, want, 1e-12)

	tests := []struct {
		name string
		err  error
	}{
		{"bit depth low", bc.SetBitDepth(0.5)},
		{"bit depth high", bc.SetBitDepth(32)},
		{"downsample zero", bc.SetDownsample(0)},
		{"downsample high", bc.SetDownsample(1000)},
		{"mix negative", bc.SetMix(-0.1)},
	}

	for _, tt := range tests {
		if tt.err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

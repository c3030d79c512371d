package effects

import (
	"math"
	"testing"

	"github.com/cwbudde/voicefx/internal/testutil"
)

func TestNewEcho(t *testing.T) {
	for _, fs := range []float64{0, -48000, math.NaN(), math.Inf(1)} {
		if _, err := NewEcho(fs); err == nil {
			t.Errorf("NewEcho(%v) expected error", fs)
		}
	}

	e, err := NewEcho(48000)
	if err != nil {
		t.Fatalf("NewEcho() error = %v", err)
	}

	if e.Time() != defaultEchoTimeMs || e.Feedback() != defaultEchoFeedback {
		t.Errorf("defaults = (%v, %v)", e.Time(), e.Feedback())
	}
}

func TestEchoSetterValidation(t *testing.T) {
	e, _ := NewEcho(48000)

	tests := []struct {
		name    string
		set     func(float64) error
		value   float64
		wantErr bool
	}{
		{"time ok", e.SetTime, 120, false},
		{"time max", e.SetTime, 2000, false},
		{"time too long", e.SetTime, 2500, true},
		{"time zero", e.SetTime, 0, true},
		{"feedback ok", e.SetFeedback, 0.95, false},
		{"feedback unstable", e.SetFeedback, 1, true},
		{"damping ok", e.SetDamping, 0.5, false},
		{"damping zero", e.SetDamping, 0, true},
		{"mix ok", e.SetMix, 1, false},
		{"mix NaN", e.SetMix, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("setter(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestEchoFirstRepeat(t *testing.T) {
	const fs = 48000.0

	e, _ := NewEcho(fs)
	_ = e.SetTime(10)
	_ = e.SetFeedback(0)
	_ = e.SetDamping(0.01)
	_ = e.SetMix(1)
	e.Reset()

	out := testutil.Impulse(1000, 0)
	e.ProcessInPlace(out)

	peak, at := 0.0, -1
	for i, v := range out {
		if math.Abs(v) > peak {
			peak, at = math.Abs(v), i
		}
	}

	if at != 480 {
		t.Errorf("first repeat at sample %d, want 480", at)
	}

	if math.Abs(peak-0.99) > 1e-9 {
		t.Errorf("first repeat amplitude = %v, want 0.99", peak)
	}
}

func TestEchoDecaysBelowMinus80dB(t *testing.T) {
	const (
		fs    = 48000.0
		block = 512
	)

	e, _ := NewEcho(fs)
	_ = e.SetTime(100)
	_ = e.SetFeedback(0.95)
	_ = e.SetDamping(0.01)
	_ = e.SetMix(1)

	burst := testutil.DeterministicNoise(11, 1, int(fs/2))
	e.ProcessInPlace(burst)

	floor := math.Pow(10, -80.0/20)
	buf := make([]float64, block)

	// 0.95^n < 1e-4 after ~180 repeats of 100 ms; allow generous headroom.
	maxBlocks := int(40 * fs / block)

	for n := range maxBlocks {
		clear(buf)
		e.ProcessInPlace(buf)
		testutil.RequireFinite(t, buf)

		if testutil.MaxAbs(buf) < floor && float64(n) > fs/block {
			return
		}
	}

	t.Fatalf("echo did not decay below -80 dBFS within %d blocks", maxBlocks)
}

func TestEchoFractionalDelayKeepsHighs(t *testing.T) {
	const fs = 48000.0

	e, _ := NewEcho(fs)
	_ = e.SetTime(10.01) // 480.48 samples
	_ = e.SetFeedback(0)
	_ = e.SetDamping(0.01)
	_ = e.SetMix(1)
	e.Reset()

	in := testutil.DeterministicSine(8000, fs, 0.5, 4800)
	out := append([]float64(nil), in...)
	e.ProcessInPlace(out)

	// A linear read half way between samples loses ~1.3 dB at 8 kHz.
	if gain := testutil.RMS(out[2400:]) / testutil.RMS(in[2400:]); gain < 0.94 || gain > 1 {
		t.Errorf("8 kHz gain through a fractional delay = %.3f, want in [0.94, 1]", gain)
	}
}

func TestEchoTimeChangeIsSmooth(t *testing.T) {
	const fs = 48000.0

	e, _ := NewEcho(fs)
	_ = e.SetMix(0.5)

	in := testutil.DeterministicSine(220, fs, 0.5, int(fs))
	out := append([]float64(nil), in...)

	testutil.ProcessBlocks(out, 256, func(block []float64) {
		e.ProcessInPlace(block)
	})

	_ = e.SetTime(150)
	more := testutil.DeterministicSine(220, fs, 0.5, int(fs/2))
	e.ProcessInPlace(more)

	testutil.RequireFinite(t, more)

	if step := testutil.MaxStep(more); step > 0.2 {
		t.Errorf("max step after time change = %v, want <= 0.2", step)
	}
}

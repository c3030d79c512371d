package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/voicefx/dsp/envelope"
	"github.com/cwbudde/voicefx/internal/testutil"
)

func TestNewLimiter(t *testing.T) {
	if _, err := NewLimiter(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}

	l, err := NewLimiter(48000)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}

	if got := l.Latency(); got != 144 {
		t.Errorf("Latency() = %d, want 144 (3 ms at 48 kHz)", got)
	}

	if math.Abs(l.CeilingLinear()-math.Pow(10, -1.0/20)) > 1e-9 {
		t.Errorf("CeilingLinear() = %v", l.CeilingLinear())
	}
}

func TestLimiterSetterValidation(t *testing.T) {
	l, _ := NewLimiter(48000)

	tests := []struct {
		name    string
		set     func(float64) error
		value   float64
		wantErr bool
	}{
		{"ceiling ok", l.SetCeiling, -0.3, false},
		{"ceiling above full scale", l.SetCeiling, 1, true},
		{"lookahead ok", l.SetLookahead, 5, false},
		{"lookahead too long", l.SetLookahead, 20, true},
		{"attack ok", l.SetAttack, 0.5, false},
		{"attack NaN", l.SetAttack, math.NaN(), true},
		{"release ok", l.SetRelease, 100, false},
		{"release zero", l.SetRelease, 0, true},
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

func TestLimiterNeverExceedsCeiling(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
	}{
		{"loud sine", testutil.DeterministicSine(220, 48000, 10, 48000)},
		{"loud noise", testutil.DeterministicNoise(7, 10, 48000)},
		{"bursts", testutil.Concat(
			testutil.DC(0, 1000),
			testutil.DeterministicSine(3000, 48000, 8, 2000),
			testutil.DC(0, 3000),
			testutil.Impulse(64, 10),
			testutil.DC(-10, 500),
		)},
	}

	for _, attack := range []float64{0.05, 1, 10} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				l, _ := NewLimiter(48000)
				_ = l.SetAttack(attack)

				out := append([]float64(nil), tt.signal...)
				testutil.ProcessBlocks(out, 300, l.ProcessInPlace)

				testutil.RequireFinite(t, out)
				testutil.RequireBounded(t, out, l.CeilingLinear()+1e-12)
			})
		}
	}
}

func TestLimiterDelaysQuietSignal(t *testing.T) {
	l, _ := NewLimiter(48000)
	_ = l.SetLookahead(1)

	in := testutil.DeterministicSine(500, 48000, 0.25, 4800)
	out := append([]float64(nil), in...)
	l.ProcessInPlace(out)

	d := l.Latency()
	for i := d; i < len(out); i++ {
		if math.Abs(out[i]-in[i-d]) > 1e-12 {
			t.Fatalf("out[%d] = %v, want in[%d] = %v", i, out[i], i-d, in[i-d])
		}
	}
}

func TestLimiterLookaheadChangeKeepsBound(t *testing.T) {
	l, _ := NewLimiter(48000)

	sig := testutil.DeterministicNoise(3, 4, 24000)
	for i := 0; i < len(sig); i += 1000 {
		ms := 0.5 + float64(i/1000%10)
		_ = l.SetLookahead(ms)

		end := min(i+1000, len(sig))
		l.ProcessInPlace(sig[i:end])
	}

	testutil.RequireBounded(t, sig, l.CeilingLinear()+1e-12)
}

func TestLimiterGainRecovers(t *testing.T) {
	l, _ := NewLimiter(48000)

	loud := testutil.DC(4, 4800)
	l.ProcessInPlace(loud)

	if g := l.Gain(); g > 0.3 {
		t.Fatalf("gain under load = %v, want ~ceiling/4", g)
	}

	quiet := testutil.DC(0.1, 48000)
	l.ProcessInPlace(quiet)

	if g := l.Gain(); g < 0.999 {
		t.Errorf("gain after release = %v, want ~1", g)
	}

	if m := l.GetMetrics(); m.MinGain > 0.3 {
		t.Errorf("MinGain = %v", m.MinGain)
	}

	l.Reset()

	if l.Gain() != 1 {
		t.Errorf("Gain() after Reset = %v, want 1", l.Gain())
	}
}

func TestLimiterReleaseTimeShapesRecovery(t *testing.T) {
	const fs = 48000.0

	recovered := func(releaseMs float64) float64 {
		l, _ := NewLimiter(fs)
		_ = l.SetRelease(releaseMs)

		l.ProcessInPlace(testutil.DC(4, 4800))
		l.ProcessInPlace(testutil.DC(0.1, 4800)) // 100 ms

		return l.Gain()
	}

	fast, slow := recovered(10), recovered(500)

	if fast < 0.99 {
		t.Errorf("10 ms release: gain after 100 ms = %v, want ~1", fast)
	}

	if slow > 0.6 {
		t.Errorf("500 ms release: gain after 100 ms = %v, want still reduced", slow)
	}

	l, _ := NewLimiter(fs)
	_ = l.SetAttack(5)

	if want := envelope.Coefficient(5, fs); l.attackCoeff != want {
		t.Errorf("attack coefficient = %v, want %v", l.attackCoeff, want)
	}
}

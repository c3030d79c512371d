package ir

import (
	"errors"
	"math"
	"testing"
)

// exponentialDecay returns h[n] = exp(-ln(1000)*t/rt60), which falls by
// 60 dB in rt60 seconds.
func exponentialDecay(sampleRate, rt60, seconds float64) []float64 {
	out := make([]float64, int(sampleRate*seconds))
	rate := math.Log(1000) / rt60

	for i := range out {
		out[i] = math.Exp(-rate * float64(i) / sampleRate)
	}

	return out
}

func TestRT60ExponentialDecay(t *testing.T) {
	const fs = 48000.0

	for _, rt := range []float64{0.3, 1.0, 2.5} {
		got, err := RT60(exponentialDecay(fs, rt, 3*rt), fs)
		if err != nil {
			t.Fatalf("RT60(%v) error = %v", rt, err)
		}

		if math.Abs(got-rt) > 0.02*rt {
			t.Errorf("RT60 = %.4f, want %.4f ±2%%", got, rt)
		}
	}
}

func TestAnalyzeStartsAtPeak(t *testing.T) {
	const fs = 48000.0

	decay := exponentialDecay(fs, 0.8, 2)
	withGap := append(make([]float64, 480), decay...)

	d, err := Analyze(withGap, fs)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if d.PeakIndex != 480 {
		t.Errorf("PeakIndex = %d, want 480", d.PeakIndex)
	}

	for name, v := range map[string]float64{"RT60": d.RT60, "EDT": d.EDT, "T20": d.T20, "T30": d.T30} {
		if math.Abs(v-0.8) > 0.02 {
			t.Errorf("%s = %.4f, want 0.8", name, v)
		}
	}

	// Energy centroid of exp(-2at) is 1/(2a).
	wantCenter := 0.8 / (2 * math.Log(1000))
	if math.Abs(d.CenterTime-wantCenter) > 1e-3 {
		t.Errorf("CenterTime = %.5f, want %.5f", d.CenterTime, wantCenter)
	}
}

func TestDecayTimeRanges(t *testing.T) {
	const fs = 48000.0

	// A straight 0.01 dB/sample curve that stops at -30 dB: T20 fits, T30
	// never reaches its end point.
	curve := make([]float64, 3001)
	for i := range curve {
		curve[i] = -0.01 * float64(i)
	}

	if got := decayTime(curve, -5, -35, fs); got != 0 {
		t.Errorf("T30 on a 30 dB curve = %v, want 0", got)
	}

	want := 60 / (0.01 * fs)
	if got := decayTime(curve, -5, -25, fs); math.Abs(got-want) > 1e-9 {
		t.Errorf("T20 = %v, want %v", got, want)
	}
}

func TestSchroederDB(t *testing.T) {
	curve, err := SchroederDB([]float64{1, 0, 0, 1})
	if err != nil {
		t.Fatalf("SchroederDB() error = %v", err)
	}

	want := []float64{0, 10 * math.Log10(0.5), 10 * math.Log10(0.5), 10 * math.Log10(0.5)}
	for i := range want {
		if math.Abs(curve[i]-want[i]) > 1e-12 {
			t.Errorf("curve[%d] = %v, want %v", i, curve[i], want[i])
		}
	}

	curve, _ = SchroederDB([]float64{1, 0.5, 0})
	if curve[2] != schroederFloorDB {
		t.Errorf("zero-energy tail = %v, want %v", curve[2], schroederFloorDB)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		ir   []float64
		fs   float64
		want error
	}{
		{"empty", nil, 48000, ErrEmptyIR},
		{"no decay", []float64{1, 1, 1, 1, 1, 1, 1, 1}, 48000, ErrNoDecay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RT60(tt.ir, tt.fs)
			if !errors.Is(err, tt.want) {
				t.Errorf("RT60() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := RT60([]float64{1}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}

	if _, err := SchroederDB([]float64{0, 0}); err == nil {
		t.Error("expected error for silent response")
	}
}

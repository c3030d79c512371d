package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/voicefx/internal/testutil"
)

func TestNewDeEsser(t *testing.T) {
	if _, err := NewDeEsser(-1); err == nil {
		t.Fatal("expected error for negative sample rate")
	}

	d, err := NewDeEsser(48000)
	if err != nil {
		t.Fatalf("NewDeEsser() error = %v", err)
	}

	if d.Frequency() != defaultDeEsserFreqHz || d.Range() != defaultDeEsserRangeDB {
		t.Errorf("defaults = (%v, %v)", d.Frequency(), d.Range())
	}
}

func TestDeEsserSetterValidation(t *testing.T) {
	d, _ := NewDeEsser(48000)

	tests := []struct {
		name    string
		set     func(float64) error
		value   float64
		wantErr bool
	}{
		{"frequency ok", d.SetFrequency, 7000, false},
		{"frequency low", d.SetFrequency, 500, true},
		{"threshold ok", d.SetThreshold, -20, false},
		{"threshold high", d.SetThreshold, 10, true},
		{"ratio ok", d.SetRatio, 6, false},
		{"ratio below one", d.SetRatio, 0.9, true},
		{"range ok", d.SetRange, 6, false},
		{"range negative", d.SetRange, -3, true},
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

func TestDeEsserReductionCurve(t *testing.T) {
	d, _ := NewDeEsser(48000)
	_ = d.SetThreshold(-30)
	_ = d.SetRatio(4)
	_ = d.SetRange(12)

	tests := []struct {
		levelDB float64
		want    float64
	}{
		{-40, 0},
		{-30, 0},
		{-22, 6},
		{-10, 12},
		{0, 12},
	}

	for _, tt := range tests {
		if got := d.Reduction(tt.levelDB); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Reduction(%v) = %v, want %v", tt.levelDB, got, tt.want)
		}
	}
}

func TestDeEsserIsFrequencySelective(t *testing.T) {
	const fs = 48000.0

	tests := []struct {
		name       string
		freq       float64
		minReduced float64
		maxReduced float64
	}{
		{"voice fundamental", 200, 0, 0.5},
		{"sibilance", 7000, 6, 12.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := NewDeEsser(fs)

			in := testutil.DeterministicSine(tt.freq, fs, 0.5, int(fs/2))
			out := append([]float64(nil), in...)
			testutil.ProcessBlocks(out, 256, d.ProcessInPlace)

			tail := int(fs / 10)
			reduced := testutil.RMSDB(in[len(in)-tail:]) - testutil.RMSDB(out[len(out)-tail:])

			if reduced < tt.minReduced || reduced > tt.maxReduced {
				t.Errorf("reduction at %v Hz = %.2f dB, want [%v, %v]", tt.freq, reduced, tt.minReduced, tt.maxReduced)
			}
		})
	}
}

func TestDeEsserListen(t *testing.T) {
	const fs = 48000.0

	d, _ := NewDeEsser(fs)
	d.SetListen(true)

	if !d.Listen() {
		t.Fatal("Listen() = false after SetListen(true)")
	}

	in := testutil.DeterministicSine(150, fs, 0.5, int(fs/4))
	out := append([]float64(nil), in...)
	d.ProcessInPlace(out)

	// The sidechain rejects low frequencies, so listen mode is nearly silent.
	if got := testutil.RMSDB(out[len(out)/2:]); got > -40 {
		t.Errorf("listen output for 150 Hz = %.1f dB, want < -40", got)
	}
}

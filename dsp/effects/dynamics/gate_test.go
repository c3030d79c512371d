package dynamics

import (
	"math"
	"testing"

	"github.com/cwbudde/voicefx/internal/testutil"
)

func TestNewGate(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		wantErr    bool
	}{
		{"valid 44100", 44100, false},
		{"valid 48000", 48000, false},
		{"invalid zero", 0, true},
		{"invalid negative", -1, true},
		{"invalid NaN", math.NaN(), true},
		{"invalid +Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGate(tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && g == nil {
				t.Fatal("NewGate() returned nil without error")
			}
		})
	}
}

func TestGateDefaults(t *testing.T) {
	g, err := NewGate(48000)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"Threshold", g.Threshold(), defaultGateThresholdDB},
		{"Knee", g.Knee(), defaultGateKneeDB},
		{"Floor", g.Floor(), defaultGateFloorDB},
		{"Attack", g.Attack(), defaultGateAttackMs},
		{"Hold", g.Hold(), defaultGateHoldMs},
		{"Release", g.Release(), defaultGateReleaseMs},
		{"SampleRate", g.SampleRate(), 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %f, want %f", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestGateSetterValidation(t *testing.T) {
	g, _ := NewGate(48000)

	tests := []struct {
		name    string
		set     func(float64) error
		value   float64
		wantErr bool
	}{
		{"threshold ok", g.SetThreshold, -30, false},
		{"threshold high", g.SetThreshold, 1, true},
		{"threshold NaN", g.SetThreshold, math.NaN(), true},
		{"knee zero", g.SetKnee, 0, false},
		{"knee negative", g.SetKnee, -1, true},
		{"floor ok", g.SetFloor, -60, false},
		{"floor high", g.SetFloor, 3, true},
		{"attack ok", g.SetAttack, 2, false},
		{"attack zero", g.SetAttack, 0, true},
		{"hold zero", g.SetHold, 0, false},
		{"hold negative", g.SetHold, -5, true},
		{"release ok", g.SetRelease, 200, false},
		{"release Inf", g.SetRelease, math.Inf(1), true},
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

func TestGateStaticCurve(t *testing.T) {
	g, _ := NewGate(48000)
	_ = g.SetThreshold(-40)
	_ = g.SetKnee(10)
	_ = g.SetFloor(-40)

	floor := math.Pow(10, -40.0/20)

	tests := []struct {
		name    string
		levelDB float64
		want    float64
	}{
		{"well below", -80, floor},
		{"knee bottom", -45, floor},
		{"knee middle", -40, floor + (1-floor)*0.5},
		{"knee top", -35, 1},
		{"above", -10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.TargetGain(math.Pow(10, tt.levelDB/20))
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("TargetGain(%v dB) = %v, want %v", tt.levelDB, got, tt.want)
			}
		})
	}
}

func TestGateEnvelopeRelease(t *testing.T) {
	const (
		fs    = 48000.0
		level = 0.5
	)

	g, _ := NewGate(fs)

	testutil.ProcessBlocks(testutil.DC(level, int(fs)), 256, g.ProcessInPlace)

	if got := g.Envelope(); math.Abs(got-level) > 1e-6 {
		t.Fatalf("settled envelope = %v, want %v", got, level)
	}

	releaseSamples := int(g.Release() * fs / 1000)
	target := level / math.E

	crossed := -1
	for n := range 2 * releaseSamples {
		g.ProcessSample(0)

		if g.Envelope() <= target {
			crossed = n + 1
			break
		}
	}

	if crossed < 0 {
		t.Fatal("envelope never decayed to L/e")
	}

	if d := math.Abs(float64(crossed-releaseSamples)) / float64(releaseSamples); d > 0.1 {
		t.Errorf("envelope reached L/e after %d samples, want %d ±10%%", crossed, releaseSamples)
	}
}

func TestGateGainRelease(t *testing.T) {
	const (
		fs    = 48000.0
		level = 0.5
	)

	g, _ := NewGate(fs)
	_ = g.SetKnee(0)
	_ = g.SetHold(0)
	_ = g.SetThreshold(-6.1)

	testutil.ProcessBlocks(testutil.DC(level, int(fs)), 256, g.ProcessInPlace)

	if got := g.Gain(); math.Abs(got-1) > 1e-6 {
		t.Fatalf("open gain = %v, want 1", got)
	}

	floor := math.Pow(10, g.Floor()/20)
	target := floor + (1-floor)/math.E
	releaseSamples := int(g.Release() * fs / 1000)

	crossed := -1
	for n := range 2 * releaseSamples {
		g.ProcessSample(0)

		if g.Gain() <= target {
			crossed = n + 1
			break
		}
	}

	if crossed < 0 {
		t.Fatal("gain never released")
	}

	if d := math.Abs(float64(crossed-releaseSamples)) / float64(releaseSamples); d > 0.1 {
		t.Errorf("gain crossed floor+(1-floor)/e after %d samples, want %d ±10%%", crossed, releaseSamples)
	}
}

func TestGateHoldKeepsOpen(t *testing.T) {
	const fs = 48000.0

	g, _ := NewGate(fs)
	_ = g.SetKnee(0)
	_ = g.SetThreshold(-20)
	_ = g.SetHold(50)
	_ = g.SetRelease(1)

	testutil.ProcessBlocks(testutil.DC(0.5, int(fs/10)), 128, g.ProcessInPlace)

	// Well inside the hold window the gain must still be open even though
	// the envelope has fallen below the threshold.
	for range int(0.03 * fs) {
		g.ProcessSample(0)
	}

	if g.Gain() < 0.99 {
		t.Errorf("gain during hold = %v, want ~1", g.Gain())
	}

	for range int(0.1 * fs) {
		g.ProcessSample(0)
	}

	if g.Gain() > 0.02 {
		t.Errorf("gain after hold and release = %v, want near floor", g.Gain())
	}
}

func TestGateSilenceStaysFinite(t *testing.T) {
	g, _ := NewGate(48000)

	out := make([]float64, 48000)
	g.ProcessInPlace(out)
	testutil.RequireFinite(t, out)

	m := g.GetMetrics()
	if m.OutputPeak != 0 {
		t.Errorf("OutputPeak = %v, want 0", m.OutputPeak)
	}

	g.ResetMetrics()

	if g.GetMetrics().MinGain != 1 {
		t.Error("ResetMetrics did not restore MinGain")
	}
}

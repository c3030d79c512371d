package core

import "testing"

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBlockSize(2048))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}

	if cfg.BlockSize != 2048 {
		t.Fatalf("block size = %d, want 2048", cfg.BlockSize)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), nil)

	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestValidateSampleRate(t *testing.T) {
	tests := []struct {
		rate float64
		ok   bool
	}{
		{rate: 8000, ok: true},
		{rate: 44100, ok: true},
		{rate: 192000, ok: true},
		{rate: 7999, ok: false},
		{rate: 192001, ok: false},
		{rate: 0, ok: false},
	}

	for _, tt := range tests {
		err := ValidateSampleRate(tt.rate)
		if (err == nil) != tt.ok {
			t.Fatalf("ValidateSampleRate(%v) error = %v, want ok=%v", tt.rate, err, tt.ok)
		}
	}
}

func TestProcessorConfigValidate(t *testing.T) {
	if err := DefaultProcessorConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if err := (ProcessorConfig{SampleRate: 48000}).Validate(); err == nil {
		t.Fatal("expected error for zero block size")
	}
}

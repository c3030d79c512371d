package core

import "fmt"

const (
	// MinSampleRate is the lowest supported stream sample rate in Hz.
	MinSampleRate = 8000.0
	// MaxSampleRate is the highest supported stream sample rate in Hz.
	MaxSampleRate = 192000.0

	defaultSampleRate = 48000.0
	defaultBlockSize  = 512
	maxBlockSize      = 1 << 16
)

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns defaults suited to live voice processing.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: defaultSampleRate,
		BlockSize:  defaultBlockSize,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the largest block the processor is prepared for.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 && blockSize <= maxBlockSize {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Validate checks the sample rate against the supported stream range and
// the block size for positivity.
func (c ProcessorConfig) Validate() error {
	if err := ValidateSampleRate(c.SampleRate); err != nil {
		return err
	}

	if c.BlockSize <= 0 || c.BlockSize > maxBlockSize {
		return fmt.Errorf("block size must be in [1, %d]: %d", maxBlockSize, c.BlockSize)
	}

	return nil
}

// ValidateSampleRate reports an error unless sampleRate lies within
// [MinSampleRate, MaxSampleRate].
func ValidateSampleRate(sampleRate float64) error {
	if !IsFinite(sampleRate) || sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate must be in [%.0f, %.0f] Hz: %f",
			MinSampleRate, MaxSampleRate, sampleRate)
	}

	return nil
}

package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/voicefx/dsp/effectchain"
)

const defaultBlockSize = 512

type config struct {
	logger    logrus.FieldLogger
	blockSize int
	registry  *effectchain.Registry
	preset    PresetName
}

// Option configures an Engine.
type Option func(*config)

// WithLogger sets the logger for control-path events. Process never logs.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBlockSize sets the largest block handed to a single effect. Longer
// buffers are split.
func WithBlockSize(n int) Option {
	return func(c *config) {
		c.blockSize = n
	}
}

// WithRegistry replaces the effect registry used to build presets.
func WithRegistry(r *effectchain.Registry) Option {
	return func(c *config) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithPreset selects the preset loaded by New.
func WithPreset(name PresetName) Option {
	return func(c *config) {
		c.preset = name
	}
}

func applyOptions(opts []Option) config {
	cfg := config{
		blockSize: defaultBlockSize,
		preset:    PresetClean,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.logger == nil {
		cfg.logger = logrus.StandardLogger().WithField("component", "voicefx")
	}

	if cfg.registry == nil {
		cfg.registry = effectchain.DefaultRegistry()
	}

	return cfg
}

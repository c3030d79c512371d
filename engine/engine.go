package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/effectchain"
	"github.com/cwbudde/voicefx/dsp/envelope"
)

const (
	// MaxMasterVolume is the largest linear master gain.
	MaxMasterVolume = 2.0
	// OutputCeiling is the hard clamp applied to every output sample.
	OutputCeiling = 0.98

	gainRampMs = 20.0
)

// ErrSampleRate is returned by New for an unsupported sample rate.
var ErrSampleRate = errors.New("engine: unsupported sample rate")

// Health summarizes the engine state for a control surface.
type Health struct {
	Preset       PresetName
	Faults       []effectchain.Fault
	Latency      int
	Bypassed     bool
	MasterVolume float64
}

// Engine owns the active effect chain, the master gain and the output
// clamp.
//
// Process and ProcessFloat32 belong to the audio thread. They never block,
// allocate or log. All other methods are control-path calls; they may be
// made from any goroutine and serialize among themselves.
type Engine struct {
	sampleRate float64
	blockSize  int
	registry   *effectchain.Registry
	log        logrus.FieldLogger

	mu       sync.Mutex
	preset   PresetName
	reported map[int]bool

	chain  atomic.Pointer[effectchain.Chain]
	volume atomic.Uint64
	bypass atomic.Bool

	// audio thread only
	gain    envelope.Smoother
	gainBuf []float64
	f64     []float64
}

// New creates an engine running the clean preset (or the one chosen with
// WithPreset) at unity master volume.
func New(sampleRate float64, opts ...Option) (*Engine, error) {
	if err := core.ValidateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSampleRate, err)
	}

	cfg := applyOptions(opts)

	pc := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: cfg.blockSize}
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,
		registry:   cfg.registry,
		log:        cfg.logger,
		reported:   make(map[int]bool),
		gain:       envelope.NewSmoother(gainRampMs, sampleRate, 1),
	}
	e.gainBuf = core.EnsureLen(e.gainBuf, cfg.blockSize)
	e.f64 = core.EnsureLen(e.f64, cfg.blockSize)
	e.volume.Store(math.Float64bits(1))

	if err := e.SetPreset(cfg.preset); err != nil {
		return nil, err
	}

	return e, nil
}

// SampleRate returns the processing sample rate.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// BlockSize returns the largest block handed to one effect.
func (e *Engine) BlockSize() int { return e.blockSize }

// SetPreset builds and prepares the named preset, then swaps it in. The
// previous chain keeps running until the swap; a failed build leaves it in
// place.
func (e *Engine) SetPreset(name PresetName) error {
	preset, err := LookupPreset(string(name))
	if err != nil {
		return err
	}

	chain, err := e.buildChain(preset)
	if err != nil {
		return fmt.Errorf("engine: build preset %s: %w", preset.Name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.chain.Store(chain)
	e.preset = preset.Name
	clear(e.reported)

	e.log.WithFields(logrus.Fields{
		"preset":      preset.Name,
		"effects":     chain.Len(),
		"latency":     chain.Latency(),
		"sample_rate": e.sampleRate,
	}).Info("preset loaded")

	return nil
}

func (e *Engine) buildChain(preset Preset) (*effectchain.Chain, error) {
	ctx := effectchain.NewContext(core.WithSampleRate(e.sampleRate), core.WithBlockSize(e.blockSize))
	chain := effectchain.New()

	for i, p := range preset.Build(e.sampleRate) {
		fx, err := e.registry.NewEffect(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%s): %w", i, p.Kind(), err)
		}

		if err := chain.Add(fx); err != nil {
			return nil, err
		}
	}

	if err := chain.Prepare(ctx); err != nil {
		return nil, err
	}

	return chain, nil
}

// Preset returns the active preset name.
func (e *Engine) Preset() PresetName {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.preset
}

// SetMasterVolume sets the linear output gain, clamped to [0, 2]. The gain
// ramps to the new value over a few milliseconds. NaN is ignored.
func (e *Engine) SetMasterVolume(v float64) {
	if math.IsNaN(v) {
		e.log.WithField("volume", v).Warn("ignoring invalid master volume")
		return
	}

	e.volume.Store(math.Float64bits(core.Clamp(v, 0, MaxMasterVolume)))
}

// MasterVolume returns the target master gain.
func (e *Engine) MasterVolume() float64 {
	return math.Float64frombits(e.volume.Load())
}

// SetBypass skips the effect chain. Master gain and the output clamp still
// apply.
func (e *Engine) SetBypass(bypass bool) {
	if e.bypass.Swap(bypass) != bypass {
		e.log.WithField("bypass", bypass).Info("bypass changed")
	}
}

// Bypassed reports whether the chain is skipped.
func (e *Engine) Bypassed() bool { return e.bypass.Load() }

// SetEffectParameters updates one effect of the active preset.
func (e *Engine) SetEffectParameters(index int, p effectchain.Params) error {
	return e.chain.Load().SetParameters(index, p)
}

// SetEffectBypass bypasses one effect of the active preset.
func (e *Engine) SetEffectBypass(index int, bypass bool) error {
	return e.chain.Load().SetBypass(index, bypass)
}

// Chain returns the active chain for inspection.
func (e *Engine) Chain() *effectchain.Chain { return e.chain.Load() }

// Latency returns the delay the engine adds, in samples.
func (e *Engine) Latency() int {
	if e.bypass.Load() {
		return 0
	}

	return e.chain.Load().Latency()
}

// Apply makes the engine match s. The preset is only rebuilt when it
// changes.
func (e *Engine) Apply(s Settings) error {
	s = s.Clamped()

	preset, err := LookupPreset(s.Preset)
	if err != nil {
		return err
	}

	if preset.Name != e.Preset() {
		if err := e.SetPreset(preset.Name); err != nil {
			return err
		}
	}

	e.SetMasterVolume(s.MasterVolume)
	e.SetBypass(s.Bypass)

	e.log.WithFields(logrus.Fields{
		"preset": preset.Name,
		"volume": s.MasterVolume,
		"bypass": s.Bypass,
	}).Debug("settings applied")

	return nil
}

// Settings returns the current control state.
func (e *Engine) Settings() Settings {
	return Settings{
		Preset:       string(e.Preset()),
		MasterVolume: e.MasterVolume(),
		Bypass:       e.Bypassed(),
	}
}

// Health reports the engine state and logs faults not seen before.
func (e *Engine) Health() Health {
	e.mu.Lock()
	defer e.mu.Unlock()

	faults := e.chain.Load().Faults()
	for _, f := range faults {
		if e.reported[f.Index] {
			continue
		}

		e.reported[f.Index] = true
		e.log.WithFields(logrus.Fields{
			"preset": e.preset,
			"index":  f.Index,
			"effect": f.Kind.String(),
			"error":  f.Err,
		}).Warn("effect faulted and was bypassed")
	}

	return Health{
		Preset:       e.preset,
		Faults:       faults,
		Latency:      e.Latency(),
		Bypassed:     e.Bypassed(),
		MasterVolume: e.MasterVolume(),
	}
}

// Reset clears the state of every effect in the active chain.
func (e *Engine) Reset() error {
	return e.chain.Load().Reset()
}

// Process runs buf through the chain, applies master gain and clamps the
// result to ±OutputCeiling, in place.
func (e *Engine) Process(buf []float64) {
	if !e.bypass.Load() {
		e.chain.Load().Process(buf)
	}

	e.gain.SetTarget(e.MasterVolume())

	for start := 0; start < len(buf); start += e.blockSize {
		block := buf[start:min(start+e.blockSize, len(buf))]

		g := e.gainBuf[:len(block)]
		for i := range g {
			g[i] = e.gain.Next()
		}

		vecmath.MulBlockInPlace(block, g)
	}

	core.SanitizeInPlace(buf, OutputCeiling)
}

// ProcessFloat32 is Process for device buffers in float32.
func (e *Engine) ProcessFloat32(buf []float32) {
	for start := 0; start < len(buf); start += e.blockSize {
		block := buf[start:min(start+e.blockSize, len(buf))]

		tmp := e.f64[:len(block)]
		for i, v := range block {
			tmp[i] = float64(v)
		}

		e.Process(tmp)

		for i, v := range tmp {
			block[i] = float32(v)
		}
	}
}

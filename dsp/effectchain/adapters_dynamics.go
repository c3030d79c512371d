package effectchain

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/effects/dynamics"
)

func newGate() Effect {
	return newAdapter(DefaultGateParams(),
		func(ctx Context) (*dynamics.Gate, error) { return dynamics.NewGate(ctx.SampleRate) },
		configureGate, nil)
}

func configureGate(fx *dynamics.Gate, p GateParams) error {
	if err := fx.SetThreshold(p.ThresholdDB); err != nil {
		return fmt.Errorf("effectchain: configure gate threshold: %w", err)
	}

	if err := fx.SetKnee(p.KneeDB); err != nil {
		return fmt.Errorf("effectchain: configure gate knee: %w", err)
	}

	if err := fx.SetFloor(p.FloorDB); err != nil {
		return fmt.Errorf("effectchain: configure gate floor: %w", err)
	}

	if err := fx.SetAttack(p.AttackMs); err != nil {
		return fmt.Errorf("effectchain: configure gate attack: %w", err)
	}

	if err := fx.SetHold(p.HoldMs); err != nil {
		return fmt.Errorf("effectchain: configure gate hold: %w", err)
	}

	if err := fx.SetRelease(p.ReleaseMs); err != nil {
		return fmt.Errorf("effectchain: configure gate release: %w", err)
	}

	return nil
}

func newCompressor() Effect {
	return newAdapter(DefaultCompressorParams(),
		func(ctx Context) (*dynamics.Compressor, error) { return dynamics.NewCompressor(ctx.SampleRate) },
		configureCompressor, nil)
}

func configureCompressor(fx *dynamics.Compressor, p CompressorParams) error {
	if err := fx.SetThreshold(p.ThresholdDB); err != nil {
		return fmt.Errorf("effectchain: configure compressor threshold: %w", err)
	}

	if err := fx.SetRatio(p.Ratio); err != nil {
		return fmt.Errorf("effectchain: configure compressor ratio: %w", err)
	}

	if err := fx.SetKnee(p.KneeDB); err != nil {
		return fmt.Errorf("effectchain: configure compressor knee: %w", err)
	}

	if err := fx.SetAttack(p.AttackMs); err != nil {
		return fmt.Errorf("effectchain: configure compressor attack: %w", err)
	}

	if err := fx.SetRelease(p.ReleaseMs); err != nil {
		return fmt.Errorf("effectchain: configure compressor release: %w", err)
	}

	fx.SetAutoMakeup(p.AutoMakeup)

	if err := fx.SetMakeupGain(p.MakeupDB); err != nil {
		return fmt.Errorf("effectchain: configure compressor makeup gain: %w", err)
	}

	return nil
}

func newLimiter() Effect {
	return newAdapter(DefaultLimiterParams(),
		func(ctx Context) (*dynamics.Limiter, error) { return dynamics.NewLimiter(ctx.SampleRate) },
		configureLimiter,
		(*dynamics.Limiter).Latency)
}

func configureLimiter(fx *dynamics.Limiter, p LimiterParams) error {
	if err := fx.SetCeiling(p.CeilingDB); err != nil {
		return fmt.Errorf("effectchain: configure limiter ceiling: %w", err)
	}

	if err := fx.SetLookahead(p.LookaheadMs); err != nil {
		return fmt.Errorf("effectchain: configure limiter lookahead: %w", err)
	}

	if err := fx.SetAttack(p.AttackMs); err != nil {
		return fmt.Errorf("effectchain: configure limiter attack: %w", err)
	}

	if err := fx.SetRelease(p.ReleaseMs); err != nil {
		return fmt.Errorf("effectchain: configure limiter release: %w", err)
	}

	return nil
}

func newDeEsser() Effect {
	return newAdapter(DefaultDeEsserParams(),
		func(ctx Context) (*dynamics.DeEsser, error) { return dynamics.NewDeEsser(ctx.SampleRate) },
		configureDeEsser, nil)
}

func configureDeEsser(fx *dynamics.DeEsser, p DeEsserParams) error {
	if err := fx.SetFrequency(p.FrequencyHz); err != nil {
		return fmt.Errorf("effectchain: configure de-esser frequency: %w", err)
	}

	if err := fx.SetThreshold(p.ThresholdDB); err != nil {
		return fmt.Errorf("effectchain: configure de-esser threshold: %w", err)
	}

	if err := fx.SetRatio(p.Ratio); err != nil {
		return fmt.Errorf("effectchain: configure de-esser ratio: %w", err)
	}

	if err := fx.SetRange(p.RangeDB); err != nil {
		return fmt.Errorf("effectchain: configure de-esser range: %w", err)
	}

	fx.SetListen(p.Listen)

	return nil
}

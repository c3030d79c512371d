package effectchain

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/effects"
	"github.com/cwbudde/voicefx/dsp/effects/pitch"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

// filterKernel keeps the sample rate next to the section so parameter
// updates can redesign it.
type filterKernel struct {
	*biquad.Section

	sampleRate float64
}

func newFilter() Effect {
	return newAdapter(DefaultFilterParams(),
		func(ctx Context) (*filterKernel, error) {
			return &filterKernel{
				Section:    biquad.NewSection(biquad.Coefficients{B0: 1}),
				sampleRate: ctx.SampleRate,
			}, nil
		},
		configureFilter, nil)
}

func configureFilter(fx *filterKernel, p FilterParams) error {
	fx.Design(p.Type, p.FrequencyHz, fx.sampleRate, p.Q, p.GainDB)

	if !fx.Stable() {
		return fmt.Errorf("effectchain: configure filter: unstable %s at %g Hz", p.Type, p.FrequencyHz)
	}

	return nil
}

func newEcho() Effect {
	return newAdapter(DefaultEchoParams(),
		func(ctx Context) (*effects.Echo, error) { return effects.NewEcho(ctx.SampleRate) },
		configureEcho, nil)
}

func configureEcho(fx *effects.Echo, p EchoParams) error {
	if err := fx.SetTime(p.TimeMs); err != nil {
		return fmt.Errorf("effectchain: configure echo time: %w", err)
	}

	if err := fx.SetFeedback(p.Feedback); err != nil {
		return fmt.Errorf("effectchain: configure echo feedback: %w", err)
	}

	if err := fx.SetDamping(p.Damping); err != nil {
		return fmt.Errorf("effectchain: configure echo damping: %w", err)
	}

	if err := fx.SetMix(p.Mix); err != nil {
		return fmt.Errorf("effectchain: configure echo mix: %w", err)
	}

	return nil
}

func newReverb() Effect {
	return newAdapter(DefaultReverbParams(),
		func(ctx Context) (*effects.Reverb, error) { return effects.NewReverb(ctx.SampleRate) },
		configureReverb, nil)
}

func configureReverb(fx *effects.Reverb, p ReverbParams) error {
	if err := fx.SetRoomSize(p.RoomSize); err != nil {
		return fmt.Errorf("effectchain: configure reverb room size: %w", err)
	}

	if err := fx.SetDecay(p.DecaySeconds); err != nil {
		return fmt.Errorf("effectchain: configure reverb decay: %w", err)
	}

	if err := fx.SetDamping(p.Damping); err != nil {
		return fmt.Errorf("effectchain: configure reverb damping: %w", err)
	}

	if err := fx.SetPreDelay(p.PreDelayMs); err != nil {
		return fmt.Errorf("effectchain: configure reverb pre-delay: %w", err)
	}

	if err := fx.SetMix(p.Mix); err != nil {
		return fmt.Errorf("effectchain: configure reverb mix: %w", err)
	}

	return nil
}

func newPitch() Effect {
	return newAdapter(DefaultPitchParams(),
		func(ctx Context) (*pitch.Shifter, error) { return pitch.NewShifter(ctx.SampleRate) },
		configurePitch,
		(*pitch.Shifter).Latency)
}

func configurePitch(fx *pitch.Shifter, p PitchParams) error {
	if err := fx.SetSemitones(p.Semitones); err != nil {
		return fmt.Errorf("effectchain: configure pitch semitones: %w", err)
	}

	if err := fx.SetMix(p.Mix); err != nil {
		return fmt.Errorf("effectchain: configure pitch mix: %w", err)
	}

	return nil
}

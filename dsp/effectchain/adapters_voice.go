package effectchain

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/effects/voice"
)

func newCharacter() Effect {
	return newAdapter(DefaultCharacterParams(),
		func(ctx Context) (*voice.Character, error) { return voice.NewCharacter(ctx.SampleRate) },
		configureCharacter,
		(*voice.Character).Latency)
}

func configureCharacter(fx *voice.Character, p CharacterParams) error {
	if err := fx.SetSemitones(p.Semitones); err != nil {
		return fmt.Errorf("effectchain: configure character semitones: %w", err)
	}

	if err := fx.SetCompensation(p.Compensation); err != nil {
		return fmt.Errorf("effectchain: configure character compensation: %w", err)
	}

	if err := fx.SetBrightness(p.BrightnessDB); err != nil {
		return fmt.Errorf("effectchain: configure character brightness: %w", err)
	}

	if err := fx.SetCompression(p.Compression); err != nil {
		return fmt.Errorf("effectchain: configure character compression: %w", err)
	}

	return nil
}

func newRobot() Effect {
	return newAdapter(DefaultRobotParams(),
		func(ctx Context) (*voice.Robot, error) { return voice.NewRobot(ctx.SampleRate) },
		configureRobot, nil)
}

func configureRobot(fx *voice.Robot, p RobotParams) error {
	if err := fx.SetCarrierHz(p.CarrierHz); err != nil {
		return fmt.Errorf("effectchain: configure robot carrier: %w", err)
	}

	if err := fx.SetMetallic(p.Metallic); err != nil {
		return fmt.Errorf("effectchain: configure robot metallic: %w", err)
	}

	if err := fx.SetBitDepth(p.BitDepth); err != nil {
		return fmt.Errorf("effectchain: configure robot bit depth: %w", err)
	}

	if err := fx.SetMix(p.Mix); err != nil {
		return fmt.Errorf("effectchain: configure robot mix: %w", err)
	}

	return nil
}

func newMegaphone() Effect {
	return newAdapter(DefaultMegaphoneParams(),
		func(ctx Context) (*voice.Megaphone, error) { return voice.NewMegaphone(ctx.SampleRate) },
		configureMegaphone, nil)
}

func configureMegaphone(fx *voice.Megaphone, p MegaphoneParams) error {
	if err := fx.SetLowCut(p.LowCutHz); err != nil {
		return fmt.Errorf("effectchain: configure megaphone low cut: %w", err)
	}

	if err := fx.SetHighCut(p.HighCutHz); err != nil {
		return fmt.Errorf("effectchain: configure megaphone high cut: %w", err)
	}

	if err := fx.SetDrive(p.Drive); err != nil {
		return fmt.Errorf("effectchain: configure megaphone drive: %w", err)
	}

	if err := fx.SetMix(p.Mix); err != nil {
		return fmt.Errorf("effectchain: configure megaphone mix: %w", err)
	}

	return nil
}

func newBroadcast() Effect {
	return newAdapter(DefaultBroadcastParams(),
		func(ctx Context) (*voice.Broadcast, error) { return voice.NewBroadcast(ctx.SampleRate) },
		configureBroadcast, nil)
}

func configureBroadcast(fx *voice.Broadcast, p BroadcastParams) error {
	if err := fx.SetWarmth(p.WarmthDB); err != nil {
		return fmt.Errorf("effectchain: configure broadcast warmth: %w", err)
	}

	if err := fx.SetPresence(p.PresenceDB); err != nil {
		return fmt.Errorf("effectchain: configure broadcast presence: %w", err)
	}

	if err := fx.SetCompression(p.Compression); err != nil {
		return fmt.Errorf("effectchain: configure broadcast compression: %w", err)
	}

	return nil
}

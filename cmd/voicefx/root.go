package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/voicefx/engine"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	sampleRate float64
	blockSize  int
	verbose    bool
}

// engineFlags are the per-command overrides for the loaded settings.
type engineFlags struct {
	preset string
	volume float64
	bypass bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "voicefx",
		Short: "Real-time voice effects engine",
		Long: `voicefx runs a mono voice signal through one of the built-in effect
presets (clean, podcast, stage-mc, karaoke, announcer, robot, megaphone,
stadium, deep-voice, chipmunk, anime, radio).

Settings (preset, master volume, bypass) can be loaded from a YAML file with
--config and overridden per command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML settings file")
	cmd.PersistentFlags().Float64Var(&opts.sampleRate, "sample-rate", 48000, "processing sample rate in Hz")
	cmd.PersistentFlags().IntVar(&opts.blockSize, "block-size", 512, "largest block handed to one effect")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(newPresetsCmd())
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newPlayCmd(opts))

	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(logrus.WarnLevel)

	if o.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func addEngineFlags(cmd *cobra.Command, f *engineFlags) {
	cmd.Flags().StringVarP(&f.preset, "preset", "p", "", "preset name (overrides the settings file)")
	cmd.Flags().Float64Var(&f.volume, "volume", 1, "master volume 0..2 (overrides the settings file)")
	cmd.Flags().BoolVar(&f.bypass, "bypass", false, "skip the effect chain")
}

// settings loads --config and applies the command-line overrides.
func (o *rootOptions) settings(cmd *cobra.Command, f *engineFlags) (engine.Settings, error) {
	s := engine.DefaultSettings()

	if o.configPath != "" {
		loaded, err := engine.LoadSettingsFile(o.configPath)
		if err != nil {
			return engine.Settings{}, err
		}

		s = loaded
	}

	if f != nil {
		flags := cmd.Flags()
		if flags.Changed("preset") {
			s.Preset = f.preset
		}

		if flags.Changed("volume") {
			s.MasterVolume = f.volume
		}

		if flags.Changed("bypass") {
			s.Bypass = f.bypass
		}
	}

	p, err := engine.LookupPreset(s.Preset)
	if err != nil {
		return engine.Settings{}, err
	}

	s.Preset = string(p.Name)

	return s.Clamped(), nil
}

func (o *rootOptions) newEngine(cmd *cobra.Command, f *engineFlags) (*engine.Engine, error) {
	s, err := o.settings(cmd, f)
	if err != nil {
		return nil, err
	}

	log := o.logger(cmd)

	eng, err := engine.New(o.sampleRate,
		engine.WithLogger(log),
		engine.WithBlockSize(o.blockSize),
		engine.WithPreset(engine.PresetName(s.Preset)),
	)
	if err != nil {
		return nil, err
	}

	if err := eng.Apply(s); err != nil {
		return nil, fmt.Errorf("apply settings: %w", err)
	}

	return eng, nil
}

package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/voicefx/dsp/core"
)

// Settings is the persisted control state of an engine.
type Settings struct {
	Preset       string  `yaml:"preset"`
	MasterVolume float64 `yaml:"master_volume"`
	Bypass       bool    `yaml:"bypass"`
}

// DefaultSettings returns the clean preset at unity volume.
func DefaultSettings() Settings {
	return Settings{Preset: string(PresetClean), MasterVolume: 1}
}

// Clamped returns s with the volume limited to [0, 2]. A NaN volume becomes
// unity and an empty preset becomes clean.
func (s Settings) Clamped() Settings {
	if s.Preset == "" {
		s.Preset = string(PresetClean)
	}

	if math.IsNaN(s.MasterVolume) {
		s.MasterVolume = 1
	}

	s.MasterVolume = core.Clamp(s.MasterVolume, 0, MaxMasterVolume)

	return s
}

// LoadSettings decodes YAML settings from r. Missing fields keep their
// defaults, unknown fields are rejected, the preset name must be known and
// the volume is clamped. Empty input yields DefaultSettings.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	s = s.Clamped()

	preset, err := LookupPreset(s.Preset)
	if err != nil {
		return Settings{}, err
	}

	s.Preset = string(preset.Name)

	return s, nil
}

// LoadSettingsFile reads settings from a YAML file.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to open settings: %w", err)
	}
	defer f.Close()

	s, err := LoadSettings(f)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Encode writes s as YAML.
func (s Settings) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return enc.Close()
}

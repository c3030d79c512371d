package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/voicefx/dsp/effectchain"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

// ErrUnknownPreset is returned for a preset name outside the closed set.
var ErrUnknownPreset = errors.New("engine: unknown preset")

// PresetName identifies one of the built-in presets.
type PresetName string

const (
	PresetClean     PresetName = "clean"
	PresetPodcast   PresetName = "podcast"
	PresetStageMC   PresetName = "stage-mc"
	PresetKaraoke   PresetName = "karaoke"
	PresetAnnouncer PresetName = "announcer"
	PresetRobot     PresetName = "robot"
	PresetMegaphone PresetName = "megaphone"
	PresetStadium   PresetName = "stadium"
	PresetDeepVoice PresetName = "deep-voice"
	PresetChipmunk  PresetName = "chipmunk"
	PresetAnime     PresetName = "anime"
	PresetRadio     PresetName = "radio"
)

// Preset is a named recipe for an effect chain.
type Preset struct {
	Name        PresetName
	Description string

	build func(sampleRate float64) []effectchain.Params
}

// Build returns a fresh parameter list for the given sample rate. Calling it
// twice yields equal, independent lists.
func (p Preset) Build(sampleRate float64) []effectchain.Params {
	if p.build == nil {
		return nil
	}

	return p.build(sampleRate)
}

var presets = []Preset{
	{
		Name:        PresetClean,
		Description: "rumble filter, gentle gate and light leveling",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(80),
				effectchain.GateParams{ThresholdDB: -55, KneeDB: 6, FloorDB: -20, AttackMs: 1, HoldMs: 30, ReleaseMs: 150},
				effectchain.CompressorParams{ThresholdDB: -4, Ratio: 1.5, KneeDB: 6, AttackMs: 10, ReleaseMs: 120},
				limiter(-0.5),
			}
		},
	},
	{
		Name:        PresetPodcast,
		Description: "close-mic spoken word with de-essing and broadcast polish",
		build: func(sr float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(90),
				effectchain.GateParams{ThresholdDB: -50, KneeDB: 6, FloorDB: -25, AttackMs: 1, HoldMs: 25, ReleaseMs: 120},
				deEsser(sr, -28, 4, 8),
				effectchain.BroadcastParams{WarmthDB: 3, PresenceDB: 3, Compression: 0.6},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetStageMC,
		Description: "presence boost with a short slap and small room",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(100),
				effectchain.GateParams{ThresholdDB: -45, KneeDB: 6, FloorDB: -40, AttackMs: 1, HoldMs: 20, ReleaseMs: 120},
				effectchain.CompressorParams{ThresholdDB: -18, Ratio: 3, KneeDB: 6, AttackMs: 5, ReleaseMs: 80, MakeupDB: 4},
				effectchain.FilterParams{Type: biquad.Peaking, FrequencyHz: 3000, Q: 1, GainDB: 3},
				effectchain.EchoParams{TimeMs: 90, Feedback: 0.15, Damping: 0.4, Mix: 0.15},
				effectchain.ReverbParams{DecaySeconds: 0.8, RoomSize: 0.6, Damping: 0.5, PreDelayMs: 8, Mix: 0.12},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetKaraoke,
		Description: "singing voice with echo and a long hall",
		build: func(sr float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(80),
				effectchain.CompressorParams{ThresholdDB: -20, Ratio: 2.5, KneeDB: 6, AttackMs: 5, ReleaseMs: 100, MakeupDB: 3},
				deEsser(sr, -30, 4, 10),
				effectchain.EchoParams{TimeMs: 250, Feedback: 0.3, Damping: 0.35, Mix: 0.2},
				effectchain.ReverbParams{DecaySeconds: 1.8, RoomSize: 1.1, Damping: 0.4, PreDelayMs: 20, Mix: 0.25},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetAnnouncer,
		Description: "heavy broadcast chain with a touch of room",
		build: func(sr float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(70),
				effectchain.BroadcastParams{WarmthDB: 5, PresenceDB: 4, Compression: 0.8},
				deEsser(sr, -30, 4, 10),
				effectchain.ReverbParams{DecaySeconds: 0.6, RoomSize: 0.5, Damping: 0.6, PreDelayMs: 5, Mix: 0.08},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetRobot,
		Description: "ring-modulated, comb-filtered and bit-reduced voice",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(100),
				effectchain.RobotParams{CarrierHz: 60, Metallic: 0.6, BitDepth: 10, Mix: 1},
				effectchain.CompressorParams{ThresholdDB: -18, Ratio: 3, KneeDB: 6, AttackMs: 5, ReleaseMs: 80},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetMegaphone,
		Description: "narrow band and overdriven horn",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				effectchain.MegaphoneParams{LowCutHz: 500, HighCutHz: 3500, Drive: 5, Mix: 1},
				effectchain.CompressorParams{ThresholdDB: -16, Ratio: 4, KneeDB: 6, AttackMs: 5, ReleaseMs: 80, MakeupDB: 3},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetStadium,
		Description: "long delay and large reverberant space",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				highPass(100),
				effectchain.CompressorParams{ThresholdDB: -18, Ratio: 3, KneeDB: 6, AttackMs: 5, ReleaseMs: 80},
				effectchain.EchoParams{TimeMs: 380, Feedback: 0.35, Damping: 0.5, Mix: 0.22},
				effectchain.ReverbParams{DecaySeconds: 3.5, RoomSize: 2, Damping: 0.45, PreDelayMs: 40, Mix: 0.35},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetDeepVoice,
		Description: "lower pitch with formant compensation and extra body",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				effectchain.CharacterParams{Semitones: -5, Compensation: 0.6, BrightnessDB: -1, Compression: 0.4},
				effectchain.FilterParams{Type: biquad.LowShelf, FrequencyHz: 120, Q: 0.707, GainDB: 3},
				effectchain.CompressorParams{ThresholdDB: -18, Ratio: 3, KneeDB: 6, AttackMs: 5, ReleaseMs: 80},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetChipmunk,
		Description: "uncompensated upward pitch shift",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				effectchain.CharacterParams{Semitones: 7, Compensation: 0, BrightnessDB: 2, Compression: 0.3},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetAnime,
		Description: "bright, raised voice with a short room",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				effectchain.CharacterParams{Semitones: 4, Compensation: 0.5, BrightnessDB: 3, Compression: 0.4},
				effectchain.ReverbParams{DecaySeconds: 0.7, RoomSize: 0.5, Damping: 0.5, PreDelayMs: 5, Mix: 0.1},
				limiter(-1),
			}
		},
	},
	{
		Name:        PresetRadio,
		Description: "telephone band with broadcast compression",
		build: func(float64) []effectchain.Params {
			return []effectchain.Params{
				effectchain.MegaphoneParams{LowCutHz: 300, HighCutHz: 3400, Drive: 2, Mix: 1},
				effectchain.BroadcastParams{WarmthDB: 0, PresenceDB: 2, Compression: 0.7},
				limiter(-1),
			}
		},
	},
}

// Presets returns all built-in presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)

	return out
}

// LookupPreset finds a preset by name. Matching ignores case and
// surrounding whitespace.
func LookupPreset(name string) (Preset, error) {
	want := PresetName(strings.ToLower(strings.TrimSpace(name)))
	for _, p := range presets {
		if p.Name == want {
			return p, nil
		}
	}

	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

func highPass(hz float64) effectchain.FilterParams {
	return effectchain.FilterParams{Type: biquad.HighPass, FrequencyHz: hz, Q: 0.707}
}

func limiter(ceilingDB float64) effectchain.LimiterParams {
	return effectchain.LimiterParams{CeilingDB: ceilingDB, LookaheadMs: 1.5, AttackMs: 1, ReleaseMs: 60}
}

// deEsser keeps the detector band below Nyquist at low sample rates.
func deEsser(sampleRate, thresholdDB, ratio, rangeDB float64) effectchain.DeEsserParams {
	return effectchain.DeEsserParams{
		FrequencyHz: min(6500, 0.3*sampleRate),
		ThresholdDB: thresholdDB,
		Ratio:       ratio,
		RangeDB:     rangeDB,
	}
}

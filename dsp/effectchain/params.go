package effectchain

import (
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/filter/biquad"
)

// Params is an immutable parameter record for one effect kind. The set of
// implementations is closed: one record type per Kind.
//
// Clamped returns a copy with every field forced into its valid range.
// Out-of-range values are never rejected.
type Params interface {
	Kind() Kind
	Clamped() Params

	sealed()
}

// FilterParams configures a single biquad section.
type FilterParams struct {
	Type        biquad.Type
	FrequencyHz float64
	Q           float64
	GainDB      float64
}

// GateParams configures the noise gate.
type GateParams struct {
	ThresholdDB float64
	KneeDB      float64
	FloorDB     float64
	AttackMs    float64
	HoldMs      float64
	ReleaseMs   float64
}

// CompressorParams configures the RMS compressor.
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64
	KneeDB      float64
	AttackMs    float64
	ReleaseMs   float64
	MakeupDB    float64
	AutoMakeup  bool
}

// LimiterParams configures the lookahead limiter.
type LimiterParams struct {
	CeilingDB   float64
	LookaheadMs float64
	AttackMs    float64
	ReleaseMs   float64
}

// EchoParams configures the feedback echo.
type EchoParams struct {
	TimeMs   float64
	Feedback float64
	Damping  float64
	Mix      float64
}

// ReverbParams configures the Schroeder reverb.
type ReverbParams struct {
	DecaySeconds float64
	RoomSize     float64
	Damping      float64
	PreDelayMs   float64
	Mix          float64
}

// DeEsserParams configures the sibilance controller.
type DeEsserParams struct {
	FrequencyHz float64
	ThresholdDB float64
	Ratio       float64
	RangeDB     float64
	Listen      bool
}

// PitchParams configures the pitch shifter.
type PitchParams struct {
	Semitones float64
	Mix       float64
}

// CharacterParams configures the character voice.
type CharacterParams struct {
	Semitones    float64
	Compensation float64
	BrightnessDB float64
	Compression  float64
}

// RobotParams configures the robot voice.
type RobotParams struct {
	CarrierHz float64
	Metallic  float64
	BitDepth  float64
	Mix       float64
}

// MegaphoneParams configures the megaphone voice.
type MegaphoneParams struct {
	LowCutHz  float64
	HighCutHz float64
	Drive     float64
	Mix       float64
}

// BroadcastParams configures the broadcast voice.
type BroadcastParams struct {
	WarmthDB    float64
	PresenceDB  float64
	Compression float64
}

// DefaultFilterParams returns a neutral 1 kHz peaking section.
func DefaultFilterParams() FilterParams {
	return FilterParams{Type: biquad.Peaking, FrequencyHz: 1000, Q: 0.707}
}

func DefaultGateParams() GateParams {
	return GateParams{ThresholdDB: -45, KneeDB: 6, FloorDB: -40, AttackMs: 1, HoldMs: 20, ReleaseMs: 120}
}

func DefaultCompressorParams() CompressorParams {
	return CompressorParams{ThresholdDB: -18, Ratio: 3, KneeDB: 6, AttackMs: 5, ReleaseMs: 80}
}

func DefaultLimiterParams() LimiterParams {
	return LimiterParams{CeilingDB: -1, LookaheadMs: 3, AttackMs: 1, ReleaseMs: 60}
}

func DefaultEchoParams() EchoParams {
	return EchoParams{TimeMs: 300, Feedback: 0.35, Damping: 0.3, Mix: 0.25}
}

func DefaultReverbParams() ReverbParams {
	return ReverbParams{DecaySeconds: 1.5, RoomSize: 1, Damping: 0.4, PreDelayMs: 10, Mix: 0.25}
}

func DefaultDeEsserParams() DeEsserParams {
	return DeEsserParams{FrequencyHz: 6000, ThresholdDB: -30, Ratio: 4, RangeDB: 12}
}

func DefaultPitchParams() PitchParams {
	return PitchParams{Mix: 1}
}

func DefaultCharacterParams() CharacterParams {
	return CharacterParams{Compensation: 0.5, Compression: 0.3}
}

func DefaultRobotParams() RobotParams {
	return RobotParams{CarrierHz: 60, Metallic: 0.5, BitDepth: 10, Mix: 1}
}

func DefaultMegaphoneParams() MegaphoneParams {
	return MegaphoneParams{LowCutHz: 500, HighCutHz: 3500, Drive: 4, Mix: 1}
}

func DefaultBroadcastParams() BroadcastParams {
	return BroadcastParams{WarmthDB: 3, PresenceDB: 3, Compression: 0.5}
}

// DefaultParams returns the default record for k, or nil for an unknown kind.
func DefaultParams(k Kind) Params {
	switch k {
	case KindFilter:
		return DefaultFilterParams()
	case KindGate:
		return DefaultGateParams()
	case KindCompressor:
		return DefaultCompressorParams()
	case KindLimiter:
		return DefaultLimiterParams()
	case KindEcho:
		return DefaultEchoParams()
	case KindReverb:
		return DefaultReverbParams()
	case KindDeEsser:
		return DefaultDeEsserParams()
	case KindPitch:
		return DefaultPitchParams()
	case KindCharacter:
		return DefaultCharacterParams()
	case KindRobot:
		return DefaultRobotParams()
	case KindMegaphone:
		return DefaultMegaphoneParams()
	case KindBroadcast:
		return DefaultBroadcastParams()
	default:
		return nil
	}
}

func (FilterParams) Kind() Kind     { return KindFilter }
func (GateParams) Kind() Kind       { return KindGate }
func (CompressorParams) Kind() Kind { return KindCompressor }
func (LimiterParams) Kind() Kind    { return KindLimiter }
func (EchoParams) Kind() Kind       { return KindEcho }
func (ReverbParams) Kind() Kind     { return KindReverb }
func (DeEsserParams) Kind() Kind    { return KindDeEsser }
func (PitchParams) Kind() Kind      { return KindPitch }
func (CharacterParams) Kind() Kind  { return KindCharacter }
func (RobotParams) Kind() Kind      { return KindRobot }
func (MegaphoneParams) Kind() Kind  { return KindMegaphone }
func (BroadcastParams) Kind() Kind  { return KindBroadcast }

func (FilterParams) sealed()     {}
func (GateParams) sealed()       {}
func (CompressorParams) sealed() {}
func (LimiterParams) sealed()    {}
func (EchoParams) sealed()       {}
func (ReverbParams) sealed()     {}
func (DeEsserParams) sealed()    {}
func (PitchParams) sealed()      {}
func (CharacterParams) sealed()  {}
func (RobotParams) sealed()      {}
func (MegaphoneParams) sealed()  {}
func (BroadcastParams) sealed()  {}

// Clamped returns p with an unknown type replaced by Peaking and numeric
// fields limited to their ranges.
func (p FilterParams) Clamped() Params {
	if !p.Type.Valid() {
		p.Type = biquad.Peaking
	}

	p.FrequencyHz = core.Clamp(p.FrequencyHz, biquad.MinFrequency, 20000)
	p.Q = core.Clamp(p.Q, biquad.MinQ, biquad.MaxQ)
	p.GainDB = clampOrZero(p.GainDB, -24, 24)

	return p
}

func (p GateParams) Clamped() Params {
	p.ThresholdDB = core.Clamp(p.ThresholdDB, -96, 0)
	p.KneeDB = clampOrZero(p.KneeDB, 0, 24)
	p.FloorDB = core.Clamp(p.FloorDB, -96, 0)
	p.AttackMs = core.Clamp(p.AttackMs, 0.05, 500)
	p.HoldMs = clampOrZero(p.HoldMs, 0, 2000)
	p.ReleaseMs = core.Clamp(p.ReleaseMs, 1, 5000)

	return p
}

func (p CompressorParams) Clamped() Params {
	p.ThresholdDB = core.Clamp(p.ThresholdDB, -60, 0)
	p.Ratio = core.Clamp(p.Ratio, 1, 20)
	p.KneeDB = clampOrZero(p.KneeDB, 0, 24)
	p.AttackMs = core.Clamp(p.AttackMs, 0.05, 500)
	p.ReleaseMs = core.Clamp(p.ReleaseMs, 1, 5000)
	p.MakeupDB = clampOrZero(p.MakeupDB, -24, 24)

	return p
}

func (p LimiterParams) Clamped() Params {
	p.CeilingDB = core.Clamp(p.CeilingDB, -24, 0)
	p.LookaheadMs = core.Clamp(p.LookaheadMs, 0.1, 10)
	p.AttackMs = core.Clamp(p.AttackMs, 0.01, 10)
	p.ReleaseMs = core.Clamp(p.ReleaseMs, 1, 2000)

	return p
}

func (p EchoParams) Clamped() Params {
	p.TimeMs = core.Clamp(p.TimeMs, 1, 2000)
	p.Feedback = clampOrZero(p.Feedback, 0, 0.95)
	p.Damping = core.Clamp(p.Damping, 0.01, 0.99)
	p.Mix = clampOrZero(p.Mix, 0, 1)

	return p
}

func (p ReverbParams) Clamped() Params {
	p.DecaySeconds = core.Clamp(p.DecaySeconds, 0.1, 10)
	p.RoomSize = core.Clamp(p.RoomSize, 0.25, 2)
	p.Damping = clampOrZero(p.Damping, 0, 0.99)
	p.PreDelayMs = clampOrZero(p.PreDelayMs, 0, 200)
	p.Mix = clampOrZero(p.Mix, 0, 1)

	return p
}

func (p DeEsserParams) Clamped() Params {
	p.FrequencyHz = core.Clamp(p.FrequencyHz, 2000, 12000)
	p.ThresholdDB = core.Clamp(p.ThresholdDB, -60, 0)
	p.Ratio = core.Clamp(p.Ratio, 1, 20)
	p.RangeDB = clampOrZero(p.RangeDB, 0, 24)

	return p
}

func (p PitchParams) Clamped() Params {
	p.Semitones = clampOrZero(p.Semitones, -24, 24)
	p.Mix = clampOrZero(p.Mix, 0, 1)

	return p
}

func (p CharacterParams) Clamped() Params {
	p.Semitones = clampOrZero(p.Semitones, -24, 24)
	p.Compensation = clampOrZero(p.Compensation, 0, 1)
	p.BrightnessDB = clampOrZero(p.BrightnessDB, -12, 12)
	p.Compression = clampOrZero(p.Compression, 0, 1)

	return p
}

func (p RobotParams) Clamped() Params {
	p.CarrierHz = core.Clamp(p.CarrierHz, 10, 1000)
	p.Metallic = clampOrZero(p.Metallic, 0, 1)
	p.BitDepth = core.Clamp(p.BitDepth, 4, 16)
	p.Mix = clampOrZero(p.Mix, 0, 1)

	return p
}

func (p MegaphoneParams) Clamped() Params {
	p.LowCutHz = core.Clamp(p.LowCutHz, 100, 2000)
	p.HighCutHz = core.Clamp(p.HighCutHz, 1500, 8000)
	p.Drive = core.Clamp(p.Drive, 1, 20)
	p.Mix = clampOrZero(p.Mix, 0, 1)

	return p
}

func (p BroadcastParams) Clamped() Params {
	p.WarmthDB = clampOrZero(p.WarmthDB, 0, 12)
	p.PresenceDB = clampOrZero(p.PresenceDB, 0, 12)
	p.Compression = clampOrZero(p.Compression, 0, 1)

	return p
}

// clampOrZero clamps v, mapping NaN to 0 instead of the lower bound. Used
// for fields where 0 is the neutral setting.
func clampOrZero(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}

	return core.Clamp(v, lo, hi)
}

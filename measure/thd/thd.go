// Package thd measures harmonic distortion of a tone, as used to judge how
// hard the saturating voice effects drive a signal.
package thd

import (
	"errors"
	"math"

	"github.com/cwbudde/voicefx/measure/spectral"
)

const (
	defaultMaxHarmonics = 9
	defaultCaptureBins  = 3 // Hann main lobe plus one guard bin
	defaultLowerHz      = 20.0
	defaultUpperHz      = 20000.0
)

// ErrNoFundamental is returned when the spectrum has no usable tone.
var ErrNoFundamental = errors.New("thd: no fundamental found")

// Config selects the tone and the band to analyze. Zero fields take
// defaults; a zero FundamentalHz picks the strongest bin in the band.
type Config struct {
	FundamentalHz float64
	MaxHarmonics  int
	CaptureBins   int
	LowerHz       float64
	UpperHz       float64
}

// Result holds amplitude ratios relative to the fundamental.
type Result struct {
	FundamentalHz    float64
	FundamentalLevel float64
	Harmonics        []float64 // H2, H3, ... as ratios
	THD              float64
	THDN             float64
	OddHD            float64
	EvenHD           float64
	Noise            float64
}

// THDDB returns THD in dB.
func (r Result) THDDB() float64 { return ratioToDB(r.THD) }

// THDNDB returns THD+N in dB.
func (r Result) THDNDB() float64 { return ratioToDB(r.THDN) }

// SINAD returns the signal to noise-and-distortion ratio in dB.
func (r Result) SINAD() float64 { return -ratioToDB(r.THDN) }

// AnalyzeSignal windows signal, transforms it and measures distortion.
func AnalyzeSignal(signal []float64, sampleRate float64, cfg Config) (Result, error) {
	s, err := spectral.Analyze(signal, sampleRate)
	if err != nil {
		return Result{}, err
	}

	return FromSpectrum(s, cfg)
}

// FromSpectrum measures distortion in an existing magnitude spectrum.
func FromSpectrum(s spectral.Spectrum, cfg Config) (Result, error) {
	cfg = normalize(cfg, s.SampleRate)

	power := make([]float64, len(s.Magnitude))
	for k, m := range s.Magnitude {
		power[k] = m * m
	}

	binHz := s.BinHz()
	lower := max(1, int(math.Ceil(cfg.LowerHz/binHz)))
	upper := min(len(power)-1, int(math.Floor(cfg.UpperHz/binHz)))

	if upper <= lower {
		return Result{}, ErrNoFundamental
	}

	fund := fundamentalBin(power, lower, upper, cfg.FundamentalHz/binHz)
	if fund > upper {
		return Result{}, ErrNoFundamental
	}

	capture := min(cfg.CaptureBins, fund/2)

	fundPower := bandPower(power, fund, capture)
	if fundPower <= 0 {
		return Result{}, ErrNoFundamental
	}

	center := centroid(power, fund, capture)

	res := Result{
		FundamentalHz:    center * binHz,
		FundamentalLevel: math.Sqrt(fundPower),
	}

	var harmPower, oddPower, evenPower float64

	for h := 2; h <= cfg.MaxHarmonics+1; h++ {
		bin := int(math.Round(float64(h) * center))
		if bin+capture > upper {
			break
		}

		p := bandPower(power, bin, capture)
		res.Harmonics = append(res.Harmonics, math.Sqrt(p/fundPower))

		harmPower += p
		if h%2 == 0 {
			evenPower += p
		} else {
			oddPower += p
		}
	}

	var total float64
	for k := lower; k <= upper; k++ {
		total += power[k]
	}

	residual := max(0, total-fundPower)

	res.THD = math.Sqrt(harmPower / fundPower)
	res.THDN = math.Sqrt(residual / fundPower)
	res.OddHD = math.Sqrt(oddPower / fundPower)
	res.EvenHD = math.Sqrt(evenPower / fundPower)
	res.Noise = math.Sqrt(max(0, residual-harmPower) / fundPower)

	return res, nil
}

func normalize(cfg Config, sampleRate float64) Config {
	if cfg.MaxHarmonics <= 0 {
		cfg.MaxHarmonics = defaultMaxHarmonics
	}

	if cfg.CaptureBins <= 0 {
		cfg.CaptureBins = defaultCaptureBins
	}

	if !(cfg.LowerHz > 0) {
		cfg.LowerHz = defaultLowerHz
	}

	if !(cfg.UpperHz > cfg.LowerHz) {
		cfg.UpperHz = defaultUpperHz
	}

	cfg.UpperHz = min(cfg.UpperHz, sampleRate/2)

	return cfg
}

// fundamentalBin returns the strongest bin within ±2 bins of the expected
// one, or within the whole band when no frequency is given.
func fundamentalBin(power []float64, lower, upper int, expected float64) int {
	if expected > 0 {
		c := int(math.Round(expected))
		lower = max(lower, c-2)
		upper = min(upper, c+2)
	}

	best := lower
	for k := lower + 1; k <= upper; k++ {
		if power[k] > power[best] {
			best = k
		}
	}

	return best
}

func bandPower(power []float64, bin, capture int) float64 {
	var sum float64
	for k := max(0, bin-capture); k <= min(len(power)-1, bin+capture); k++ {
		sum += power[k]
	}

	return sum
}

// centroid returns the power-weighted bin position of the lobe around bin.
func centroid(power []float64, bin, capture int) float64 {
	var sum, moment float64
	for k := max(0, bin-capture); k <= min(len(power)-1, bin+capture); k++ {
		sum += power[k]
		moment += float64(k) * power[k]
	}

	if sum <= 0 {
		return float64(bin)
	}

	return moment / sum
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

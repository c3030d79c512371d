package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/envelope"
)

const (
	// log2(10)/20: converts dB to log2 of the linear amplitude.
	log2Of10Div20 = 0.166096404744
	// 20/log2(10): converts log2 of an amplitude to dB.
	dbPerLog2 = 6.02059991328
)

// amplitudeToDB converts a linear amplitude to dB after flooring it.
func amplitudeToDB(a float64) float64 {
	if a < envelope.Floor || math.IsNaN(a) {
		a = envelope.Floor
	}

	return mathLog2(a) * dbPerLog2
}

// meanSquareToDB converts a mean square to dB after flooring it.
func meanSquareToDB(ms float64) float64 {
	const floor = envelope.Floor * envelope.Floor
	if ms < floor || math.IsNaN(ms) {
		ms = floor
	}

	return mathLog2(ms) * dbPerLog2 * 0.5
}

// dbToGain converts dB to a linear gain on the audio path.
func dbToGain(db float64) float64 {
	return mathPower2(db * log2Of10Div20)
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !isFinite(sampleRate) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi || !isFinite(v) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, v)
	}

	return nil
}

package voice

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/effects/dynamics"
)

// compressionCurve maps a 0..1 amount onto compressor settings. An amount
// of zero leaves the compressor out of the signal path.
type compressionCurve struct {
	thresholdDB     float64 // threshold at amount 0
	thresholdSpanDB float64 // additional lowering at amount 1
	maxRatio        float64
	makeupDB        float64 // makeup at amount 1
	attackMs        float64
	releaseMs       float64
}

func (cc compressionCurve) apply(c *dynamics.Compressor, amount float64) error {
	if err := c.SetThreshold(cc.thresholdDB - cc.thresholdSpanDB*amount); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}

	if err := c.SetRatio(1 + (cc.maxRatio-1)*amount); err != nil {
		return fmt.Errorf("ratio: %w", err)
	}

	if err := c.SetAttack(cc.attackMs); err != nil {
		return fmt.Errorf("attack: %w", err)
	}

	if err := c.SetRelease(cc.releaseMs); err != nil {
		return fmt.Errorf("release: %w", err)
	}

	if err := c.SetMakeupGain(cc.makeupDB * amount); err != nil {
		return fmt.Errorf("makeup: %w", err)
	}

	return nil
}

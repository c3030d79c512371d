package core_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d valid=%v\n", cfg.SampleRate, cfg.BlockSize, cfg.Validate() == nil)

	// Output:
	// sampleRate=44100 blockSize=256 valid=true
}

func ExampleSemitonesToRatio() {
	fmt.Printf("%.4f %.4f\n", core.SemitonesToRatio(12), core.SemitonesToRatio(-7))

	// Output:
	// 2.0000 0.6674
}

func ExampleSanitizeInPlace() {
	buf := []float64{0.5, 1.7, math.NaN(), -3}
	n := core.SanitizeInPlace(buf, 0.98)

	fmt.Println(n, buf)

	// Output:
	// 1 [0.5 0.98 0 -0.98]
}

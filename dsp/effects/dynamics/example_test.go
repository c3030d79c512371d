package dynamics_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/dsp/effects/dynamics"
)

func ExampleCompressor_GainReduction() {
	comp, err := dynamics.NewCompressor(48000)
	if err != nil {
		panic(err)
	}

	_ = comp.SetThreshold(-20)
	_ = comp.SetRatio(4)
	_ = comp.SetKnee(0)

	fmt.Printf("%.2f dB\n", comp.GainReduction(-10))
	// Output:
	// 7.50 dB
}

func ExampleLimiter() {
	lim, err := dynamics.NewLimiter(48000)
	if err != nil {
		panic(err)
	}

	buf := make([]float64, 4800)
	for i := range buf {
		buf[i] = 4 * math.Sin(2*math.Pi*100*float64(i)/48000)
	}

	lim.ProcessInPlace(buf)

	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}

	fmt.Printf("latency=%d samples, peak<=ceiling: %v\n", lim.Latency(), peak <= lim.CeilingLinear()+1e-12)
	// Output:
	// latency=144 samples, peak<=ceiling: true
}

func ExampleGate() {
	gate, err := dynamics.NewGate(48000)
	if err != nil {
		panic(err)
	}

	_ = gate.SetThreshold(-40)

	quiet := make([]float64, 4800)
	for i := range quiet {
		quiet[i] = 0.001 * math.Sin(2*math.Pi*200*float64(i)/48000)
	}

	gate.ProcessInPlace(quiet)
	fmt.Printf("closed gain: %.2f\n", gate.Gain())
	// Output:
	// closed gain: 0.01
}

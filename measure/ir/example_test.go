package ir_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/voicefx/measure/ir"
)

func ExampleRT60() {
	const fs = 48000.0

	h := make([]float64, int(fs*2))
	for i := range h {
		h[i] = math.Exp(-math.Log(1000) * float64(i) / fs / 0.7)
	}

	rt, err := ir.RT60(h, fs)
	if err != nil {
		panic(err)
	}

	fmt.Printf("RT60 = %.2f s\n", rt)
	// Output:
	// RT60 = 0.70 s
}

func ExampleSchroederDB() {
	const fs = 48000.0

	h := make([]float64, int(fs*1.5))
	for i := range h {
		h[i] = math.Exp(-math.Log(1000) * float64(i) / fs / 0.5)
	}

	curve, err := ir.SchroederDB(h)
	if err != nil {
		panic(err)
	}

	for _, ms := range []int{0, 250, 500} {
		fmt.Printf("t=%3dms: %6.1f dB\n", ms, curve[ms*48])
	}
	// Output:
	// t=  0ms:    0.0 dB
	// t=250ms:  -30.0 dB
	// t=500ms:  -60.0 dB
}

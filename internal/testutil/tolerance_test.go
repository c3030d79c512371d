package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	d, err := MaxAbsDiff([]float64{1.0, 2.0, 3.0}, []float64{1.0, 2.1, 3.0})
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if math.Abs(d-0.1) > 1e-15 {
		t.Fatalf("MaxAbsDiff = %v, want 0.1", d)
	}

	if _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestLevelHelpers(t *testing.T) {
	sine := DeterministicSine(1000, 48000, 0.5, 48000)

	if got := RMS(sine); math.Abs(got-0.5/math.Sqrt2) > 1e-9 {
		t.Fatalf("RMS = %v", got)
	}

	if got := RMSDB(nil); got > -239 || math.IsInf(got, 0) {
		t.Fatalf("RMSDB(nil) = %v, want finite floor", got)
	}

	if got := MaxAbs([]float64{0.1, -0.7, 0.3}); got != 0.7 {
		t.Fatalf("MaxAbs = %v", got)
	}

	if got := MaxStep([]float64{0, 0.5, 0.25}); got != 0.5 {
		t.Fatalf("MaxStep = %v", got)
	}
}

func TestProcessBlocksCoversBuffer(t *testing.T) {
	buf := make([]float64, 10)

	var sizes []int

	ProcessBlocks(buf, 4, func(block []float64) {
		sizes = append(sizes, len(block))
		for i := range block {
			block[i] = 1
		}
	})

	if len(sizes) != 3 || sizes[2] != 2 {
		t.Fatalf("block sizes = %v, want [4 4 2]", sizes)
	}

	for i, v := range buf {
		if v != 1 {
			t.Fatalf("buf[%d] untouched", i)
		}
	}
}

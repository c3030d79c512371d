package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
		{name: "nan", value: math.NaN(), min: -3, max: 3, expected: -3},
		{name: "inf", value: math.Inf(1), min: 0, max: 2, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.value, tt.min, tt.max)
			if got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(12, 0, 10); got != 10 {
		t.Fatalf("ClampInt(12) = %d, want 10", got)
	}

	if got := ClampInt(-2, 10, 0); got != 0 {
		t.Fatalf("ClampInt(-2) with swapped bounds = %d, want 0", got)
	}
}

func TestDBConversions(t *testing.T) {
	db := LinearToDB(DBToLinear(-6))
	if math.Abs(db+6) > 1e-10 {
		t.Fatalf("LinearToDB(DBToLinear(-6)) = %v, want -6", db)
	}

	if !math.IsInf(LinearToDB(0), -1) {
		t.Fatal("expected -Inf for zero")
	}

	if !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("expected NaN for negative amplitude")
	}
}

func TestSemitonesToRatio(t *testing.T) {
	tests := []struct {
		semitones float64
		want      float64
	}{
		{12, 2},
		{-12, 0.5},
		{0, 1},
		{24, 4},
	}

	for _, tt := range tests {
		if got := SemitonesToRatio(tt.semitones); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("SemitonesToRatio(%v) = %v, want %v", tt.semitones, got, tt.want)
		}
	}
}

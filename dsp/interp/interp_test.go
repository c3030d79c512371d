package interp

import "testing"

func TestInterpolatorsExactOnLinearRamp(t *testing.T) {
	xm1, x0, x1, x2 := -1.0, 0.0, 1.0, 2.0

	for _, tc := range []float64{0, 0.25, 0.5, 1} {
		if got := Hermite4(tc, xm1, x0, x1, x2); got < tc-1e-12 || got > tc+1e-12 {
			t.Fatalf("Hermite4(%v) = %v", tc, got)
		}

		if got := Linear2(tc, x0, x1); got != tc {
			t.Fatalf("Linear2(%v) = %v", tc, got)
		}
	}
}

func TestModeTaps(t *testing.T) {
	if Linear.Taps() != 2 || Hermite.Taps() != 4 {
		t.Fatalf("taps = %d/%d", Linear.Taps(), Hermite.Taps())
	}

	if Mode(9).String() != "Mode(9)" {
		t.Fatalf("String() = %q", Mode(9).String())
	}
}

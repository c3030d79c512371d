package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/voicefx/dsp/interp"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := ForDuration(0, 48000, 4); err == nil {
		t.Fatal("expected error for zero duration")
	}

	d, err := ForDuration(10, 48000, 4)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 484 {
		t.Fatalf("Len = %d, want 484", d.Len())
	}
}

func TestIntegerRead(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 12; i++ {
		d.Write(float64(i))
	}

	if got := d.Read(1); got != 12 {
		t.Fatalf("Read(1) = %v, want 12", got)
	}

	if got := d.Read(8); got != 5 {
		t.Fatalf("Read(8) = %v, want 5", got)
	}
}

func TestFractionalReadModes(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		t.Run(mode.String(), func(t *testing.T) {
			d, err := New(32, WithMode(mode))
			if err != nil {
				t.Fatal(err)
			}

			for i := range 32 {
				d.Write(float64(i))
			}

			// On a ramp both laws are exact: delay 3.5 sits between 29 and 28.
			if got := d.ReadFractional(3.5); !approxEqual(got, 28.5, 1e-12) {
				t.Fatalf("ReadFractional(3.5) = %v, want 28.5", got)
			}
		})
	}
}

func TestFractionalReadClamps(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	for i := range 16 {
		d.Write(float64(i))
	}

	if got := d.ReadFractional(-3); got != d.Read(1) {
		t.Fatalf("negative delay read %v, want newest sample", got)
	}

	if got := d.ReadFractional(100); !approxEqual(got, d.ReadFractional(d.MaxDelay()), 1e-12) {
		t.Fatalf("over-long delay not clamped: %v", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Reset()

	for i := 1; i <= 4; i++ {
		if d.Read(i) != 0 {
			t.Fatalf("Read(%d) after reset = %v", i, d.Read(i))
		}
	}
}

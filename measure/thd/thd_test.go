package thd

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/voicefx/measure/spectral"
)

const testRate = 48000.0

func tone(n int, f0 float64, harmonics map[int]float64, shape func(float64) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		w := 2 * math.Pi * f0 * float64(i) / testRate

		v := math.Sin(w)
		for h, a := range harmonics {
			v += a * math.Sin(float64(h)*w)
		}

		if shape != nil {
			v = shape(v)
		}

		out[i] = v
	}

	return out
}

func TestPureToneHasNoHarmonics(t *testing.T) {
	t.Parallel()

	for _, f0 := range []float64{220, 1000, 3150} {
		res, err := AnalyzeSignal(tone(1<<16, f0, nil, nil), testRate, Config{})
		if err != nil {
			t.Fatalf("AnalyzeSignal(%v Hz) error = %v", f0, err)
		}

		if math.Abs(res.FundamentalHz-f0) > 1 {
			t.Errorf("FundamentalHz = %.2f, want %v", res.FundamentalHz, f0)
		}

		if res.THD > 1e-3 {
			t.Errorf("%v Hz: THD = %g, want ~0", f0, res.THD)
		}
	}
}

func TestKnownHarmonics(t *testing.T) {
	t.Parallel()

	in := tone(1<<16, 1000, map[int]float64{2: 0.05, 3: 0.1}, nil)

	res, err := AnalyzeSignal(in, testRate, Config{FundamentalHz: 1000})
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"H2", res.Harmonics[0], 0.05},
		{"H3", res.Harmonics[1], 0.1},
		{"THD", res.THD, math.Hypot(0.05, 0.1)},
		{"EvenHD", res.EvenHD, 0.05},
		{"OddHD", res.OddHD, 0.1},
	}

	for _, c := range checks {
		if math.Abs(c.got-c.want) > 0.003 {
			t.Errorf("%s = %.4f, want %.4f", c.name, c.got, c.want)
		}
	}

	if res.THDN < res.THD {
		t.Errorf("THDN %.4f < THD %.4f", res.THDN, res.THD)
	}

	if db := res.THDDB(); math.Abs(db-20*math.Log10(res.THD)) > 1e-12 {
		t.Errorf("THDDB() = %v", db)
	}
}

func TestSymmetricClippingIsOdd(t *testing.T) {
	t.Parallel()

	clip := func(x float64) float64 { return math.Tanh(3 * x) }

	res, err := AnalyzeSignal(tone(1<<16, 500, nil, clip), testRate, Config{})
	if err != nil {
		t.Fatal(err)
	}

	if res.THD < 0.1 {
		t.Errorf("THD = %.4f, want heavy distortion", res.THD)
	}

	if res.EvenHD > 0.01*res.OddHD {
		t.Errorf("EvenHD = %.5f, OddHD = %.5f; symmetric clipping should be odd", res.EvenHD, res.OddHD)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	t.Parallel()

	if _, err := AnalyzeSignal(nil, testRate, Config{}); !errors.Is(err, spectral.ErrEmptySignal) {
		t.Errorf("empty signal error = %v", err)
	}

	if _, err := AnalyzeSignal(make([]float64, 4096), testRate, Config{}); !errors.Is(err, ErrNoFundamental) {
		t.Errorf("silence error = %v, want ErrNoFundamental", err)
	}

	if _, err := AnalyzeSignal(tone(4096, 1000, nil, nil), testRate, Config{FundamentalHz: 30000}); !errors.Is(err, ErrNoFundamental) {
		t.Errorf("out-of-band fundamental error = %v, want ErrNoFundamental", err)
	}
}

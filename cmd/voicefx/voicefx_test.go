package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/voicefx/engine"
	"github.com/cwbudde/voicefx/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestPresetsCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "presets")
	if err != nil {
		t.Fatal(err)
	}

	for _, p := range engine.Presets() {
		if !strings.Contains(out, string(p.Name)) {
			t.Errorf("presets output misses %q", p.Name)
		}
	}

	if !strings.Contains(out, "limiter]") {
		t.Errorf("presets output does not list the effect kinds:\n%s", out)
	}
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "voicefx.yaml")
	if err := os.WriteFile(path, []byte("preset: Karaoke\nmaster_volume: 5\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"defaults", []string{"config"}, []string{"preset: clean", "master_volume: 1", "bypass: false"}},
		{"file", []string{"--config", path, "config"}, []string{"preset: karaoke", "master_volume: 2"}},
		{"override", []string{"--config", path, "config", "--preset", "radio", "--bypass"}, []string{"preset: radio", "bypass: true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output misses %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "sine",
			args: []string{"analyze", "--preset", "clean", "--duration", "1s"},
			want: []string{"preset", "clean", "rms", "loudness", "thd", "faults", "0"},
		},
		{
			name: "impulse",
			args: []string{"analyze", "-p", "stadium", "-s", "impulse", "-d", "1s"},
			want: []string{"stadium", "rt60"},
		},
		{
			name: "vowel",
			args: []string{"analyze", "-p", "robot", "-s", "vowel", "-d", "500ms", "--sample-rate", "44100"},
			want: []string{"robot", "vowel (120 Hz", "centroid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}

			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output misses %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown preset", []string{"analyze", "--preset", "opera"}, "unknown preset"},
		{"unknown source", []string{"analyze", "--source", "choir"}, "unknown source"},
		{"bad sample rate", []string{"analyze", "--sample-rate", "100"}, "sample rate"},
		{"zero duration", []string{"analyze", "--duration", "0s"}, "duration"},
		{"missing config", []string{"--config", "/does/not/exist.yaml", "config"}, "failed to open settings"},
		{"extra args", []string{"presets", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestSources(t *testing.T) {
	t.Parallel()

	for _, name := range sourceNames {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			src, err := newSource(name, 48000, defaultFreq(name, 0), 0.5)
			if err != nil {
				t.Fatal(err)
			}

			buf := make([]float64, 48000)
			src.Fill(buf)

			testutil.RequireFinite(t, buf)
			testutil.RequireBounded(t, buf, 1)

			if testutil.MaxAbs(buf) == 0 {
				t.Error("source is silent")
			}
		})
	}
}

func TestImpulseSourceFiresOnce(t *testing.T) {
	t.Parallel()

	src, _ := newSource("impulse", 48000, 0, 0.8)

	first := make([]float64, 4)
	src.Fill(first)

	second := make([]float64, 4)
	src.Fill(second)

	if first[0] != 0.8 || testutil.MaxAbs(first[1:]) != 0 || testutil.MaxAbs(second) != 0 {
		t.Errorf("impulse = %v then %v", first, second)
	}
}

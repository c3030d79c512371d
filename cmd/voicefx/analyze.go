package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/voicefx/engine"
	"github.com/cwbudde/voicefx/measure/ir"
	"github.com/cwbudde/voicefx/measure/level"
	"github.com/cwbudde/voicefx/measure/loudness"
	"github.com/cwbudde/voicefx/measure/spectral"
	"github.com/cwbudde/voicefx/measure/thd"
)

type analyzeOptions struct {
	engineFlags

	source    string
	freqHz    float64
	amplitude float64
	duration  time.Duration
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Render a test signal through a preset and print measurements",
		Long: `analyze renders a synthetic source through the engine and compares the
input and output: RMS, peak, loudness, dominant frequency and spectral
centroid. A sine source also reports harmonic distortion and an impulse
source reports the decay time of the processed tail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := root.newEngine(cmd, &opts.engineFlags)
			if err != nil {
				return err
			}

			return runAnalyze(cmd.OutOrStdout(), eng, opts)
		},
	}

	addEngineFlags(cmd, &opts.engineFlags)
	cmd.Flags().StringVarP(&opts.source, "source", "s", "sine", "test signal: sine, noise, vowel or impulse")
	cmd.Flags().Float64Var(&opts.freqHz, "freq", 0, "sine frequency or vowel pitch in Hz (default 1000 / 120)")
	cmd.Flags().Float64Var(&opts.amplitude, "amplitude", 0.5, "source amplitude")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 2*time.Second, "rendered length")

	return cmd
}

func defaultFreq(source string, freqHz float64) float64 {
	if freqHz > 0 {
		return freqHz
	}

	if source == "vowel" {
		return 120
	}

	return 1000
}

func runAnalyze(w io.Writer, eng *engine.Engine, opts *analyzeOptions) error {
	opts.source = strings.ToLower(opts.source)

	sr := eng.SampleRate()
	freq := defaultFreq(opts.source, opts.freqHz)

	src, err := newSource(opts.source, sr, freq, opts.amplitude)
	if err != nil {
		return err
	}

	n := int(opts.duration.Seconds() * sr)
	if n <= 0 {
		return fmt.Errorf("duration must be positive: %s", opts.duration)
	}

	in := make([]float64, n)
	src.Fill(in)

	out := make([]float64, n)
	copy(out, in)

	for start := 0; start < n; start += eng.BlockSize() {
		eng.Process(out[start:min(start+eng.BlockSize(), n)])
	}

	inStats, err := measure(in, sr)
	if err != nil {
		return err
	}

	outStats, err := measure(out, sr)
	if err != nil {
		return err
	}

	health := eng.Health()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "preset\t%s\n", health.Preset)
	fmt.Fprintf(tw, "source\t%s (%.0f Hz, amplitude %.2f, %s)\n", opts.source, freq, opts.amplitude, opts.duration)
	fmt.Fprintf(tw, "latency\t%d samples (%.2f ms)\n", health.Latency, 1000*float64(health.Latency)/sr)
	fmt.Fprintf(tw, "\t\n")
	fmt.Fprintf(tw, "\tinput\toutput\n")
	fmt.Fprintf(tw, "rms\t%.1f dBFS\t%.1f dBFS\n", inStats.rmsDB, outStats.rmsDB)
	fmt.Fprintf(tw, "peak\t%.1f dBFS\t%.1f dBFS\n", inStats.peakDB, outStats.peakDB)
	fmt.Fprintf(tw, "loudness\t%s\t%s\n", formatLUFS(inStats.lufs), formatLUFS(outStats.lufs))
	fmt.Fprintf(tw, "dominant\t%.1f Hz\t%.1f Hz\n", inStats.dominantHz, outStats.dominantHz)
	fmt.Fprintf(tw, "centroid\t%.0f Hz\t%.0f Hz\n", inStats.centroidHz, outStats.centroidHz)

	switch opts.source {
	case "sine":
		fmt.Fprintf(tw, "thd\t%s\t%s\n", formatTHD(in, sr, freq), formatTHD(out, sr, freq))
	case "impulse":
		fmt.Fprintf(tw, "rt60\t-\t%s\n", formatRT60(out, sr))
	}

	fmt.Fprintf(tw, "\t\n")
	fmt.Fprintf(tw, "faults\t%d\n", len(health.Faults))

	for _, f := range health.Faults {
		fmt.Fprintf(tw, "\t%v\n", f)
	}

	return tw.Flush()
}

type signalStats struct {
	rmsDB      float64
	peakDB     float64
	lufs       float64
	dominantHz float64
	centroidHz float64
}

func measure(x []float64, sampleRate float64) (signalStats, error) {
	st := signalStats{
		rmsDB:  level.RMSDB(x),
		peakDB: level.PeakDB(x),
	}

	meter, err := loudness.NewMeter(sampleRate)
	if err != nil {
		return st, err
	}

	meter.Process(x)
	st.lufs = meter.Integrated()

	sp, err := spectral.Analyze(x, sampleRate)
	if err != nil {
		return st, err
	}

	st.centroidHz = sp.Centroid()

	st.dominantHz, err = spectral.DominantFrequency(x, sampleRate)
	if err != nil {
		return st, err
	}

	return st, nil
}

func formatLUFS(v float64) string {
	if math.IsInf(v, -1) {
		return "gated"
	}

	return fmt.Sprintf("%.1f LUFS", v)
}

func formatTHD(x []float64, sampleRate, freqHz float64) string {
	res, err := thd.AnalyzeSignal(x, sampleRate, thd.Config{FundamentalHz: freqHz})
	if err != nil {
		return "n/a"
	}

	return fmt.Sprintf("%.2f%% (%.1f dB)", 100*res.THD, res.THDDB())
}

func formatRT60(x []float64, sampleRate float64) string {
	d, err := ir.Analyze(x, sampleRate)
	if err != nil {
		return "n/a"
	}

	return fmt.Sprintf("%.2f s (EDT %.2f s)", d.RT60, d.EDT)
}

//go:build !headless

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/voicefx/engine"
	"github.com/cwbudde/voicefx/measure/level"
)

const (
	playBuffer   = 50 * time.Millisecond
	reportPeriod = time.Second
)

type playOptions struct {
	engineFlags

	source    string
	freqHz    float64
	amplitude float64
	duration  time.Duration
}

func newPlayCmd(root *rootOptions) *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a test signal through a preset on the default audio device",
		Long: `play renders a synthetic source through the engine in real time and sends
it to the default output device. Playback stops after --duration, or on
Ctrl-C when the duration is zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := root.newEngine(cmd, &opts.engineFlags)
			if err != nil {
				return err
			}

			freq := defaultFreq(opts.source, opts.freqHz)

			src, err := newSource(opts.source, eng.SampleRate(), freq, opts.amplitude)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return play(ctx, eng, src, opts.duration, root.logger(cmd))
		},
	}

	addEngineFlags(cmd, &opts.engineFlags)
	cmd.Flags().StringVarP(&opts.source, "source", "s", "vowel", "test signal: sine, noise, vowel or impulse")
	cmd.Flags().Float64Var(&opts.freqHz, "freq", 0, "sine frequency or vowel pitch in Hz (default 1000 / 120)")
	cmd.Flags().Float64Var(&opts.amplitude, "amplitude", 0.5, "source amplitude")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 5*time.Second, "playback length, 0 plays until interrupted")

	return cmd
}

func play(ctx context.Context, eng *engine.Engine, src source, duration time.Duration, log *logrus.Logger) error {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(eng.SampleRate()),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   playBuffer,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	r := newEnginePlayer(eng, src)
	if duration > 0 {
		r.bounded = true
		r.remaining = max(1, int(duration.Seconds()*eng.SampleRate()))
	}

	player := otoCtx.NewPlayer(r)
	defer player.Close()

	player.Play()

	log.WithFields(logrus.Fields{
		"preset":   eng.Preset(),
		"latency":  eng.Latency(),
		"duration": duration,
	}).Info("playback started")

	ticker := time.NewTicker(reportPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("playback interrupted")
			return nil
		case <-ticker.C:
			h := eng.Health()

			log.WithFields(logrus.Fields{
				"rms_db":  r.rmsDB(),
				"peak_db": r.peakDB(),
				"faults":  len(h.Faults),
			}).Debug("output level")

			if !player.IsPlaying() {
				if err := player.Err(); err != nil {
					return fmt.Errorf("playback: %w", err)
				}

				log.Info("playback finished")

				return nil
			}
		}
	}
}

// enginePlayer is the io.Reader handed to the audio device. Read runs on
// the device goroutine; the level fields are published atomically for the
// reporting loop.
type enginePlayer struct {
	eng       *engine.Engine
	src       source
	bounded   bool
	remaining int

	buf   []float64
	meter *level.Meter

	rms  atomic.Uint64
	peak atomic.Uint64
}

func newEnginePlayer(eng *engine.Engine, src source) *enginePlayer {
	return &enginePlayer{
		eng:   eng,
		src:   src,
		buf:   make([]float64, eng.BlockSize()),
		meter: level.NewMeter(eng.BlockSize()),
	}
}

func (p *enginePlayer) Read(b []byte) (int, error) {
	n := len(b) / 4
	if n == 0 {
		return 0, nil
	}

	if p.bounded {
		if p.remaining == 0 {
			return 0, io.EOF
		}

		n = min(n, p.remaining)
	}

	p.meter.Reset()

	written := 0
	for written < n {
		block := p.buf[:min(len(p.buf), n-written)]

		p.src.Fill(block)
		p.eng.Process(block)
		p.meter.Add(block)

		for i, v := range block {
			binary.LittleEndian.PutUint32(b[4*(written+i):], math.Float32bits(float32(v)))
		}

		written += len(block)
	}

	p.rms.Store(math.Float64bits(p.meter.RMSDB()))
	p.peak.Store(math.Float64bits(p.meter.PeakDB()))

	if p.bounded {
		p.remaining -= n
		if p.remaining == 0 {
			return 4 * n, io.EOF
		}
	}

	return 4 * n, nil
}

func (p *enginePlayer) rmsDB() float64  { return math.Float64frombits(p.rms.Load()) }
func (p *enginePlayer) peakDB() float64 { return math.Float64frombits(p.peak.Load()) }

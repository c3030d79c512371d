package effectchain_test

import (
	"fmt"

	"github.com/cwbudde/voicefx/dsp/core"
	"github.com/cwbudde/voicefx/dsp/effectchain"
	"github.com/cwbudde/voicefx/internal/testutil"
)

func ExampleChain() {
	ctx := effectchain.NewContext(core.WithSampleRate(48000), core.WithBlockSize(256))
	reg := effectchain.DefaultRegistry()

	chain := effectchain.New()

	for _, p := range []effectchain.Params{
		effectchain.CompressorParams{ThresholdDB: -20, Ratio: 4, KneeDB: 6, AttackMs: 5, ReleaseMs: 80},
		effectchain.LimiterParams{CeilingDB: -1, LookaheadMs: 3, AttackMs: 1, ReleaseMs: 60},
	} {
		fx, err := reg.NewEffect(ctx, p)
		if err != nil {
			panic(err)
		}

		_ = chain.Add(fx)
	}

	if err := chain.Prepare(ctx); err != nil {
		panic(err)
	}

	buf := testutil.DeterministicSine(440, ctx.SampleRate, 2, 4800)
	chain.Process(buf)

	fmt.Printf("effects: %d, latency: %d samples\n", chain.Len(), chain.Latency())
	fmt.Printf("peak <= -1 dBFS: %v\n", testutil.MaxAbs(buf) <= 0.8913)
	// Output:
	// effects: 2, latency: 144 samples
	// peak <= -1 dBFS: true
}

func ExampleParseKind() {
	k, err := effectchain.ParseKind("DeEsser")
	fmt.Println(k, err)
	// Output:
	// de-esser <nil>
}

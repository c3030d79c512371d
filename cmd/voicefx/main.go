// Command voicefx renders and plays synthetic voice material through the
// voicefx engine.
//
// Usage:
//
//	voicefx [flags] <command> [args]
//
// Commands:
//
//	presets  - list the built-in presets
//	config   - print the effective settings as YAML
//	analyze  - render a test signal through a preset and print measurements
//	play     - stream a synthetic voice through a preset to the speakers
//
// Examples:
//
//	voicefx presets
//	voicefx analyze --preset stadium --source impulse --duration 4s
//	voicefx --config voicefx.yaml play --source vowel
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Package engine is the real-time entry point of voicefx.
//
// An Engine runs one named preset, a fixed effect chain built for the
// engine's sample rate, followed by a smoothed master gain and a hard
// ±0.98 output clamp:
//
//	eng, err := engine.New(48000, engine.WithPreset(engine.PresetPodcast))
//	if err != nil {
//		return err
//	}
//	eng.SetMasterVolume(1.2)
//	eng.Process(buf) // on the audio thread, once per device buffer
//
// Switching presets builds and prepares the new chain on the calling
// goroutine and publishes it atomically, so the audio thread never waits.
// Settings holds the persisted control state and round-trips through YAML.
package engine

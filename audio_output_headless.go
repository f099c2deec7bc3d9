//go:build headless

// audio_output_headless.go - no-op audio output for headless builds

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Grounded on the teacher's audio_backend_headless.go: the headless build
tag swaps out the real device backend so CI and the scenario tests in
spec.md §8 never touch host audio hardware. The mixer keeps running
unread in this mode, which is harmless: AudioChannel.run drops completed
batches into AudioMixer.Push regardless of whether anything drains them.
*/

package main

const audioBackendName = "none (headless)"

func startAudioOutput(mixer *AudioMixer) error {
	return nil
}

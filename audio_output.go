//go:build !headless

// audio_output.go - oto v3 audio output backend

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Grounded on the teacher's audio_backend_oto.go: open an oto context, wrap
the mixer in an oto.Player, and start it. The teacher buffers samples
behind an atomic pointer and a ring reader; AudioMixer (audio.go) already
implements io.Reader directly over its four channel queues, so this
backend is just the context/player plumbing around it, split into its own
build-tagged file the way the teacher splits real output from the
`headless` stub (audio_output_headless.go) so headless runs never touch
a host audio device.
*/

package main

import "github.com/ebitengine/oto/v3"

const audioBackendName = "oto"

// startAudioOutput opens the default audio device and starts streaming the
// mixer's combined output. Playback runs for the lifetime of the process;
// there is no Stop path since the process exit tears down the device.
func startAudioOutput(mixer *AudioMixer) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   mixerSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return err
	}
	<-ready

	player := ctx.NewPlayer(mixer)
	player.Play()
	return nil
}

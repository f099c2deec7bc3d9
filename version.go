// version.go - build/version banner

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Grounded on the teacher's features.go: a small, sorted list of
compile-time facts about the binary, printed on request rather than on
every run. fox32 has no build-tag feature matrix to report, so this
keeps just the Go/OS/arch identification plus the audio backend, which
is the one thing that does vary by build tag (audio_output.go vs.
audio_output_headless.go).
*/

package main

import (
	"fmt"
	"runtime"
)

// Version identifies this build of fox32.
const Version = "0.1.0"

func printVersion() {
	fmt.Printf("fox32 %s\n", Version)
	fmt.Printf("  Go version:    %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Audio backend: %s\n", audioBackendName)
}

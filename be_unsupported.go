//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// fox32's framebuffer and MMIO register packing assume little-endian
// byte order throughout (memory.go, audio.go).
var _ = "fox32 requires a little-endian architecture" + 1

// video.go - ebiten-backed window, frame pump, and input routing

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Grounded on the teacher's video_backend_ebiten.go: an ebiten.Game whose
Update is driven by ebiten's own frame clock and whose Draw blits a host
pixel buffer straight onto the screen image. Here Update is also the
host frame pump of spec.md §2/§5: it posts the vsync interrupt and
forwards keyboard/mouse state into the matching MMIO devices. Draw then
composites the guest framebuffer and overlays (compositor.go) and
presents the result.
*/

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game implements ebiten.Game, presenting the composited fox32 display.
type Game struct {
	mem      *Memory
	overlays *Overlays
	fabric   *InterruptFabric
	keyboard *Keyboard
	mouse    *Mouse
	shutdown chan struct{}

	frame *ebiten.Image
	quit  bool
}

// NewGame wires a presentable frame pump over the shared machine state.
func NewGame(mem *Memory, overlays *Overlays, fabric *InterruptFabric, keyboard *Keyboard, mouse *Mouse, shutdown chan struct{}) *Game {
	return &Game{
		mem:      mem,
		overlays: overlays,
		fabric:   fabric,
		keyboard: keyboard,
		mouse:    mouse,
		shutdown: shutdown,
		frame:    ebiten.NewImage(FramebufferWidth, FramebufferHeight),
	}
}

// Update is ebiten's per-frame callback; it is also the host frame pump
// (spec.md §5 "vsync"): post the vsync interrupt, then read input, before
// handing control back to Draw to present the composited frame.
func (g *Game) Update() error {
	select {
	case <-g.shutdown:
		return ebiten.Termination
	default:
	}

	g.fabric.PostRequest(VectorVsync)
	g.routeInput()

	if g.quit {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) routeInput() {
	for _, r := range ebiten.AppendInputChars(nil) {
		g.keyboard.Push(uint8(r), true)
	}
	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		g.keyboard.Push(scancodeFor(key), true)
	}
	for _, key := range inpututil.AppendJustReleasedKeys(nil) {
		g.keyboard.Push(scancodeFor(key), false)
	}

	mx, my := ebiten.CursorPosition()
	if mx < 0 {
		mx = 0
	}
	if my < 0 {
		my = 0
	}
	g.mouse.SetPosition(uint32(mx), uint32(my))
	g.mouse.SetHeld(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.mouse.Clicked()
	}
}

// scancodeFor maps an ebiten key to an 8-bit scancode. fox32's published
// keyboard scancode table is an external input (spec.md §6); this maps
// the low byte of ebiten's own key constant, which is stable within a
// build and sufficient for guest software that echoes scancodes back to
// the host rather than matching a fixed PC-style table.
func scancodeFor(key ebiten.Key) uint8 {
	return uint8(key)
}

// Draw composites the current guest framebuffer and overlays and
// presents it (spec.md §4.5).
func (g *Game) Draw(screen *ebiten.Image) {
	pixels := Composite(g.mem, g.overlays)
	g.frame.WritePixels(pixels)
	screen.DrawImage(g.frame, nil)
}

// Layout fixes the logical screen size to the fox32 framebuffer
// dimensions regardless of window size (spec.md §6).
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return FramebufferWidth, FramebufferHeight
}

// RunWindowed opens the ebiten window and blocks until the guest or the
// user requests shutdown.
func RunWindowed(g *Game, title string) error {
	ebiten.SetWindowSize(FramebufferWidth, FramebufferHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(g)
}

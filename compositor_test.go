package main

import "testing"

func TestCompositeSnapshotsFramebuffer(t *testing.T) {
	// Scenario 1 (spec.md §8): a byte pattern written at FRAMEBUFFER_BASE
	// must appear unchanged in the composited snapshot.
	fabric := NewInterruptFabric()
	mem := NewMemory(DefaultRAMSize, nil, 16, fabric)
	mem.WriteBytes(FramebufferBase, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	overlays := NewOverlays()

	fb := Composite(mem, overlays)
	want := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	for i := range want {
		if fb[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, fb[i], want[i])
		}
	}
}

func TestCompositeOverlayClipsAtRightEdge(t *testing.T) {
	// Scenario 5 (spec.md §8): an overlay at x=635, width=16 is clipped to
	// columns 635..639; nothing past column 639 is touched, and the source
	// read stays aligned (the REDESIGN FLAG fix, compositor.go).
	fabric := NewInterruptFabric()
	mem := NewMemory(DefaultRAMSize, nil, 16, fabric)
	overlays := NewOverlays()

	const pixPtr = 0x100000
	red := []byte{0xFF, 0x00, 0x00, 0xFF} // R, G, B, A (alpha 255)
	pixels := make([]byte, 16*16*4)
	for row := 0; row < 16; row++ {
		for col := 0; col < 16; col++ {
			copy(pixels[(row*16+col)*4:], red)
		}
	}
	mem.WriteBytes(pixPtr, pixels)

	overlays.MMIOWrite(OverlayControlReg, Width32, OverlayEnabled)
	overlays.MMIOWrite(OverlayXReg, Width32, 635)
	overlays.MMIOWrite(OverlayYReg, Width32, 0)
	overlays.MMIOWrite(OverlayWidthHeightReg, Width32, 16<<16|16)
	overlays.MMIOWrite(OverlayFBPointerReg, Width32, pixPtr)

	fb := Composite(mem, overlays)

	for row := 0; row < 16; row++ {
		for col := 635; col < FramebufferWidth; col++ {
			off := row*FramebufferStride + col*4
			if fb[off] != 0xFF || fb[off+1] != 0x00 || fb[off+2] != 0x00 || fb[off+3] != 0xFF {
				t.Fatalf("row %d col %d = %v, want red", row, col, fb[off:off+4])
			}
		}
	}

	// Nothing past column 639 exists in a 640-wide framebuffer; verify the
	// last row/column in bounds is the last one touched by asserting the
	// composited buffer length matches exactly one frame, no overrun.
	if len(fb) != FramebufferBytes {
		t.Fatalf("composited buffer length = %d, want %d", len(fb), FramebufferBytes)
	}
}

func TestCompositeHigherOverlayIndexOnTop(t *testing.T) {
	fabric := NewInterruptFabric()
	mem := NewMemory(DefaultRAMSize, nil, 16, fabric)
	overlays := NewOverlays()

	const lowPtr, highPtr = 0x100000, 0x200000
	blue := []byte{0x00, 0x00, 0xFF, 0xFF}
	green := []byte{0x00, 0xFF, 0x00, 0xFF}
	px := func(c []byte) []byte {
		buf := make([]byte, 4*4*4)
		for i := 0; i < 16; i++ {
			copy(buf[i*4:], c)
		}
		return buf
	}
	mem.WriteBytes(lowPtr, px(blue))
	mem.WriteBytes(highPtr, px(green))

	overlays.MMIOWrite(0*OverlayStride+OverlayControlReg, Width32, OverlayEnabled)
	overlays.MMIOWrite(0*OverlayStride+OverlayWidthHeightReg, Width32, 4<<16|4)
	overlays.MMIOWrite(0*OverlayStride+OverlayFBPointerReg, Width32, lowPtr)

	overlays.MMIOWrite(1*OverlayStride+OverlayControlReg, Width32, OverlayEnabled)
	overlays.MMIOWrite(1*OverlayStride+OverlayWidthHeightReg, Width32, 4<<16|4)
	overlays.MMIOWrite(1*OverlayStride+OverlayFBPointerReg, Width32, highPtr)

	fb := Composite(mem, overlays)
	if fb[0] != 0x00 || fb[1] != 0xFF || fb[2] != 0x00 {
		t.Fatalf("top-left pixel = %v, want green (slot 1 over slot 0)", fb[0:4])
	}
}

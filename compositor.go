// compositor.go - framebuffer + overlay compositing (host side, pure logic)

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

spec.md §4.5: each host display frame snapshots the framebuffer region of
RAM, then alpha-composites enabled overlay slots 0..31 in ascending index
(higher index on top) with a binary alpha test. Overlays are clipped to
the screen on the right and bottom.

This fixes the REDESIGN FLAG in spec.md §9: the original blitter shrank
the overlay's on-screen width by stepping through a flattened byte index,
which also misaligned the source read when clipped on the right. Walking
source and destination as independent (row, col) pairs with their own
strides makes right/bottom clipping just "copy fewer columns/rows" with
no misalignment — by construction there is nothing left to get wrong on
the right edge.
*/

package main

// Composite renders one frame: the framebuffer snapshot with all enabled
// overlays blended on top, ascending index order.
func Composite(mem *Memory, overlays *Overlays) []byte {
	fb, ok := mem.ReadBytes(FramebufferBase, FramebufferBytes)
	if !ok {
		fb = make([]byte, FramebufferBytes)
	}
	slots := overlays.Snapshot()
	for i := 0; i < OverlayCount; i++ {
		if slots[i].Enabled {
			blitOverlay(fb, slots[i], mem)
		}
	}
	return fb
}

func blitOverlay(fb []byte, s OverlaySlot, mem *Memory) {
	if s.Width == 0 || s.Height == 0 {
		return
	}
	x, y := int(s.X), int(s.Y)
	if x >= FramebufferWidth || y >= FramebufferHeight {
		return
	}

	width, height := int(s.Width), int(s.Height)
	if x+width > FramebufferWidth {
		width = FramebufferWidth - x
	}
	if y+height > FramebufferHeight {
		height = FramebufferHeight - y
	}
	if width <= 0 || height <= 0 {
		return
	}

	srcStride := int(s.Width) * 4
	pixels, ok := mem.ReadBytes(s.FBPointer, srcStride*int(s.Height))
	if !ok {
		return
	}

	for row := 0; row < height; row++ {
		srcRow := row * srcStride
		dstRow := (y+row)*FramebufferStride + x*4
		for col := 0; col < width; col++ {
			so := srcRow + col*4
			do := dstRow + col*4
			if pixels[so+3] > 0 {
				copy(fb[do:do+4], pixels[so:so+4])
			}
		}
	}
}

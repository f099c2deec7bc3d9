// keyboard.go - bounded key-event FIFO plus a host-clipboard paste helper

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Grounded on spec.md §4.3 "Keyboard": the host input writer pushes packed
scancode+state words into a bounded FIFO; the guest pops the head via
MMIO. Overflow drops the incoming event, a documented lossy
behaviour. The clipboard-paste register is this repository's domain-stack
wiring for golang.design/x/clipboard (SPEC_FULL.md §4), mirroring how the
teacher's video_backend_ebiten.go exposes host clipboard text to the
guest on demand.
*/

package main

import (
	"sync"

	"golang.design/x/clipboard"
)

// Keyboard register offsets (SPEC_FULL.md §5).
const (
	KeyPopReg           = 0x000
	KeyStatusReg        = 0x004
	ClipboardCommandReg = 0x008
	ClipboardByteReg    = 0x00C
	ClipboardStatusReg  = 0x010
)

const KeyboardQueueCapacity = 64

const ClipboardCommandLoad = 1

const ClipboardStatusHasData = 1 << 0

// Keyboard is spec.md §4.3's bounded-FIFO key event device.
type Keyboard struct {
	mu        sync.Mutex
	queue     []uint32
	clipInit  bool
	clipOK    bool
	clipboard []byte
}

func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Push packs scancode and the press/release bit into one word and enqueues
// it; called from the host input thread. Drops the event if the queue is
// already at capacity (spec.md §4.3, "Dropping events under overflow is a
// documented lossy behavior").
func (k *Keyboard) Push(scancode uint8, pressed bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.queue) >= KeyboardQueueCapacity {
		return
	}
	var state uint32
	if pressed {
		state = 1
	}
	k.queue = append(k.queue, uint32(scancode)|state<<8)
}

func (k *Keyboard) MMIORead(offset uint32, _ Width) uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	switch offset {
	case KeyPopReg:
		if len(k.queue) == 0 {
			return 0
		}
		v := k.queue[0]
		k.queue = k.queue[1:]
		return v
	case KeyStatusReg:
		if len(k.queue) > 0 {
			return 1
		}
		return 0
	case ClipboardByteReg:
		if len(k.clipboard) == 0 {
			return 0
		}
		b := k.clipboard[0]
		k.clipboard = k.clipboard[1:]
		return uint32(b)
	case ClipboardStatusReg:
		if len(k.clipboard) > 0 {
			return ClipboardStatusHasData
		}
		return 0
	}
	return 0
}

func (k *Keyboard) MMIOWrite(offset uint32, _ Width, value uint32) {
	if offset != ClipboardCommandReg || value != ClipboardCommandLoad {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.clipInit {
		k.clipOK = clipboard.Init() == nil
		k.clipInit = true
	}
	if !k.clipOK {
		k.clipboard = nil
		return
	}
	k.clipboard = clipboard.Read(clipboard.FmtText)
}

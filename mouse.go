// mouse.go - pointer position and latch-cleared event register

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

spec.md §4.3 "Mouse": host writes x/y and latch bits; the guest reads
(x, y) freely, and reading the event register atomically clears the
clicked/released latches.
*/

package main

import "sync"

// Mouse register offsets (SPEC_FULL.md §5).
const (
	MouseXReg      = 0x000
	MouseYReg      = 0x004
	MouseEventsReg = 0x008
)

const (
	MouseHeld     = 1 << 0
	MouseClicked  = 1 << 1
	MouseReleased = 1 << 2
)

// Mouse is spec.md §4.3's pointer device.
type Mouse struct {
	mu                        sync.Mutex
	x, y                      uint32
	held, clicked, released bool
}

func NewMouse() *Mouse {
	return &Mouse{}
}

// SetPosition updates the pointer location; called from the host input
// thread once per frame.
func (m *Mouse) SetPosition(x, y uint32) {
	m.mu.Lock()
	m.x, m.y = x, y
	m.mu.Unlock()
}

// SetHeld updates the button-down state and latches a release edge when
// the button transitions from held to not-held.
func (m *Mouse) SetHeld(held bool) {
	m.mu.Lock()
	if m.held && !held {
		m.released = true
	}
	m.held = held
	m.mu.Unlock()
}

// Clicked latches a button-down edge; called on press.
func (m *Mouse) Clicked() {
	m.mu.Lock()
	m.clicked = true
	m.mu.Unlock()
}

func (m *Mouse) MMIORead(offset uint32, _ Width) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch offset {
	case MouseXReg:
		return m.x
	case MouseYReg:
		return m.y
	case MouseEventsReg:
		var v uint32
		if m.held {
			v |= MouseHeld
		}
		if m.clicked {
			v |= MouseClicked
		}
		if m.released {
			v |= MouseReleased
		}
		m.clicked = false
		m.released = false
		return v
	}
	return 0
}

func (m *Mouse) MMIOWrite(offset uint32, _ Width, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch offset {
	case MouseXReg:
		m.x = value
	case MouseYReg:
		m.y = value
	case MouseEventsReg:
		m.held = value&MouseHeld != 0
		if value&MouseClicked != 0 {
			m.clicked = true
		}
		if value&MouseReleased != 0 {
			m.released = true
		}
	}
}

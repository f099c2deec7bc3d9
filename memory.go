// memory.go - RAM/ROM backing store and bus-fault generation

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Memory owns the two byte-addressable regions of the machine: writable RAM
(which also hosts the framebuffer and the interrupt descriptor table) and
read-only ROM. All multi-byte access is little-endian and transactional: a
width-4 access that would straddle the RAM/ROM boundary, or land partly
outside both regions, raises BusFault before any byte is written.

Thread safety follows the teacher's MachineBus: a single sync.RWMutex
guards the whole backing store, short critical section per transaction
(spec.md §5, "RAM" row).
*/

package main

import (
	"encoding/binary"
	"log"
	"sync"
)

// Fixed physical address map for this fox32 instance (SPEC_FULL.md §5).
const (
	RAMBase           uint32 = 0x00000000
	FramebufferBase   uint32 = 0x02000000
	FramebufferWidth         = 640
	FramebufferHeight        = 480
	FramebufferStride        = FramebufferWidth * 4
	FramebufferBytes         = FramebufferWidth * FramebufferHeight * 4

	IDTBase     uint32 = 0x00000000
	IDTEntries         = 256

	ROMBase uint32 = 0x80000000

	DefaultRAMSize = 64 * 1024 * 1024
	DefaultROMSize = 16 * 1024 * 1024
)

// Memory is the RAM/ROM backing store (spec.md §4.1).
type Memory struct {
	mu  sync.RWMutex
	ram []byte
	rom []byte

	faults *InterruptFabric
}

// NewMemory allocates RAM of ramSize bytes and loads rom (truncated to
// romMax bytes with a diagnostic if it overflows, spec.md §6).
func NewMemory(ramSize int, rom []byte, romMax int, faults *InterruptFabric) *Memory {
	if len(rom) > romMax {
		log.Printf("fox32: ROM image is %d bytes; truncated to %d", len(rom), romMax)
		rom = rom[:romMax]
	}
	m := &Memory{
		ram:    make([]byte, ramSize),
		rom:    make([]byte, romMax),
		faults: faults,
	}
	copy(m.rom, rom)
	return m
}

// RAM returns a read-only view of RAM for host-side consumers (the
// framebuffer compositor, disk-image verification in tests). Callers must
// not retain the slice across a write; use RAMSnapshot for copies taken
// outside the lock.
func (m *Memory) RAM() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ram
}

// RAMSnapshot copies length bytes starting at addr out of RAM while
// holding the read lock, for host code that must not race the CPU.
func (m *Memory) RAMSnapshot(addr uint32, length int) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]byte, length)
	copy(out, m.ram[addr:int(addr)+length])
	return out
}

func (m *Memory) fault() {
	if m.faults != nil {
		m.faults.PostException(ExceptionBusFault)
	}
}

// span classifies an access of width bytes at addr: it returns the backing
// slice and a region-relative offset, or ok=false if the whole access does
// not fit entirely within RAM or entirely within ROM.
func (m *Memory) span(addr uint32, width uint32) (buf []byte, off uint32, writable, ok bool) {
	if addr >= RAMBase && uint64(addr)+uint64(width) <= uint64(RAMBase)+uint64(len(m.ram)) {
		return m.ram, addr - RAMBase, true, true
	}
	if addr >= ROMBase && uint64(addr)+uint64(width) <= uint64(ROMBase)+uint64(len(m.rom)) {
		return m.rom, addr - ROMBase, false, true
	}
	return nil, 0, false, false
}

func (m *Memory) Read8(addr uint32) uint8 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buf, off, _, ok := m.span(addr, 1)
	if !ok {
		m.fault()
		return 0
	}
	return buf[off]
}

func (m *Memory) Read16(addr uint32) uint16 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buf, off, _, ok := m.span(addr, 2)
	if !ok {
		m.fault()
		return 0
	}
	return binary.LittleEndian.Uint16(buf[off : off+2])
}

func (m *Memory) Read32(addr uint32) uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buf, off, _, ok := m.span(addr, 4)
	if !ok {
		m.fault()
		return 0
	}
	return binary.LittleEndian.Uint32(buf[off : off+4])
}

func (m *Memory) Write8(addr uint32, v uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, off, writable, ok := m.span(addr, 1)
	if !ok || !writable {
		m.fault()
		return
	}
	buf[off] = v
}

func (m *Memory) Write16(addr uint32, v uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, off, writable, ok := m.span(addr, 2)
	if !ok || !writable {
		m.fault()
		return
	}
	binary.LittleEndian.PutUint16(buf[off:off+2], v)
}

func (m *Memory) Write32(addr uint32, v uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, off, writable, ok := m.span(addr, 4)
	if !ok || !writable {
		m.fault()
		return
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

// TryReadWidth reads without posting a fault on failure, used by the CPU's
// operand-fetch path so it can abort an in-progress instruction before any
// architectural state changes (spec.md §4.4).
func (m *Memory) TryReadWidth(addr uint32, w Width) (uint32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buf, off, _, ok := m.span(addr, w.bytes())
	if !ok {
		return 0, false
	}
	switch w {
	case Width8:
		return uint32(buf[off]), true
	case Width16:
		return uint32(binary.LittleEndian.Uint16(buf[off : off+2])), true
	default:
		return binary.LittleEndian.Uint32(buf[off : off+4]), true
	}
}

// TryWriteWidth writes without posting a fault on failure; see TryReadWidth.
func (m *Memory) TryWriteWidth(addr uint32, w Width, v uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, off, writable, ok := m.span(addr, w.bytes())
	if !ok || !writable {
		return false
	}
	switch w {
	case Width8:
		buf[off] = uint8(v)
	case Width16:
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(v))
	default:
		binary.LittleEndian.PutUint32(buf[off:off+4], v)
	}
	return true
}

// DMACopy transfers length bytes from src to dst, obeying the same mapping
// and write-protection rules as ordinary writes (spec.md §4.1). The disk
// and audio devices move their data with WriteBytes/ReadBytes instead.
func (m *Memory) DMACopy(dst, src uint32, length int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	srcBuf, srcOff, _, srcOK := m.span(src, uint32(length))
	dstBuf, dstOff, writable, dstOK := m.span(dst, uint32(length))
	if !srcOK || !dstOK || !writable {
		m.fault()
		return false
	}
	copy(dstBuf[dstOff:int(dstOff)+length], srcBuf[srcOff:int(srcOff)+length])
	return true
}

// WriteBytes stores raw bytes into RAM at addr, bypassing width splitting;
// used by the disk controller to land whole sectors in one lock acquisition.
func (m *Memory) WriteBytes(addr uint32, data []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, off, writable, ok := m.span(addr, uint32(len(data)))
	if !ok || !writable {
		m.fault()
		return false
	}
	copy(buf[off:int(off)+len(data)], data)
	return true
}

// ReadBytes copies length bytes out of RAM or ROM at addr.
func (m *Memory) ReadBytes(addr uint32, length int) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buf, off, _, ok := m.span(addr, uint32(length))
	if !ok {
		m.fault()
		return nil, false
	}
	out := make([]byte, length)
	copy(out, buf[off:int(off)+length])
	return out, true
}

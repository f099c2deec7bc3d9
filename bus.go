// bus.go - physical address space dispatch: RAM/ROM vs. memory-mapped devices

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Bus is the single mutable window into shared guest state from the CPU's
perspective (spec.md §4.2). The MMIO table is fixed at construction; there
is no runtime registration, mirroring the teacher's MachineBus I/O region
map (machine_bus.go) generalised from byte-wide page lookups to a small
fixed range table, since fox32's MMIO footprint is orders of magnitude
smaller than the teacher's video/audio address space.
*/

package main

// MMIOBase sits just below ROM, per SPEC_FULL.md §5.
const (
	MMIOBase uint32 = ROMBase - MMIOSize
	MMIOSize uint32 = 0x10000
)

// MMIODevice is the register-file contract every memory-mapped peripheral
// implements (spec.md §4.3).
type MMIODevice interface {
	MMIORead(offset uint32, width Width) uint32
	MMIOWrite(offset uint32, width Width, value uint32)
}

type mmioRegion struct {
	start, end uint32 // inclusive, absolute addresses
	device     MMIODevice
}

// Bus routes reads/writes by address to Memory or the owning device.
type Bus struct {
	mem     *Memory
	regions []mmioRegion
	faults  *InterruptFabric
}

// NewBus constructs a bus over mem; devices are attached with Map before
// the CPU starts (spec.md §3, "Lifecycle": no dynamic hot-plugging).
func NewBus(mem *Memory, faults *InterruptFabric) *Bus {
	return &Bus{mem: mem, faults: faults}
}

// Map attaches dev to the inclusive range [start, end] of the MMIO window.
func (b *Bus) Map(start, end uint32, dev MMIODevice) {
	b.regions = append(b.regions, mmioRegion{start: start, end: end, device: dev})
}

func (b *Bus) find(addr uint32) (mmioRegion, bool) {
	for _, r := range b.regions {
		if addr >= r.start && addr <= r.end {
			return r, true
		}
	}
	return mmioRegion{}, false
}

// covers reports whether the whole [addr, addr+width) access stays
// within one mapped device's range; a straddling access is a bus fault,
// mirroring Memory's region-boundary rule (spec.md §4.1/§4.2).
func (r mmioRegion) covers(addr uint32, width uint32) bool {
	return addr >= r.start && uint64(addr)+uint64(width)-1 <= uint64(r.end)
}

func (b *Bus) fault() {
	if b.faults != nil {
		b.faults.PostException(ExceptionBusFault)
	}
}

func (b *Bus) Read8(addr uint32) uint8 {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, 1) {
			b.fault()
			return 0
		}
		return uint8(r.device.MMIORead(addr-r.start, Width8))
	}
	return b.mem.Read8(addr)
}

func (b *Bus) Read16(addr uint32) uint16 {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, 2) {
			b.fault()
			return 0
		}
		return uint16(r.device.MMIORead(addr-r.start, Width16))
	}
	return b.mem.Read16(addr)
}

func (b *Bus) Read32(addr uint32) uint32 {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, 4) {
			b.fault()
			return 0
		}
		return r.device.MMIORead(addr-r.start, Width32)
	}
	return b.mem.Read32(addr)
}

func (b *Bus) Write8(addr uint32, v uint8) {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, 1) {
			b.fault()
			return
		}
		r.device.MMIOWrite(addr-r.start, Width8, uint32(v))
		return
	}
	b.mem.Write8(addr, v)
}

func (b *Bus) Write16(addr uint32, v uint16) {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, 2) {
			b.fault()
			return
		}
		r.device.MMIOWrite(addr-r.start, Width16, uint32(v))
		return
	}
	b.mem.Write16(addr, v)
}

func (b *Bus) Write32(addr uint32, v uint32) {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, 4) {
			b.fault()
			return
		}
		r.device.MMIOWrite(addr-r.start, Width32, v)
		return
	}
	b.mem.Write32(addr, v)
}

// TryReadWidth/TryWriteWidth read or write without posting a fault on
// failure; the CPU's operand-fetch path uses these so it can abort an
// instruction before any architectural state changes instead of leaving a
// fault event behind for a half-executed instruction (spec.md §4.4).
func (b *Bus) TryReadWidth(addr uint32, w Width) (uint32, bool) {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, w.bytes()) {
			return 0, false
		}
		return r.device.MMIORead(addr-r.start, w), true
	}
	return b.mem.TryReadWidth(addr, w)
}

func (b *Bus) TryWriteWidth(addr uint32, w Width, v uint32) bool {
	if r, ok := b.find(addr); ok {
		if !r.covers(addr, w.bytes()) {
			return false
		}
		r.device.MMIOWrite(addr-r.start, w, v)
		return true
	}
	return b.mem.TryWriteWidth(addr, w, v)
}

// ReadWidth/WriteWidth dispatch by the ISA's runtime Width value, used by
// the CPU's operand fetch/store path (cpu.go).
func (b *Bus) ReadWidth(addr uint32, w Width) uint32 {
	switch w {
	case Width8:
		return uint32(b.Read8(addr))
	case Width16:
		return uint32(b.Read16(addr))
	default:
		return b.Read32(addr)
	}
}

func (b *Bus) WriteWidth(addr uint32, w Width, v uint32) {
	switch w {
	case Width8:
		b.Write8(addr, uint8(v))
	case Width16:
		b.Write16(addr, uint16(v))
	default:
		b.Write32(addr, v)
	}
}

// interrupt.go - interrupt/exception fabric: MPSC queues feeding the CPU

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.
*/

package main

import "sync"

// ExceptionKind enumerates the synchronous faults the CPU and bus can raise.
type ExceptionKind uint8

const (
	ExceptionDivideByZero ExceptionKind = iota
	ExceptionInvalidOpcode
	ExceptionBusFault
	ExceptionDebug
)

// Fixed interrupt vectors for this MMIO/IDT instance (SPEC_FULL.md §5).
const (
	VectorDivideByZero uint8 = 0x00
	VectorInvalidOpcode uint8 = 0x01
	VectorBusFault      uint8 = 0x02
	VectorDebug         uint8 = 0x03
	VectorDiskComplete  uint8 = 0x10
	VectorAudioBase     uint8 = 0x11 // channels 0..3 use 0x11..0x14
	VectorVsync         uint8 = 0xFF
)

var exceptionVector = [...]uint8{
	ExceptionDivideByZero: VectorDivideByZero,
	ExceptionInvalidOpcode: VectorInvalidOpcode,
	ExceptionBusFault:      VectorBusFault,
	ExceptionDebug:         VectorDebug,
}

// Interrupt is either an asynchronous Request or a synchronous Exception.
// Exceptions always take priority over requests at an instruction boundary
// (spec.md §9, "Interrupt channel").
type Interrupt struct {
	isException bool
	vector      uint8
	kind        ExceptionKind
}

// Request builds an externally-raised interrupt for the given vector.
func Request(vector uint8) Interrupt {
	return Interrupt{vector: vector}
}

// Except builds a CPU/bus-raised synchronous exception.
func Except(kind ExceptionKind) Interrupt {
	return Interrupt{isException: true, vector: exceptionVector[kind], kind: kind}
}

func (i Interrupt) Vector() uint8 { return i.vector }

// InterruptFabric is the multi-producer, single-consumer queue pair the CPU
// polls between instructions. Two internal FIFOs back it, one for
// exceptions and one for requests, so the consumer can always prefer
// exceptions without scanning a merged queue.
type InterruptFabric struct {
	mu         sync.Mutex
	exceptions []Interrupt
	requests   []Interrupt
	notify     chan struct{}
}

// NewInterruptFabric constructs an empty fabric.
func NewInterruptFabric() *InterruptFabric {
	return &InterruptFabric{notify: make(chan struct{}, 1)}
}

func (f *InterruptFabric) wake() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// PostException enqueues a synchronous exception. Safe for concurrent callers.
func (f *InterruptFabric) PostException(kind ExceptionKind) {
	f.mu.Lock()
	f.exceptions = append(f.exceptions, Except(kind))
	f.mu.Unlock()
	f.wake()
}

// PostRequest enqueues an asynchronous interrupt request. Safe for
// concurrent callers (devices, the host frame pump).
func (f *InterruptFabric) PostRequest(vector uint8) {
	f.mu.Lock()
	f.requests = append(f.requests, Request(vector))
	f.mu.Unlock()
	f.wake()
}

// TryRecv pops the next pending interrupt without blocking, exceptions
// first. Returns ok=false if nothing is pending.
func (f *InterruptFabric) TryRecv() (Interrupt, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.exceptions) > 0 {
		i := f.exceptions[0]
		f.exceptions = f.exceptions[1:]
		return i, true
	}
	if len(f.requests) > 0 {
		i := f.requests[0]
		f.requests = f.requests[1:]
		return i, true
	}
	return Interrupt{}, false
}

// RecvOrShutdown blocks until an interrupt is available or shutdown fires,
// used by the CPU while halted (spec.md §5, "Suspension points").
func (f *InterruptFabric) RecvOrShutdown(shutdown <-chan struct{}) (Interrupt, bool) {
	for {
		if i, ok := f.TryRecv(); ok {
			return i, true
		}
		select {
		case <-f.notify:
			continue
		case <-shutdown:
			return Interrupt{}, false
		}
	}
}

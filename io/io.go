// Package io provides memory-mapped peripherals for the 6502 emulator.
// It includes read-only ROM images (Rom), shadow RAM windows (Ram), and
// the Apple-1 style terminal (Display and Keyboard).
package io

import (
	"iter"

	"github.com/ezrec/mos6502/memory"
)

// Peripheral defines the interface for all memory-mapped devices.
type Peripheral interface {
	memory.Overlay
	// Reset returns the device to its power-on state.
	Reset()
	// Defines returns an iter of assembler equates for the device.
	Defines() iter.Seq2[string, string]
}

// Package memory implements the 64KB address space of the 6502, with
// memory-mapped I/O provided by overlays.
//
// Every address is always readable and writable. Cells which have never
// been written read as zero. A nil *Memory is an empty bus: reads return
// zero and writes are dropped.
package memory

import (
	"iter"
	"log"
	"slices"
)

const (
	RESET_VECTOR = uint16(0xfffc) // Reset vector, low byte first.
	IRQ_VECTOR   = uint16(0xfffe) // IRQ/BRK vector, low byte first.
	STACK_PAGE   = uint16(0x0100) // Base of the hardware stack page.
)

// Overlay intercepts reads and writes to an inclusive address range.
type Overlay interface {
	// Range returns the first and last address handled, inclusive.
	Range() (start, end uint16)
	// Read returns the byte visible at address.
	Read(address uint16) byte
	// Write stores a byte at address.
	Write(address uint16, value byte)
}

// Span is an inclusive address range, embeddable by overlays.
type Span struct {
	Start uint16
	End   uint16
}

// Range returns the inclusive span.
func (sp Span) Range() (start, end uint16) {
	return sp.Start, sp.End
}

// Contains returns true if address is within the span.
func (sp Span) Contains(address uint16) bool {
	return address >= sp.Start && address <= sp.End
}

// Memory is a sparse 64KB address space with an ordered overlay list.
type Memory struct {
	Verbose bool        // Set to enable read/write tracing.
	Logger  *log.Logger // Trace destination; nil uses the standard logger.

	cells    map[uint16]byte
	overlays []Overlay
}

// NewMemory creates an empty address space.
func NewMemory() (mem *Memory) {
	mem = &Memory{
		cells: make(map[uint16]byte),
	}

	return
}

func (mem *Memory) logf(format string, args ...any) {
	if !mem.Verbose {
		return
	}
	if mem.Logger != nil {
		mem.Logger.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}

// RegisterOverlay appends an overlay. Earlier registrations win when ranges overlap.
func (mem *Memory) RegisterOverlay(overlay Overlay) {
	mem.overlays = append(mem.overlays, overlay)
}

// Overlays iterates the registered overlays in priority order.
func (mem *Memory) Overlays() iter.Seq[Overlay] {
	if mem == nil {
		return slices.Values([]Overlay(nil))
	}
	return slices.Values(mem.overlays)
}

// overlay returns the first overlay containing address, or nil.
func (mem *Memory) overlay(address uint16) Overlay {
	for _, ov := range mem.overlays {
		start, end := ov.Range()
		if address >= start && address <= end {
			return ov
		}
	}

	return nil
}

// WriteByte stores a value at address, through any overlay.
func (mem *Memory) WriteByte(address uint16, value byte) {
	if mem == nil {
		return
	}

	mem.logf("mem: write $%04x <- $%02x", address, value)

	if ov := mem.overlay(address); ov != nil {
		ov.Write(address, value)
		return
	}

	if mem.cells == nil {
		mem.cells = make(map[uint16]byte)
	}
	mem.cells[address] = value
}

// WriteBytes stores data sequentially from address, wrapping at the top of memory.
func (mem *Memory) WriteBytes(address uint16, data []byte) {
	for n, value := range data {
		mem.WriteByte(address+uint16(n), value)
	}
}

// ReadByte returns the value at address, through any overlay.
func (mem *Memory) ReadByte(address uint16) (value byte) {
	if mem == nil {
		return
	}

	if ov := mem.overlay(address); ov != nil {
		value = ov.Read(address)
	} else {
		value = mem.cells[address]
	}

	mem.logf("mem: read  $%04x -> $%02x", address, value)

	return
}

// ReadBytes returns count bytes from address, wrapping at the top of memory.
// A count of zero or less returns an empty slice.
func (mem *Memory) ReadBytes(address uint16, count int) (data []byte) {
	data = make([]byte, max(count, 0))
	for n := range count {
		data[n] = mem.ReadByte(address + uint16(n))
	}

	return
}

// ReadWord returns the little-endian word at address.
func (mem *Memory) ReadWord(address uint16) uint16 {
	lo := mem.ReadByte(address)
	hi := mem.ReadByte(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// writeWord stores a little-endian word at address.
func (mem *Memory) writeWord(address uint16, word uint16) {
	mem.WriteByte(address, byte(word))
	mem.WriteByte(address+1, byte(word>>8))
}

// SetResetVector sets the power-on entry point.
func (mem *Memory) SetResetVector(address uint16) {
	mem.writeWord(RESET_VECTOR, address)
}

// SetIrqVector sets the BRK/IRQ entry point.
func (mem *Memory) SetIrqVector(address uint16) {
	mem.writeWord(IRQ_VECTOR, address)
}

// ResetVector returns the power-on entry point.
func (mem *Memory) ResetVector() uint16 {
	return mem.ReadWord(RESET_VECTOR)
}

// IrqVector returns the BRK/IRQ entry point.
func (mem *Memory) IrqVector() uint16 {
	return mem.ReadWord(IRQ_VECTOR)
}

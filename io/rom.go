package io

import (
	"iter"
	"maps"

	"github.com/ezrec/mos6502/memory"
)

// Rom is a read-only image mapped at a fixed address.
type Rom struct {
	memory.Span
	Data []byte
}

var _ Peripheral = (*Rom)(nil)

// NewRom maps data starting at start.
func NewRom(start uint16, data []byte) (rom *Rom, err error) {
	if len(data) == 0 {
		err = ErrSpanEmpty
		return
	}

	if int(start)+len(data) > 0x10000 {
		err = ErrRomSize
		return
	}

	rom = &Rom{
		Span: memory.Span{Start: start, End: start + uint16(len(data)-1)},
		Data: data,
	}

	return
}

// Reset has no effect on a ROM.
func (rom *Rom) Reset() {
}

// Defines returns an iter of defines for the ROM.
func (rom *Rom) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Read returns the image byte at address, or zero past the end of the image.
func (rom *Rom) Read(address uint16) byte {
	index := int(address) - int(rom.Start)
	if index < 0 || index >= len(rom.Data) {
		return 0
	}

	return rom.Data[index]
}

// Write is ignored.
func (rom *Rom) Write(address uint16, value byte) {
}

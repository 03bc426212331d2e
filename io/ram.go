package io

import (
	"io"
	"iter"
	"maps"

	"github.com/ezrec/mos6502/memory"
)

// Ram is a window of private storage, shadowing the main address space.
// Its contents can be saved and restored as a flat image.
type Ram struct {
	memory.Span
	Data []byte
}

var _ Peripheral = (*Ram)(nil)

// NewRam creates a cleared window over start through end, inclusive.
func NewRam(start, end uint16) (ram *Ram, err error) {
	if end < start {
		err = ErrSpanEmpty
		return
	}

	ram = &Ram{
		Span: memory.Span{Start: start, End: end},
	}
	ram.Clear()

	return
}

func (ram *Ram) size() int {
	return int(ram.End) - int(ram.Start) + 1
}

// Reset leaves the window contents in place, as a processor reset does.
func (ram *Ram) Reset() {
}

// Clear zeroes the window.
func (ram *Ram) Clear() {
	ram.Data = make([]byte, ram.size())
}

// Defines returns an iter of defines for the RAM.
func (ram *Ram) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{})
}

// Read returns the byte stored at address.
func (ram *Ram) Read(address uint16) byte {
	if ram.Data == nil {
		return 0
	}
	return ram.Data[address-ram.Start]
}

// Write stores a byte at address.
func (ram *Ram) Write(address uint16, value byte) {
	if ram.Data == nil {
		ram.Clear()
	}
	ram.Data[address-ram.Start] = value
}

// Unmarshal loads the window from a reader. A short image leaves the
// remainder cleared.
func (ram *Ram) Unmarshal(file io.Reader) (err error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return
	}

	if len(data) > ram.size() {
		err = ErrRamSize
		return
	}

	ram.Clear()
	copy(ram.Data, data)

	return
}

// Marshal writes the entire window to a writer.
func (ram *Ram) Marshal(file io.Writer) (err error) {
	if ram.Data == nil {
		ram.Clear()
	}

	_, err = file.Write(ram.Data)

	return
}

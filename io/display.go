package io

import (
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/mos6502/memory"
)

const (
	DISPLAY_ADDRESS = uint16(0xd012) // Apple-1 display data register.

	displayEscape = byte(0x9b)
	displayReturn = byte(0x0d)
)

// Display is the Apple-1 terminal output register.
//
// Characters are 7-bit ASCII with the high bit set by convention. Carriage
// return is written as a newline. Escape ($9B) is ignored; a plain $1B
// passes through.
type Display struct {
	memory.Span
	Output io.Writer
}

var _ Peripheral = (*Display)(nil)

// NewDisplay creates a display register writing to output.
func NewDisplay(output io.Writer) (dsp *Display) {
	dsp = &Display{
		Span:   memory.Span{Start: DISPLAY_ADDRESS, End: DISPLAY_ADDRESS},
		Output: output,
	}

	return
}

// Reset is not possible on a display.
func (dsp *Display) Reset() {
}

// Defines returns an iter of defines for the display.
func (dsp *Display) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"DSP": fmt.Sprintf("%#x", dsp.Start),
	})
}

// Read always returns zero, so the display is never busy.
func (dsp *Display) Read(address uint16) byte {
	return 0
}

// Write sends a character to the output.
func (dsp *Display) Write(address uint16, value byte) {
	if dsp.Output == nil {
		return
	}

	if value == displayEscape {
		return
	}

	value &= 0x7f
	if value == displayReturn {
		value = '\n'
	}

	dsp.Output.Write([]byte{value})
}

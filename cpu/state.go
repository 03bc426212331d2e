package cpu

import (
	"fmt"
)

// Status register bit positions.
const (
	FLAG_C = uint8(1 << 0) // Carry
	FLAG_Z = uint8(1 << 1) // Zero
	FLAG_I = uint8(1 << 2) // Interrupt disable
	FLAG_D = uint8(1 << 3) // Decimal
	FLAG_B = uint8(1 << 4) // Break
	FLAG_U = uint8(1 << 5) // Unused, always reads as set
	FLAG_V = uint8(1 << 6) // Overflow
	FLAG_N = uint8(1 << 7) // Negative
)

// State is an immutable snapshot of the processor registers.
//
// The With* methods return a modified copy; a State is never changed in place.
type State struct {
	PC uint16 // Program counter. Zero means "load from the reset vector".
	A  uint8  // Accumulator
	X  uint8  // X index
	Y  uint8  // Y index
	S  uint8  // Stack pointer, offset into page 1

	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode
	B bool // Break
	V bool // Overflow
	N bool // Negative
}

// PowerOn returns the state of a freshly powered processor.
func PowerOn() State {
	return State{S: 0xff}
}

// WithPC returns a copy with the program counter replaced.
func (st State) WithPC(pc uint16) State { st.PC = pc; return st }

// WithA returns a copy with the accumulator replaced.
func (st State) WithA(a uint8) State { st.A = a; return st }

// WithX returns a copy with the X index register replaced.
func (st State) WithX(x uint8) State { st.X = x; return st }

// WithY returns a copy with the Y index register replaced.
func (st State) WithY(y uint8) State { st.Y = y; return st }

// WithS returns a copy with the stack pointer replaced.
func (st State) WithS(s uint8) State { st.S = s; return st }

// WithC returns a copy with the carry flag replaced.
func (st State) WithC(c bool) State { st.C = c; return st }

// WithZ returns a copy with the zero flag replaced.
func (st State) WithZ(z bool) State { st.Z = z; return st }

// WithI returns a copy with the interrupt disable flag replaced.
func (st State) WithI(i bool) State { st.I = i; return st }

// WithD returns a copy with the decimal flag replaced.
func (st State) WithD(d bool) State { st.D = d; return st }

// WithB returns a copy with the break flag replaced.
func (st State) WithB(b bool) State { st.B = b; return st }

// WithV returns a copy with the overflow flag replaced.
func (st State) WithV(v bool) State { st.V = v; return st }

// WithN returns a copy with the negative flag replaced.
func (st State) WithN(n bool) State { st.N = n; return st }

// WithNZ sets Z and N from a result byte.
func (st State) WithNZ(result uint8) State {
	st.Z = result == 0
	st.N = (result & 0x80) != 0
	return st
}

// Advance moves the program counter forward, wrapping at 0xffff.
func (st State) Advance(count uint16) State {
	st.PC += count
	return st
}

// Status packs the flags into the status register byte.
func (st State) Status() (sr uint8) {
	sr = FLAG_U
	for _, flag := range []struct {
		set bool
		bit uint8
	}{
		{st.C, FLAG_C}, {st.Z, FLAG_Z}, {st.I, FLAG_I}, {st.D, FLAG_D},
		{st.B, FLAG_B}, {st.V, FLAG_V}, {st.N, FLAG_N},
	} {
		if flag.set {
			sr |= flag.bit
		}
	}

	return
}

// WithStatus unpacks all flags from a status register byte.
func (st State) WithStatus(sr uint8) State {
	st.C = (sr & FLAG_C) != 0
	st.Z = (sr & FLAG_Z) != 0
	st.I = (sr & FLAG_I) != 0
	st.D = (sr & FLAG_D) != 0
	st.B = (sr & FLAG_B) != 0
	st.V = (sr & FLAG_V) != 0
	st.N = (sr & FLAG_N) != 0
	return st
}

// Flags renders the status register as letters, lower case when clear.
func (st State) Flags() string {
	const names = "czidb-vn"
	sr := st.Status()
	out := []byte("NV-BDIZC")
	for n := range 8 {
		if n == 5 {
			continue
		}
		if (sr & (1 << n)) == 0 {
			out[7-n] = names[n]
		}
	}

	return string(out)
}

// String returns a single line register dump.
func (st State) String() string {
	return fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X S=%02X [%s]",
		st.PC, st.A, st.X, st.Y, st.S, st.Flags())
}

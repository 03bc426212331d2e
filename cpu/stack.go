package cpu

import (
	"github.com/ezrec/mos6502/memory"
)

// stackAddress returns the memory address the stack pointer refers to.
func stackAddress(s uint8) uint16 {
	return memory.STACK_PAGE | uint16(s)
}

// Push stores value at the stack pointer, then decrements it.
// The stack pointer wraps from 0x00 to 0xff.
func Push(mem *memory.Memory, st State, value uint8) State {
	mem.WriteByte(stackAddress(st.S), value)
	return st.WithS(st.S - 1)
}

// Pull increments the stack pointer, then reads the value there.
// The stack pointer wraps from 0xff to 0x00.
func Pull(mem *memory.Memory, st State) (State, uint8) {
	st = st.WithS(st.S + 1)
	return st, mem.ReadByte(stackAddress(st.S))
}

// PushWord pushes the high byte, then the low byte.
func PushWord(mem *memory.Memory, st State, value uint16) State {
	st = Push(mem, st, uint8(value>>8))
	return Push(mem, st, uint8(value))
}

// PullWord pulls the low byte, then the high byte.
func PullWord(mem *memory.Memory, st State) (State, uint16) {
	st, lo := Pull(mem, st)
	st, hi := Pull(mem, st)
	return st, uint16(hi)<<8 | uint16(lo)
}

// Peek returns the byte on top of the stack without pulling it.
func Peek(mem *memory.Memory, st State) (value uint8, ok bool) {
	if st.S == 0xff {
		return
	}

	return mem.ReadByte(stackAddress(st.S + 1)), true
}

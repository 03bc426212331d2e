package cpu

// Resolve consumes the operand bytes at the program counter for an
// addressing mode, and returns the effective address and the state with
// the program counter advanced past the operand.
//
// ok is false for implied and accumulator modes, which have no operand.
// For relative mode the address is the branch target; the branch itself
// decides whether to take it.
func (cpu *Cpu) Resolve(st State, mode Mode) (address uint16, ok bool, next State) {
	mem := cpu.Memory
	pc := st.PC
	next = st

	switch mode {
	case MODE_IMPLIED, MODE_ACCUMULATOR:
		return
	case MODE_IMMEDIATE:
		address = pc
	case MODE_ZEROPAGE:
		address = uint16(mem.ReadByte(pc))
	case MODE_ZEROPAGE_X:
		address = uint16(mem.ReadByte(pc) + st.X)
	case MODE_ZEROPAGE_Y:
		address = uint16(mem.ReadByte(pc) + st.Y)
	case MODE_ABSOLUTE:
		address = mem.ReadWord(pc)
	case MODE_ABSOLUTE_X:
		address = mem.ReadWord(pc) + uint16(st.X)
	case MODE_ABSOLUTE_Y:
		address = mem.ReadWord(pc) + uint16(st.Y)
	case MODE_INDIRECT:
		address = mem.ReadWord(mem.ReadWord(pc))
	case MODE_INDIRECT_X:
		pointer := uint16(mem.ReadByte(pc) + st.X)
		address = mem.ReadWord(pointer)
	case MODE_INDIRECT_Y:
		pointer := uint16(mem.ReadByte(pc))
		address = mem.ReadWord(pointer) + uint16(st.Y)
	case MODE_RELATIVE:
		offset := int8(mem.ReadByte(pc))
		address = pc + 1 + uint16(offset)
	default:
		return
	}

	ok = true
	next = st.Advance(mode.Size())

	return
}

package cpu

// semantic applies one instruction family to a state.
type semantic func(cpu *Cpu, st State, address uint16, ok bool) State

var semantics = map[Mnemonic]semantic{
	OP_LDA: (*Cpu).lda,
	OP_LDX: (*Cpu).ldx,
	OP_LDY: (*Cpu).ldy,
	OP_STA: (*Cpu).sta,
	OP_STX: (*Cpu).stx,
	OP_STY: (*Cpu).sty,

	OP_ADC: (*Cpu).adc,
	OP_SBC: (*Cpu).sbc,
	OP_AND: (*Cpu).and,
	OP_ORA: (*Cpu).ora,
	OP_EOR: (*Cpu).eor,
	OP_BIT: (*Cpu).bit,

	OP_ASL: (*Cpu).asl,
	OP_LSR: (*Cpu).lsr,
	OP_ROL: (*Cpu).rol,
	OP_ROR: (*Cpu).ror,

	OP_CMP: (*Cpu).cmp,
	OP_CPX: (*Cpu).cpx,
	OP_CPY: (*Cpu).cpy,

	OP_INC: (*Cpu).inc,
	OP_DEC: (*Cpu).dec,
	OP_INX: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithX(st.X + 1).WithNZ(st.X + 1) },
	OP_INY: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithY(st.Y + 1).WithNZ(st.Y + 1) },
	OP_DEX: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithX(st.X - 1).WithNZ(st.X - 1) },
	OP_DEY: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithY(st.Y - 1).WithNZ(st.Y - 1) },

	OP_BCC: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, !st.C) },
	OP_BCS: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, st.C) },
	OP_BNE: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, !st.Z) },
	OP_BEQ: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, st.Z) },
	OP_BPL: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, !st.N) },
	OP_BMI: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, st.N) },
	OP_BVC: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, !st.V) },
	OP_BVS: func(_ *Cpu, st State, address uint16, _ bool) State { return branch(st, address, st.V) },

	OP_JMP: func(_ *Cpu, st State, address uint16, _ bool) State { return st.WithPC(address) },
	OP_JSR: (*Cpu).jsr,
	OP_RTS: (*Cpu).rts,
	OP_BRK: (*Cpu).brk,
	OP_RTI: (*Cpu).rti,

	OP_PHA: (*Cpu).pha,
	OP_PLA: (*Cpu).pla,
	OP_PHP: (*Cpu).php,
	OP_PLP: (*Cpu).plp,

	OP_TAX: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithX(st.A).WithNZ(st.A) },
	OP_TAY: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithY(st.A).WithNZ(st.A) },
	OP_TSX: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithX(st.S).WithNZ(st.S) },
	OP_TXA: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithA(st.X).WithNZ(st.X) },
	OP_TYA: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithA(st.Y).WithNZ(st.Y) },
	OP_TXS: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithS(st.X) },

	OP_SEC: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithC(true) },
	OP_CLC: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithC(false) },
	OP_SEI: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithI(true) },
	OP_CLI: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithI(false) },
	OP_SED: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithD(true) },
	OP_CLD: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithD(false) },
	OP_CLV: func(_ *Cpu, st State, _ uint16, _ bool) State { return st.WithV(false) },

	OP_NOP: func(_ *Cpu, st State, _ uint16, _ bool) State { return st },
}

func (cpu *Cpu) read(address uint16) uint8 {
	return cpu.Memory.ReadByte(address)
}

func (cpu *Cpu) write(address uint16, value uint8) {
	cpu.Memory.WriteByte(address, value)
}

// Load and store.

func (cpu *Cpu) lda(st State, address uint16, _ bool) State {
	value := cpu.read(address)
	return st.WithA(value).WithNZ(value)
}

func (cpu *Cpu) ldx(st State, address uint16, _ bool) State {
	value := cpu.read(address)
	return st.WithX(value).WithNZ(value)
}

func (cpu *Cpu) ldy(st State, address uint16, _ bool) State {
	value := cpu.read(address)
	return st.WithY(value).WithNZ(value)
}

func (cpu *Cpu) sta(st State, address uint16, _ bool) State {
	cpu.write(address, st.A)
	return st
}

func (cpu *Cpu) stx(st State, address uint16, _ bool) State {
	cpu.write(address, st.X)
	return st
}

func (cpu *Cpu) sty(st State, address uint16, _ bool) State {
	cpu.write(address, st.Y)
	return st
}

// Arithmetic and logic.

// addWithCarry is binary A + value + C. Decimal mode is not applied.
func addWithCarry(st State, value uint8) State {
	var carry uint16
	if st.C {
		carry = 1
	}

	sum := uint16(st.A) + uint16(value) + carry
	result := uint8(sum)
	overflow := (st.A^value)&0x80 == 0 && (st.A^result)&0x80 != 0

	return st.WithA(result).WithC(sum > 0xff).WithV(overflow).WithNZ(result)
}

func (cpu *Cpu) adc(st State, address uint16, _ bool) State {
	return addWithCarry(st, cpu.read(address))
}

// sbc is adc of the one's complement; the carry is the inverted borrow.
func (cpu *Cpu) sbc(st State, address uint16, _ bool) State {
	return addWithCarry(st, ^cpu.read(address))
}

func (cpu *Cpu) and(st State, address uint16, _ bool) State {
	result := st.A & cpu.read(address)
	return st.WithA(result).WithNZ(result)
}

func (cpu *Cpu) ora(st State, address uint16, _ bool) State {
	result := st.A | cpu.read(address)
	return st.WithA(result).WithNZ(result)
}

func (cpu *Cpu) eor(st State, address uint16, _ bool) State {
	result := st.A ^ cpu.read(address)
	return st.WithA(result).WithNZ(result)
}

func (cpu *Cpu) bit(st State, address uint16, _ bool) State {
	value := cpu.read(address)
	return st.WithZ(st.A&value == 0).WithN(value&0x80 != 0).WithV(value&0x40 != 0)
}

// Shifts and rotates.

// modify applies op to the accumulator (ok unset) or to memory, and sets
// C from the bit shifted out and Z, N from the result.
func (cpu *Cpu) modify(st State, address uint16, ok bool, op func(value uint8, carry bool) (uint8, bool)) State {
	var value uint8
	if ok {
		value = cpu.read(address)
	} else {
		value = st.A
	}

	result, carry := op(value, st.C)

	if ok {
		cpu.write(address, result)
	} else {
		st = st.WithA(result)
	}

	return st.WithC(carry).WithNZ(result)
}

func (cpu *Cpu) asl(st State, address uint16, ok bool) State {
	return cpu.modify(st, address, ok, func(value uint8, _ bool) (uint8, bool) {
		return value << 1, value&0x80 != 0
	})
}

func (cpu *Cpu) lsr(st State, address uint16, ok bool) State {
	return cpu.modify(st, address, ok, func(value uint8, _ bool) (uint8, bool) {
		return value >> 1, value&0x01 != 0
	})
}

func (cpu *Cpu) rol(st State, address uint16, ok bool) State {
	return cpu.modify(st, address, ok, func(value uint8, carry bool) (uint8, bool) {
		result := value << 1
		if carry {
			result |= 0x01
		}
		return result, value&0x80 != 0
	})
}

func (cpu *Cpu) ror(st State, address uint16, ok bool) State {
	return cpu.modify(st, address, ok, func(value uint8, carry bool) (uint8, bool) {
		result := value >> 1
		if carry {
			result |= 0x80
		}
		return result, value&0x01 != 0
	})
}

// Compares.

func compare(st State, register uint8, value uint8) State {
	return st.WithC(register >= value).WithNZ(register - value)
}

func (cpu *Cpu) cmp(st State, address uint16, _ bool) State {
	return compare(st, st.A, cpu.read(address))
}

func (cpu *Cpu) cpx(st State, address uint16, _ bool) State {
	return compare(st, st.X, cpu.read(address))
}

func (cpu *Cpu) cpy(st State, address uint16, _ bool) State {
	return compare(st, st.Y, cpu.read(address))
}

// Memory increment and decrement.

func (cpu *Cpu) inc(st State, address uint16, _ bool) State {
	result := cpu.read(address) + 1
	cpu.write(address, result)
	return st.WithNZ(result)
}

func (cpu *Cpu) dec(st State, address uint16, _ bool) State {
	result := cpu.read(address) - 1
	cpu.write(address, result)
	return st.WithNZ(result)
}

// Control flow.

func branch(st State, target uint16, taken bool) State {
	if taken {
		return st.WithPC(target)
	}
	return st
}

func (cpu *Cpu) jsr(st State, address uint16, _ bool) State {
	st = PushWord(cpu.Memory, st, st.PC-1)
	return st.WithPC(address)
}

func (cpu *Cpu) rts(st State, _ uint16, _ bool) State {
	st, address := PullWord(cpu.Memory, st)
	return st.WithPC(address + 1)
}

// brk skips the padding byte after the opcode, and enters the IRQ handler.
func (cpu *Cpu) brk(st State, _ uint16, _ bool) State {
	st = PushWord(cpu.Memory, st, st.PC+1)
	st = Push(cpu.Memory, st, st.Status()|FLAG_B)
	return st.WithPC(cpu.Memory.IrqVector()).WithI(true)
}

func (cpu *Cpu) rti(st State, _ uint16, _ bool) State {
	st, sr := Pull(cpu.Memory, st)
	st, address := PullWord(cpu.Memory, st)
	return st.WithStatus(sr).WithPC(address)
}

// Stack.

func (cpu *Cpu) pha(st State, _ uint16, _ bool) State {
	return Push(cpu.Memory, st, st.A)
}

func (cpu *Cpu) pla(st State, _ uint16, _ bool) State {
	st, value := Pull(cpu.Memory, st)
	return st.WithA(value).WithNZ(value)
}

func (cpu *Cpu) php(st State, _ uint16, _ bool) State {
	return Push(cpu.Memory, st, st.Status()|FLAG_B)
}

func (cpu *Cpu) plp(st State, _ uint16, _ bool) State {
	st, sr := Pull(cpu.Memory, st)
	return st.WithStatus(sr)
}

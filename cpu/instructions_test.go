package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mos6502/memory"
)

const testOperand = uint16(0x0400)

// execute applies a mnemonic with its operand stored at testOperand.
func execute(mn Mnemonic, st State, value uint8) (next State, mem *memory.Memory) {
	mem = memory.NewMemory()
	mem.WriteByte(testOperand, value)

	next = NewCpu(mem).Execute(mn, st, testOperand, true)

	return
}

func TestInstructions_Load(t *testing.T) {
	assert := assert.New(t)

	st, _ := execute(OP_LDA, PowerOn(), 0x80)
	assert.Equal(uint8(0x80), st.A)
	assert.True(st.N)
	assert.False(st.Z)

	st, _ = execute(OP_LDX, PowerOn(), 0x00)
	assert.Equal(uint8(0x00), st.X)
	assert.True(st.Z)

	st, _ = execute(OP_LDY, PowerOn(), 0x7f)
	assert.Equal(uint8(0x7f), st.Y)
	assert.False(st.Z)
	assert.False(st.N)
}

func TestInstructions_Store(t *testing.T) {
	assert := assert.New(t)

	st := PowerOn().WithA(0x11).WithX(0x22).WithY(0x33)

	for mn, value := range map[Mnemonic]uint8{OP_STA: 0x11, OP_STX: 0x22, OP_STY: 0x33} {
		next, mem := execute(mn, st, 0)
		assert.Equal(st, next, mn.String())
		assert.Equal(value, mem.ReadByte(testOperand), mn.String())
	}
}

func TestInstructions_AddSubtract(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		mn         Mnemonic
		a, value   uint8
		carry      bool
		result     uint8
		c, v, n, z bool
	}{
		{OP_ADC, 0x01, 0x01, false, 0x02, false, false, false, false},
		{OP_ADC, 0x01, 0x01, true, 0x03, false, false, false, false},
		{OP_ADC, 0x50, 0x50, false, 0xa0, false, true, true, false},
		{OP_ADC, 0xd0, 0x90, false, 0x60, true, true, false, false},
		{OP_ADC, 0xff, 0x01, false, 0x00, true, false, false, true},
		{OP_ADC, 0x7f, 0x00, true, 0x80, false, true, true, false},
		{OP_SBC, 0x50, 0xf0, true, 0x60, false, false, false, false},
		{OP_SBC, 0x50, 0xb0, true, 0xa0, false, true, true, false},
		{OP_SBC, 0xd0, 0x70, true, 0x60, true, true, false, false},
		{OP_SBC, 0x02, 0x02, true, 0x00, true, false, false, true},
		{OP_SBC, 0x02, 0x02, false, 0xff, false, false, true, false},
		{OP_SBC, 0x00, 0x01, true, 0xff, false, false, true, false},
	}

	for _, entry := range table {
		st := PowerOn().WithA(entry.a).WithC(entry.carry)
		st, _ = execute(entry.mn, st, entry.value)
		assert.Equal(entry.result, st.A, "%v %02x %02x", entry.mn, entry.a, entry.value)
		assert.Equal(entry.c, st.C, "%v %02x %02x C", entry.mn, entry.a, entry.value)
		assert.Equal(entry.v, st.V, "%v %02x %02x V", entry.mn, entry.a, entry.value)
		assert.Equal(entry.n, st.N, "%v %02x %02x N", entry.mn, entry.a, entry.value)
		assert.Equal(entry.z, st.Z, "%v %02x %02x Z", entry.mn, entry.a, entry.value)
	}
}

func TestInstructions_Logic(t *testing.T) {
	assert := assert.New(t)

	st := PowerOn().WithA(0xcc)

	next, _ := execute(OP_AND, st, 0x0f)
	assert.Equal(uint8(0x0c), next.A)

	next, _ = execute(OP_AND, st, 0x33)
	assert.Equal(uint8(0x00), next.A)
	assert.True(next.Z)

	next, _ = execute(OP_ORA, st, 0x33)
	assert.Equal(uint8(0xff), next.A)
	assert.True(next.N)

	next, _ = execute(OP_EOR, st, 0xff)
	assert.Equal(uint8(0x33), next.A)
	assert.False(next.N)
}

func TestInstructions_Bit(t *testing.T) {
	assert := assert.New(t)

	st, _ := execute(OP_BIT, PowerOn().WithA(0x01), 0xc0)
	assert.Equal(uint8(0x01), st.A)
	assert.True(st.Z)
	assert.True(st.N)
	assert.True(st.V)

	st, _ = execute(OP_BIT, PowerOn().WithA(0x01).WithV(true).WithN(true), 0x01)
	assert.False(st.Z)
	assert.False(st.N)
	assert.False(st.V)
}

func TestInstructions_Shift(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(memory.NewMemory())

	table := []struct {
		mn      Mnemonic
		a       uint8
		carry   bool
		result  uint8
		c, n, z bool
	}{
		{OP_ASL, 0x81, false, 0x02, true, false, false},
		{OP_ASL, 0x40, true, 0x80, false, true, false},
		{OP_LSR, 0x01, false, 0x00, true, false, true},
		{OP_LSR, 0x80, true, 0x40, false, false, false},
		{OP_ROL, 0x80, true, 0x01, true, false, false},
		{OP_ROL, 0x40, false, 0x80, false, true, false},
		{OP_ROR, 0x01, true, 0x80, true, true, false},
		{OP_ROR, 0x01, false, 0x00, true, false, true},
	}

	for _, entry := range table {
		// Accumulator form.
		st := cpu.Execute(entry.mn, PowerOn().WithA(entry.a).WithC(entry.carry), 0, false)
		assert.Equal(entry.result, st.A, "%v A %02x", entry.mn, entry.a)
		assert.Equal(entry.c, st.C, "%v A %02x C", entry.mn, entry.a)
		assert.Equal(entry.n, st.N, "%v A %02x N", entry.mn, entry.a)
		assert.Equal(entry.z, st.Z, "%v A %02x Z", entry.mn, entry.a)

		// Memory form leaves the accumulator alone.
		st, mem := execute(entry.mn, PowerOn().WithA(0x5a).WithC(entry.carry), entry.a)
		assert.Equal(uint8(0x5a), st.A)
		assert.Equal(entry.result, mem.ReadByte(testOperand), "%v M %02x", entry.mn, entry.a)
		assert.Equal(entry.c, st.C, "%v M %02x C", entry.mn, entry.a)
	}
}

func TestInstructions_Compare(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		mn      Mnemonic
		reg     uint8
		value   uint8
		c, z, n bool
	}{
		{OP_CMP, 0x10, 0x10, true, true, false},
		{OP_CMP, 0x10, 0x20, false, false, true},
		{OP_CMP, 0x10, 0x05, true, false, false},
		{OP_CPX, 0x00, 0xff, false, false, false},
		{OP_CPY, 0xff, 0x00, true, false, true},
	}

	for _, entry := range table {
		st := PowerOn().WithA(entry.reg).WithX(entry.reg).WithY(entry.reg)
		next, _ := execute(entry.mn, st, entry.value)
		assert.Equal(entry.c, next.C, "%v %02x %02x C", entry.mn, entry.reg, entry.value)
		assert.Equal(entry.z, next.Z, "%v %02x %02x Z", entry.mn, entry.reg, entry.value)
		assert.Equal(entry.n, next.N, "%v %02x %02x N", entry.mn, entry.reg, entry.value)
		assert.Equal(st.A, next.A)
	}
}

func TestInstructions_IncrementDecrement(t *testing.T) {
	assert := assert.New(t)

	st, mem := execute(OP_INC, PowerOn(), 0xff)
	assert.Equal(byte(0x00), mem.ReadByte(testOperand))
	assert.True(st.Z)

	st, mem = execute(OP_DEC, PowerOn(), 0x00)
	assert.Equal(byte(0xff), mem.ReadByte(testOperand))
	assert.True(st.N)

	cpu := NewCpu(nil)

	st = cpu.Execute(OP_INX, PowerOn().WithX(0xff), 0, false)
	assert.Equal(uint8(0), st.X)
	assert.True(st.Z)

	st = cpu.Execute(OP_INY, PowerOn().WithY(0x7f), 0, false)
	assert.Equal(uint8(0x80), st.Y)
	assert.True(st.N)

	st = cpu.Execute(OP_DEX, PowerOn().WithX(0x01), 0, false)
	assert.Equal(uint8(0), st.X)
	assert.True(st.Z)

	st = cpu.Execute(OP_DEY, PowerOn().WithY(0x00), 0, false)
	assert.Equal(uint8(0xff), st.Y)
	assert.True(st.N)
}

func TestInstructions_Transfer(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)
	st := PowerOn().WithA(0x80).WithX(0x00).WithY(0x01).WithS(0xf0)

	next := cpu.Execute(OP_TAX, st, 0, false)
	assert.Equal(uint8(0x80), next.X)
	assert.True(next.N)

	next = cpu.Execute(OP_TAY, st, 0, false)
	assert.Equal(uint8(0x80), next.Y)

	next = cpu.Execute(OP_TXA, st, 0, false)
	assert.Equal(uint8(0x00), next.A)
	assert.True(next.Z)

	next = cpu.Execute(OP_TYA, st, 0, false)
	assert.Equal(uint8(0x01), next.A)
	assert.False(next.Z)

	next = cpu.Execute(OP_TSX, st, 0, false)
	assert.Equal(uint8(0xf0), next.X)
	assert.True(next.N)

	// TXS does not touch the flags.
	next = cpu.Execute(OP_TXS, st.WithN(true), 0, false)
	assert.Equal(uint8(0x00), next.S)
	assert.False(next.Z)
	assert.True(next.N)
}

func TestInstructions_Flags(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)
	st := PowerOn()

	assert.True(cpu.Execute(OP_SEC, st, 0, false).C)
	assert.False(cpu.Execute(OP_CLC, st.WithC(true), 0, false).C)
	assert.True(cpu.Execute(OP_SEI, st, 0, false).I)
	assert.False(cpu.Execute(OP_CLI, st.WithI(true), 0, false).I)
	assert.True(cpu.Execute(OP_SED, st, 0, false).D)
	assert.False(cpu.Execute(OP_CLD, st.WithD(true), 0, false).D)
	assert.False(cpu.Execute(OP_CLV, st.WithV(true), 0, false).V)
	assert.Equal(st, cpu.Execute(OP_NOP, st, 0, false))
	assert.Equal(st, cpu.Execute(OP_ILLEGAL, st, 0, false))
}

func TestInstructions_Stack(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	cpu := NewCpu(mem)

	st := PowerOn().WithC(true).WithN(true)
	st = cpu.Execute(OP_PHP, st, 0, false)
	assert.Equal(uint8(0xfe), st.S)
	assert.Equal(FLAG_N|FLAG_U|FLAG_B|FLAG_C, mem.ReadByte(0x01ff))

	st = cpu.Execute(OP_PLP, PowerOn().WithS(0xfe), 0, false)
	assert.Equal(uint8(0xff), st.S)
	assert.True(st.C)
	assert.True(st.N)
	assert.True(st.B)
	assert.False(st.Z)

	st = cpu.Execute(OP_PHA, PowerOn().WithA(0x00), 0, false)
	st = cpu.Execute(OP_PLA, st.WithA(0x55), 0, false)
	assert.Equal(uint8(0x00), st.A)
	assert.True(st.Z)
}

func TestInstructions_Jump(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	cpu := NewCpu(mem)

	st := PowerOn().WithPC(0x0203)

	next := cpu.Execute(OP_JMP, st, 0x1234, true)
	assert.Equal(uint16(0x1234), next.PC)
	assert.Equal(st.S, next.S)

	next = cpu.Execute(OP_JSR, st, 0x1234, true)
	assert.Equal(uint16(0x1234), next.PC)
	assert.Equal(uint8(0xfd), next.S)

	next = cpu.Execute(OP_RTS, next, 0, false)
	assert.Equal(uint16(0x0203), next.PC)
	assert.Equal(uint8(0xff), next.S)

	next = cpu.Execute(OP_BCS, st.WithC(true), 0x0300, true)
	assert.Equal(uint16(0x0300), next.PC)
	next = cpu.Execute(OP_BCC, st.WithC(true), 0x0300, true)
	assert.Equal(uint16(0x0203), next.PC)
	next = cpu.Execute(OP_BMI, st.WithN(true), 0x0300, true)
	assert.Equal(uint16(0x0300), next.PC)
	next = cpu.Execute(OP_BPL, st.WithN(true), 0x0300, true)
	assert.Equal(uint16(0x0203), next.PC)
	next = cpu.Execute(OP_BVS, st.WithV(true), 0x0300, true)
	assert.Equal(uint16(0x0300), next.PC)
	next = cpu.Execute(OP_BVC, st, 0x0300, true)
	assert.Equal(uint16(0x0300), next.PC)
	next = cpu.Execute(OP_BNE, st.WithZ(true), 0x0300, true)
	assert.Equal(uint16(0x0203), next.PC)
}

func TestInstructions_Interrupt(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	mem.SetIrqVector(0x8000)
	cpu := NewCpu(mem)

	st := PowerOn().WithPC(0x0301).WithA(0x42).WithC(true)

	next := cpu.Execute(OP_BRK, st, 0, false)
	assert.Equal(uint16(0x8000), next.PC)
	assert.Equal(uint8(0xfc), next.S)
	assert.True(next.I)
	assert.Equal(uint8(0x42), next.A)

	value, ok := Peek(mem, next)
	assert.True(ok)
	assert.Equal(FLAG_U|FLAG_B|FLAG_C, value)

	next = cpu.Execute(OP_RTI, next, 0, false)
	assert.Equal(uint16(0x0302), next.PC)
	assert.Equal(uint8(0xff), next.S)
	assert.False(next.I)
	assert.True(next.C)
}

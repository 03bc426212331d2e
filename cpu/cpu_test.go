package cpu

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mos6502/memory"
)

// run assembles a program at $0200, and cycles from power on until it halts.
func run(t *testing.T, program ...string) (st State, mem *memory.Memory) {
	source := append([]string{".org $0200", ".reset $0200"}, program...)
	_, mem = assemble(t, source)

	cpu := NewCpu(mem)
	st = PowerOn()
	for range 1000 {
		var status Status
		st, status = cpu.Cycle(st)
		if status == STATUS_HALTED {
			return
		}
	}

	t.Fatalf("program did not halt: %v", st)
	return
}

func TestCycle_Reset(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	mem.SetResetVector(0x0200)
	mem.WriteByte(0x0200, 0x02)

	cpu := NewCpu(mem)

	st, status := cpu.Cycle(PowerOn())
	assert.Equal(STATUS_RUNNING, status)
	assert.Equal(PowerOn().WithPC(0x0200), st)

	next, status := cpu.Cycle(st)
	assert.Equal(STATUS_HALTED, status)
	assert.Equal(st, next)
}

func TestCycle_NilMemory(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)

	st, status := cpu.Cycle(PowerOn())
	assert.Equal(STATUS_RUNNING, status)
	assert.Equal(END_OF_ADDRESS, st.PC)

	next, status := cpu.Cycle(st)
	assert.Equal(STATUS_HALTED, status)
	assert.Equal(st, next)
}

func TestExecute_NilMemory(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)

	st := PowerOn().WithPC(0x0200).WithA(0x55)
	address, ok, next := cpu.Resolve(st, MODE_ABSOLUTE)
	assert.True(ok)
	assert.Equal(uint16(0x0000), address)
	assert.Equal(uint16(0x0202), next.PC)

	next = cpu.Execute(OP_LDA, next, address, ok)
	assert.Equal(uint8(0), next.A)
	assert.True(next.Z)

	next = cpu.Execute(OP_STA, st, 0x0300, true)
	assert.Equal(st, next)

	next = cpu.Execute(OP_PHA, st, 0, false)
	assert.Equal(st.S-1, next.S)
}

func TestCycle_Illegal(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	mem.WriteBytes(0x0200, []byte{0xff, 0x1a, 0x02})

	cpu := NewCpu(mem)

	st := PowerOn().WithPC(0x0200).WithA(0x12)
	next, status := cpu.Cycle(st)
	assert.Equal(STATUS_RUNNING, status)
	assert.Equal(st.WithPC(0x0201), next)

	next, status = cpu.Cycle(next)
	assert.Equal(STATUS_RUNNING, status)
	assert.Equal(st.WithPC(0x0202), next)

	_, status = cpu.Cycle(next)
	assert.Equal(STATUS_HALTED, status)
}

func TestCycle_StackRoundTrip(t *testing.T) {
	assert := assert.New(t)

	st, mem := run(t,
		"LDA #1",
		"PHA",
		"LDA #$FF",
		"PLA",
		"KIL",
	)

	assert.Equal(uint8(1), st.A)
	assert.Equal(uint8(0xff), st.S)
	assert.False(st.Z)
	assert.False(st.N)
	assert.Equal(byte(1), mem.ReadByte(0x01ff))
	assert.Equal(uint16(0x0206), st.PC)
}

func TestCycle_AddCarry(t *testing.T) {
	assert := assert.New(t)

	st, mem := run(t,
		"LDA #$FF",
		"STA $80",
		"LDA #1",
		"ADC $80",
		"KIL",
	)

	assert.Equal(byte(0xff), mem.ReadByte(0x0080))
	assert.Equal(uint8(0), st.A)
	assert.True(st.C)
	assert.True(st.Z)
	assert.False(st.V)
	assert.False(st.N)
}

func TestCycle_ShiftCarry(t *testing.T) {
	assert := assert.New(t)

	st, _ := run(t,
		"LDA #$80",
		"ASL A",
		"KIL",
	)

	assert.Equal(uint8(0), st.A)
	assert.True(st.C)
	assert.True(st.Z)
	assert.False(st.N)
}

func TestCycle_Subtract(t *testing.T) {
	assert := assert.New(t)

	st, _ := run(t,
		"SEC",
		"LDA #2",
		"SBC #2",
		"KIL",
	)

	assert.Equal(uint8(0), st.A)
	assert.True(st.C)
	assert.True(st.Z)
	assert.False(st.V)
}

func TestCycle_Subroutine(t *testing.T) {
	assert := assert.New(t)

	st, mem := run(t,
		"JSR sub",
		"KIL",
		"sub: LDA #$42",
		"RTS",
	)

	assert.Equal(uint8(0x42), st.A)
	assert.Equal(uint8(0xff), st.S)
	assert.Equal(uint16(0x0203), st.PC)

	// Return address minus one, high byte first.
	assert.Equal(byte(0x02), mem.ReadByte(0x01ff))
	assert.Equal(byte(0x02), mem.ReadByte(0x01fe))
}

func TestCycle_Branch(t *testing.T) {
	assert := assert.New(t)

	st, _ := run(t,
		"LDA #1",
		"BEQ skip",
		"LDX #5",
		"skip: KIL",
	)
	assert.Equal(uint8(5), st.X)

	st, _ = run(t,
		"LDA #0",
		"BEQ skip",
		"LDX #5",
		"skip: KIL",
	)
	assert.Equal(uint8(0), st.X)

	st, _ = run(t,
		"LDX #3",
		"loop: DEX",
		"BNE loop",
		"KIL",
	)
	assert.Equal(uint8(0), st.X)
	assert.True(st.Z)
}

func TestCycle_Interrupt(t *testing.T) {
	assert := assert.New(t)

	st, mem := run(t,
		".irq handler",
		"LDX #0",
		"BRK",
		".byte $EA",
		"LDY #7",
		"KIL",
		"handler: LDA #$33",
		"RTI",
	)

	assert.Equal(uint8(0x33), st.A)
	assert.Equal(uint8(7), st.Y)
	assert.Equal(uint8(0xff), st.S)
	assert.False(st.I)
	assert.True(st.B)
	assert.False(st.Z)

	// BRK skips the padding byte.
	assert.Equal(byte(0x02), mem.ReadByte(0x01ff))
	assert.Equal(byte(0x04), mem.ReadByte(0x01fe))
	assert.Equal(FLAG_U|FLAG_B|FLAG_Z, mem.ReadByte(0x01fd))
}

func TestCycle_IndirectJump(t *testing.T) {
	assert := assert.New(t)

	st, _ := run(t,
		"JMP (vector)",
		"vector: .word target",
		"LDA #1",
		"target: LDA #2",
		"KIL",
	)

	assert.Equal(uint8(2), st.A)
}

func TestCycle_Verbose(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	mem.WriteBytes(0x0200, []byte{0xa9, 0x10, 0x02})

	var buf bytes.Buffer
	cpu := NewCpu(mem)
	cpu.Verbose = true
	cpu.Logger = log.New(&buf, "", 0)

	st := PowerOn().WithPC(0x0200)
	st, _ = cpu.Cycle(st)
	_, status := cpu.Cycle(st)
	assert.Equal(STATUS_HALTED, status)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(2, len(lines))
	assert.True(strings.HasPrefix(lines[0], "0200: LDA #$10"), lines[0])
	assert.True(strings.HasPrefix(lines[1], "0202: KIL"), lines[1])
}

func TestDisassemble(t *testing.T) {
	assert := assert.New(t)

	mem := memory.NewMemory()
	mem.WriteBytes(0x0200, []byte{
		0xa9, 0x10, // LDA #$10
		0xbd, 0x34, 0x12, // LDA $1234,X
		0xd0, 0xfe, // BNE $0205
		0x0a,       // ASL A
		0xea,       // NOP
		0xb1, 0x20, // LDA ($20),Y
		0xff, // illegal
	})

	table := []struct {
		address uint16
		text    string
		size    uint16
	}{
		{0x0200, "LDA #$10", 2},
		{0x0202, "LDA $1234,X", 3},
		{0x0205, "BNE $0205", 2},
		{0x0207, "ASL A", 1},
		{0x0208, "NOP", 1},
		{0x0209, "LDA ($20),Y", 2},
		{0x020b, ".byte $FF", 1},
	}

	for _, entry := range table {
		text, size := Disassemble(mem, entry.address)
		assert.Equal(entry.text, text)
		assert.Equal(entry.size, size, entry.text)
	}

	text, size := Disassemble(nil, 0x1234)
	assert.Equal("KIL", text)
	assert.Equal(uint16(1), size)
}

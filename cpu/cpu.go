package cpu

import (
	"fmt"
	"log"

	"github.com/ezrec/mos6502/memory"
)

// END_OF_ADDRESS is loaded into the program counter on reset when no
// memory is attached.
const END_OF_ADDRESS = uint16(0xffff)

// Status is the outcome of a single cycle.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_RUNNING = Status(iota) // running
	STATUS_HALTED                 // halted
)

// Cpu is the instruction dispatcher for the 6502.
//
// The Cpu holds no register state of its own; registers are threaded
// through Cycle as State values. Memory is the only thing mutated.
type Cpu struct {
	Verbose bool           // Set to enable instruction tracing.
	Logger  *log.Logger    // Trace destination; nil uses the standard logger.
	Memory  *memory.Memory // Address space. Nil behaves as an empty bus.
}

// NewCpu creates a dispatcher attached to an address space.
func NewCpu(mem *memory.Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
	}

	return
}

func (cpu *Cpu) logf(format string, args ...any) {
	if !cpu.Verbose {
		return
	}
	if cpu.Logger != nil {
		cpu.Logger.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}

// Decode returns the opcode at address. With no memory attached, every
// address decodes as KIL.
func (cpu *Cpu) Decode(address uint16) Opcode {
	if cpu.Memory == nil {
		return Opcodes[0x02]
	}

	return Opcodes[cpu.Memory.ReadByte(address)]
}

// Cycle executes one instruction, and returns the new state.
//
// A zero program counter loads the reset vector instead of executing.
// Decoding KIL returns the incoming state unchanged, with STATUS_HALTED;
// the caller must not cycle that state again.
func (cpu *Cpu) Cycle(st State) (next State, status Status) {
	if st.PC == 0 {
		vector := END_OF_ADDRESS
		if cpu.Memory != nil {
			vector = cpu.Memory.ResetVector()
		}
		cpu.logf("cpu: reset to $%04x", vector)
		next = st.WithPC(vector)
		return
	}

	op := cpu.Decode(st.PC)

	if cpu.Verbose {
		text, _ := Disassemble(cpu.Memory, st.PC)
		cpu.logf("%04x: %-16s %v", st.PC, text, st)
	}

	if op.Mnemonic == OP_KIL {
		next = st
		status = STATUS_HALTED
		return
	}

	next = st.Advance(1)

	address, ok, next := cpu.Resolve(next, op.Mode)

	next = cpu.Execute(op.Mnemonic, next, address, ok)

	return
}

// Execute applies the semantics of a mnemonic to a state whose program
// counter is already past the instruction. address is the effective
// address, valid only when ok is set.
func (cpu *Cpu) Execute(mn Mnemonic, st State, address uint16, ok bool) State {
	fn, found := semantics[mn]
	if !found {
		// Undocumented opcodes are no-ops.
		return st
	}

	return fn(cpu, st, address, ok)
}

// Disassemble renders the instruction at address, and returns its length.
func Disassemble(mem *memory.Memory, address uint16) (text string, size uint16) {
	if mem == nil {
		return "KIL", 1
	}

	code := mem.ReadByte(address)
	op := Opcodes[code]
	size = op.Size()

	if op.Mnemonic == OP_ILLEGAL {
		text = fmt.Sprintf(".byte $%02X", code)
		return
	}

	var value uint16
	switch op.Mode.Size() {
	case 1:
		value = uint16(mem.ReadByte(address + 1))
	case 2:
		value = mem.ReadWord(address + 1)
	}

	if op.Mode == MODE_RELATIVE {
		value = address + 2 + uint16(int8(value))
	}

	text = op.Mnemonic.String()
	if op.Mode != MODE_IMPLIED {
		text += " " + op.Mode.Format(value)
	}

	return
}

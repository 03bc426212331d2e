package cpu

import (
	"iter"

	"github.com/ezrec/mos6502/memory"
)

// Statement is one assembled source line.
type Statement struct {
	LineNo  int      // Source line number.
	Address uint16   // Load address of the first byte.
	Words   []string // Source text, split into the operation and its operand.
	Bytes   []byte   // Generated bytes.
	Opcode  Opcode   // Decoded instruction, for instruction statements.

	directive string   // Data directive, or empty for instructions.
	args      []string // Unevaluated operand expressions.
}

// Program is the output of the assembler.
type Program struct {
	Statements []Statement
}

// Debug locates the statement that generated an address.
type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement containing address, if any.
func (prog *Program) Debug(address uint16) (dbg Debug) {
	for n, st := range prog.Statements {
		if address >= st.Address && int(address) < int(st.Address)+len(st.Bytes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(address - st.Address),
			}
			break
		}
	}

	return
}

// Binary iterates every generated byte with its load address.
func (prog *Program) Binary() iter.Seq2[uint16, byte] {
	return func(yield func(address uint16, value byte) bool) {
		for _, st := range prog.Statements {
			for n, value := range st.Bytes {
				if !yield(st.Address+uint16(n), value) {
					return
				}
			}
		}
	}
}

// Origin returns the address of the first instruction.
func (prog *Program) Origin() (address uint16, ok bool) {
	for _, st := range prog.Statements {
		if len(st.directive) == 0 {
			return st.Address, true
		}
	}

	return
}

// Load writes the program into memory.
func (prog *Program) Load(mem *memory.Memory) {
	for address, value := range prog.Binary() {
		mem.WriteByte(address, value)
	}
}

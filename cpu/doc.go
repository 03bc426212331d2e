// Package cpu implements the MOS 6502 instruction set, and an assembler for it.
//
// Processor registers are an immutable State value. Each call to Cpu.Cycle
// decodes one instruction from memory, resolves its addressing mode, and
// returns the State that results from executing it. Memory is the only
// thing changed in place.
//
// The documented instruction set is supported. Decimal mode is tracked in
// the D flag but does not change ADC or SBC. The KIL opcode (0x02) halts
// the processor; every other undocumented opcode is a one byte no-op.
//
// The assembler accepts conventional 6502 syntax, with labels, .equ,
// .org, .byte, .word, .reset and .irq directives, and Starlark operand
// expressions.
package cpu

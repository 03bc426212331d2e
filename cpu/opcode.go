package cpu

import (
	"fmt"
	"strings"
)

// Mnemonic is an operation, independent of addressing mode.
type Mnemonic int

//go:generate go tool stringer -linecomment -type=Mnemonic
const (
	OP_ILLEGAL = Mnemonic(iota) // ???
	OP_ADC                      // ADC
	OP_AND                      // AND
	OP_ASL                      // ASL
	OP_BCC                      // BCC
	OP_BCS                      // BCS
	OP_BEQ                      // BEQ
	OP_BIT                      // BIT
	OP_BMI                      // BMI
	OP_BNE                      // BNE
	OP_BPL                      // BPL
	OP_BRK                      // BRK
	OP_BVC                      // BVC
	OP_BVS                      // BVS
	OP_CLC                      // CLC
	OP_CLD                      // CLD
	OP_CLI                      // CLI
	OP_CLV                      // CLV
	OP_CMP                      // CMP
	OP_CPX                      // CPX
	OP_CPY                      // CPY
	OP_DEC                      // DEC
	OP_DEX                      // DEX
	OP_DEY                      // DEY
	OP_EOR                      // EOR
	OP_INC                      // INC
	OP_INX                      // INX
	OP_INY                      // INY
	OP_JMP                      // JMP
	OP_JSR                      // JSR
	OP_KIL                      // KIL
	OP_LDA                      // LDA
	OP_LDX                      // LDX
	OP_LDY                      // LDY
	OP_LSR                      // LSR
	OP_NOP                      // NOP
	OP_ORA                      // ORA
	OP_PHA                      // PHA
	OP_PHP                      // PHP
	OP_PLA                      // PLA
	OP_PLP                      // PLP
	OP_ROL                      // ROL
	OP_ROR                      // ROR
	OP_RTI                      // RTI
	OP_RTS                      // RTS
	OP_SBC                      // SBC
	OP_SEC                      // SEC
	OP_SED                      // SED
	OP_SEI                      // SEI
	OP_STA                      // STA
	OP_STX                      // STX
	OP_STY                      // STY
	OP_TAX                      // TAX
	OP_TAY                      // TAY
	OP_TSX                      // TSX
	OP_TXA                      // TXA
	OP_TXS                      // TXS
	OP_TYA                      // TYA
)

// IsBranch returns true for the relative conditional branches.
func (mn Mnemonic) IsBranch() bool {
	switch mn {
	case OP_BCC, OP_BCS, OP_BEQ, OP_BNE, OP_BMI, OP_BPL, OP_BVC, OP_BVS:
		return true
	}
	return false
}

// mnemonicMap maps upper case names to mnemonics.
var mnemonicMap = func() map[string]Mnemonic {
	mm := make(map[string]Mnemonic)
	for mn := OP_ADC; mn <= OP_TYA; mn++ {
		mm[mn.String()] = mn
	}
	return mm
}()

// ParseMnemonic looks up a mnemonic by name, ignoring case.
func ParseMnemonic(name string) (mn Mnemonic, ok bool) {
	mn, ok = mnemonicMap[strings.ToUpper(name)]
	return
}

// Mode is an addressing mode.
type Mode int

//go:generate go tool stringer -linecomment -type=Mode
const (
	MODE_IMPLIED     = Mode(iota) // implied
	MODE_ACCUMULATOR              // accumulator
	MODE_IMMEDIATE                // immediate
	MODE_ZEROPAGE                 // zeropage
	MODE_ZEROPAGE_X               // zeropage,X
	MODE_ZEROPAGE_Y               // zeropage,Y
	MODE_ABSOLUTE                 // absolute
	MODE_ABSOLUTE_X               // absolute,X
	MODE_ABSOLUTE_Y               // absolute,Y
	MODE_INDIRECT                 // indirect
	MODE_INDIRECT_X               // (indirect,X)
	MODE_INDIRECT_Y               // (indirect),Y
	MODE_RELATIVE                 // relative
)

// Size returns the number of operand bytes following the opcode.
func (mode Mode) Size() uint16 {
	switch mode {
	case MODE_IMPLIED, MODE_ACCUMULATOR:
		return 0
	case MODE_ABSOLUTE, MODE_ABSOLUTE_X, MODE_ABSOLUTE_Y, MODE_INDIRECT:
		return 2
	default:
		return 1
	}
}

// HasOperand returns true if the mode resolves an effective address.
func (mode Mode) HasOperand() bool {
	return mode != MODE_IMPLIED && mode != MODE_ACCUMULATOR
}

// Format renders an operand value in assembler syntax.
func (mode Mode) Format(value uint16) string {
	switch mode {
	case MODE_ACCUMULATOR:
		return "A"
	case MODE_IMMEDIATE:
		return fmt.Sprintf("#$%02X", value)
	case MODE_ZEROPAGE:
		return fmt.Sprintf("$%02X", value)
	case MODE_ZEROPAGE_X:
		return fmt.Sprintf("$%02X,X", value)
	case MODE_ZEROPAGE_Y:
		return fmt.Sprintf("$%02X,Y", value)
	case MODE_ABSOLUTE, MODE_RELATIVE:
		return fmt.Sprintf("$%04X", value)
	case MODE_ABSOLUTE_X:
		return fmt.Sprintf("$%04X,X", value)
	case MODE_ABSOLUTE_Y:
		return fmt.Sprintf("$%04X,Y", value)
	case MODE_INDIRECT:
		return fmt.Sprintf("($%04X)", value)
	case MODE_INDIRECT_X:
		return fmt.Sprintf("($%02X,X)", value)
	case MODE_INDIRECT_Y:
		return fmt.Sprintf("($%02X),Y", value)
	}

	return ""
}

// Opcode is the decoded meaning of an opcode byte.
type Opcode struct {
	Mnemonic Mnemonic
	Mode     Mode
}

// Size returns the full instruction length, including the opcode byte.
func (op Opcode) Size() uint16 {
	return 1 + op.Mode.Size()
}

// String returns the mnemonic and addressing mode.
func (op Opcode) String() string {
	if op.Mode == MODE_IMPLIED {
		return op.Mnemonic.String()
	}
	return op.Mnemonic.String() + " " + op.Mode.String()
}

// Opcodes maps each opcode byte to its mnemonic and addressing mode.
// Bytes not listed decode as OP_ILLEGAL, and execute as a one byte no-op.
var Opcodes = [256]Opcode{
	0x00: {OP_BRK, MODE_IMPLIED},
	0x01: {OP_ORA, MODE_INDIRECT_X},
	0x02: {OP_KIL, MODE_IMPLIED},
	0x05: {OP_ORA, MODE_ZEROPAGE},
	0x06: {OP_ASL, MODE_ZEROPAGE},
	0x08: {OP_PHP, MODE_IMPLIED},
	0x09: {OP_ORA, MODE_IMMEDIATE},
	0x0a: {OP_ASL, MODE_ACCUMULATOR},
	0x0d: {OP_ORA, MODE_ABSOLUTE},
	0x0e: {OP_ASL, MODE_ABSOLUTE},

	0x10: {OP_BPL, MODE_RELATIVE},
	0x11: {OP_ORA, MODE_INDIRECT_Y},
	0x15: {OP_ORA, MODE_ZEROPAGE_X},
	0x16: {OP_ASL, MODE_ZEROPAGE_X},
	0x18: {OP_CLC, MODE_IMPLIED},
	0x19: {OP_ORA, MODE_ABSOLUTE_Y},
	0x1d: {OP_ORA, MODE_ABSOLUTE_X},
	0x1e: {OP_ASL, MODE_ABSOLUTE_X},

	0x20: {OP_JSR, MODE_ABSOLUTE},
	0x21: {OP_AND, MODE_INDIRECT_X},
	0x24: {OP_BIT, MODE_ZEROPAGE},
	0x25: {OP_AND, MODE_ZEROPAGE},
	0x26: {OP_ROL, MODE_ZEROPAGE},
	0x28: {OP_PLP, MODE_IMPLIED},
	0x29: {OP_AND, MODE_IMMEDIATE},
	0x2a: {OP_ROL, MODE_ACCUMULATOR},
	0x2c: {OP_BIT, MODE_ABSOLUTE},
	0x2d: {OP_AND, MODE_ABSOLUTE},
	0x2e: {OP_ROL, MODE_ABSOLUTE},

	0x30: {OP_BMI, MODE_RELATIVE},
	0x31: {OP_AND, MODE_INDIRECT_Y},
	0x35: {OP_AND, MODE_ZEROPAGE_X},
	0x36: {OP_ROL, MODE_ZEROPAGE_X},
	0x38: {OP_SEC, MODE_IMPLIED},
	0x39: {OP_AND, MODE_ABSOLUTE_Y},
	0x3d: {OP_AND, MODE_ABSOLUTE_X},
	0x3e: {OP_ROL, MODE_ABSOLUTE_X},

	0x40: {OP_RTI, MODE_IMPLIED},
	0x41: {OP_EOR, MODE_INDIRECT_X},
	0x45: {OP_EOR, MODE_ZEROPAGE},
	0x46: {OP_LSR, MODE_ZEROPAGE},
	0x48: {OP_PHA, MODE_IMPLIED},
	0x49: {OP_EOR, MODE_IMMEDIATE},
	0x4a: {OP_LSR, MODE_ACCUMULATOR},
	0x4c: {OP_JMP, MODE_ABSOLUTE},
	0x4d: {OP_EOR, MODE_ABSOLUTE},
	0x4e: {OP_LSR, MODE_ABSOLUTE},

	0x50: {OP_BVC, MODE_RELATIVE},
	0x51: {OP_EOR, MODE_INDIRECT_Y},
	0x55: {OP_EOR, MODE_ZEROPAGE_X},
	0x56: {OP_LSR, MODE_ZEROPAGE_X},
	0x58: {OP_CLI, MODE_IMPLIED},
	0x59: {OP_EOR, MODE_ABSOLUTE_Y},
	0x5d: {OP_EOR, MODE_ABSOLUTE_X},
	0x5e: {OP_LSR, MODE_ABSOLUTE_X},

	0x60: {OP_RTS, MODE_IMPLIED},
	0x61: {OP_ADC, MODE_INDIRECT_X},
	0x65: {OP_ADC, MODE_ZEROPAGE},
	0x66: {OP_ROR, MODE_ZEROPAGE},
	0x68: {OP_PLA, MODE_IMPLIED},
	0x69: {OP_ADC, MODE_IMMEDIATE},
	0x6a: {OP_ROR, MODE_ACCUMULATOR},
	0x6c: {OP_JMP, MODE_INDIRECT},
	0x6d: {OP_ADC, MODE_ABSOLUTE},
	0x6e: {OP_ROR, MODE_ABSOLUTE},

	0x70: {OP_BVS, MODE_RELATIVE},
	0x71: {OP_ADC, MODE_INDIRECT_Y},
	0x75: {OP_ADC, MODE_ZEROPAGE_X},
	0x76: {OP_ROR, MODE_ZEROPAGE_X},
	0x78: {OP_SEI, MODE_IMPLIED},
	0x79: {OP_ADC, MODE_ABSOLUTE_Y},
	0x7d: {OP_ADC, MODE_ABSOLUTE_X},
	0x7e: {OP_ROR, MODE_ABSOLUTE_X},

	0x81: {OP_STA, MODE_INDIRECT_X},
	0x84: {OP_STY, MODE_ZEROPAGE},
	0x85: {OP_STA, MODE_ZEROPAGE},
	0x86: {OP_STX, MODE_ZEROPAGE},
	0x88: {OP_DEY, MODE_IMPLIED},
	0x8a: {OP_TXA, MODE_IMPLIED},
	0x8c: {OP_STY, MODE_ABSOLUTE},
	0x8d: {OP_STA, MODE_ABSOLUTE},
	0x8e: {OP_STX, MODE_ABSOLUTE},

	0x90: {OP_BCC, MODE_RELATIVE},
	0x91: {OP_STA, MODE_INDIRECT_Y},
	0x94: {OP_STY, MODE_ZEROPAGE_X},
	0x95: {OP_STA, MODE_ZEROPAGE_X},
	0x96: {OP_STX, MODE_ZEROPAGE_Y},
	0x98: {OP_TYA, MODE_IMPLIED},
	0x99: {OP_STA, MODE_ABSOLUTE_Y},
	0x9a: {OP_TXS, MODE_IMPLIED},
	0x9d: {OP_STA, MODE_ABSOLUTE_X},

	0xa0: {OP_LDY, MODE_IMMEDIATE},
	0xa1: {OP_LDA, MODE_INDIRECT_X},
	0xa2: {OP_LDX, MODE_IMMEDIATE},
	0xa4: {OP_LDY, MODE_ZEROPAGE},
	0xa5: {OP_LDA, MODE_ZEROPAGE},
	0xa6: {OP_LDX, MODE_ZEROPAGE},
	0xa8: {OP_TAY, MODE_IMPLIED},
	0xa9: {OP_LDA, MODE_IMMEDIATE},
	0xaa: {OP_TAX, MODE_IMPLIED},
	0xac: {OP_LDY, MODE_ABSOLUTE},
	0xad: {OP_LDA, MODE_ABSOLUTE},
	0xae: {OP_LDX, MODE_ABSOLUTE},

	0xb0: {OP_BCS, MODE_RELATIVE},
	0xb1: {OP_LDA, MODE_INDIRECT_Y},
	0xb4: {OP_LDY, MODE_ZEROPAGE_X},
	0xb5: {OP_LDA, MODE_ZEROPAGE_X},
	0xb6: {OP_LDX, MODE_ZEROPAGE_Y},
	0xb8: {OP_CLV, MODE_IMPLIED},
	0xb9: {OP_LDA, MODE_ABSOLUTE_Y},
	0xba: {OP_TSX, MODE_IMPLIED},
	0xbc: {OP_LDY, MODE_ABSOLUTE_X},
	0xbd: {OP_LDA, MODE_ABSOLUTE_X},
	0xbe: {OP_LDX, MODE_ABSOLUTE_Y},

	0xc0: {OP_CPY, MODE_IMMEDIATE},
	0xc1: {OP_CMP, MODE_INDIRECT_X},
	0xc4: {OP_CPY, MODE_ZEROPAGE},
	0xc5: {OP_CMP, MODE_ZEROPAGE},
	0xc6: {OP_DEC, MODE_ZEROPAGE},
	0xc8: {OP_INY, MODE_IMPLIED},
	0xc9: {OP_CMP, MODE_IMMEDIATE},
	0xca: {OP_DEX, MODE_IMPLIED},
	0xcc: {OP_CPY, MODE_ABSOLUTE},
	0xcd: {OP_CMP, MODE_ABSOLUTE},
	0xce: {OP_DEC, MODE_ABSOLUTE},

	0xd0: {OP_BNE, MODE_RELATIVE},
	0xd1: {OP_CMP, MODE_INDIRECT_Y},
	0xd5: {OP_CMP, MODE_ZEROPAGE_X},
	0xd6: {OP_DEC, MODE_ZEROPAGE_X},
	0xd8: {OP_CLD, MODE_IMPLIED},
	0xd9: {OP_CMP, MODE_ABSOLUTE_Y},
	0xdd: {OP_CMP, MODE_ABSOLUTE_X},
	0xde: {OP_DEC, MODE_ABSOLUTE_X},

	0xe0: {OP_CPX, MODE_IMMEDIATE},
	0xe1: {OP_SBC, MODE_INDIRECT_X},
	0xe4: {OP_CPX, MODE_ZEROPAGE},
	0xe5: {OP_SBC, MODE_ZEROPAGE},
	0xe6: {OP_INC, MODE_ZEROPAGE},
	0xe8: {OP_INX, MODE_IMPLIED},
	0xe9: {OP_SBC, MODE_IMMEDIATE},
	0xea: {OP_NOP, MODE_IMPLIED},
	0xec: {OP_CPX, MODE_ABSOLUTE},
	0xed: {OP_SBC, MODE_ABSOLUTE},
	0xee: {OP_INC, MODE_ABSOLUTE},

	0xf0: {OP_BEQ, MODE_RELATIVE},
	0xf1: {OP_SBC, MODE_INDIRECT_Y},
	0xf5: {OP_SBC, MODE_ZEROPAGE_X},
	0xf6: {OP_INC, MODE_ZEROPAGE_X},
	0xf8: {OP_SED, MODE_IMPLIED},
	0xf9: {OP_SBC, MODE_ABSOLUTE_Y},
	0xfd: {OP_SBC, MODE_ABSOLUTE_X},
	0xfe: {OP_INC, MODE_ABSOLUTE_X},
}

// encodeMap is the inverse of Opcodes, for the assembler.
var encodeMap = func() map[Opcode]uint8 {
	em := make(map[Opcode]uint8, len(Opcodes))
	for code, op := range Opcodes {
		if op.Mnemonic == OP_ILLEGAL {
			continue
		}
		em[op] = uint8(code)
	}
	return em
}()

// Encode returns the opcode byte for a mnemonic and addressing mode.
func Encode(mn Mnemonic, mode Mode) (code uint8, ok bool) {
	code, ok = encodeMap[Opcode{Mnemonic: mn, Mode: mode}]
	return
}

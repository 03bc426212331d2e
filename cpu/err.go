package cpu

import (
	"errors"

	"github.com/ezrec/mos6502/translate"
)

var f = translate.From

var (
	// Assembler errors
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrModeInvalid        = errors.New(f("addressing mode invalid"))
	ErrOperandMissing     = errors.New(f("operand missing"))
	ErrOperandRange       = errors.New(f("operand out of range"))
	ErrBranchRange        = errors.New(f("branch out of range"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrDirectiveInvalid   = errors.New(f("directive invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrSyntax locates an assembler error in the source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseExpression is an operand expression that could not be evaluated.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("'%v' is not a valid expression", string(err))
}

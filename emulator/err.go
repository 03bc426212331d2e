package emulator

import (
	"errors"

	"github.com/ezrec/mos6502/translate"
)

var f = translate.From

var (
	ErrHalted = errors.New(f("processor halted"))
	ErrBudget = errors.New(f("instruction budget exhausted"))
)

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	PC     uint16
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("pc $%04x line %v %v", err.PC, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

package io

import (
	"errors"

	"github.com/ezrec/mos6502/translate"
)

var f = translate.From

var (
	// Peripheral errors
	ErrRomSize      = errors.New(f("rom image does not fit the address space"))
	ErrRamSize      = errors.New(f("ram image larger than the window"))
	ErrKeyboardFull = errors.New(f("keyboard buffer full"))
	ErrSpanEmpty    = errors.New(f("address span is empty"))
)

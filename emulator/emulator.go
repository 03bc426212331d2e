// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/mos6502/cpu"
	"github.com/ezrec/mos6502/internal"
	"github.com/ezrec/mos6502/io"
	"github.com/ezrec/mos6502/memory"
)

var _emulator_defines = map[string]string{
	"RESET_VECTOR": fmt.Sprintf("%#x", memory.RESET_VECTOR),
	"IRQ_VECTOR":   fmt.Sprintf("%#x", memory.IRQ_VECTOR),
	"STACK_PAGE":   fmt.Sprintf("%#x", memory.STACK_PAGE),
}

// Emulator state. CPU + memory + peripherals.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Trace    bool         // If set, logs every memory read and write.
	*cpu.Cpu              // Reference to the CPU dispatcher.
	Program  *cpu.Program // Reference to the currently running program listing.

	Display  *io.Display  // Apple-1 display register.
	Keyboard *io.Keyboard // Apple-1 keyboard registers.

	images []io.Peripheral
	state  cpu.State
	halted bool
	ticks  int
}

// NewEmulator creates a new emulator, with the Apple-1 terminal mapped.
func NewEmulator() (emu *Emulator) {
	mem := memory.NewMemory()

	emu = &Emulator{
		Cpu:      cpu.NewCpu(mem),
		Program:  &cpu.Program{},
		Display:  io.NewDisplay(nil),
		Keyboard: io.NewKeyboard(),
		state:    cpu.PowerOn(),
	}

	mem.RegisterOverlay(emu.Display)
	mem.RegisterOverlay(emu.Keyboard)

	return
}

// Peripherals returns an iterator over all mapped devices.
func (emu *Emulator) Peripherals() iter.Seq[io.Peripheral] {
	return internal.IterSeqConcat(
		slices.Values([]io.Peripheral{emu.Display, emu.Keyboard}),
		slices.Values(emu.images),
	)
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{maps.All(_emulator_defines)}
	for dev := range emu.Peripherals() {
		seqs = append(seqs, dev.Defines())
	}

	return internal.IterSeq2Concat(seqs...)
}

// Load writes a program into memory.
func (emu *Emulator) Load(prog *cpu.Program) {
	emu.Program = prog
	prog.Load(emu.Memory)
}

// LoadRom maps a read-only image at address.
func (emu *Emulator) LoadRom(address uint16, data []byte) (rom *io.Rom, err error) {
	rom, err = io.NewRom(address, data)
	if err != nil {
		return
	}

	emu.Memory.RegisterOverlay(rom)
	emu.images = append(emu.images, rom)

	return
}

// AddRam maps a private RAM window over start through end, inclusive.
func (emu *Emulator) AddRam(start, end uint16) (ram *io.Ram, err error) {
	ram, err = io.NewRam(start, end)
	if err != nil {
		return
	}

	emu.Memory.RegisterOverlay(ram)
	emu.images = append(emu.images, ram)

	return
}

// Reset the processor to its power-on state, and reset all peripherals.
// Memory and RAM window contents are kept; the keyboard buffer is flushed.
func (emu *Emulator) Reset() {
	for dev := range emu.Peripherals() {
		dev.Reset()
	}

	emu.state = cpu.PowerOn()
	emu.halted = false
	emu.ticks = 0
}

// State returns the current processor state.
func (emu *Emulator) State() cpu.State {
	return emu.state
}

// Halted returns true once the processor has executed KIL.
func (emu *Emulator) Halted() bool {
	return emu.halted
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.ticks
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.state.PC)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

func (emu *Emulator) runtimeError(err error) error {
	return &ErrRuntime{PC: emu.state.PC, LineNo: emu.LineNo(), Err: err}
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.halted {
		done = true
		err = emu.runtimeError(ErrHalted)
		return
	}

	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose
	emu.Memory.Verbose = emu.Trace

	state, status := emu.Cpu.Cycle(emu.state)
	emu.state = state
	emu.ticks++

	if status == cpu.STATUS_HALTED {
		emu.halted = true
		done = true
	}

	return
}

// Run ticks until the processor halts, or limit instructions have been
// executed. A limit of zero or less runs until halted.
func (emu *Emulator) Run(limit int) (count int, err error) {
	for limit <= 0 || count < limit {
		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			return
		}
		count++
	}

	err = emu.runtimeError(ErrBudget)

	return
}

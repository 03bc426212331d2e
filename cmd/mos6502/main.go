// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ezrec/mos6502/cpu"
	"github.com/ezrec/mos6502/emulator"
	"github.com/ezrec/mos6502/translate"
)

// Instructions per slice of the Apple-1 run loop.
const APPLE1_SLICE = 1000

const keyInterrupt = byte(0x03)

// crlfWriter expands newlines for a terminal in raw mode.
type crlfWriter struct {
	io.Writer
}

func (cw crlfWriter) Write(data []byte) (n int, err error) {
	_, err = cw.Writer.Write([]byte(strings.ReplaceAll(string(data), "\n", "\r\n")))
	if err != nil {
		return
	}
	n = len(data)
	return
}

func parseAddress(text string) (address uint16, err error) {
	text = strings.Replace(text, "$", "0x", 1)
	value, err := strconv.ParseUint(text, 0, 16)
	address = uint16(value)
	return
}

// readKeys copies input to a channel. An interrupt key closes quit.
func readKeys(input io.Reader, keys chan<- byte, quit chan<- struct{}) {
	var one [1]byte
	for {
		_, err := input.Read(one[:])
		if err != nil {
			close(keys)
			return
		}
		if one[0] == keyInterrupt {
			close(quit)
			return
		}
		keys <- one[0]
	}
}

// runApple1 runs the emulator with the terminal attached to stdin and stdout.
func runApple1(emu *emulator.Emulator, budget int) (err error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		var state *term.State
		state, err = term.MakeRaw(fd)
		if err != nil {
			return
		}
		defer term.Restore(fd, state)
		emu.Display.Output = crlfWriter{os.Stdout}
	}

	keys := make(chan byte, 64)
	quit := make(chan struct{})
	go readKeys(os.Stdin, keys, quit)
	emu.Keyboard.Feed(keys)

	total := 0
	for {
		select {
		case <-quit:
			return
		default:
		}

		slice := APPLE1_SLICE
		if budget > 0 && budget-total < slice {
			slice = budget - total
		}

		var count int
		count, err = emu.Run(slice)
		total += count
		if err == nil {
			return
		}
		if !errors.Is(err, emulator.ErrBudget) || (budget > 0 && total >= budget) {
			return
		}

		time.Sleep(time.Millisecond)
	}
}

// romImage is a ROM file and its load address.
type romImage struct {
	Path    string
	Address uint16
	Default bool // No address was given.
}

// romList collects repeated -r flags, each as file or file@address.
type romList []romImage

func (rl *romList) String() string {
	var parts []string
	for _, rom := range *rl {
		if rom.Default {
			parts = append(parts, rom.Path)
		} else {
			parts = append(parts, fmt.Sprintf("%v@$%04X", rom.Path, rom.Address))
		}
	}
	return strings.Join(parts, ",")
}

func (rl *romList) Set(text string) (err error) {
	rom := romImage{Path: text, Default: true}
	if at := strings.LastIndex(text, "@"); at >= 0 {
		rom.Path = text[:at]
		rom.Address, err = parseAddress(text[at+1:])
		if err != nil {
			return
		}
		rom.Default = false
	}
	if len(rom.Path) == 0 {
		err = fmt.Errorf("%v: missing ROM file", text)
		return
	}

	*rl = append(*rl, rom)

	return
}

// loadRoms maps every image, in order. Images without an address load at
// defaultAddress.
func loadRoms(emu *emulator.Emulator, roms romList, defaultAddress uint16) (err error) {
	for _, rom := range roms {
		address := rom.Address
		if rom.Default {
			address = defaultAddress
		}

		var data []byte
		data, err = os.ReadFile(rom.Path)
		if err != nil {
			return
		}
		_, err = emu.LoadRom(address, data)
		if err != nil {
			err = fmt.Errorf("%v: %w", rom.Path, err)
			return
		}
	}

	return
}

// list prints the assembled program.
func list(output io.Writer, prog *cpu.Program) {
	for _, st := range prog.Statements {
		var hex []string
		for _, b := range st.Bytes {
			hex = append(hex, fmt.Sprintf("%02X", b))
		}
		fmt.Fprintf(output, "%04X  %-9s  %4d  %s\n", st.Address, strings.Join(hex, " "), st.LineNo, strings.Join(st.Words, " "))
	}
}

func main() {
	var compile string
	var roms romList
	var romAddress string
	var resetAddress string
	var budget int
	var apple1 bool
	var listing bool
	var verbose bool
	var trace bool
	var lang string

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.Var(&roms, "r", ".rom image to map, as file or file@address; may be repeated")
	flag.StringVar(&romAddress, "a", "0xff00", "Load address for -r images without one")
	flag.StringVar(&resetAddress, "reset", "", "Override the reset vector")
	flag.IntVar(&budget, "n", 0, "Instruction budget; 0 runs until halted")
	flag.BoolVar(&apple1, "apple1", false, "Attach the Apple-1 terminal to stdin and stdout")
	flag.BoolVar(&listing, "l", false, "List the assembled program, do not execute")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&trace, "m", false, "Trace memory reads and writes")
	flag.StringVar(&lang, "lang", "", "Message language")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		err := translate.SetLanguage(lang)
		if err != nil {
			log.Fatalf("%v: %v", lang, err)
		}
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Trace = trace
	emu.Display.Output = os.Stdout

	if len(roms) != 0 {
		address, err := parseAddress(romAddress)
		if err != nil {
			log.Fatalf("%v: %v", romAddress, err)
		}
		err = loadRoms(emu, roms, address)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Assemble a new program.
	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}

		if listing {
			list(os.Stdout, prog)
			return
		}

		emu.Load(prog)
	}

	if len(resetAddress) != 0 {
		address, err := parseAddress(resetAddress)
		if err != nil {
			log.Fatalf("%v: %v", resetAddress, err)
		}
		emu.Memory.SetResetVector(address)
	}

	emu.Reset()

	var err error
	if apple1 {
		err = runApple1(emu, budget)
	} else {
		_, err = emu.Run(budget)
	}

	if err != nil {
		log.Fatal(err)
	}

	if verbose {
		log.Printf("%v", emu.State())
	}
}

package io

import (
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/mos6502/memory"
)

const (
	KEYBOARD_DATA    = uint16(0xd010) // Apple-1 keyboard data register.
	KEYBOARD_CONTROL = uint16(0xd011) // Apple-1 keyboard control register.

	// KEYBOARD_DEFAULT_CAPACITY is the default size of the key buffer.
	KEYBOARD_DEFAULT_CAPACITY = 256

	KEY_RETURN    = byte(0x8d)
	KEY_ESCAPE    = byte(0x9b)
	KEY_BACKSPACE = byte(0xdf)
)

// Keyboard implements the Apple-1 keyboard registers over a circular key
// buffer. It operates as a FIFO queue with a fixed capacity and separate
// read/write positions.
type Keyboard struct {
	memory.Span
	Capacity int // Capacity in keys.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []byte

	feed <-chan byte
}

var _ Peripheral = (*Keyboard)(nil)

// NewKeyboard creates an empty keyboard at the Apple-1 addresses.
func NewKeyboard() (kbd *Keyboard) {
	kbd = &Keyboard{
		Span:     memory.Span{Start: KEYBOARD_DATA, End: KEYBOARD_CONTROL},
		Capacity: KEYBOARD_DEFAULT_CAPACITY,
	}
	kbd.Reset()

	return
}

// Reset empties the key buffer, resetting indices and reinitializing the
// data buffer.
func (kbd *Keyboard) Reset() {
	if kbd.Capacity == 0 {
		kbd.Capacity = KEYBOARD_DEFAULT_CAPACITY
	}
	kbd.ReadIndex = 0
	kbd.WriteIndex = 0
	kbd.Size = 0
	kbd.Data = make([]byte, kbd.Capacity)
}

// Defines returns an iter of defines for the keyboard.
func (kbd *Keyboard) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"KBD":   fmt.Sprintf("%#x", kbd.Start),
		"KBDCR": fmt.Sprintf("%#x", kbd.Start+1),
	})
}

// Key translates an ASCII character to its Apple-1 key code.
func Key(ch byte) byte {
	switch ch {
	case '\r', '\n':
		return KEY_RETURN
	case 0x1b:
		return KEY_ESCAPE
	case 0x08, 0x7f:
		return KEY_BACKSPACE
	}

	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}

	return ch | 0x80
}

// Press queues a key code.
// Returns ErrKeyboardFull if the buffer has reached capacity.
func (kbd *Keyboard) Press(key byte) (err error) {
	if kbd.Data == nil {
		kbd.Reset()
	}

	if kbd.Size >= kbd.Capacity {
		err = ErrKeyboardFull
		return
	}

	kbd.Data[kbd.WriteIndex] = key

	kbd.WriteIndex++
	if kbd.WriteIndex == kbd.Capacity {
		kbd.WriteIndex = 0
	}
	kbd.Size++

	return
}

// Type queues the key codes for a string of ASCII text.
func (kbd *Keyboard) Type(text string) (err error) {
	for _, ch := range []byte(text) {
		err = kbd.Press(Key(ch))
		if err != nil {
			return
		}
	}

	return
}

// Feed attaches a channel of ASCII characters. Pending characters are
// moved to the key buffer whenever the registers are read; the reader
// never blocks.
func (kbd *Keyboard) Feed(keys <-chan byte) {
	kbd.feed = keys
}

// drain moves available characters from the feed, until the buffer is full.
func (kbd *Keyboard) drain() {
	for kbd.feed != nil && kbd.Size < kbd.Capacity {
		select {
		case ch, ok := <-kbd.feed:
			if !ok {
				kbd.feed = nil
				return
			}
			kbd.Press(Key(ch))
		default:
			return
		}
	}
}

// Pending returns true if a key is waiting.
func (kbd *Keyboard) Pending() bool {
	kbd.drain()
	return kbd.Size > 0
}

// Read returns the next key from the data register, or the key strobe from
// the control register.
func (kbd *Keyboard) Read(address uint16) (value byte) {
	if !kbd.Pending() {
		return
	}

	switch address - kbd.Start {
	case 0:
		value = kbd.Data[kbd.ReadIndex]
		kbd.ReadIndex++
		if kbd.ReadIndex == kbd.Capacity {
			kbd.ReadIndex = 0
		}
		kbd.Size--
	case 1:
		value = 0xff
	}

	return
}

// Write is ignored.
func (kbd *Keyboard) Write(address uint16, value byte) {
}

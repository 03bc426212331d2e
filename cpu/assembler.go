// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/mos6502/memory"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":       "0",
	"RESET_VECTOR": fmt.Sprintf("%#x", memory.RESET_VECTOR),
	"IRQ_VECTOR":   fmt.Sprintf("%#x", memory.IRQ_VECTOR),
	"STACK_PAGE":   fmt.Sprintf("%#x", memory.STACK_PAGE),
}

// Assembler is a two pass assembler for 6502 source text.
//
// The first pass sizes every statement and collects labels. The second
// pass evaluates operands, now that every label is known.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string
	Label     map[string]uint16 // Map of labels to addresses.
	Equate    map[string]string // Map of equates, as integer text.

	pc uint16
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var loBuiltin = starlark.NewBuiltin("lo", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value int
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &value); err != nil {
		return nil, err
	}
	return starlark.MakeInt(value & 0xff), nil
})

var hiBuiltin = starlark.NewBuiltin("hi", func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value int
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &value); err != nil {
		return nil, err
	}
	return starlark.MakeInt((value >> 8) & 0xff), nil
})

// afterOperand returns true if text ends with something a binary
// operator could follow.
func afterOperand(text string) bool {
	text = strings.TrimRightFunc(text, unicode.IsSpace)
	if len(text) == 0 {
		return false
	}
	last := rune(text[len(text)-1])
	return last == ')' || last == '_' || unicode.IsLetter(last) || unicode.IsDigit(last)
}

// rewriteLiterals converts $hex and %binary literals to Starlark syntax.
func rewriteLiterals(expr string) string {
	var out strings.Builder
	for n := 0; n < len(expr); n++ {
		c := expr[n]
		switch {
		case c == '$':
			out.WriteString("0x")
		case c == '%' && n+1 < len(expr) && (expr[n+1] == '0' || expr[n+1] == '1') && !afterOperand(out.String()):
			out.WriteString("0b")
		default:
			out.WriteByte(c)
		}
	}

	return out.String()
}

// eval evaluates an operand expression with Starlark, with all labels
// and integer equates predeclared.
func (asm *Assembler) eval(expr string) (value int64, err error) {
	if len(strings.TrimSpace(expr)) == 0 {
		err = ErrOperandMissing
		return
	}

	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"lo": loBuiltin,
		"hi": hiBuiltin,
	}
	for key, str := range asm.Equate {
		v64, _err := strconv.ParseInt(str, 0, 64)
		if _err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt(int(address))
	}

	prog := "rc=" + rewriteLiterals(expr) + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	return
}

// stripComment removes a trailing ';' comment, ignoring quoted text.
func stripComment(text string) string {
	quoted := false
	for n, c := range text {
		switch c {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// splitWord splits the first whitespace separated word from text.
func splitWord(text string) (word, rest string) {
	text = strings.TrimSpace(text)
	n := strings.IndexFunc(text, unicode.IsSpace)
	if n < 0 {
		return text, ""
	}
	return text[:n], strings.TrimSpace(text[n:])
}

// splitArgs splits a comma separated list, ignoring commas in quotes or parentheses.
func splitArgs(text string) (args []string) {
	depth := 0
	quoted := false
	start := 0
	for n, c := range text {
		switch {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(text[start:n]))
			start = n + 1
		}
	}
	if last := strings.TrimSpace(text[start:]); len(last) > 0 || len(args) > 0 {
		args = append(args, last)
	}
	return
}

// removeSpace drops all whitespace from an operand.
func removeSpace(text string) string {
	return strings.Join(strings.Fields(text), "")
}

// isString returns true for a double quoted string argument.
func isString(arg string) bool {
	return len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"'
}

// preprocess expands 'x' character literals and $(...) evaluations.
func (asm *Assembler) preprocess(line string) (out string, err error) {
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	line = stripComment(line)

	re = regexp.MustCompile(`\$\([^\$]*\)`)
	out = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.eval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})

	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Statement = asm.Statement[:0]
	asm.Label = make(map[string]uint16)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}
	asm.pc = 0

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

		var text string
		text, err = asm.preprocess(line)
		if err != nil {
			return
		}

		err = asm.parseLine(text, lineno)
		if err != nil {
			return
		}
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	// Final encoding, now that all labels are known.
	for n := range asm.Statement {
		st := &asm.Statement[n]
		lineno = st.LineNo
		line = strings.Join(st.Words, " ")
		asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
		err = asm.encode(st)
		if err != nil {
			return
		}
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// parseLine sizes one preprocessed line, and records its labels and equates.
func (asm *Assembler) parseLine(text string, lineno int) (err error) {
	word, rest := splitWord(text)

	for strings.HasSuffix(word, ":") {
		label := strings.TrimSuffix(word, ":")
		if !identRe.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		if _, ok := asm.Label[label]; ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.pc
		word, rest = splitWord(rest)
	}

	if len(word) == 0 {
		return
	}

	words := []string{word}
	if len(rest) > 0 {
		words = append(words, rest)
	}

	switch directive := strings.ToLower(word); directive {
	case ".org":
		var value int64
		value, err = asm.eval(rest)
		if err != nil || value < 0 || value > 0xffff {
			err = errors.Join(ErrOrgSyntax, err)
			return
		}
		asm.pc = uint16(value)
	case ".equ":
		name, expr := splitWord(rest)
		if !identRe.MatchString(name) || len(expr) == 0 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[name]; ok {
			err = ErrEquateDuplicate
			return
		}
		var value int64
		value, err = asm.eval(expr)
		if err != nil {
			err = errors.Join(ErrEquateSyntax, err)
			return
		}
		asm.Equate[name] = fmt.Sprintf("%#x", value)
	case ".byte", ".word":
		args := splitArgs(rest)
		if len(args) == 0 {
			err = ErrOperandMissing
			return
		}
		var size uint16
		for _, arg := range args {
			switch {
			case directive == ".word":
				size += 2
			case isString(arg):
				var str string
				str, err = strconv.Unquote(arg)
				if err != nil {
					err = errors.Join(ErrParseExpression(arg), err)
					return
				}
				size += uint16(len(str))
			default:
				size += 1
			}
		}
		asm.Statement = append(asm.Statement, Statement{
			LineNo:    lineno,
			Address:   asm.pc,
			Words:     words,
			directive: directive,
			args:      args,
		})
		asm.pc += size
	case ".reset", ".irq":
		if len(rest) == 0 {
			err = ErrOperandMissing
			return
		}
		address := memory.RESET_VECTOR
		if directive == ".irq" {
			address = memory.IRQ_VECTOR
		}
		asm.Statement = append(asm.Statement, Statement{
			LineNo:    lineno,
			Address:   address,
			Words:     words,
			directive: ".word",
			args:      []string{rest},
		})
	default:
		if strings.HasPrefix(word, ".") {
			err = ErrDirectiveInvalid
			return
		}
		mn, ok := ParseMnemonic(word)
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		var op Opcode
		var expr string
		op, expr, err = asm.decodeOperand(mn, removeSpace(rest))
		if err != nil {
			return
		}
		st := Statement{
			LineNo:  lineno,
			Address: asm.pc,
			Words:   words,
			Opcode:  op,
		}
		if op.Mode.HasOperand() {
			st.args = []string{expr}
		}
		asm.Statement = append(asm.Statement, st)
		asm.pc += op.Size()
	}

	return
}

// pickMode selects zero page when the operand is already known to fit.
func (asm *Assembler) pickMode(mn Mnemonic, expr string, zp, abs Mode) Mode {
	_, zp_ok := Encode(mn, zp)
	_, abs_ok := Encode(mn, abs)
	switch {
	case !zp_ok:
		return abs
	case !abs_ok:
		return zp
	}

	value, err := asm.eval(expr)
	if err == nil && value >= 0 && value <= 0xff {
		return zp
	}

	return abs
}

// decodeOperand determines the addressing mode from the operand syntax.
func (asm *Assembler) decodeOperand(mn Mnemonic, operand string) (op Opcode, expr string, err error) {
	has := func(mode Mode) bool {
		_, ok := Encode(mn, mode)
		return ok
	}

	upper := strings.ToUpper(operand)
	size := len(operand)

	var mode Mode
	switch {
	case size == 0:
		switch {
		case has(MODE_IMPLIED):
			mode = MODE_IMPLIED
		case has(MODE_ACCUMULATOR):
			mode = MODE_ACCUMULATOR
		default:
			err = ErrOperandMissing
			return
		}
	case upper == "A" && has(MODE_ACCUMULATOR):
		mode = MODE_ACCUMULATOR
	case operand[0] == '#':
		mode = MODE_IMMEDIATE
		expr = operand[1:]
	case operand[0] == '(' && strings.HasSuffix(upper, ",X)") && has(MODE_INDIRECT_X):
		mode = MODE_INDIRECT_X
		expr = operand[1 : size-3]
	case operand[0] == '(' && strings.HasSuffix(upper, "),Y") && has(MODE_INDIRECT_Y):
		mode = MODE_INDIRECT_Y
		expr = operand[1 : size-3]
	case operand[0] == '(' && operand[size-1] == ')' && has(MODE_INDIRECT):
		mode = MODE_INDIRECT
		expr = operand[1 : size-1]
	case mn.IsBranch():
		mode = MODE_RELATIVE
		expr = operand
	case strings.HasSuffix(upper, ",X"):
		expr = operand[:size-2]
		mode = asm.pickMode(mn, expr, MODE_ZEROPAGE_X, MODE_ABSOLUTE_X)
	case strings.HasSuffix(upper, ",Y"):
		expr = operand[:size-2]
		mode = asm.pickMode(mn, expr, MODE_ZEROPAGE_Y, MODE_ABSOLUTE_Y)
	default:
		expr = operand
		mode = asm.pickMode(mn, expr, MODE_ZEROPAGE, MODE_ABSOLUTE)
	}

	if !has(mode) {
		err = ErrModeInvalid
		return
	}

	if mode.HasOperand() && len(expr) == 0 {
		err = ErrOperandMissing
		return
	}

	op = Opcode{Mnemonic: mn, Mode: mode}

	return
}

// encode generates the bytes of a sized statement.
func (asm *Assembler) encode(st *Statement) (err error) {
	st.Bytes = nil

	evalRange := func(expr string, min, max int64) (value int64, err error) {
		value, err = asm.eval(expr)
		if err != nil {
			return
		}
		if value < min || value > max {
			err = ErrOperandRange
		}
		return
	}

	switch st.directive {
	case ".byte":
		for _, arg := range st.args {
			if isString(arg) {
				str, _ := strconv.Unquote(arg)
				st.Bytes = append(st.Bytes, []byte(str)...)
				continue
			}
			var value int64
			value, err = evalRange(arg, -0x80, 0xff)
			if err != nil {
				return
			}
			st.Bytes = append(st.Bytes, uint8(value))
		}
		return
	case ".word":
		for _, arg := range st.args {
			var value int64
			value, err = evalRange(arg, -0x8000, 0xffff)
			if err != nil {
				return
			}
			st.Bytes = append(st.Bytes, uint8(value), uint8(value>>8))
		}
		return
	}

	code, ok := Encode(st.Opcode.Mnemonic, st.Opcode.Mode)
	if !ok {
		err = ErrInstructionInvalid
		return
	}
	st.Bytes = []byte{code}

	if !st.Opcode.Mode.HasOperand() {
		return
	}

	var value int64
	switch st.Opcode.Mode {
	case MODE_RELATIVE:
		value, err = asm.eval(st.args[0])
		if err != nil {
			return
		}
		offset := value - (int64(st.Address) + 2)
		if offset < -0x80 || offset > 0x7f {
			err = ErrBranchRange
			return
		}
		st.Bytes = append(st.Bytes, uint8(offset))
	case MODE_IMMEDIATE:
		value, err = evalRange(st.args[0], -0x80, 0xff)
		if err != nil {
			return
		}
		st.Bytes = append(st.Bytes, uint8(value))
	default:
		if st.Opcode.Mode.Size() == 1 {
			value, err = evalRange(st.args[0], 0, 0xff)
			if err != nil {
				return
			}
			st.Bytes = append(st.Bytes, uint8(value))
		} else {
			value, err = evalRange(st.args[0], 0, 0xffff)
			if err != nil {
				return
			}
			st.Bytes = append(st.Bytes, uint8(value), uint8(value>>8))
		}
	}

	return
}

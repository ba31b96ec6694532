// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Assembler is a single pass macro assembler for CHIP-8 programs.
//
// Syntax is one statement per line, with ';' comments:
//
//	.equ NAME VALUE       ; define an equate
//	.macro NAME ARGS...   ; begin a macro, '@' expands to a unique prefix
//	.endm                 ; end a macro
//	label: ld v0, 0x10    ; instructions, with optional labels
//	.byte 0xf0 0x90       ; raw data bytes
//	.word 0x00e0          ; raw big-endian words
//
// $(expr) is evaluated at assembly time as a Starlark expression, with all
// integer equates predeclared.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	value = int(v64)
	return
}

// registerOf returns the register index of a 'vN' word.
func registerOf(word string) (reg uint8, ok bool) {
	if len(word) != 2 || (word[0] != 'v' && word[0] != 'V') {
		return
	}

	v64, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return uint8(v64), true
}

// isLabel returns true if the word could be a label name.
var isLabel = regexp.MustCompile(`^[A-Za-z_@][A-Za-z0-9_@.]*$`).MatchString

// parenEval evaluates an expression with the integer equates in scope.
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v int
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// parseLine parses a single line into words, handling equates, labels
// and macro expansion.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddress()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		// '@' is unique per expansion site.
		prefix := fmt.Sprintf("%v_%v_", name, lineno)
		for n, line := range macro.Lines {
			macro_lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", prefix)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: macro_lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: macro_lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddress gets the address of the next generated byte.
func (asm *Assembler) currentAddress() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Address + len(last.Data)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(strings.ReplaceAll(line, ",", " "))

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		addr, ok := asm.Label[op.LinkLabel]
		if !ok {
			err = ErrLabelMissing(op.LinkLabel)
			return
		}
		if addr > 0xfff {
			err = ErrValueRange
			return
		}
		op.Data[0] |= byte(addr>>8) & 0x0f
		op.Data[1] |= byte(addr)
	}

	if asm.currentAddress() > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// parseData evaluates the arguments of .byte and .word directives.
func (asm *Assembler) parseData(words []string, size int) (data []byte, err error) {
	if len(words) == 0 {
		err = ErrOpcodeValueMissing
		return
	}

	limit := 1 << (8 * size)
	for _, word := range words {
		var value int
		value, err = asm.valueOf(word)
		if err != nil {
			return
		}
		if value < -(limit/2) || value >= limit {
			err = ErrValueRange
			return
		}
		if size == 2 {
			data = append(data, byte(value>>8))
		}
		data = append(data, byte(value))
	}

	return
}

// operandValue parses a numeric operand in the range [-(limit/2), limit).
func (asm *Assembler) operandValue(word string, limit int) (value uint16, err error) {
	v, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if v < -(limit/2) || v >= limit {
		err = ErrValueRange
		return
	}

	value = uint16(v) & uint16(limit-1)
	return
}

// encode attempts to encode the operands with a specific opcode syntax.
func (asm *Assembler) encode(info *OpcodeInfo, args []string) (code Code, label string, err error) {
	if len(args) < len(info.Operands) {
		err = ErrOpcodeValueMissing
		return
	}
	if len(args) > len(info.Operands) {
		err = ErrOpcodeExtraArgs
		return
	}

	word := info.Value
	for n, operand := range info.Operands {
		arg := args[n]
		switch operand {
		case OPERAND_VX, OPERAND_VY:
			reg, ok := registerOf(arg)
			if !ok {
				err = ErrRegisterInvalid
				return
			}
			if operand == OPERAND_VX {
				word |= uint16(reg) << 8
			} else {
				word |= uint16(reg) << 4
			}
		case OPERAND_N:
			var value uint16
			value, err = asm.operandValue(arg, 0x10)
			if err != nil {
				return
			}
			word |= value
		case OPERAND_KK:
			var value uint16
			value, err = asm.operandValue(arg, 0x100)
			if err != nil {
				return
			}
			word |= value
		case OPERAND_NNN:
			var value uint16
			value, err = asm.operandValue(arg, 0x1000)
			if err != nil {
				if _, is_reg := registerOf(arg); is_reg || !isLabel(arg) {
					return
				}
				// Resolved at link time.
				err = nil
				label = arg
			}
			word |= value
		default:
			if !strings.EqualFold(arg, operand) {
				err = ErrOperandInvalid
				return
			}
		}
	}

	code = Code(word)
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Address: asm.currentAddress(), Words: initial_words, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	name := strings.ToLower(words[0])
	args := words[1:]

	switch name {
	case ".byte":
		data, err = asm.parseData(args, 1)
		return
	case ".word":
		data, err = asm.parseData(args, 2)
		return
	}

	var found bool
	var arity_err, syntax_err error
	for n := range Opcodes {
		info := &Opcodes[n]
		if info.Instruction == INS_INVALID || info.Name != name {
			continue
		}
		found = true

		var code Code
		code, label, err = asm.encode(info, args)
		switch err {
		case nil:
			data = []byte{byte(code >> 8), byte(code)}
			return
		case ErrOpcodeValueMissing, ErrOpcodeExtraArgs:
			if arity_err == nil {
				arity_err = err
			}
		default:
			if syntax_err == nil {
				syntax_err = err
			}
		}
	}

	label = ""

	switch {
	case !found:
		err = ErrInstructionInvalid
	case syntax_err != nil:
		err = syntax_err
	default:
		err = arity_err
	}

	return
}

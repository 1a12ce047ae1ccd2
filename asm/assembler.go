// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package asm assembles LEGv8 assembly text into a program.
package asm

import (
	"bufio"
	"io"
	"log"
	"maps"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/legsim/cpu"
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":    "0",
	"WORD_SIZE": strconv.FormatInt(cpu.WORD_SIZE, 10),
	"XZR":       "R31",
}

// mnemonics maps assembly mnemonics to their opcodes.
var mnemonics = map[string]cpu.Op{}

func init() {
	for op := cpu.OP_AND; op <= cpu.OP_BREAK; op++ {
		mnemonics[op.String()] = op
	}
}

var (
	reLabel = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
	reReg   = regexp.MustCompile(`^[RrXx]([0-9]+)$`)
)

// statement is a line of code or data, placed at an address.
type statement struct {
	LineNo  int
	Line    string // Input line, for diagnostics.
	Text    string // Statement without labels or comments.
	Address int64
	Data    bool // Set for a .word statement.
}

// Assembler is a two pass assembler for LEGv8 assembly text.
type Assembler struct {
	Verbose bool  // If set, verbosely logs the assembler actions.
	Entry   int64 // Address of the first instruction.

	predefine map[string]string // Predefines
	Label     map[string]int64  // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// stripComment removes ';' and '//' comments.
func stripComment(text string) string {
	text, _, _ = strings.Cut(text, ";")
	text, _, _ = strings.Cut(text, "//")
	return strings.TrimSpace(text)
}

// parenEval does compile-time $(...) evaluations over the integer equates
// and the labels.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, _err := strconv.ParseInt(str, 0, 64)
		if _err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, address := range asm.Label {
		pred[key] = starlark.MakeInt64(address)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	ok := false
	switch st_rc := dict["rc"].(type) {
	case starlark.Int:
		value, ok = st_rc.Int64()
	case starlark.Float:
		// Integral quotients of '/' are accepted.
		ok = st_rc == starlark.Float(math.Trunc(float64(st_rc)))
		value = int64(st_rc)
	}
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expand replaces the $(...) expressions of a statement with their values.
func (asm *Assembler) expand(text string, lineno int) (expanded string, err error) {
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	expanded = reParen.ReplaceAllStringFunc(text, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})

	return
}

// resolve substitutes an equate for a word.
func (asm *Assembler) resolve(word string) string {
	equate, ok := asm.Equate[word]
	if ok {
		return equate
	}
	return word
}

// valueOf returns the value of an immediate word, with an optional '#'.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	word = asm.resolve(strings.TrimPrefix(word, "#"))
	value, err = strconv.ParseInt(strings.TrimPrefix(word, "#"), 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}
	return
}

// registerOf returns the register named by a word.
func (asm *Assembler) registerOf(word string) (reg cpu.Reg, err error) {
	match := reReg.FindStringSubmatch(asm.resolve(word))
	if match == nil {
		match = reReg.FindStringSubmatch(asm.resolve(strings.ToUpper(word)))
	}
	if match == nil {
		err = ErrRegisterInvalid
		return
	}
	index, err := strconv.Atoi(match[1])
	if err != nil || index >= cpu.REGISTER_COUNT {
		err = ErrRegisterInvalid
		return
	}
	reg = cpu.Reg(index)
	return
}

// targetOf returns the word offset of a branch target from an address. The
// target is either an immediate word offset, or a label.
func (asm *Assembler) targetOf(word string, address int64) (offset int64, err error) {
	offset, err = asm.valueOf(word)
	if err == nil {
		return
	}

	label, ok := asm.Label[word]
	if !ok {
		err = ErrLabelMissing(word)
		return
	}

	offset = (label - address) / cpu.WORD_SIZE
	err = nil
	return
}

// operands splits the operand list of a statement.
func operands(text string) (args []string) {
	if len(text) == 0 {
		return
	}
	for _, arg := range strings.Split(text, ",") {
		arg = strings.Trim(strings.TrimSpace(arg), "[]")
		args = append(args, strings.TrimSpace(arg))
	}
	return
}

// argCount checks that there are between least and most operands.
func argCount(args []string, least int, most int) (err error) {
	switch {
	case len(args) < least:
		err = ErrOpcodeValueMissing
	case len(args) > most:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseStatement assembles a single instruction statement at an address.
func (asm *Assembler) parseStatement(text string, address int64) (inst cpu.Instruction, err error) {
	mnemonic, rest, _ := strings.Cut(text, " ")

	op, ok := mnemonics[strings.ToUpper(mnemonic)]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	args := operands(strings.TrimSpace(rest))
	regs := make([]cpu.Reg, 3)
	format, _ := op.Format()

	// Register operands come first in every format.
	nregs := map[cpu.Format]int{
		cpu.FORMAT_R:  3,
		cpu.FORMAT_I:  2,
		cpu.FORMAT_D:  2,
		cpu.FORMAT_CB: 1,
		cpu.FORMAT_IM: 1,
	}[format]
	if format == cpu.FORMAT_R && op.Shift() {
		nregs = 2
	}
	for n := range min(nregs, len(args)) {
		regs[n], err = asm.registerOf(args[n])
		if err != nil {
			return
		}
	}

	switch format {
	case cpu.FORMAT_R:
		err = argCount(args, 3, 3)
		if err != nil {
			return
		}
		code := cpu.RType{Op: op, Rd: regs[0], Rn: regs[1], Rm: regs[2]}
		if op.Shift() {
			var shamt int64
			shamt, err = asm.valueOf(args[2])
			if err != nil {
				return
			}
			if shamt < 0 || shamt > cpu.SHAMT_LIMIT {
				err = cpu.ErrOperandRange
				return
			}
			code.Shamt = uint8(shamt)
		}
		inst = code
	case cpu.FORMAT_I:
		err = argCount(args, 3, 3)
		if err != nil {
			return
		}
		code := cpu.IType{Op: op, Rd: regs[0], Rn: regs[1]}
		code.Immediate, err = asm.valueOf(args[2])
		inst = code
	case cpu.FORMAT_D:
		err = argCount(args, 2, 3)
		if err != nil {
			return
		}
		code := cpu.DType{Op: op, Rt: regs[0], Rn: regs[1]}
		if len(args) == 3 {
			code.Offset, err = asm.valueOf(args[2])
		}
		inst = code
	case cpu.FORMAT_B:
		err = argCount(args, 1, 1)
		if err != nil {
			return
		}
		code := cpu.BType{}
		code.Offset, err = asm.targetOf(args[0], address)
		inst = code
	case cpu.FORMAT_CB:
		err = argCount(args, 2, 2)
		if err != nil {
			return
		}
		code := cpu.CBType{Op: op, Rt: regs[0]}
		code.Offset, err = asm.targetOf(args[1], address)
		inst = code
	case cpu.FORMAT_IM:
		err = argCount(args, 2, 3)
		if err != nil {
			return
		}
		var value int64
		value, err = asm.valueOf(args[1])
		if err != nil {
			return
		}
		if value < 0 || value > 0xffff {
			err = cpu.ErrOperandRange
			return
		}
		code := cpu.IMType{Op: op, Rd: regs[0], Immediate: uint16(value)}
		if len(args) == 3 {
			code.Shift, err = asm.shiftOf(args[2])
		}
		inst = code
	case cpu.FORMAT_NOP:
		err = argCount(args, 0, 0)
		inst = cpu.NopType{}
	case cpu.FORMAT_BREAK:
		err = argCount(args, 0, 0)
		inst = cpu.BreakType{}
	}

	return
}

// shiftOf parses an 'LSL n' chunk shift, where n is a multiple of 16.
func (asm *Assembler) shiftOf(arg string) (shift uint8, err error) {
	words := strings.Fields(arg)
	if len(words) != 2 || strings.ToUpper(words[0]) != "LSL" {
		err = ErrShiftInvalid
		return
	}
	bits, err := asm.valueOf(words[1])
	if err != nil {
		return
	}
	if bits < 0 || bits%cpu.CHUNK_BITS != 0 || bits/cpu.CHUNK_BITS > cpu.CHUNK_LIMIT {
		err = ErrShiftInvalid
		return
	}
	shift = uint8(bits / cpu.CHUNK_BITS)
	return
}

// Parse parses an input stream into a program. The first pass places every
// statement and collects the labels and equates. The second pass encodes
// the statements.
func (asm *Assembler) Parse(input io.Reader) (prog *cpu.Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int64, 16)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	var stmts []statement
	address := asm.Entry
	in_data := false

	for scanner.Scan() {
		line = scanner.Text()
		lineno++

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, line)
		}

		text := stripComment(line)
		for {
			match := reLabel.FindStringSubmatch(text)
			if match == nil {
				break
			}
			label := match[1]
			_, ok := asm.Label[label]
			if ok {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = address
			text = strings.TrimSpace(text[len(match[0]):])
		}

		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}

		switch strings.ToLower(words[0]) {
		case ".equ":
			// .equ CONST VALUE
			if len(words) < 3 {
				err = ErrEquateSyntax
				return
			}
			_, ok := asm.Equate[words[1]]
			if ok {
				err = ErrEquateDuplicate
				return
			}
			var value string
			value, err = asm.expand(strings.Join(words[2:], " "), lineno)
			if err != nil {
				return
			}
			asm.Equate[words[1]] = value
			continue
		case ".word":
			in_data = true
		default:
			if in_data {
				err = ErrCodeAfterData
				return
			}
		}

		stmts = append(stmts, statement{
			LineNo:  lineno,
			Line:    line,
			Text:    strings.Join(words, " "),
			Address: address,
			Data:    in_data,
		})
		address += cpu.WORD_SIZE
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	var insts []cpu.Instruction
	data := map[int64]int64{}

	for _, stmt := range stmts {
		lineno = stmt.LineNo
		line = stmt.Line

		var text string
		text, err = asm.expand(stmt.Text, stmt.LineNo)
		if err != nil {
			return
		}

		if stmt.Data {
			words := strings.Fields(text)
			if len(words) != 2 {
				err = ErrWordSyntax
				return
			}
			var value int64
			value, err = asm.valueOf(words[1])
			if err != nil {
				return
			}
			if int64(int32(value)) != value && int64(uint32(value)) != value {
				err = cpu.ErrOperandRange
				return
			}
			data[stmt.Address] = int64(int32(value))
			continue
		}

		var inst cpu.Instruction
		inst, err = asm.parseStatement(text, stmt.Address)
		if err != nil {
			return
		}
		inst = cpu.WithSource(inst, cpu.Source{Address: stmt.Address, Text: stmt.Text})

		// Check the operand ranges.
		_, err = cpu.Encode(inst)
		if err != nil {
			return
		}

		insts = append(insts, inst)
	}

	lineno = 0
	line = ""

	prog, err = cpu.NewProgram(insts, data)
	return
}

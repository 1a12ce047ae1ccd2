// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package disasm decodes programs written as text, one 32 digit binary
// machine word per line, and writes them back out as listings.
package disasm

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"strconv"
	"strings"

	"github.com/ezrec/legsim/cpu"
	"github.com/ezrec/legsim/internal"
)

const (
	WORD_DIGITS = 32         // Binary digits per input line.
	FILE_SUFFIX = "_dis.txt" // Appended to the output prefix of a listing.
)

// fieldWidths are the binary field groupings of each format in a listing.
var fieldWidths = map[cpu.Format][]int{
	cpu.FORMAT_R:     {11, 5, 6, 5, 5},
	cpu.FORMAT_I:     {10, 12, 5, 5},
	cpu.FORMAT_D:     {11, 9, 2, 5, 5},
	cpu.FORMAT_B:     {6, 26},
	cpu.FORMAT_CB:    {8, 19, 5},
	cpu.FORMAT_IM:    {9, 2, 16, 5},
	cpu.FORMAT_NOP:   {32},
	cpu.FORMAT_BREAK: {8, 3, 5, 5, 5, 6},
}

// Disassembler decodes binary text into a program.
type Disassembler struct {
	Verbose bool  // If set, verbosely logs each decoded word.
	Entry   int64 // Address of the first word.
}

// parseWord converts a line of binary digits into a machine word.
// Spaces are ignored.
func parseWord(line string) (word uint32, err error) {
	digits := strings.ReplaceAll(line, " ", "")
	if len(digits) != WORD_DIGITS {
		err = ErrWordLength
		return
	}

	for _, digit := range digits {
		switch digit {
		case '0':
			word <<= 1
		case '1':
			word = word<<1 | 1
		default:
			err = ErrWordDigit
			return
		}
	}

	return
}

// Parse decodes instruction words up to and including the first BREAK, then
// signed data words at the following addresses.
func (dis *Disassembler) Parse(input io.Reader) (prog *cpu.Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	var insts []cpu.Instruction
	data := map[int64]int64{}
	address := dis.Entry
	in_data := false

	for scanner.Scan() {
		line = strings.TrimSpace(scanner.Text())
		lineno++

		if len(line) == 0 {
			continue
		}

		var word uint32
		word, err = parseWord(line)
		if err != nil {
			return
		}

		if in_data {
			data[address] = int64(int32(word))
			if dis.Verbose {
				log.Printf("%v: data %v", address, int32(word))
			}
			address += cpu.WORD_SIZE
			continue
		}

		var inst cpu.Instruction
		inst, err = cpu.Decode(word, address)
		if err != nil {
			return
		}
		inst = cpu.WithSource(inst, cpu.Source{Address: address, Text: inst.String()})
		if dis.Verbose {
			log.Printf("%v: %v", address, inst)
		}
		insts = append(insts, inst)
		address += cpu.WORD_SIZE

		if inst.Format() == cpu.FORMAT_BREAK {
			in_data = true
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if !in_data {
		line = ""
		err = ErrBreakMissing
		return
	}

	prog, err = cpu.NewProgram(insts, data)
	return
}

// group renders a word in binary, with spaces between the fields of
// its format.
func group(word uint32, format cpu.Format) string {
	digits := fmt.Sprintf("%032b", word)

	var fields []string
	for _, width := range fieldWidths[format] {
		fields = append(fields, digits[:width])
		digits = digits[width:]
	}

	return strings.Join(fields, " ")
}

// dataWords iterates over the data region of a program, from its first
// address through its highest initialized address.
func dataWords(prog *cpu.Program) iter.Seq2[int64, int64] {
	return func(yield func(address int64, value int64) bool) {
		var mem cpu.Memory
		mem.Load(prog.Data())
		for address, value := range mem.Words(prog.DataBegin()) {
			if !yield(address, value) {
				return
			}
		}
	}
}

// Listing writes one line per word of a program: the grouped binary
// word, its address, and its assembly text or data value.
func (dis *Disassembler) Listing(output io.Writer, prog *cpu.Program) (err error) {
	var code iter.Seq[string] = func(yield func(string) bool) {
		for address, inst := range prog.Instructions() {
			var word uint32
			word, err = cpu.Encode(inst)
			if err != nil {
				return
			}
			line := group(word, inst.Format()) + "\t" + strconv.FormatInt(address, 10) + "\t" + cpu.Text(inst)
			if !yield(line) {
				return
			}
		}
	}

	var data iter.Seq[string] = func(yield func(string) bool) {
		for address, value := range dataWords(prog) {
			line := fmt.Sprintf("%032b\t%d\t%d", uint32(value), address, value)
			if !yield(line) {
				return
			}
		}
	}

	w := bufio.NewWriter(output)
	for line := range internal.IterSeqConcat(code, data) {
		if err != nil {
			break
		}
		fmt.Fprintln(w, line)
	}
	if err != nil {
		return
	}

	err = w.Flush()
	return
}

// Save writes the machine words of a program as binary text that Parse
// accepts.
func Save(output io.Writer, prog *cpu.Program) (err error) {
	words, err := prog.Binary()
	if err != nil {
		return
	}

	w := bufio.NewWriter(output)
	for _, word := range words {
		fmt.Fprintf(w, "%032b\n", word)
	}

	err = w.Flush()
	return
}

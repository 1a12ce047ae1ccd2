package cpu

import (
	"iter"
	"maps"
	"slices"
)

// Program is the immutable instruction store and initial data image of a
// decoded program.
type Program struct {
	code      map[int64]Instruction
	addresses []int64
	data      map[int64]int64
	dataBegin int64
}

// NewProgram builds a program from decoded instructions and the initial data
// image. The data region begins at the word following the last instruction.
func NewProgram(insts []Instruction, data map[int64]int64) (prog *Program, err error) {
	prog = &Program{
		code: make(map[int64]Instruction, len(insts)),
		data: maps.Clone(data),
	}
	if prog.data == nil {
		prog.data = make(map[int64]int64)
	}

	for _, inst := range insts {
		err = Validate(inst)
		if err != nil {
			if IsRecord(inst) {
				err = &ErrInstruction{Source: inst.Location(), Err: err}
			}
			prog = nil
			return
		}

		address := inst.Location().Address
		_, ok := prog.code[address]
		if ok {
			err = &ErrInstruction{Source: inst.Location(), Err: ErrAddressDuplicate}
			prog = nil
			return
		}
		prog.code[address] = inst
		prog.addresses = append(prog.addresses, address)
	}

	slices.Sort(prog.addresses)
	if len(prog.addresses) > 0 {
		prog.dataBegin = prog.addresses[len(prog.addresses)-1] + WORD_SIZE
	}

	for address := range prog.data {
		switch {
		case address%WORD_SIZE != 0:
			err = ErrMisalignedAddress
		case address < prog.dataBegin:
			err = ErrDataOverlap
		}
		if err != nil {
			prog = nil
			return
		}
	}

	return
}

// Lookup returns the instruction at an address.
func (prog *Program) Lookup(address int64) (inst Instruction, ok bool) {
	inst, ok = prog.code[address]
	return
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	return len(prog.addresses)
}

// DataBegin returns the first address of the data region.
func (prog *Program) DataBegin() int64 {
	return prog.dataBegin
}

// Instructions iterates over the instructions in ascending address order.
func (prog *Program) Instructions() iter.Seq2[int64, Instruction] {
	return func(yield func(address int64, inst Instruction) bool) {
		for _, address := range prog.addresses {
			if !yield(address, prog.code[address]) {
				return
			}
		}
	}
}

// Data iterates over the initial data image in ascending address order.
func (prog *Program) Data() iter.Seq2[int64, int64] {
	return func(yield func(address int64, value int64) bool) {
		for _, address := range slices.Sorted(maps.Keys(prog.data)) {
			if !yield(address, prog.data[address]) {
				return
			}
		}
	}
}

// Binary returns the machine words of the program: the instructions in
// address order, then the data words from DataBegin through the highest
// data address, with unset words as zero.
func (prog *Program) Binary() (bins []uint32, err error) {
	for _, inst := range prog.Instructions() {
		var word uint32
		word, err = Encode(inst)
		if err != nil {
			return
		}
		bins = append(bins, word)
	}

	var high int64
	for address := range prog.data {
		high = max(high, address)
	}
	if len(prog.data) == 0 {
		return
	}
	for address := prog.dataBegin; address <= high; address += WORD_SIZE {
		bins = append(bins, uint32(prog.data[address]))
	}

	return
}

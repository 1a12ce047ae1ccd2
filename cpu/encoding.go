package cpu

import (
	"errors"
)

const (
	WORD_BREAK = uint32(0xfedeffe7) // BREAK machine word.
	WORD_NOP   = uint32(0x00000000) // NOP machine word.
)

// Field widths of the immediate operands.
const (
	I_IMMEDIATE_BITS  = 12
	D_OFFSET_BITS     = 9
	B_OFFSET_BITS     = 26
	CB_OFFSET_BITS    = 19
	IM_IMMEDIATE_BITS = 16
)

// encoding is the opcode prefix of a mnemonic, left justified in a word.
type encoding struct {
	Op    Op
	Width uint   // Width of the opcode prefix, in bits.
	Value uint32 // Value of the opcode prefix.
}

// encodings is ordered by decreasing prefix width, so the first match is
// the most specific.
var encodings = []encoding{
	{OP_AND, 11, 0b10001010000},
	{OP_ADD, 11, 0b10001011000},
	{OP_ORR, 11, 0b10101010000},
	{OP_SUB, 11, 0b11001011000},
	{OP_LSR, 11, 0b11010011010},
	{OP_LSL, 11, 0b11010011011},
	{OP_ASR, 11, 0b11010011100},
	{OP_EOR, 11, 0b11101010000},
	{OP_STUR, 11, 0b11111000000},
	{OP_LDUR, 11, 0b11111000010},
	{OP_ADDI, 10, 0b1001000100},
	{OP_SUBI, 10, 0b1101000100},
	{OP_MOVZ, 9, 0b110100101},
	{OP_MOVK, 9, 0b111100101},
	{OP_CBZ, 8, 0b10110100},
	{OP_CBNZ, 8, 0b10110101},
	{OP_B, 6, 0b000101},
}

// field extracts width bits of word, starting at bit lsb.
func field(word uint32, lsb uint, width uint) uint32 {
	return (word >> lsb) & ((1 << width) - 1)
}

// signExtend interprets the low width bits of value as two's complement.
func signExtend(value uint32, width uint) int64 {
	shift := 64 - width
	return int64(uint64(value)<<shift) >> shift
}

// fits returns true if value is representable as a width bit signed field.
func fits(value int64, width uint) bool {
	limit := int64(1) << (width - 1)
	return value >= -limit && value < limit
}

// Decode decodes a machine word at an address into an instruction. The
// instruction Text is left empty.
func Decode(word uint32, address int64) (inst Instruction, err error) {
	src := Source{Address: address}

	switch word {
	case WORD_BREAK:
		inst = BreakType{Source: src}
		return
	case WORD_NOP:
		inst = NopType{Source: src}
		return
	}

	for _, enc := range encodings {
		if word>>(32-enc.Width) != enc.Value {
			continue
		}

		format, _ := enc.Op.Format()
		switch format {
		case FORMAT_R:
			inst = RType{
				Source: src,
				Op:     enc.Op,
				Rm:     Reg(field(word, 16, 5)),
				Shamt:  uint8(field(word, 10, 6)),
				Rn:     Reg(field(word, 5, 5)),
				Rd:     Reg(field(word, 0, 5)),
			}
		case FORMAT_I:
			inst = IType{
				Source:    src,
				Op:        enc.Op,
				Immediate: signExtend(field(word, 10, I_IMMEDIATE_BITS), I_IMMEDIATE_BITS),
				Rn:        Reg(field(word, 5, 5)),
				Rd:        Reg(field(word, 0, 5)),
			}
		case FORMAT_D:
			inst = DType{
				Source: src,
				Op:     enc.Op,
				Offset: signExtend(field(word, 12, D_OFFSET_BITS), D_OFFSET_BITS),
				Rn:     Reg(field(word, 5, 5)),
				Rt:     Reg(field(word, 0, 5)),
			}
		case FORMAT_B:
			inst = BType{
				Source: src,
				Offset: signExtend(field(word, 0, B_OFFSET_BITS), B_OFFSET_BITS),
			}
		case FORMAT_CB:
			inst = CBType{
				Source: src,
				Op:     enc.Op,
				Offset: signExtend(field(word, 5, CB_OFFSET_BITS), CB_OFFSET_BITS),
				Rt:     Reg(field(word, 0, 5)),
			}
		case FORMAT_IM:
			inst = IMType{
				Source:    src,
				Op:        enc.Op,
				Shift:     uint8(field(word, 21, 2)),
				Immediate: uint16(field(word, 5, IM_IMMEDIATE_BITS)),
				Rd:        Reg(field(word, 0, 5)),
			}
		}
		return
	}

	err = ErrWord(word)
	return
}

// Encode encodes an instruction into its machine word.
func Encode(inst Instruction) (word uint32, err error) {
	defer func() {
		if err != nil && IsRecord(inst) {
			err = &ErrInstruction{Source: inst.Location(), Err: err}
		}
	}()

	err = Validate(inst)
	if errors.Is(err, ErrMisalignedAddress) {
		// Encoding does not depend on the address.
		err = nil
	}
	if err != nil {
		return
	}

	switch inst.(type) {
	case BreakType:
		word = WORD_BREAK
		return
	case NopType:
		word = WORD_NOP
		return
	}

	var enc encoding
	for _, enc = range encodings {
		if enc.Op == inst.Opcode() {
			break
		}
	}
	word = enc.Value << (32 - enc.Width)

	switch code := inst.(type) {
	case RType:
		word |= uint32(code.Rm)<<16 | uint32(code.Shamt)<<10 | uint32(code.Rn)<<5 | uint32(code.Rd)
	case IType:
		if !fits(code.Immediate, I_IMMEDIATE_BITS) {
			err = ErrOperandRange
			return
		}
		word |= field(uint32(code.Immediate), 0, I_IMMEDIATE_BITS)<<10 | uint32(code.Rn)<<5 | uint32(code.Rd)
	case DType:
		if !fits(code.Offset, D_OFFSET_BITS) {
			err = ErrOperandRange
			return
		}
		word |= field(uint32(code.Offset), 0, D_OFFSET_BITS)<<12 | uint32(code.Rn)<<5 | uint32(code.Rt)
	case BType:
		if !fits(code.Offset, B_OFFSET_BITS) {
			err = ErrOperandRange
			return
		}
		word |= field(uint32(code.Offset), 0, B_OFFSET_BITS)
	case CBType:
		if !fits(code.Offset, CB_OFFSET_BITS) {
			err = ErrOperandRange
			return
		}
		word |= field(uint32(code.Offset), 0, CB_OFFSET_BITS)<<5 | uint32(code.Rt)
	case IMType:
		word |= uint32(code.Shift)<<21 | uint32(code.Immediate)<<5 | uint32(code.Rd)
	}

	return
}

package cpu

import (
	"fmt"
)

// Format is the shape of an instruction.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FORMAT_R     = Format(0) // R
	FORMAT_I     = Format(1) // I
	FORMAT_D     = Format(2) // D
	FORMAT_B     = Format(3) // B
	FORMAT_CB    = Format(4) // CB
	FORMAT_IM    = Format(5) // IM
	FORMAT_NOP   = Format(6) // NOP
	FORMAT_BREAK = Format(7) // BREAK
)

// Op is an instruction mnemonic.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_AND   = Op(0)  // AND
	OP_ADD   = Op(1)  // ADD
	OP_ORR   = Op(2)  // ORR
	OP_EOR   = Op(3)  // EOR
	OP_SUB   = Op(4)  // SUB
	OP_ASR   = Op(5)  // ASR
	OP_LSR   = Op(6)  // LSR
	OP_LSL   = Op(7)  // LSL
	OP_ADDI  = Op(8)  // ADDI
	OP_SUBI  = Op(9)  // SUBI
	OP_LDUR  = Op(10) // LDUR
	OP_STUR  = Op(11) // STUR
	OP_B     = Op(12) // B
	OP_CBZ   = Op(13) // CBZ
	OP_CBNZ  = Op(14) // CBNZ
	OP_MOVZ  = Op(15) // MOVZ
	OP_MOVK  = Op(16) // MOVK
	OP_NOP   = Op(17) // NOP
	OP_BREAK = Op(18) // BREAK
)

// opFormat maps each mnemonic to the only format it is valid in.
var opFormat = map[Op]Format{
	OP_AND:   FORMAT_R,
	OP_ADD:   FORMAT_R,
	OP_ORR:   FORMAT_R,
	OP_EOR:   FORMAT_R,
	OP_SUB:   FORMAT_R,
	OP_ASR:   FORMAT_R,
	OP_LSR:   FORMAT_R,
	OP_LSL:   FORMAT_R,
	OP_ADDI:  FORMAT_I,
	OP_SUBI:  FORMAT_I,
	OP_LDUR:  FORMAT_D,
	OP_STUR:  FORMAT_D,
	OP_B:     FORMAT_B,
	OP_CBZ:   FORMAT_CB,
	OP_CBNZ:  FORMAT_CB,
	OP_MOVZ:  FORMAT_IM,
	OP_MOVK:  FORMAT_IM,
	OP_NOP:   FORMAT_NOP,
	OP_BREAK: FORMAT_BREAK,
}

// Format returns the format of the mnemonic, and false for an unknown Op.
func (op Op) Format() (format Format, ok bool) {
	format, ok = opFormat[op]
	return
}

// Shift returns true for the R format shift operations, which use Shamt
// instead of Rm.
func (op Op) Shift() bool {
	return op == OP_ASR || op == OP_LSR || op == OP_LSL
}

// Reg is a general purpose register index.
type Reg uint8

const (
	REGISTER_COUNT = 32       // Number of general purpose registers.
	REG_XZR        = Reg(31)  // Register optionally hardwired to zero.
	SHAMT_LIMIT    = 63       // Largest R format shift amount.
	CHUNK_LIMIT    = 3        // Largest IM format chunk index.
	CHUNK_BITS     = 16       // Bits per IM format chunk.
	WORD_SIZE      = int64(4) // Bytes per instruction or data word.
)

// Valid returns true if the register index is within the register file.
func (reg Reg) Valid() bool {
	return int(reg) < REGISTER_COUNT
}

func (reg Reg) String() string {
	return fmt.Sprintf("R%d", uint8(reg))
}

// Source is the location and original assembly text of an instruction.
type Source struct {
	Address int64  // Byte address of the instruction.
	Text    string // Assembly text, as supplied by the decoder.
}

// Location returns the source of the instruction.
func (src Source) Location() Source {
	return src
}

// Instruction is a decoded instruction record. The set of implementations
// is closed: RType, IType, DType, BType, CBType, IMType, NopType, BreakType.
type Instruction interface {
	fmt.Stringer
	Format() Format
	Opcode() Op
	Location() Source
	instruction()
}

// Text returns the original assembly text of the instruction, or its
// canonical rendering when the decoder supplied none.
func Text(inst Instruction) string {
	text := inst.Location().Text
	if len(text) == 0 {
		text = inst.String()
	}
	return text
}

// RType is a register to register operation.
type RType struct {
	Source
	Op    Op
	Rd    Reg
	Rn    Reg
	Rm    Reg
	Shamt uint8
}

func (RType) instruction() {}
func (RType) Format() Format { return FORMAT_R }
func (inst RType) Opcode() Op { return inst.Op }
func (inst RType) String() string {
	if inst.Op.Shift() {
		return fmt.Sprintf("%v\t%v, %v, #%d", inst.Op, inst.Rd, inst.Rn, inst.Shamt)
	}
	return fmt.Sprintf("%v\t%v, %v, %v", inst.Op, inst.Rd, inst.Rn, inst.Rm)
}

// IType is a register and signed immediate operation.
type IType struct {
	Source
	Op        Op
	Rd        Reg
	Rn        Reg
	Immediate int64
}

func (IType) instruction() {}
func (IType) Format() Format { return FORMAT_I }
func (inst IType) Opcode() Op { return inst.Op }
func (inst IType) String() string {
	return fmt.Sprintf("%v\t%v, %v, #%d", inst.Op, inst.Rd, inst.Rn, inst.Immediate)
}

// DType is a load or store at Rn + Offset words.
type DType struct {
	Source
	Op     Op
	Rn     Reg
	Rt     Reg
	Offset int64
}

func (DType) instruction() {}
func (DType) Format() Format { return FORMAT_D }
func (inst DType) Opcode() Op { return inst.Op }
func (inst DType) String() string {
	return fmt.Sprintf("%v\t%v, [%v, #%d]", inst.Op, inst.Rt, inst.Rn, inst.Offset)
}

// BType is an unconditional branch by Offset words.
type BType struct {
	Source
	Offset int64
}

func (BType) instruction() {}
func (BType) Format() Format { return FORMAT_B }
func (BType) Opcode() Op { return OP_B }
func (inst BType) String() string {
	return fmt.Sprintf("%v\t#%d", OP_B, inst.Offset)
}

// CBType is a branch by Offset words, conditional on the value of Rt.
type CBType struct {
	Source
	Op     Op
	Rt     Reg
	Offset int64
}

func (CBType) instruction() {}
func (CBType) Format() Format { return FORMAT_CB }
func (inst CBType) Opcode() Op { return inst.Op }
func (inst CBType) String() string {
	return fmt.Sprintf("%v\t%v, #%d", inst.Op, inst.Rt, inst.Offset)
}

// IMType moves a 16-bit Immediate into the Shift chunk of Rd.
type IMType struct {
	Source
	Op        Op
	Rd        Reg
	Immediate uint16
	Shift     uint8
}

func (IMType) instruction() {}
func (IMType) Format() Format { return FORMAT_IM }
func (inst IMType) Opcode() Op { return inst.Op }
func (inst IMType) String() string {
	return fmt.Sprintf("%v\t%v, %d, LSL %d", inst.Op, inst.Rd, inst.Immediate, int(inst.Shift)*CHUNK_BITS)
}

// NopType does nothing.
type NopType struct {
	Source
}

func (NopType) instruction() {}
func (NopType) Format() Format { return FORMAT_NOP }
func (NopType) Opcode() Op { return OP_NOP }
func (NopType) String() string { return OP_NOP.String() }

// BreakType halts the CPU.
type BreakType struct {
	Source
}

func (BreakType) instruction() {}
func (BreakType) Format() Format { return FORMAT_BREAK }
func (BreakType) Opcode() Op { return OP_BREAK }
func (BreakType) String() string { return OP_BREAK.String() }

// IsRecord reports whether inst is one of the instruction value types.
// Pointers to them, nil pointers included, are not records.
func IsRecord(inst Instruction) bool {
	switch inst.(type) {
	case RType, IType, DType, BType, CBType, IMType, NopType, BreakType:
		return true
	}
	return false
}

// Validate checks the operand domains of an instruction, and that its
// mnemonic belongs to its format.
func Validate(inst Instruction) (err error) {
	if inst == nil {
		err = ErrMalformedOperand
		return
	}

	if !IsRecord(inst) {
		err = ErrUnsupportedInstruction
		return
	}

	src := inst.Location()
	if src.Address < 0 || src.Address%WORD_SIZE != 0 {
		err = ErrMisalignedAddress
		return
	}

	format, ok := inst.Opcode().Format()
	if !ok || format != inst.Format() {
		err = ErrUnsupportedInstruction
		return
	}

	var regs []Reg
	switch code := inst.(type) {
	case RType:
		regs = []Reg{code.Rd, code.Rn, code.Rm}
		if code.Shamt > SHAMT_LIMIT {
			err = ErrMalformedOperand
			return
		}
	case IType:
		regs = []Reg{code.Rd, code.Rn}
	case DType:
		regs = []Reg{code.Rn, code.Rt}
	case CBType:
		regs = []Reg{code.Rt}
	case IMType:
		regs = []Reg{code.Rd}
		if code.Shift > CHUNK_LIMIT {
			err = ErrMalformedOperand
			return
		}
	}

	for _, reg := range regs {
		if !reg.Valid() {
			err = ErrMalformedOperand
			return
		}
	}

	return
}

// WithSource returns a copy of the instruction with its source replaced.
func WithSource(inst Instruction, src Source) Instruction {
	switch code := inst.(type) {
	case RType:
		code.Source = src
		return code
	case IType:
		code.Source = src
		return code
	case DType:
		code.Source = src
		return code
	case BType:
		code.Source = src
		return code
	case CBType:
		code.Source = src
		return code
	case IMType:
		code.Source = src
		return code
	case NopType:
		code.Source = src
		return code
	case BreakType:
		code.Source = src
		return code
	}
	return inst
}

package cpu

import (
	"errors"
	"strconv"

	"github.com/ezrec/legsim/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrInstructionFetch       = errors.New(f("instruction fetch out of range"))
	ErrUnsupportedInstruction = errors.New(f("unsupported instruction"))
	ErrMalformedOperand       = errors.New(f("malformed operand"))
	ErrMisalignedAddress      = errors.New(f("misaligned address"))
	ErrCycleLimit             = errors.New(f("cycle limit reached"))
	ErrHalted                 = errors.New(f("cpu halted"))
	ErrProgramMissing         = errors.New(f("no program loaded"))

	// Program errors
	ErrAddressDuplicate = errors.New(f("duplicate address"))
	ErrDataOverlap      = errors.New(f("data overlaps instructions"))

	// Encoding errors
	ErrUnknownOpcode = errors.New(f("unknown opcode"))
	ErrOperandRange  = errors.New(f("operand out of range"))
)

// ErrFetchOutOfRange is the program counter of a failed instruction fetch.
type ErrFetchOutOfRange int64

func (pc ErrFetchOutOfRange) Error() string {
	return f("instruction fetch out of range: pc %v", strconv.FormatInt(int64(pc), 10))
}

func (pc ErrFetchOutOfRange) Is(err error) bool {
	return err == ErrInstructionFetch
}

// ErrInstruction locates an error at an instruction.
type ErrInstruction struct {
	Source Source
	Err    error
}

func (err *ErrInstruction) Error() string {
	return f("%v '%v' %v", strconv.FormatInt(err.Source.Address, 10), err.Source.Text, err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

// ErrWord is a machine word that could not be decoded.
type ErrWord uint32

func (ew ErrWord) Error() string {
	return f("bad word 0x%08x", uint32(ew))
}

func (ew ErrWord) Is(err error) bool {
	return err == ErrUnknownOpcode
}

package cpu

import (
	"fmt"
	"log"
	"strings"
)

const (
	ENTRY_DEFAULT = int64(96) // Default address of the first instruction.
)

// Config is the machine configuration of a Cpu.
type Config struct {
	Entry        int64 // Address of the first instruction fetched.
	ZeroRegister bool  // If set, R31 is hardwired to zero.
	MaxCycles    int   // Abort after this many cycles. Zero is unlimited.
	DataBegin    int64 // If non-zero, overrides the start of the data region.
}

// DefaultConfig returns the configuration of the reference machine.
func DefaultConfig() Config {
	return Config{
		Entry: ENTRY_DEFAULT,
	}
}

// Cpu is the simulation context for the LEGv8 execution engine.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Config  Config // Machine configuration, applied on Reset.

	Pc       int64     // Program counter, a byte address.
	Register Registers // Register bank.
	Memory   Memory    // Data memory.
	Cycles   int       // Instructions executed since Reset.
	Halted   bool      // Set once a BREAK has executed.

	program *Program
}

// NewCpu creates a new CPU with a machine configuration.
func NewCpu(config Config) (cpu *Cpu) {
	cpu = &Cpu{
		Config: config,
	}

	return
}

// Program returns the program loaded by the last Reset.
func (cpu *Cpu) Program() *Program {
	return cpu.program
}

// DataBegin returns the first address of the data region.
func (cpu *Cpu) DataBegin() (address int64) {
	switch {
	case cpu.Config.DataBegin != 0:
		address = cpu.Config.DataBegin
	case cpu.program != nil:
		address = cpu.program.DataBegin()
	}
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "   pc: %d\n", cpu.Pc)
	fmt.Fprintf(&sb, "cycle: %d\n", cpu.Cycles)
	values := cpu.Register.Values()
	for n, value := range values {
		if value != 0 {
			fmt.Fprintf(&sb, "% 5s: %d\n", Reg(n).String(), value)
		}
	}
	for address, value := range cpu.Memory.Written() {
		fmt.Fprintf(&sb, "% 5d: %d\n", address, value)
	}

	text = sb.String()
	return
}

// Reset the CPU state.
// - Applies the configuration, rejecting a misaligned data region start.
// - Clears the registers, memory, and cycle counter.
// - Loads the initial data image of the program.
// - Sets the program counter to the entry point.
func (cpu *Cpu) Reset(prog *Program) (err error) {
	if prog == nil {
		err = ErrProgramMissing
		return
	}

	if cpu.Config.DataBegin < 0 || cpu.Config.DataBegin%WORD_SIZE != 0 {
		err = ErrMisalignedAddress
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: reset, entry %d", cpu.Config.Entry)
	}

	cpu.program = prog

	cpu.Register.Reset()
	cpu.Register.ZeroRegister = cpu.Config.ZeroRegister
	cpu.Memory.Reset()
	cpu.Memory.Load(prog.Data())

	cpu.Pc = cpu.Config.Entry
	cpu.Cycles = 0
	cpu.Halted = false

	return
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode() (inst Instruction, err error) {
	if cpu.program == nil {
		err = ErrProgramMissing
		return
	}

	inst, ok := cpu.program.Lookup(cpu.Pc)
	if !ok {
		err = ErrFetchOutOfRange(cpu.Pc)
		return
	}

	return
}

// Tick executes a single CPU instruction cycle, and returns the instruction
// that was executed.
func (cpu *Cpu) Tick() (inst Instruction, err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	if cpu.Config.MaxCycles > 0 && cpu.Cycles >= cpu.Config.MaxCycles {
		err = ErrCycleLimit
		return
	}

	inst, err = cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Cycles++

	return
}

// Execute executes a single decoded instruction at the program counter.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil && IsRecord(inst) {
			err = &ErrInstruction{Source: inst.Location(), Err: err}
		}
	}()

	err = Validate(inst)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%d: %v", cpu.Pc, Text(inst))
	}

	reg := &cpu.Register
	next_pc := cpu.Pc + WORD_SIZE

	switch code := inst.(type) {
	case RType:
		rn := reg.Read(code.Rn)
		rm := reg.Read(code.Rm)
		var value int64
		switch code.Op {
		case OP_AND:
			value = rn & rm
		case OP_ADD:
			value = rn + rm
		case OP_ORR:
			value = rn | rm
		case OP_EOR:
			value = rn ^ rm
		case OP_SUB:
			value = rn - rm
		case OP_ASR:
			value = rn >> code.Shamt
		case OP_LSR:
			value = int64(uint64(rn) >> code.Shamt)
		case OP_LSL:
			value = rn << code.Shamt
		default:
			err = ErrUnsupportedInstruction
			return
		}
		reg.Write(code.Rd, value)
	case IType:
		rn := reg.Read(code.Rn)
		switch code.Op {
		case OP_ADDI:
			reg.Write(code.Rd, rn+code.Immediate)
		case OP_SUBI:
			reg.Write(code.Rd, rn-code.Immediate)
		default:
			err = ErrUnsupportedInstruction
			return
		}
	case DType:
		address := reg.Read(code.Rn) + code.Offset*WORD_SIZE
		if address%WORD_SIZE != 0 {
			err = ErrMisalignedAddress
			return
		}
		switch code.Op {
		case OP_STUR:
			cpu.Memory.Write(address, reg.Read(code.Rt))
		case OP_LDUR:
			reg.Write(code.Rt, cpu.Memory.Read(address))
		default:
			err = ErrUnsupportedInstruction
			return
		}
	case BType:
		next_pc = cpu.Pc + code.Offset*WORD_SIZE
	case CBType:
		value := reg.Read(code.Rt)
		var taken bool
		switch code.Op {
		case OP_CBZ:
			taken = value == 0
		case OP_CBNZ:
			taken = value != 0
		default:
			err = ErrUnsupportedInstruction
			return
		}
		if taken {
			next_pc = cpu.Pc + code.Offset*WORD_SIZE
		}
	case IMType:
		shift := uint(code.Shift) * CHUNK_BITS
		chunk := int64(code.Immediate) << shift
		switch code.Op {
		case OP_MOVZ:
			reg.Write(code.Rd, chunk)
		case OP_MOVK:
			mask := int64(0xffff) << shift
			reg.Write(code.Rd, (reg.Read(code.Rd)&^mask)|chunk)
		default:
			err = ErrUnsupportedInstruction
			return
		}
	case NopType:
		// pass
	case BreakType:
		cpu.Halted = true
		if cpu.Verbose {
			log.Printf("cpu: halted after %d cycles", cpu.Cycles+1)
		}
	default:
		err = ErrUnsupportedInstruction
		return
	}

	cpu.Pc = next_pc

	return
}

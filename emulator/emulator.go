// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"iter"
	"maps"
	"strconv"

	"github.com/ezrec/legsim/cpu"
	"github.com/ezrec/legsim/trace"
)

// Emulator state. CPU + program + trace.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program.

	Trace *trace.Recorder // If set, records every executed instruction.
}

// NewEmulator creates a new emulator.
func NewEmulator(config cpu.Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(config),
	}

	return
}

// Defines returns an iterator over the machine configuration, as equates
// for the assembler.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	zero := "0"
	if emu.Cpu.Config.ZeroRegister {
		zero = "1"
	}

	return maps.All(map[string]string{
		"ENTRY":         strconv.FormatInt(emu.Cpu.Config.Entry, 10),
		"ZERO_REGISTER": zero,
	})
}

// Close the emulator, flushing and closing the trace.
func (emu *Emulator) Close() (err error) {
	if emu.Trace != nil {
		err = emu.Trace.Close()
	}

	return
}

// Reset the emulator onto the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Reset(emu.Program)
	if err != nil {
		return
	}

	return
}

// Ticks returns the total cycles since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Cycles
}

// Instruction returns the instruction at the program counter.
func (emu *Emulator) Instruction() (inst cpu.Instruction) {
	inst, _ = emu.Cpu.FetchCode()
	return
}

// Tick performs a single cycle of the emulator, and records it in the
// trace. Tick is done once the CPU halts.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	cycle := emu.Cpu.Cycles + 1
	address := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{Cycle: cycle, Address: address, Err: err}
		}
	}()

	inst, err := emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Trace != nil {
		err = emu.Trace.Record(emu.Cpu, inst)
		if err != nil {
			return
		}
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks the emulator until the CPU halts.
func (emu *Emulator) Run() (err error) {
	for done := false; !done; {
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

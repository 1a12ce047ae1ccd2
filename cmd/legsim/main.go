// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/ezrec/legsim/asm"
	"github.com/ezrec/legsim/cpu"
	"github.com/ezrec/legsim/disasm"
	"github.com/ezrec/legsim/emulator"
	"github.com/ezrec/legsim/trace"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// load reads a program, either as binary text or as assembly source.
func load(emu *emulator.Emulator, input string, compile string) (prog *cpu.Program, err error) {
	path := input
	if len(compile) != 0 {
		path = compile
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if len(compile) != 0 {
		asm := &asm.Assembler{Verbose: emu.Verbose, Entry: emu.Cpu.Config.Entry}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err = asm.Parse(inf)
	} else {
		dis := &disasm.Disassembler{Verbose: emu.Verbose, Entry: emu.Cpu.Config.Entry}
		prog, err = dis.Parse(inf)
	}
	if err != nil {
		err = &os.PathError{Op: "parse", Path: path, Err: err}
	}

	return
}

// listing writes the disassembly listing of a program.
func listing(prog *cpu.Program, prefix string) (err error) {
	ouf, err := os.Create(prefix + disasm.FILE_SUFFIX)
	if err != nil {
		return
	}
	defer func() {
		err_close := ouf.Close()
		if err == nil {
			err = err_close
		}
	}()

	dis := &disasm.Disassembler{}
	err = dis.Listing(ouf, prog)
	return
}

// run is the simulator driver. It returns the process exit status.
func run(args []string, stdout io.Writer, stderr io.Writer) (rc int) {
	var input string
	var compile string
	var output string
	var list bool
	var save bool
	var verbose bool
	var zero bool
	var entry int64
	var data_begin int64
	var cycles int

	log.SetOutput(stderr)
	log.SetPrefix("legsim: ")
	log.SetFlags(0)

	flags := flag.NewFlagSet("legsim", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&input, "i", "", "binary text program to simulate")
	flags.StringVar(&compile, "c", "", "assembly source to compile and simulate")
	flags.StringVar(&output, "o", "", "output prefix for the trace and listing")
	flags.BoolVar(&list, "l", false, "Write a listing to the output prefix")
	flags.BoolVar(&save, "s", false, "Save the program as binary text to stdout, do not execute")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")
	flags.BoolVar(&zero, "z", false, "Hardwire R31 to zero")
	flags.Int64Var(&entry, "e", cpu.ENTRY_DEFAULT, "Address of the first instruction")
	flags.Int64Var(&data_begin, "d", 0, "Start of the data region, 0 for the word after the last instruction")
	flags.IntVar(&cycles, "m", 0, "Cycle limit, 0 for unlimited")

	err := flags.Parse(args)
	if err != nil {
		return 1
	}

	if flags.NArg() != 0 {
		log.Printf("Unknown arguments: %v", flags.Args())
		return 1
	}

	if len(input) == 0 && len(compile) == 0 {
		log.Printf("One of -i or -c is required")
		return 1
	}

	if len(input) != 0 && len(compile) != 0 {
		log.Printf("Only one of -i or -c may be given")
		return 1
	}

	config := cpu.DefaultConfig()
	config.Entry = entry
	config.ZeroRegister = zero
	config.MaxCycles = cycles
	config.DataBegin = data_begin

	emu := emulator.NewEmulator(config)
	emu.Verbose = verbose

	prog, err := load(emu, input, compile)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	if list {
		err = listing(prog, output)
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
	}

	if save {
		err = disasm.Save(stdout, prog)
		if err != nil {
			log.Printf("%v", err)
			return 1
		}
		return 0
	}

	emu.Trace, err = trace.Create(output)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer func() {
		err := emu.Close()
		if err != nil {
			log.Printf("%v", err)
			rc = 1
		}
	}()

	emu.Program = prog
	emu.Trace.Verbose = verbose
	err = emu.Reset()
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	err = emu.Run()
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	if verbose {
		log.Printf("halted after %v cycles", emu.Ticks())
	}

	return 0
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package trace records a textual snapshot of the CPU state after every
// executed instruction.
//
// Each block is a separator line, a header with the cycle, address and
// assembly text of the instruction, the 32 registers in rows of eight, and
// the data region from its first address through the highest address ever
// written, also in rows of eight.
package trace

// Package cpu implements the execution engine for a LEGv8 subset.
//
// The CPU consists of a byte-addressed program counter, thirty-two 64-bit
// general-purpose registers (R0-R31), a sparse word-addressed data memory,
// and an immutable instruction store (Program). Each Tick fetches the
// instruction at the program counter, dispatches it by format, and updates
// the architectural state. A BREAK instruction halts the CPU.
//
// Instructions are a closed set of format variants (RType, IType, DType,
// BType, CBType, IMType, NopType, BreakType). Encode and Decode translate
// between the variants and their 32-bit machine words.
package cpu

package cpu

import (
	"fmt"
)

// Registers is the general purpose register file.
type Registers struct {
	X            [REGISTER_COUNT]int64 // Register values.
	ZeroRegister bool                  // If set, REG_XZR reads as zero and ignores writes.
}

// Read returns the value of a register.
func (rf *Registers) Read(reg Reg) int64 {
	if !reg.Valid() {
		panic(fmt.Sprintf("register %d out of range", reg))
	}
	if rf.ZeroRegister && reg == REG_XZR {
		return 0
	}
	return rf.X[reg]
}

// Write sets the value of a register.
func (rf *Registers) Write(reg Reg, value int64) {
	if !reg.Valid() {
		panic(fmt.Sprintf("register %d out of range", reg))
	}
	if rf.ZeroRegister && reg == REG_XZR {
		return
	}
	rf.X[reg] = value
}

// Values returns a copy of the architectural register values.
func (rf *Registers) Values() (values [REGISTER_COUNT]int64) {
	for n := range values {
		values[n] = rf.Read(Reg(n))
	}
	return
}

// Reset zeroes all registers.
func (rf *Registers) Reset() {
	clear(rf.X[:])
}

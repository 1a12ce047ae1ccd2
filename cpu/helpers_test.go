package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sequence places instructions at consecutive words from ENTRY_DEFAULT.
func sequence(insts ...Instruction) (placed []Instruction) {
	for n, inst := range insts {
		address := ENTRY_DEFAULT + int64(n)*WORD_SIZE
		placed = append(placed, WithSource(inst, Source{Address: address}))
	}
	return
}

// newTestCpu resets a CPU with the default configuration onto a program.
func newTestCpu(t *testing.T, data map[int64]int64, insts ...Instruction) (cpu *Cpu) {
	prog, err := NewProgram(sequence(insts...), data)
	require.NoError(t, err)

	cpu = NewCpu(DefaultConfig())
	err = cpu.Reset(prog)
	require.NoError(t, err)

	return
}

// runToHalt ticks the CPU until it halts, returning the executed addresses.
func runToHalt(t *testing.T, cpu *Cpu) (trail []int64) {
	for !cpu.Halted {
		inst, err := cpu.Tick()
		if err != nil {
			t.Fatalf("%v\n%v", err, cpu.String())
		}
		trail = append(trail, inst.Location().Address)
		if len(trail) > 10000 {
			t.Fatalf("runaway program")
		}
	}
	return
}

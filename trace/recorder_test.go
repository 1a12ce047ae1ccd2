package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/legsim/cpu"
)

type closeCounter struct {
	bytes.Buffer
	closes int
}

func (cc *closeCounter) Close() error {
	cc.closes++
	return nil
}

// storeProgram stores 42 at address 112, just past its last instruction.
func storeProgram(t *testing.T, config cpu.Config) (state *cpu.Cpu) {
	insts := []cpu.Instruction{
		cpu.IType{Source: cpu.Source{Address: 96, Text: "ADDI R1, R0, #42"}, Op: cpu.OP_ADDI, Rd: 1, Rn: 0, Immediate: 42},
		cpu.IType{Source: cpu.Source{Address: 100, Text: "ADDI R2, R0, #112"}, Op: cpu.OP_ADDI, Rd: 2, Rn: 0, Immediate: 112},
		cpu.DType{Source: cpu.Source{Address: 104, Text: "STUR R1, [R2, #0]"}, Op: cpu.OP_STUR, Rt: 1, Rn: 2},
		cpu.BreakType{Source: cpu.Source{Address: 108}},
	}

	prog, err := cpu.NewProgram(insts, nil)
	require.NoError(t, err)

	state = cpu.NewCpu(config)
	require.NoError(t, state.Reset(prog))

	return
}

func runRecorded(t *testing.T, state *cpu.Cpu, rec *Recorder) {
	for !state.Halted {
		inst, err := state.Tick()
		require.NoError(t, err)
		require.NoError(t, rec.Record(state, inst))
	}
}

func TestRecorder_Blocks(t *testing.T) {
	assert := assert.New(t)

	state := storeProgram(t, cpu.DefaultConfig())
	buff := &bytes.Buffer{}
	rec := NewRecorder(buff)

	runRecorded(t, state, rec)
	assert.NoError(rec.Close())
	assert.Equal(4, rec.Blocks)

	blocks := strings.Split(buff.String(), SEPARATOR+"\n")
	assert.Equal("", blocks[0])
	blocks = blocks[1:]
	if !assert.Len(blocks, 4) {
		return
	}

	first := "cycle:1\t96\tADDI R1, R0, #42\n" +
		"\n" +
		"registers:\n" +
		"r00:\t0\t42\t0\t0\t0\t0\t0\t0\n" +
		"r08:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"r16:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"r24:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"\n" +
		"data:\n" +
		"\n"
	assert.Equal(first, blocks[0])

	last := "cycle:4\t108\tBREAK\n" +
		"\n" +
		"registers:\n" +
		"r00:\t0\t42\t112\t0\t0\t0\t0\t0\n" +
		"r08:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"r16:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"r24:\t0\t0\t0\t0\t0\t0\t0\t0\n" +
		"\n" +
		"data:\n" +
		"112:\t42\t0\t0\t0\t0\t0\t0\t0\n" +
		"\n"
	assert.Equal(last, blocks[3])

	for n, block := range blocks {
		assert.True(strings.HasPrefix(block, "cycle:"+string(rune('1'+n))+"\t"), block)
	}
}

func TestRecorder_Data(t *testing.T) {
	assert := assert.New(t)

	insts := []cpu.Instruction{
		cpu.NopType{Source: cpu.Source{Address: 96, Text: "NOP"}},
		cpu.BreakType{Source: cpu.Source{Address: 100, Text: "BREAK"}},
	}
	data := map[int64]int64{
		104: -1,
		140: 9,
		144: 10,
	}
	prog, err := cpu.NewProgram(insts, data)
	if !assert.NoError(err) {
		return
	}
	state := cpu.NewCpu(cpu.DefaultConfig())
	assert.NoError(state.Reset(prog))
	state.Memory.Write(8, 77)

	buff := &bytes.Buffer{}
	rec := NewRecorder(buff)
	inst, err := state.Tick()
	assert.NoError(err)
	assert.NoError(rec.Record(state, inst))

	expected := "data:\n" +
		"104:\t-1\t0\t0\t0\t0\t0\t0\t0\n" +
		"136:\t0\t9\t10\t0\t0\t0\t0\t0\n" +
		"\n"
	assert.True(strings.HasSuffix(buff.String(), expected), buff.String())
	assert.NotContains(buff.String(), "77")
}

func TestRecorder_DataBegin(t *testing.T) {
	assert := assert.New(t)

	config := cpu.DefaultConfig()
	config.DataBegin = 104
	state := storeProgram(t, config)
	buff := &bytes.Buffer{}
	rec := NewRecorder(buff)

	runRecorded(t, state, rec)
	assert.NoError(rec.Close())

	expected := "data:\n" +
		"104:\t0\t0\t42\t0\t0\t0\t0\t0\n" +
		"\n"
	assert.True(strings.HasSuffix(buff.String(), expected), buff.String())
}

func TestRecorder_Close(t *testing.T) {
	assert := assert.New(t)

	state := storeProgram(t, cpu.DefaultConfig())
	cc := &closeCounter{}
	rec := NewRecorder(cc)

	inst, err := state.Tick()
	assert.NoError(err)
	assert.NoError(rec.Record(state, inst))
	assert.Contains(cc.String(), "cycle:1\t96\t", "flushed per block")

	assert.NoError(rec.Close())
	assert.NoError(rec.Close())
	assert.Equal(1, cc.closes)

	inst, err = state.Tick()
	assert.NoError(err)
	assert.ErrorIs(rec.Record(state, inst), ErrClosed)
	assert.Equal(1, rec.Blocks)
}

func TestCreate(t *testing.T) {
	assert := assert.New(t)

	prefix := filepath.Join(t.TempDir(), "out")
	rec, err := Create(prefix)
	if !assert.NoError(err) {
		return
	}

	state := storeProgram(t, cpu.DefaultConfig())
	runRecorded(t, state, rec)
	assert.NoError(rec.Close())

	text, err := os.ReadFile(prefix + FILE_SUFFIX)
	assert.NoError(err)
	assert.Equal(4, strings.Count(string(text), SEPARATOR))

	_, err = Create(filepath.Join(t.TempDir(), "missing", "out"))
	assert.Error(err)
}

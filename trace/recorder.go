package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"os"

	"github.com/ezrec/legsim/cpu"
	"github.com/ezrec/legsim/internal"
)

const (
	SEPARATOR   = "=====================" // Leads every block.
	ROW_WIDTH   = 8                       // Values per register or data row.
	FILE_SUFFIX = "_sim.txt"              // Appended to the output prefix.
)

// Recorder writes one trace block per executed instruction to Output.
type Recorder struct {
	Verbose bool // If set, enables verbose logging.
	Blocks  int  // Number of blocks recorded.

	output *bufio.Writer
	closer io.Closer
	closed bool
}

// NewRecorder creates a recorder writing to output. Close flushes output,
// and closes it if it is an io.Closer.
func NewRecorder(output io.Writer) (rec *Recorder) {
	rec = &Recorder{
		output: bufio.NewWriter(output),
	}

	closer, ok := output.(io.Closer)
	if ok {
		rec.closer = closer
	}

	return
}

// Create creates the trace file for an output prefix.
func Create(prefix string) (rec *Recorder, err error) {
	path := prefix + FILE_SUFFIX
	file, err := os.Create(path)
	if err != nil {
		return
	}

	rec = NewRecorder(file)
	return
}

// Record appends the block for an instruction just executed by a CPU. The
// block is flushed to the output before returning.
func (rec *Recorder) Record(state *cpu.Cpu, inst cpu.Instruction) (err error) {
	if rec.closed {
		err = ErrClosed
		return
	}

	w := rec.output

	src := inst.Location()
	fmt.Fprintln(w, SEPARATOR)
	fmt.Fprintf(w, "cycle:%d\t%d\t%s\n", state.Cycles, src.Address, cpu.Text(inst))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "registers:")
	values := state.Register.Values()
	for base := 0; base < len(values); base += ROW_WIDTH {
		fmt.Fprintf(w, "r%02d:", base)
		writeRow(w, values[base:base+ROW_WIDTH])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "data:")
	address := state.DataBegin()
	var words iter.Seq[int64] = func(yield func(int64) bool) {
		for _, value := range state.Memory.Words(address) {
			if !yield(value) {
				return
			}
		}
	}
	for row := range internal.IterSeqRows(words, ROW_WIDTH, 0) {
		fmt.Fprintf(w, "%d:", address)
		writeRow(w, row)
		address += ROW_WIDTH * cpu.WORD_SIZE
	}
	fmt.Fprintln(w)

	err = w.Flush()
	if err != nil {
		return
	}

	rec.Blocks++
	if rec.Verbose {
		log.Printf("trace: cycle %d recorded", state.Cycles)
	}

	return
}

func writeRow(w io.Writer, row []int64) {
	for _, value := range row {
		fmt.Fprintf(w, "\t%d", value)
	}
	fmt.Fprintln(w)
}

// Close flushes and releases the output. Further calls do nothing.
func (rec *Recorder) Close() (err error) {
	if rec.closed {
		return
	}
	rec.closed = true

	err = rec.output.Flush()
	if rec.closer != nil {
		err = errors.Join(err, rec.closer.Close())
	}

	return
}

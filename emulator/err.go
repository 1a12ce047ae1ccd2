package emulator

import (
	"strconv"

	"github.com/ezrec/legsim/translate"
)

var f = translate.From

// ErrRuntime indicates the cycle and program counter of a runtime error.
type ErrRuntime struct {
	Cycle   int
	Address int64
	Err     error
}

func (err *ErrRuntime) Error() string {
	return f("cycle %v %v", strconv.Itoa(err.Cycle), err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

package disasm

import (
	"errors"
	"strconv"

	"github.com/ezrec/legsim/translate"
)

var f = translate.From

var (
	ErrWordLength   = errors.New(f("word is not 32 binary digits"))
	ErrWordDigit    = errors.New(f("word has a non-binary digit"))
	ErrBreakMissing = errors.New(f("no BREAK before end of input"))
)

// ErrSyntax locates an error at an input line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", strconv.Itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

package trace

import (
	"errors"

	"github.com/ezrec/legsim/translate"
)

var f = translate.From

var (
	ErrClosed = errors.New(f("trace recorder closed"))
)

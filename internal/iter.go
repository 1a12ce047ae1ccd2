// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}

// IterSeqRows groups a sequence into rows of width entries, padding the
// final row with pad. The yielded slice is reused between rows.
func IterSeqRows[T any](seq iter.Seq[T], width int, pad T) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		row := make([]T, 0, width)
		for val := range seq {
			row = append(row, val)
			if len(row) == width {
				if !yield(row) {
					return
				}
				row = row[:0]
			}
		}
		if len(row) == 0 {
			return
		}
		for len(row) < width {
			row = append(row, pad)
		}
		yield(row)
	}
}

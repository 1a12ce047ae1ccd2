package cpu

import (
	"iter"
	"maps"
	"slices"
)

// Memory is a sparse, word addressed data memory. Unwritten words read
// as zero.
type Memory struct {
	words   map[int64]int64
	high    int64
	written bool
}

// Read returns the word at address. Unwritten words read as zero and are
// not created.
func (mem *Memory) Read(address int64) (value int64) {
	value = mem.words[address]
	return
}

// Write creates or replaces the word at address.
func (mem *Memory) Write(address int64, value int64) {
	if mem.words == nil {
		mem.words = make(map[int64]int64)
	}
	mem.words[address] = value

	if !mem.written || address > mem.high {
		mem.high = address
		mem.written = true
	}
}

// Load writes every word of an initial memory image.
func (mem *Memory) Load(image iter.Seq2[int64, int64]) {
	for address, value := range image {
		mem.Write(address, value)
	}
}

// High returns the highest address ever written.
func (mem *Memory) High() (address int64, ok bool) {
	return mem.high, mem.written
}

// Len returns the number of words that have been written.
func (mem *Memory) Len() int {
	return len(mem.words)
}

// Words iterates over every word address from 'from' through the highest
// address ever written, yielding zero for unwritten words.
func (mem *Memory) Words(from int64) iter.Seq2[int64, int64] {
	return func(yield func(address int64, value int64) bool) {
		if !mem.written {
			return
		}
		for address := from; address <= mem.high; address += WORD_SIZE {
			if !yield(address, mem.Read(address)) {
				return
			}
		}
	}
}

// Written iterates over the written words in ascending address order.
func (mem *Memory) Written() iter.Seq2[int64, int64] {
	return func(yield func(address int64, value int64) bool) {
		for _, address := range slices.Sorted(maps.Keys(mem.words)) {
			if !yield(address, mem.words[address]) {
				return
			}
		}
	}
}

// Reset forgets all written words.
func (mem *Memory) Reset() {
	clear(mem.words)
	mem.high = 0
	mem.written = false
}

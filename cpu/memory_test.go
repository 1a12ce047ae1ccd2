package cpu

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	_, ok := mem.High()
	assert.False(ok)
	assert.Equal(int64(0), mem.Read(112))
	assert.Equal(0, mem.Len(), "read must not create words")

	mem.Write(120, 5)
	mem.Write(112, -1)
	high, ok := mem.High()
	assert.True(ok)
	assert.Equal(int64(120), high)
	assert.Equal(int64(-1), mem.Read(112))
	assert.Equal(2, mem.Len())

	mem.Write(112, 3)
	assert.Equal(int64(3), mem.Read(112))
	assert.Equal(2, mem.Len())

	assert.Equal(map[int64]int64{112: 3, 120: 5}, maps.Collect(mem.Written()))

	mem.Reset()
	_, ok = mem.High()
	assert.False(ok)
	assert.Equal(0, mem.Len())
}

func TestMemory_Words(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}

	var count int
	for range mem.Words(100) {
		count++
	}
	assert.Equal(0, count)

	mem.Write(112, 42)

	var addrs []int64
	var values []int64
	for address, value := range mem.Words(100) {
		addrs = append(addrs, address)
		values = append(values, value)
	}
	assert.Equal([]int64{100, 104, 108, 112}, addrs)
	assert.Equal([]int64{0, 0, 0, 42}, values)

	count = 0
	for range mem.Words(116) {
		count++
	}
	assert.Equal(0, count, "nothing at or after 116")
}

func TestMemory_Load(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}
	mem.Load(maps.All(map[int64]int64{200: 1, 204: 2}))

	assert.Equal(int64(1), mem.Read(200))
	assert.Equal(int64(2), mem.Read(204))
	high, _ := mem.High()
	assert.Equal(int64(204), high)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	wordAddi  = "10010001001111111110110000000001" // ADDI R1, R0, #-5
	wordB5    = "00010100000000000000000000000101" // B #5
	wordBreak = "11111110110111101111111111100111" // BREAK
	wordData  = "00000000000000000000000000000111" // 7
)

// writeFile writes lines to a file in a temporary directory.
func writeFile(t *testing.T, dir string, name string, lines ...string) (path string) {
	path = filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	return
}

func readFile(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	input := writeFile(t, dir, "prog.txt", wordAddi, wordBreak, wordData)
	prefix := filepath.Join(dir, "out")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rc := run([]string{"-i", input, "-o", prefix, "-l"}, stdout, stderr)
	assert.Equal(0, rc, stderr.String())
	assert.Empty(stderr.String())

	sim := readFile(t, prefix+"_sim.txt")
	assert.Equal(2, strings.Count(sim, "====================="))
	assert.Contains(sim, "cycle:1\t96\tADDI\tR1, R0, #-5\n")
	assert.Contains(sim, "r00:\t0\t-5\t0\t0\t0\t0\t0\t0\n")
	assert.True(strings.HasSuffix(sim, "data:\n104:\t7\t0\t0\t0\t0\t0\t0\t0\n\n"), sim)

	dis := readFile(t, prefix+"_dis.txt")
	assert.Equal("1001000100 111111111011 00000 00001\t96\tADDI\tR1, R0, #-5\n"+
		"11111110 110 11110 11111 11111 100111\t100\tBREAK\n"+
		wordData+"\t104\t7\n", dis)
}

func TestRunDataBegin(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	input := writeFile(t, dir, "prog.txt", wordAddi, wordBreak, wordData)
	prefix := filepath.Join(dir, "out")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rc := run([]string{"-i", input, "-o", prefix, "-d", "96"}, stdout, stderr)
	assert.Equal(0, rc, stderr.String())

	sim := readFile(t, prefix+"_sim.txt")
	assert.True(strings.HasSuffix(sim, "data:\n96:\t0\t0\t7\t0\t0\t0\t0\t0\n\n"), sim)
}

func TestRunFetchOutOfRange(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	input := writeFile(t, dir, "prog.txt", wordAddi, wordB5, wordBreak)
	prefix := filepath.Join(dir, "out")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rc := run([]string{"-i", input, "-o", prefix}, stdout, stderr)
	assert.Equal(1, rc)
	assert.Contains(stderr.String(), "pc 120")

	sim := readFile(t, prefix+"_sim.txt")
	assert.Equal(2, strings.Count(sim, "====================="))
	assert.Contains(sim, "cycle:2\t100\tB\t#5\n")
	assert.NotContains(sim, "cycle:3")
}

func TestRunCompile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeFile(t, dir, "prog.s",
		"        ADDI R31, XZR, #9",
		"        ADD R1, R31, R31",
		"        BREAK",
	)
	prefix := filepath.Join(dir, "out")

	table := [](struct {
		args []string
		r1   string
	}){
		{[]string{"-c", source, "-o", prefix}, "r00:\t0\t18\t"},
		{[]string{"-c", source, "-o", prefix, "-z"}, "r00:\t0\t0\t"},
	}

	for _, entry := range table {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		rc := run(entry.args, stdout, stderr)
		assert.Equal(0, rc, stderr.String())

		sim := readFile(t, prefix+"_sim.txt")
		assert.Contains(sim, "cycle:3\t104\tBREAK\n")
		assert.Contains(sim, entry.r1)
	}
}

func TestRunSave(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	source := writeFile(t, dir, "prog.s",
		"ADDI R1, R0, #-5",
		"BREAK",
		".word 7",
	)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rc := run([]string{"-c", source, "-s"}, stdout, stderr)
	assert.Equal(0, rc, stderr.String())
	assert.Equal(strings.Join([]string{wordAddi, wordBreak, wordData, ""}, "\n"), stdout.String())
}

func TestRunOptions(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	spin := writeFile(t, dir, "spin.s", "spin: B spin")
	halt := writeFile(t, dir, "halt.txt", wordBreak)
	prefix := filepath.Join(dir, "out")

	table := [](struct {
		name   string
		args   []string
		rc     int
		stderr string
	}){
		{"extra", []string{"-i", halt, "extra"}, 1, "Unknown arguments"},
		{"missing", []string{"-o", prefix}, 1, "-i or -c"},
		{"both", []string{"-i", halt, "-c", spin, "-o", prefix}, 1, "Only one of -i or -c"},
		{"data_misaligned", []string{"-i", halt, "-o", prefix, "-d", "6"}, 1, "misaligned"},
		{"flag", []string{"-q"}, 1, "-q"},
		{"open", []string{"-i", filepath.Join(dir, "nothing.txt")}, 1, "nothing.txt"},
		{"syntax", []string{"-i", spin, "-o", prefix}, 1, "spin.s"},
		{"limit", []string{"-c", spin, "-o", prefix, "-m", "5"}, 1, "cycle limit"},
		{"entry", []string{"-i", halt, "-o", prefix, "-e", "0"}, 0, ""},
	}

	for _, entry := range table {
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		rc := run(entry.args, stdout, stderr)
		assert.Equal(entry.rc, rc, entry.name)
		assert.Contains(stderr.String(), entry.stderr, entry.name)
	}

	sim := readFile(t, prefix+"_sim.txt")
	assert.Contains(sim, "cycle:1\t0\tBREAK\n")
}

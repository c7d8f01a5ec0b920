//go:build linux && amd64

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	path := writeProgram(t, `name: answer
instructions:
  - {op: mov, dst: rax, imm: 20}
  - {op: mov, dst: rcx, imm: 22}
  - {op: add, dst: rax, src: rcx}
  - {op: ret}
`)
	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &runParams{verbose: true}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "42\n", stdout.String())
	assert.Contains(t, stderr.String(), "msg=calling")
}

func TestRunCompare(t *testing.T) {
	path := writeProgram(t, `instructions:
  - {op: mov, dst: rcx, imm: -7}
  - {op: mov, dst: rdx, imm: 3}
  - {op: cmp, dst: rcx, src: rdx}
  - {op: setl, dst: rax}
  - {op: ret}
`)
	var stdout, stderr bytes.Buffer
	code := run([]string{path}, &runParams{}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "1\n", stdout.String())
}

func TestRunErrors(t *testing.T) {
	path := writeProgram(t, "instructions: [{op: jmp}]\n")
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &runParams{}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unknown op")
	assert.Empty(t, stdout.String())
}

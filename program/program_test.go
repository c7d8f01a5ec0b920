package program

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JacquesLucke/i64lang/x64"
)

func TestLoad(t *testing.T) {
	p, err := Load("testdata/answer.yaml")
	require.NoError(t, err)
	assert.Equal(t, "answer", p.Name)
	require.Len(t, p.Instructions, 4)

	asm, err := p.Assemble()
	require.NoError(t, err)
	assert.Equal(t, "48c7c01400000048c7c1160000004801c8c3", hex.EncodeToString(asm.Code()))

	lines := asm.Listing()
	require.Len(t, lines, 4)
	assert.Equal(t, "add rax, rcx", lines[2].Inst.String())
	assert.Equal(t, uint32(14), lines[2].PC)
}

func TestLoadMemory(t *testing.T) {
	p, err := Load("testdata/memory.yaml")
	require.NoError(t, err)

	insts, err := p.Insts()
	require.NoError(t, err)
	assert.Equal(t, []x64.Inst{
		x64.MovImmToReg{Dst: x64.R12, Value: x64.Uint(12345678900000000001)},
		x64.MovRegToMem{Addr: x64.RSP, Src: x64.RAX},
		x64.MovMemToReg{Dst: x64.RBX, Addr: x64.R13},
		x64.ALU{Op: x64.CMP, Dst: x64.RAX, Src: x64.RBX},
		x64.SetCC{Cond: x64.CCSignedGTE, Dst: x64.R8},
		x64.Ret{},
	}, insts)

	asm, err := p.Assemble()
	require.NoError(t, err)
	assert.Equal(t,
		"49bc010889a18ca954ab"+"48890424"+"498b5d00"+"4839d8"+"49c7c000000000410f9dc0"+"c3",
		hex.EncodeToString(asm.Code()))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)
}

func TestParseImmediates(t *testing.T) {
	p, err := Parse([]byte(`
instructions:
  - {op: mov, dst: R8, imm: -1234567890000}
  - {op: MOV, dst: rax, imm: 0x14}
  - {op: mov, dst: rdx, imm: "98765432111"}
`))
	require.NoError(t, err)
	asm, err := p.Assemble()
	require.NoError(t, err)
	assert.Equal(t, "49b8b0fb048ee0feffff"+"48c7c014000000"+"48ba2fe5e0fe16000000", hex.EncodeToString(asm.Code()))
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name, doc string
		err       error
		index     string
	}{
		{"unknown op", "instructions: [{op: mul, dst: rax, src: rbx}]", ErrUnknownOp, "instruction 0"},
		{"unknown register", "instructions: [{op: ret}, {op: add, dst: rax, src: eax}]", x64.ErrInvalidRegister, "instruction 1"},
		{"missing src", "instructions: [{op: sub, dst: rax}]", ErrInvalidInstruction, "instruction 0"},
		{"extra imm", "instructions: [{op: sete, dst: rax, imm: 1}]", ErrInvalidInstruction, "instruction 0"},
		{"ret operands", "instructions: [{op: ret, dst: rax}]", ErrInvalidInstruction, "instruction 0"},
		{"mov mixed", "instructions: [{op: mov, dst: rax, src: rbx}]", ErrInvalidInstruction, "instruction 0"},
		{"unknown condition", "instructions: [{op: setb, dst: rax}]", ErrUnknownOp, "instruction 0"},
		{"immediate too large", "instructions: [{op: ret}, {op: ret}, {op: mov, dst: rax, imm: 18446744073709551616}]", x64.ErrUnsupportedImmediateSize, "instruction 2"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Parse([]byte(tc.doc))
			require.NoError(t, err)
			_, err = p.Assemble()
			require.ErrorIs(t, err, tc.err)
			assert.Contains(t, err.Error(), tc.index)
		})
	}
}

func TestParseInvalidDocuments(t *testing.T) {
	_, err := Parse(nil)
	require.ErrorIs(t, err, ErrEmptyProgram)

	_, err = Parse([]byte("name: nothing\n"))
	require.ErrorIs(t, err, ErrEmptyProgram)

	_, err = Parse([]byte("instructions: [{op: ret, size: 8}]"))
	require.Error(t, err)

	_, err = Parse([]byte("instructions: [{op: mov, dst: rax, imm: twenty}]"))
	require.ErrorIs(t, err, x64.ErrInvalidImm)

	_, err = Parse([]byte("instructions: [{op: mov, dst: rax, imm: [1, 2]}]"))
	require.Error(t, err)
}

func TestMarshal(t *testing.T) {
	p, err := Load("testdata/memory.yaml")
	require.NoError(t, err)
	data, err := p.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "imm: 12345678900000000001")

	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestParseNegatedConditions(t *testing.T) {
	p, err := Parse([]byte(`
instructions:
  - {op: setnl, dst: rax}
  - {op: setnz, dst: r9}
`))
	require.NoError(t, err)
	insts, err := p.Insts()
	require.NoError(t, err)
	assert.Equal(t, []x64.Inst{
		x64.SetCC{Cond: x64.CCSignedGTE, Dst: x64.RAX},
		x64.SetCC{Cond: x64.CCNeq, Dst: x64.R9},
	}, insts)
}

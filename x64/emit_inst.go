package x64

import (
	"fmt"

	"github.com/JacquesLucke/i64lang/bitvec"
)

var (
	opMovRMImm32 = bitvec.MustHex("c7") // MOV r/m64, imm32 (/0)
	opMovRM      = bitvec.MustHex("89") // MOV r/m64, r64
	opMovRMem    = bitvec.MustHex("8b") // MOV r64, r/m64
	opRet        = bitvec.MustHex("c3")
	opEscape     = bitvec.MustHex("0f") // two-byte opcode map
	rexB         = bitvec.MustHex("41")

	aluOpcodes = [...]bitvec.Vector{
		ADD: bitvec.MustHex("01"), // ADD r/m64, r64
		SUB: bitvec.MustHex("29"), // SUB r/m64, r64
		CMP: bitvec.MustHex("39"), // CMP r/m64, r64
	}
)

// MOV r64, imm64 is B8+r
const opMovRImm64 = "b8"

// Encode returns the machine code for inst.
func Encode(inst Inst) ([]byte, error) {
	v, err := EncodeBits(inst)
	if err != nil {
		return nil, err
	}
	return v.Bytes()
}

// EncodeBits returns the machine code for inst as a bit vector, fields concatenated in
// encoding order (prefixes, opcode, ModRM, SIB, displacement, immediate).
func EncodeBits(inst Inst) (bitvec.Vector, error) {
	switch i := inst.(type) {
	case MovImmToReg:
		return emitMovImm(i)
	case MovRegToMem:
		return emitMovRegToMem(i)
	case MovMemToReg:
		return emitMovMemToReg(i)
	case ALU:
		return emitALU(i)
	case SetCC:
		return emitSetCC(i)
	case Ret:
		return opRet, nil
	}
	return bitvec.Vector{}, fmt.Errorf("%w: %T", ErrUnknownInst, inst)
}

func emitMovImm(i MovImmToReg) (bitvec.Vector, error) {
	if err := checkRegs(i.Dst); err != nil {
		return bitvec.Vector{}, err
	}
	size, err := ImmSize(i.Value)
	if err != nil {
		return bitvec.Vector{}, err
	}
	// the immediate takes the place of a second register operand, which always counts as legacy
	rex := rexPrefix(i.Dst, RAX)

	if size <= 4 {
		imm, err := immBits(i.Value, 32)
		if err != nil {
			return bitvec.Vector{}, err
		}
		return bitvec.Join(rex, opMovRMImm32, modrm(modDirect, regBits[0], i.Dst.Bits()), imm), nil
	}

	op, err := bitvec.FromHexOffset(opMovRImm64, int64(i.Dst.Num()))
	if err != nil {
		return bitvec.Vector{}, err
	}
	imm, err := immBits(i.Value, 64)
	if err != nil {
		return bitvec.Vector{}, err
	}
	return bitvec.Join(rex, op, imm), nil
}

func emitMovRegToMem(i MovRegToMem) (bitvec.Vector, error) {
	if err := checkRegs(i.Addr, i.Src); err != nil {
		return bitvec.Vector{}, err
	}
	m := indirect(i.Addr)
	return bitvec.Join(
		rexPrefix(i.Addr, i.Src),
		opMovRM,
		modrm(m.mode, i.Src.Bits(), i.Addr.Bits()),
		m.trailing(),
	), nil
}

func emitMovMemToReg(i MovMemToReg) (bitvec.Vector, error) {
	if err := checkRegs(i.Dst, i.Addr); err != nil {
		return bitvec.Vector{}, err
	}
	m := indirect(i.Addr)
	return bitvec.Join(
		rexPrefix(i.Addr, i.Dst),
		opMovRMem,
		modrm(m.mode, i.Dst.Bits(), i.Addr.Bits()),
		m.trailing(),
	), nil
}

func emitALU(i ALU) (bitvec.Vector, error) {
	if !i.Op.Valid() {
		return bitvec.Vector{}, fmt.Errorf("%w: %d", ErrInvalidOp, i.Op)
	}
	if err := checkRegs(i.Dst, i.Src); err != nil {
		return bitvec.Vector{}, err
	}
	return bitvec.Join(
		rexPrefix(i.Dst, i.Src),
		aluOpcodes[i.Op],
		modrm(modDirect, i.Src.Bits(), i.Dst.Bits()),
	), nil
}

func emitSetCC(i SetCC) (bitvec.Vector, error) {
	if !i.Cond.Valid() {
		return bitvec.Vector{}, fmt.Errorf("%w: %#x", ErrInvalidCondition, byte(i.Cond))
	}
	// SETcc only writes the low byte, so the register is cleared first
	zero, err := emitMovImm(MovImmToReg{Dst: i.Dst})
	if err != nil {
		return bitvec.Vector{}, err
	}
	var rex bitvec.Vector
	if i.Dst.IsExtended() {
		rex = rexB
	}
	op, err := bitvec.FromInt64(int64(0x90|i.Cond), 8)
	if err != nil {
		return bitvec.Vector{}, err
	}
	return bitvec.Join(zero, rex, opEscape, op, modrm(modDirect, regBits[0], i.Dst.Bits())), nil
}

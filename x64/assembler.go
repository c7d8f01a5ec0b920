package x64

import (
	"fmt"
)

// An Assembler encodes a sequence of instructions into a byte slice.
//
// The first error stops the assembler: later calls return the same error until Reset is called.
type Assembler struct {
	b     buffer
	lines []Line
	err   error
}

// Line is an encoded instruction within an assembled sequence.
type Line struct {
	PC   uint32 // offset of the first byte
	Inst Inst
	Code []byte
}

// Create a new Assembler for instruction encoding. Output will be encoded to buf, up to its
// capacity. If the encoded output exceeds the capacity of buf, a new slice will be allocated.
func NewAssembler(buf []byte) *Assembler {
	return &Assembler{b: newBuffer(buf)}
}

// Reset an assembler before encoding a new sequence. The error and the listing are cleared
// and the PC is reset to 0.
//
// If buf is not nil, the assembler's buffer will be replaced with buf; otherwise, the assembler's
// buffer will be reset and possibly resized.
func (a *Assembler) Reset(buf []byte) {
	if buf != nil {
		a.b = newBuffer(buf)
	} else {
		a.b.Reset()
	}
	a.err = nil
	a.lines = nil
}

// Get the first error which occurred while encoding, since the assembler was last reset.
func (a *Assembler) Err() error { return a.err }

// Get the current encoded instructions. This method may be called multiple times and does not
// affect the underlying code buffer.
func (a *Assembler) Code() []byte { return a.b.Get() }

// Get the current program counter (i.e. number of bytes written to the encoding buffer).
func (a *Assembler) PC() uint32 { return uint32(a.b.Len()) }

// Listing returns the instructions encoded so far with their offsets and bytes.
func (a *Assembler) Listing() []Line {
	lines := make([]Line, len(a.lines))
	copy(lines, a.lines)
	return lines
}

// Encode inst to the encoding buffer.
func (a *Assembler) Inst(inst Inst) error {
	if a.err != nil {
		return a.err
	}
	code, err := Encode(inst)
	if err != nil {
		a.err = fmt.Errorf("%v: %w", inst, err)
		return a.err
	}
	a.lines = append(a.lines, Line{PC: a.PC(), Inst: inst, Code: code})
	a.b.Bytes(code)
	return nil
}

// Encode a move of imm into dst.
func (a *Assembler) RI(dst Reg, imm Imm) error { return a.Inst(MovImmToReg{Dst: dst, Value: imm}) }

// Encode a register-register ALU operation.
func (a *Assembler) RR(op ALUOp, dst, src Reg) error { return a.Inst(ALU{Op: op, Dst: dst, Src: src}) }

// Encode a load of dst from [addr].
func (a *Assembler) RM(dst, addr Reg) error { return a.Inst(MovMemToReg{Dst: dst, Addr: addr}) }

// Encode a store of src to [addr].
func (a *Assembler) MR(addr, src Reg) error { return a.Inst(MovRegToMem{Addr: addr, Src: src}) }

// Encode a set-on-condition of dst (see SetCC).
func (a *Assembler) Setcc(cc ConditionCode, dst Reg) error {
	return a.Inst(SetCC{Cond: cc, Dst: dst})
}

// Encode a return.
func (a *Assembler) Ret() error { return a.Inst(Ret{}) }

package x64

import (
	"github.com/JacquesLucke/i64lang/bitvec"
)

// Register groups
const (
	REG_LEGACY   = iota // RAX, RCX, RDX, RBX, RSP, RBP, RSI, RDI
	REG_EXTENDED        // R8 - R15 (selected through REX.R/REX.B)
)

// Reg is one of the sixteen 64-bit general purpose registers.
//
// 	[0..2] bits hold the number of the register within its group
// 	[3] bit holds the group
// 	[7] bit is set for every valid register, so the zero value is not a register
type Reg uint8

const regValid Reg = 0x80

// Registers
const (
	RAX Reg = regValid | REG_LEGACY<<3 | 0
	RCX Reg = regValid | REG_LEGACY<<3 | 1
	RDX Reg = regValid | REG_LEGACY<<3 | 2
	RBX Reg = regValid | REG_LEGACY<<3 | 3
	RSP Reg = regValid | REG_LEGACY<<3 | 4
	RBP Reg = regValid | REG_LEGACY<<3 | 5
	RSI Reg = regValid | REG_LEGACY<<3 | 6
	RDI Reg = regValid | REG_LEGACY<<3 | 7

	R8  Reg = regValid | REG_EXTENDED<<3 | 0
	R9  Reg = regValid | REG_EXTENDED<<3 | 1
	R10 Reg = regValid | REG_EXTENDED<<3 | 2
	R11 Reg = regValid | REG_EXTENDED<<3 | 3
	R12 Reg = regValid | REG_EXTENDED<<3 | 4
	R13 Reg = regValid | REG_EXTENDED<<3 | 5
	R14 Reg = regValid | REG_EXTENDED<<3 | 6
	R15 Reg = regValid | REG_EXTENDED<<3 | 7
)

var regNames = [16]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

// 3-bit patterns for ModRM, SIB and opcode+r fields, indexed by register number.
var regBits [8]bitvec.Vector

func init() {
	for n := range regBits {
		v, err := bitvec.FromInt64(int64(n), 3)
		if err != nil {
			panic(err)
		}
		regBits[n] = v
	}
}

// Check if r is one of the sixteen register constants.
func (r Reg) Valid() bool { return r&^0x0f == regValid }

// Get the group of the register: REG_LEGACY or REG_EXTENDED.
func (r Reg) Group() uint8 { return uint8(r>>3) & 1 }

// Get the number which distinguishes the register within its group (0-7).
func (r Reg) Num() uint8 { return uint8(r) & 7 }

// Check if the register belongs to R8 - R15.
func (r Reg) IsExtended() bool { return r.Group() == REG_EXTENDED }

// Get the 3-bit encoding of the register number.
func (r Reg) Bits() bitvec.Vector { return regBits[r.Num()] }

// Get the lowercase name of the register, as used in Intel syntax.
func (r Reg) Name() string {
	if !r.Valid() {
		return "invalid"
	}
	return regNames[r&0x0f]
}

func (r Reg) String() string { return r.Name() }

// Regs returns the sixteen registers in encoding order (RAX - RDI, then R8 - R15).
func Regs() []Reg {
	regs := make([]Reg, 0, len(regNames))
	for i := range regNames {
		regs = append(regs, regValid|Reg(i))
	}
	return regs
}

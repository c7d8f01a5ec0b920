package x64

import (
	"fmt"
	"math"
	"math/big"

	"github.com/JacquesLucke/i64lang/bitvec"
)

const (
	modNoDisp uint8 = 0 // [reg]
	modDisp8  uint8 = 1 // [reg+disp8]
	modDirect uint8 = 3 // reg
)

var modBits = [4]bitvec.Vector{
	bitvec.MustNew("00"),
	bitvec.MustNew("01"),
	bitvec.MustNew("10"),
	bitvec.MustNew("11"),
}

// REX.W prefixes indexed by [group of the r/m register][group of the reg register].
// REX.B follows the first register and REX.R the second one.
var rexPrefixes = [2][2]bitvec.Vector{
	{bitvec.MustHex("48"), bitvec.MustHex("4c")},
	{bitvec.MustHex("49"), bitvec.MustHex("4d")},
}

func rexPrefix(rm, reg Reg) bitvec.Vector { return rexPrefixes[rm.Group()][reg.Group()] }

func modrm(mode uint8, reg, rm bitvec.Vector) bitvec.Vector {
	return bitvec.Join(modBits[mode], reg, rm)
}

// SIB byte with scale=1, no index and base=RSP/R12.
var sibNoIndex = bitvec.MustHex("24")

// indirectArg holds the ModRM mode and the bytes which follow the ModRM byte for a
// register-indirect memory argument without index or displacement.
type indirectArg struct {
	mode uint8
	sib  bitvec.Vector
	disp bitvec.Vector
}

func (m indirectArg) trailing() bitvec.Vector { return bitvec.Join(m.sib, m.disp) }

// Select the addressing mode for [addr]. Two register numbers cannot be encoded as a plain
// base with mod=00:
//
// 	r/m=100 (RSP, R12) escapes into a SIB byte, so a SIB byte naming the register as base is appended
// 	r/m=101 (RBP, R13) means RIP-relative, so the register is encoded as [addr+0] with an 8-bit displacement
func indirect(addr Reg) indirectArg {
	switch addr.Num() {
	case RSP.Num():
		return indirectArg{mode: modNoDisp, sib: sibNoIndex}
	case RBP.Num():
		return indirectArg{mode: modDisp8, disp: bitvec.Zeros(8)}
	default:
		return indirectArg{mode: modNoDisp}
	}
}

var (
	minInt8   = big.NewInt(math.MinInt8)
	maxInt8   = big.NewInt(math.MaxInt8)
	minInt16  = big.NewInt(math.MinInt16)
	maxInt16  = big.NewInt(math.MaxInt16)
	minInt32  = big.NewInt(math.MinInt32)
	maxInt32  = big.NewInt(math.MaxInt32)
	minInt64  = big.NewInt(math.MinInt64)
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
)

func within(v, lo, hi *big.Int) bool { return v.Cmp(lo) >= 0 && v.Cmp(hi) <= 0 }

// ImmSize returns the smallest size in bytes (0, 1, 2, 4 or 8) whose two's complement range
// contains imm. Only 0 has size 0. The 8-byte range is [-2^63, 2^64-1], the union of the
// signed and unsigned 64-bit ranges; anything outside it returns ErrUnsupportedImmediateSize.
func ImmSize(imm Imm) (int, error) {
	v := imm.big()
	switch {
	case v.Sign() == 0:
		return 0, nil
	case within(v, minInt8, maxInt8):
		return 1, nil
	case within(v, minInt16, maxInt16):
		return 2, nil
	case within(v, minInt32, maxInt32):
		return 4, nil
	case within(v, minInt64, maxUint64):
		return 8, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedImmediateSize, v)
}

// Encode imm in width bits, least significant byte first.
func immBits(imm Imm, width int) (bitvec.Vector, error) {
	v, err := bitvec.FromInt(imm.big(), width)
	if err != nil {
		return bitvec.Vector{}, err
	}
	return v.ReversedBytes()
}

func checkRegs(regs ...Reg) error {
	for _, r := range regs {
		if !r.Valid() {
			return fmt.Errorf("%w: %#x", ErrInvalidRegister, uint8(r))
		}
	}
	return nil
}

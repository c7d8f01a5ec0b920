package x64

import (
	"fmt"
	"math/big"
	"strings"
)

// Imm is an integer immediate argument. Unlike the machine forms it is encoded into, an
// Imm is not limited to 64 bits; ImmSize decides whether (and how) it can be encoded.
//
// The zero value is 0. An Imm is immutable.
type Imm struct {
	v *big.Int
}

// Int creates an immediate from an int64.
func Int(v int64) Imm { return Imm{big.NewInt(v)} }

// Uint creates an immediate from a uint64.
func Uint(v uint64) Imm { return Imm{new(big.Int).SetUint64(v)} }

// BigInt creates an immediate holding a copy of v.
func BigInt(v *big.Int) Imm { return Imm{new(big.Int).Set(v)} }

// ParseImm parses a signed integer literal in decimal, or with a 0x, 0o or 0b prefix.
func ParseImm(text string) (Imm, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(text), 0)
	if !ok {
		return Imm{}, fmt.Errorf("%w: %q", ErrInvalidImm, text)
	}
	return Imm{n}, nil
}

func (i Imm) big() *big.Int {
	if i.v == nil {
		return new(big.Int)
	}
	return i.v
}

// Get a copy of the immediate value.
func (i Imm) Big() *big.Int { return new(big.Int).Set(i.big()) }

// Get the sign of the immediate: -1, 0 or +1.
func (i Imm) Sign() int { return i.big().Sign() }

// Check if the immediate is representable as an int64.
func (i Imm) IsInt64() bool { return i.big().IsInt64() }

// Get the immediate as an int64. The result is undefined if IsInt64 returns false.
func (i Imm) Int64() int64 { return i.big().Int64() }

// Get the decimal form of the immediate.
func (i Imm) String() string { return i.big().String() }

// Check if two immediates hold the same value.
func (i Imm) Equal(other Imm) bool { return i.big().Cmp(other.big()) == 0 }

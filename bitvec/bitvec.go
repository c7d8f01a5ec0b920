// Package bitvec provides an immutable, arbitrary-length sequence of bits.
//
// Every instruction encoding in package x64 is assembled from Vector fragments:
// prefixes, opcodes, ModRM fields, and immediates are built separately and joined in
// field order. A Vector is a value: it is compared by content (==) and never modified
// in place, every transform returns a new Vector.
package bitvec

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrOutOfRange is returned when an integer does not fit in the requested number of bits.
	ErrOutOfRange = errors.New("bitvec: value out of range")
	// ErrLengthRequired is returned when a negative integer is converted without an explicit length.
	ErrLengthRequired = errors.New("bitvec: length required for negative values")
	// ErrAlignment is returned by hex and byte operations on vectors that are not nibble/byte aligned.
	ErrAlignment = errors.New("bitvec: misaligned length")
	// ErrInvalidBits is returned for bit literals containing characters other than '0' and '1'.
	ErrInvalidBits = errors.New("bitvec: invalid bit literal")
	// ErrInvalidHex is returned for hex literals containing non-hex digits.
	ErrInvalidHex = errors.New("bitvec: invalid hex literal")
)

const hexDigits = "0123456789ABCDEF"

var one = big.NewInt(1)

// Vector is a finite sequence of bits, most-significant bit first.
//
// The zero value is the empty vector.
type Vector struct {
	s string // only '0' and '1'
}

// New creates a vector from a literal bit string such as "11000".
func New(literal string) (Vector, error) {
	for i := 0; i < len(literal); i++ {
		if c := literal[i]; c != '0' && c != '1' {
			return Vector{}, fmt.Errorf("%w: %q at offset %d", ErrInvalidBits, c, i)
		}
	}
	return Vector{literal}, nil
}

// MustNew is like New but panics if the literal is invalid. It is meant for
// package-level constants.
func MustNew(literal string) Vector {
	v, err := New(literal)
	if err != nil {
		panic(err)
	}
	return v
}

// Zeros returns an all-zero vector of length n. A negative n yields the empty vector.
func Zeros(n int) Vector {
	if n <= 0 {
		return Vector{}
	}
	return Vector{strings.Repeat("0", n)}
}

// FromBytes returns the bits of b, first byte first.
func FromBytes(b []byte) Vector {
	var sb strings.Builder
	sb.Grow(len(b) * 8)
	for _, x := range b {
		for i := 7; i >= 0; i-- {
			sb.WriteByte('0' + (x>>uint(i))&1)
		}
	}
	return Vector{sb.String()}
}

// FromInt encodes value in exactly length bits. Negative values use two's complement:
// the binary form of |value|-1 is complemented and left-padded with ones.
//
// ErrOutOfRange is returned if value needs more than length bits.
func FromInt(value *big.Int, length int) (Vector, error) {
	var s string
	var need int
	if value.Sign() < 0 {
		m := new(big.Int).Abs(value)
		m.Sub(m, one)
		s = complement(m.Text(2))
		need = len(s)
		if m.Sign() > 0 {
			need++ // sign bit
		}
		if need <= length {
			s = strings.Repeat("1", length-len(s)) + s
		}
	} else {
		s = value.Text(2)
		need = len(s)
		if need <= length {
			s = strings.Repeat("0", length-len(s)) + s
		}
	}
	if need > length {
		return Vector{}, fmt.Errorf("%w: %s needs %d bits, have %d", ErrOutOfRange, value, need, length)
	}
	return Vector{s}, nil
}

// FromInt64 is FromInt for an int64 value.
func FromInt64(value int64, length int) (Vector, error) {
	return FromInt(big.NewInt(value), length)
}

// FromUint64 is FromInt for a uint64 value.
func FromUint64(value uint64, length int) (Vector, error) {
	return FromInt(new(big.Int).SetUint64(value), length)
}

// FromNatural returns the shortest binary form of a non-negative value ("0" for zero).
// Negative values have no canonical length, so ErrLengthRequired is returned for them.
func FromNatural(value *big.Int) (Vector, error) {
	if value.Sign() < 0 {
		return Vector{}, fmt.Errorf("%w: %s", ErrLengthRequired, value)
	}
	return Vector{value.Text(2)}, nil
}

// FromHex expands each hex digit into 4 bits, most significant digit first.
// An optional 0x prefix is stripped; the empty string yields the empty vector.
func FromHex(text string) (Vector, error) {
	text = trimHexPrefix(text)
	var sb strings.Builder
	sb.Grow(len(text) * 4)
	for i := 0; i < len(text); i++ {
		n, ok := hexValue(text[i])
		if !ok {
			return Vector{}, fmt.Errorf("%w: %q at offset %d", ErrInvalidHex, text[i], i)
		}
		for j := 3; j >= 0; j-- {
			sb.WriteByte('0' + (n>>uint(j))&1)
		}
	}
	return Vector{sb.String()}, nil
}

// MustHex is like FromHex but panics if the text is invalid.
func MustHex(text string) Vector {
	v, err := FromHex(text)
	if err != nil {
		panic(err)
	}
	return v
}

// FromHexOffset parses hex, adds offset, and converts the sum back with FromHex. This
// addresses opcode ranges such as B8+r. The sum is rendered without leading zeros, so
// the result can be shorter than the input text.
func FromHexOffset(hex string, offset int64) (Vector, error) {
	n, ok := new(big.Int).SetString(trimHexPrefix(hex), 16)
	if !ok {
		return Vector{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	n.Add(n, big.NewInt(offset))
	if n.Sign() < 0 {
		return Vector{}, fmt.Errorf("%w: %s%+d is negative", ErrOutOfRange, hex, offset)
	}
	return FromHex(n.Text(16))
}

// Join concatenates vectors left to right.
func Join(vs ...Vector) Vector {
	n := 0
	for _, v := range vs {
		n += len(v.s)
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, v := range vs {
		sb.WriteString(v.s)
	}
	return Vector{sb.String()}
}

// Len returns the number of bits.
func (v Vector) Len() int { return len(v.s) }

// Bin returns the bits as a string of '0' and '1'.
func (v Vector) Bin() string { return v.s }

// Bit returns the bit at index i (0 is the most significant bit). It panics if i is out of range.
func (v Vector) Bit(i int) uint8 { return v.s[i] - '0' }

// Slice returns bits [from, to). The bounds are clamped to [0, Len()]; an empty range
// yields the empty vector.
func (v Vector) Slice(from, to int) Vector {
	from, to = max(from, 0), min(to, len(v.s))
	if from >= to {
		return Vector{}
	}
	return Vector{v.s[from:to]}
}

// ReversedBytes splits the vector into 8-bit groups and reverses their order. Bits within
// each group are unchanged, turning a big-endian literal into little-endian wire order.
func (v Vector) ReversedBytes() (Vector, error) {
	if len(v.s)%8 != 0 {
		return Vector{}, fmt.Errorf("%w: reversing bytes of %d bits", ErrAlignment, len(v.s))
	}
	var sb strings.Builder
	sb.Grow(len(v.s))
	for i := len(v.s) - 8; i >= 0; i -= 8 {
		sb.WriteString(v.s[i : i+8])
	}
	return Vector{sb.String()}, nil
}

// Hex renders each nibble as one uppercase hex digit.
func (v Vector) Hex() (string, error) {
	if len(v.s)%4 != 0 {
		return "", fmt.Errorf("%w: hex of %d bits", ErrAlignment, len(v.s))
	}
	out := make([]byte, len(v.s)/4)
	for i := range out {
		out[i] = hexDigits[v.nibble(i*4)]
	}
	return string(out), nil
}

// ByteLen returns the length in bytes.
func (v Vector) ByteLen() (int, error) {
	if len(v.s)%8 != 0 {
		return 0, fmt.Errorf("%w: byte length of %d bits", ErrAlignment, len(v.s))
	}
	return len(v.s) / 8, nil
}

// Bytes packs the vector into bytes, first bit into the high bit of the first byte.
func (v Vector) Bytes() ([]byte, error) {
	n, err := v.ByteLen()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = v.nibble(i*8)<<4 | v.nibble(i*8+4)
	}
	return out, nil
}

// Uint interprets the bits as an unsigned integer. The empty vector is 0.
func (v Vector) Uint() *big.Int {
	n := new(big.Int)
	if len(v.s) == 0 {
		return n
	}
	n.SetString(v.s, 2)
	return n
}

// Matches compares v against a literal bit string, ignoring whitespace, e.g. "0000 0001".
func (v Vector) Matches(literal string) bool {
	return v.s == stripSpace(literal)
}

// MatchesHex compares v against hex text, ignoring whitespace and an optional 0x prefix.
func (v Vector) MatchesHex(hex string) bool {
	w, err := FromHex(stripSpace(hex))
	return err == nil && w == v
}

// String returns 0x-prefixed hex for nibble-aligned vectors and the bit string otherwise.
func (v Vector) String() string {
	if h, err := v.Hex(); err == nil {
		return "0x" + h
	}
	return v.s
}

func (v Vector) nibble(i int) byte {
	var n byte
	for _, c := range []byte(v.s[i : i+4]) {
		n = n<<1 | (c - '0')
	}
	return n
}

func complement(bits string) string {
	out := []byte(bits)
	for i, c := range out {
		out[i] = '0' + '1' - c
	}
	return string(out)
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}

package x64

import "errors"

var (
	// ErrUnsupportedImmediateSize is returned for integers outside [-2^63, 2^64-1].
	ErrUnsupportedImmediateSize = errors.New("x64: unsupported immediate value size")
	ErrInvalidImm               = errors.New("x64: invalid immediate")
	ErrInvalidRegister          = errors.New("x64: invalid register")
	ErrInvalidCondition         = errors.New("x64: invalid condition code")
	ErrInvalidOp                = errors.New("x64: invalid ALU operation")
	// ErrUnknownInst is returned for instruction values outside the supported catalog (e.g. a nil Inst).
	ErrUnknownInst = errors.New("x64: unknown instruction")
)

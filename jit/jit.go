// package jit maps encoded x86-64 machine code into executable memory and calls it as a Go
// function.
//
// The code is called with Go's internal register ABI: a func() int64 returns RAX. Code must
// return with RET and must preserve RSP, RBP, R14 and R15. Every other general purpose
// register may be clobbered.
package jit

import "errors"

var (
	// ErrUnsupported is returned by Compile on platforms other than linux/amd64.
	ErrUnsupported = errors.New("jit: executable memory is only supported on linux/amd64")
	ErrEmptyCode   = errors.New("jit: empty code")
	ErrClosed      = errors.New("jit: function is closed")
)

// Func is machine code mapped into executable memory.
type Func struct {
	mem []byte
	fn  func() int64
}

// Call the code and return the final value of RAX.
//
// Calling a closed Func panics.
func (f *Func) Call() int64 {
	if f.fn == nil {
		panic(ErrClosed)
	}
	return f.fn()
}

// Native returns the Go function value bound to the code. It must not be called after Close.
func (f *Func) Native() func() int64 { return f.fn }

// Code returns the executable mapping. It is read-only.
func (f *Func) Code() []byte { return f.mem }

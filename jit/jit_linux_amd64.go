//go:build linux && amd64

package jit

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	anonPrivate = unix.MAP_ANON | unix.MAP_PRIVATE

	readWrite = unix.PROT_READ | unix.PROT_WRITE
	readExec  = unix.PROT_READ | unix.PROT_EXEC
)

// Compile copies code into a fresh anonymous mapping, marks it executable and binds a Go
// function value to it. Close must be called to release the mapping.
func Compile(code []byte) (*Func, error) {
	if len(code) == 0 {
		return nil, ErrEmptyCode
	}
	page := os.Getpagesize()
	size := (len(code) + page - 1) / page * page
	mem, err := unix.Mmap(-1, 0, size, readWrite, anonPrivate)
	if err != nil {
		return nil, fmt.Errorf("jit: sys/unix.Mmap failed: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, readExec); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("jit: sys/unix.Mprotect failed: %w", err)
	}
	f := &Func{mem: mem}
	if err := SetFunctionCode(&f.fn, mem); err != nil {
		unix.Munmap(mem)
		return nil, err
	}
	return f, nil
}

// Close unmaps the code. Closing twice returns ErrClosed.
func (f *Func) Close() error {
	if f.mem == nil {
		return ErrClosed
	}
	mem := f.mem
	f.mem, f.fn = nil, nil
	if err := unix.Munmap(mem); err != nil {
		return fmt.Errorf("jit: sys/unix.Munmap failed: %w", err)
	}
	return nil
}

//go:build !(linux && amd64)

package jit

func Compile(code []byte) (*Func, error) { return nil, ErrUnsupported }

func (f *Func) Close() error { return ErrUnsupported }

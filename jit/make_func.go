package jit

import (
	"errors"
	"reflect"
	"unsafe"
)

var errNotFuncPointer = errors.New("jit: destination for SetFunctionCode must be a pointer to a function-value")

// SetFunctionCode points the function variable at dstAddr to executable. This function is
// entirely unsafe; Compile is the checked entry point and binds its func() int64 through it.
//
// A Go function value is a pointer to a closure record whose first word is the code address.
// The header of executable has its data pointer as first word, so a pointer to a private copy
// of the header serves as a closure without captured variables. The copy escapes to the heap
// and lives as long as the function value.
//
// dstAddr must be a pointer to a function value whose signature matches what the code
// expects under the Go register ABI. executable must be marked with PROT_EXEC privileges
// (see Compile) and outlive every call through the function value.
func SetFunctionCode(dstAddr interface{}, executable []byte) error {
	// See "Go 1.1 Function Calls":
	// https://docs.google.com/document/d/1bMwCey-gmqZVTpRax-ESeVuZGmjwbocYs1iHplK-cjo/pub
	type eface struct {
		typ     uintptr
		closure **[]byte
	}
	v := reflect.ValueOf(dstAddr)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() || !v.Elem().CanSet() || v.Elem().Kind() != reflect.Func {
		return errNotFuncPointer
	}
	if len(executable) == 0 {
		return ErrEmptyCode
	}
	fn := (*eface)(unsafe.Pointer(&dstAddr)).closure
	*fn = &executable
	return nil
}

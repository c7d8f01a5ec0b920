package disasm

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"golang.org/x/arch/x86/x86asm"
)

var errNotFunc = errors.New("disasm: argument for Func must be a non-nil function-value")

// Decode the instructions in code, calling each with the offset and the decoded instruction
// until each returns false or the code is exhausted. Decoding errors are returned with the
// offset of the undecodable bytes.
func Code(code []byte, each func(pc int, inst x86asm.Inst) bool) error {
	for pc := 0; pc < len(code); {
		inst, err := x86asm.Decode(code[pc:], 64)
		if err != nil {
			return fmt.Errorf("disasm: offset %d: %w", pc, err)
		}
		// x86asm reports an instruction cut short by the end of code as a lone prefix byte
		if inst.Op == 0 {
			return fmt.Errorf("disasm: offset %d: %w", pc, x86asm.ErrTruncated)
		}
		if !each(pc, inst) {
			return nil
		}
		pc += inst.Len
	}
	return nil
}

// Intel decodes code into Intel-syntax lines, one per machine instruction.
func Intel(code []byte) ([]string, error) {
	var lines []string
	err := Code(code, func(pc int, inst x86asm.Inst) bool {
		lines = append(lines, x86asm.IntelSyntax(inst, uint64(pc), nil))
		return true
	})
	return lines, err
}

// Disassemble instructions from funcValue until while returns false. A maximum of 4096 bytes
// may be decoded. This function is entirely unsafe.
//
// funcValue must be a non-nil Go function-value.
func Func(funcValue interface{}, while func(x86asm.Inst) bool) error {
	// See "Go 1.1 Function Calls":
	// https://docs.google.com/document/d/1bMwCey-gmqZVTpRax-ESeVuZGmjwbocYs1iHplK-cjo/pub
	type interfaceHeader struct {
		typ  uintptr
		addr **[]byte
	}
	v := reflect.ValueOf(funcValue)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return errNotFunc
	}
	header := *(*interfaceHeader)(unsafe.Pointer(&funcValue))
	code := (*[4096]byte)(unsafe.Pointer(*header.addr))
	n := 0
	for n < 4096-16 {
		inst, err := x86asm.Decode(code[n:n+16], 64)
		if err != nil {
			return err
		}
		if !while(inst) {
			return nil
		}
		if code[n] == 0xc3 { // find RET + padding (end of function)
			if n&15 != 0 {
				pad := 16 - (n & 15) // functions are typically aligned to a 16-byte boundary

				if bytes.Equal(code[n+1:n+1+pad], pad00[:pad]) || bytes.Equal(code[n+1:n+1+pad], padcc[:pad]) {
					return nil
				}
			} else {
				return nil
			}
		}
		n += inst.Len
	}
	return nil
}

// Manually allocated memory is typically zeroed
var pad00 = [...]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// The Go compiler seems to pad functions with 0xCC bytes to a 16-byte alignment boundary
var padcc = [...]byte{0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc}

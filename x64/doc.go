// package x64 provides a miniature x86-64 instruction encoder
//
// Only a closed set of instruction forms is supported: moving an immediate into a register,
// register-indirect loads and stores, register-register ADD/SUB/CMP, set-on-condition and RET.
// Every instruction value renders to Intel syntax (String) and encodes to machine code (Encode).
//
// usage example:
//
// 	package example
//
// 	import (
// 		"github.com/JacquesLucke/i64lang/jit"
//
// 		// Importing everything from the package into the current scope
// 		// makes for less noise:
// 		. "github.com/JacquesLucke/i64lang/x64"
// 	)
//
// 	func CompileAnswer() (*jit.Func, error) {
// 		asm := NewAssembler(make([]byte, 0, 64))
//
// 		asm.RI(RAX, Int(20))     // mov rax, 20
// 		asm.RI(RCX, Int(22))     // mov rcx, 22
// 		asm.RR(ADD, RAX, RCX)    // add rax, rcx
// 		asm.Ret()                // ret
// 		if asm.Err() != nil {
// 			return nil, asm.Err()
// 		}
//
// 		// Map the code into executable memory; fn.Call() returns RAX (42).
// 		return jit.Compile(asm.Code())
// 	}
package x64

// package disasm decodes encoded x64 code back into x86asm instructions, either from a byte
// slice or from a Go function value bound to executable memory.
//
// example usage:
//
// 	package example
//
// 	import (
// 		"fmt"
//
// 		"github.com/JacquesLucke/i64lang/jit"
// 		"github.com/JacquesLucke/i64lang/x64"
// 		"github.com/JacquesLucke/i64lang/x64/disasm"
// 		"golang.org/x/arch/x86/x86asm"
// 	)
//
// 	func Print() error {
// 		asm := x64.NewAssembler(nil)
// 		asm.RI(x64.RAX, x64.Int(20))  // mov rax, 20
// 		asm.MR(x64.RSP, x64.RAX)      // mov [rsp], rax
// 		asm.Ret()                     // ret
// 		if asm.Err() != nil {
// 			return asm.Err()
// 		}
//
// 		lines, err := disasm.Intel(asm.Code())
// 		if err != nil {
// 			return err
// 		}
// 		for _, line := range lines {
// 			fmt.Println(line)
// 		}
// 		// Outputs:
// 		//
// 		// 	mov rax, 0x14
// 		// 	mov qword ptr [rsp], rax
// 		// 	ret
//
// 		// Disassemble compiled code through its function value:
// 		fn, err := jit.Compile(asm.Code())
// 		if err != nil {
// 			return err
// 		}
// 		defer fn.Close()
// 		return disasm.Func(fn.Native(), func(inst x86asm.Inst) bool {
// 			fmt.Println(x86asm.IntelSyntax(inst, 0, nil))
// 			return true // RET + padding is detected automatically
// 		})
// 	}
package disasm
